package services_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
)

var _ = Describe("AuthService", func() {
	var e *env

	BeforeEach(func() {
		e = newEnv()
	})

	identity := func() *ports.Identity {
		return &ports.Identity{
			Subject:       "google-123",
			Email:         "Amina@Students.Uni.ac.ke",
			EmailVerified: true,
			Name:          "Amina",
			Picture:       "https://lh3/a.png",
		}
	}

	It("signs up new university users as students", func() {
		u, err := e.auth.Login(e.ctx, identity())
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Role).To(Equal(entities.RoleStudent))
		Expect(u.Email.String()).To(Equal("amina@students.uni.ac.ke"))
		Expect(u.WriterStatus).To(BeNil())

		again, err := e.auth.CurrentUser(e.ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.GoogleID).To(Equal("google-123"))
	})

	It("refreshes the picture of returning users without touching their role", func() {
		u, err := e.auth.Login(e.ctx, identity())
		Expect(err).NotTo(HaveOccurred())
		u.ChangeRole(entities.RoleWriter)
		Expect(e.repos.Users.Update(e.ctx, u)).To(Succeed())

		e.clock.Advance(24 * time.Hour)
		id := identity()
		id.Picture = "https://lh3/b.png"
		again, err := e.auth.Login(e.ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ID).To(Equal(u.ID))
		Expect(again.ProfilePicture).To(Equal("https://lh3/b.png"))
		Expect(again.Role).To(Equal(entities.RoleWriter))
	})

	It("gives simultaneous first logins of one account the same user", func() {
		const n = 6
		ids := make([]string, n)
		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				u, err := e.auth.Login(e.ctx, identity())
				Expect(err).NotTo(HaveOccurred())
				ids[i] = u.ID
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			Expect(id).To(Equal(ids[0]))
		}
	})

	It("rejects other domains and unverified emails", func() {
		id := identity()
		id.Email = "amina@gmail.com"
		_, err := e.auth.Login(e.ctx, id)
		Expect(err).To(MatchError(domainerrors.ErrInvalidEmailDomain))

		id = identity()
		id.Email = "amina@evil-uni.ac.ke"
		_, err = e.auth.Login(e.ctx, id)
		Expect(err).To(MatchError(domainerrors.ErrInvalidEmailDomain))

		id = identity()
		id.EmailVerified = false
		_, err = e.auth.Login(e.ctx, id)
		Expect(err).To(MatchError(domainerrors.ErrInvalidEmailDomain))
	})

	It("reports unknown session users", func() {
		_, err := e.auth.CurrentUser(e.ctx, "missing")
		Expect(err).To(MatchError(domainerrors.ErrUserNotFound))
	})
})
