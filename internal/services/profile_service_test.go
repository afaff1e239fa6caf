package services_test

import (
	"context"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/infrastructure/logging"
	"github.com/writify/writify-backend/internal/services"
)

type fakeImageStore struct {
	keys []string
}

func (s *fakeImageStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example/" + key, nil
}

func ptr[T any](v T) *T { return &v }

var _ = Describe("ProfileService", func() {
	var (
		e    *env
		user *entities.User
	)

	BeforeEach(func() {
		e = newEnv()
		user = e.user(entities.RoleStudent, "Amina")
	})

	Describe("Update", func() {
		It("normalizes the WhatsApp number and clears it when blank", func() {
			got, err := e.profiles.Update(e.ctx, user, services.UpdateProfileInput{
				WhatsAppNumber: ptr("+254 700-000-001"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.WhatsAppNumber).To(HaveValue(Equal("+254700000001")))

			got, err = e.profiles.Update(e.ctx, user, services.UpdateProfileInput{WhatsAppNumber: ptr("")})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.WhatsAppNumber).To(BeNil())
		})

		It("rejects malformed numbers and unknown roles together", func() {
			_, err := e.profiles.Update(e.ctx, user, services.UpdateProfileInput{
				WhatsAppNumber: ptr("12"),
				Role:           ptr("admin"),
			})
			Expect(err).To(MatchError(domainerrors.ErrValidation))
			de, _ := domainerrors.As(err)
			Expect(de.Fields).To(HaveLen(2))
		})

		It("announces role changes to the user's live connections", func() {
			_, err := e.profiles.Update(e.ctx, user, services.UpdateProfileInput{WhatsAppNumber: ptr("+254700000001")})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.events.Types()).To(BeEmpty())

			_, err = e.profiles.Update(e.ctx, user, services.UpdateProfileInput{Role: ptr("writer")})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.events.Types()).To(Equal([]string{ports.EventRoleChanged}))

			e.events.mu.Lock()
			defer e.events.mu.Unlock()
			Expect(e.events.events[0].Payload).To(Equal(ports.RoleChange{UserID: user.ID, Role: entities.RoleWriter}))
			Expect(e.events.events[0].Audience.UserIDs).To(ConsistOf(user.ID))
		})

		It("starts new writers as active and clears the status when they leave", func() {
			got, err := e.profiles.Update(e.ctx, user, services.UpdateProfileInput{Role: ptr("writer")})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.WriterStatus).To(HaveValue(Equal(entities.WriterActive)))

			got, err = e.profiles.Update(e.ctx, got, services.UpdateProfileInput{Role: ptr("client")})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.WriterStatus).To(BeNil())
		})
	})

	Describe("UpdateWriterStatus", func() {
		It("is writer only and checks the status", func() {
			_, err := e.profiles.UpdateWriterStatus(e.ctx, user, "busy")
			Expect(err).To(MatchError(domainerrors.ErrWriterOnly))

			writer := e.user(entities.RoleWriter, "Brian")
			_, err = e.profiles.UpdateWriterStatus(e.ctx, writer, "asleep")
			Expect(err).To(MatchError(domainerrors.ErrValidation))

			got, err := e.profiles.UpdateWriterStatus(e.ctx, writer, "inactive")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.WriterStatus).To(HaveValue(Equal(entities.WriterInactive)))
		})
	})

	Describe("UpsertPortfolio", func() {
		var writer *entities.User

		BeforeEach(func() {
			writer = e.user(entities.RoleWriter, "Brian")
		})

		It("creates then updates one portfolio per writer", func() {
			_, err := e.profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				Description:        ptr("I write **essays**."),
				SampleWorkImageURL: ptr("https://img.example/1.png"),
			})
			Expect(err).NotTo(HaveOccurred())

			p, err := e.profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{Description: ptr("Reports too.")})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Description).To(Equal("Reports too."))
			Expect(p.SampleWorkImage).To(Equal("https://img.example/1.png"))

			profile, err := e.profiles.Get(e.ctx, writer)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Portfolio.Description).To(Equal("Reports too."))
		})

		It("rejects long descriptions and non-http image URLs", func() {
			_, err := e.profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				Description: ptr(strings.Repeat("x", entities.MaxPortfolioDescriptionLength+1)),
			})
			Expect(err).To(MatchError(domainerrors.ErrValidation))

			_, err = e.profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				SampleWorkImageURL: ptr("javascript:alert(1)"),
			})
			Expect(err).To(MatchError(domainerrors.ErrValidation))
		})

		It("needs object storage for uploads", func() {
			_, err := e.profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				Image: &services.ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")},
			})
			Expect(err).To(MatchError(domainerrors.ErrUploadsUnavailable))
		})

		It("stores uploaded images under the writer's prefix", func() {
			images := &fakeImageStore{}
			profiles := services.NewProfileService(e.repos, images, logging.NewNop())

			p, err := profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				Image: &services.ImageUpload{Filename: "Sample.PNG", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(images.keys).To(HaveLen(1))
			Expect(images.keys[0]).To(HavePrefix("portfolios/" + writer.ID + "/"))
			Expect(images.keys[0]).To(HaveSuffix(".png"))
			Expect(p.SampleWorkImage).To(Equal("https://cdn.example/" + images.keys[0]))

			_, err = profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				Image: &services.ImageUpload{Filename: "a.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
			})
			Expect(err).To(MatchError(domainerrors.ErrInvalidImageUpload))

			_, err = profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{
				Image: &services.ImageUpload{Filename: "big.png", ContentType: "image/png", Size: services.MaxImageSize + 1, Body: strings.NewReader("")},
			})
			Expect(err).To(MatchError(domainerrors.ErrInvalidImageUpload))
		})
	})
})

var _ = Describe("WriterService", func() {
	var e *env

	BeforeEach(func() {
		e = newEnv()
	})

	It("orders writers by rating, then count, then name and filters by status", func() {
		low := e.user(entities.RoleWriter, "Zed")
		Expect(e.repos.Users.UpdateRatingSummary(e.ctx, low.ID, entities.RatingSummary{Average: 3, Count: 9})).To(Succeed())
		top := e.user(entities.RoleWriter, "Yara")
		Expect(e.repos.Users.UpdateRatingSummary(e.ctx, top.ID, entities.RatingSummary{Average: 4.5, Count: 2})).To(Succeed())
		e.user(entities.RoleWriter, "Abel")
		e.user(entities.RoleWriter, "Bea")
		e.user(entities.RoleClient, "Not a writer")
		Expect(e.repos.Users.SetWriterStatus(e.ctx, low.ID, entities.WriterBusy)).To(Succeed())

		all, err := e.writers.List(e.ctx, "")
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(all))
		for _, w := range all {
			names = append(names, w.Name)
		}
		Expect(names).To(Equal([]string{"Yara", "Zed", "Abel", "Bea"}))

		busy, err := e.writers.List(e.ctx, "busy")
		Expect(err).NotTo(HaveOccurred())
		Expect(busy).To(HaveLen(1))
		Expect(busy[0].ID).To(Equal(low.ID))

		_, err = e.writers.List(e.ctx, "sleeping")
		Expect(err).To(MatchError(domainerrors.ErrValidation))
	})

	It("renders the portfolio and returns recent ratings", func() {
		writer := e.user(entities.RoleWriter, "Brian")
		client := e.user(entities.RoleClient, "Amina")
		_, err := e.profiles.UpsertPortfolio(e.ctx, writer, services.PortfolioInput{Description: ptr("essays")})
		Expect(err).NotTo(HaveOccurred())
		accepted := e.acceptedRequest(client, writer)
		_, err = e.ratings.Submit(e.ctx, client, services.SubmitRatingInput{
			RatedID: writer.ID, AssignmentRequestID: accepted.Request.ID, Rating: 5,
		})
		Expect(err).NotTo(HaveOccurred())

		w, err := e.writers.Get(e.ctx, writer.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Portfolio.DescriptionHTML).To(Equal("<p>essays</p>"))
		Expect(w.RecentRatings).To(HaveLen(1))
		Expect(w.RecentRatings[0].Rater.Name).To(Equal("Amina"))
	})

	It("treats non-writers as missing", func() {
		client := e.user(entities.RoleClient, "Amina")
		_, err := e.writers.Get(e.ctx, client.ID)
		Expect(err).To(MatchError(domainerrors.ErrWriterNotFound))
	})
})
