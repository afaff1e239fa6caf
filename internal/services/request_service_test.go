package services_test

import (
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
)

var _ = Describe("RequestService", func() {
	var (
		e      *env
		client *entities.User
		writer *entities.User
	)

	BeforeEach(func() {
		e = newEnv()
		client = e.user(entities.RoleClient, "Amina")
		writer = e.user(entities.RoleWriter, "Brian")
	})

	Describe("Create", func() {
		It("rounds the cost and opens the request for seven days", func() {
			req := e.openRequest(client)

			Expect(req.EstimatedCost).To(Equal(500))
			Expect(req.Status).To(Equal(entities.RequestOpen))
			Expect(req.ExpirationDeadline.Sub(req.CreatedAt)).To(Equal(7 * 24 * time.Hour))
			Expect(e.events.Types()).To(ConsistOf(ports.EventRequestCreated))
		})

		It("lets students post requests", func() {
			student := e.user(entities.RoleStudent, "Chloe")
			_, err := e.requests.Create(e.ctx, student, validInput())
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses writers", func() {
			_, err := e.requests.Create(e.ctx, writer, validInput())
			Expect(err).To(MatchError(domainerrors.ErrClientOnly))
		})

		It("reports unparsable numbers and dates", func() {
			in := validInput()
			in.NumPages = "five"
			in.EstimatedCost = ""
			in.Deadline = "next week"

			_, err := e.requests.Create(e.ctx, client, in)
			Expect(err).To(MatchError(domainerrors.ErrValidation))

			de, ok := domainerrors.As(err)
			Expect(ok).To(BeTrue())
			Expect(de.Fields).To(HaveLen(3))
		})

		It("rejects page counts and costs too large to store", func() {
			in := validInput()
			in.NumPages = "99999999999"
			in.EstimatedCost = "1e300"

			_, err := e.requests.Create(e.ctx, client, in)
			Expect(err).To(MatchError(domainerrors.ErrValidation))

			de, _ := domainerrors.As(err)
			Expect(de.Fields).To(ConsistOf(
				HaveField("Field", "num_pages"),
				HaveField("Field", "estimated_cost"),
			))
			open, err := e.requests.ListOpen(e.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(BeEmpty())
		})

		It("strips markup before checking lengths", func() {
			in := validInput()
			in.CourseName = "<b>Networks</b>"

			req, err := e.requests.Create(e.ctx, client, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.CourseName).To(Equal("Networks"))
		})

		It("accepts RFC 3339 deadlines", func() {
			in := validInput()
			in.Deadline = "2026-11-01T17:00:00+03:00"

			req, err := e.requests.Create(e.ctx, client, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Deadline).To(Equal(time.Date(2026, 11, 1, 14, 0, 0, 0, time.UTC)))
		})
	})

	Describe("ListOpen", func() {
		It("returns open requests newest first without contact details", func() {
			first := e.openRequest(client)
			e.clock.Advance(time.Minute)
			second := e.openRequest(client)

			open, err := e.requests.ListOpen(e.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(HaveLen(2))
			Expect(open[0].ID).To(Equal(second.ID))
			Expect(open[1].ID).To(Equal(first.ID))
			Expect(open[0].Client.Name).To(Equal("Amina"))
			Expect(open[0].Client.WhatsAppNumber).To(BeNil())
		})

		It("never lists expired or assigned requests", func() {
			expired := e.openRequest(client)
			e.clock.Advance(8 * 24 * time.Hour)
			fresh := e.openRequest(client)
			taken := e.openRequest(client)
			_, err := e.requests.Accept(e.ctx, writer, taken.ID)
			Expect(err).NotTo(HaveOccurred())

			open, err := e.requests.ListOpen(e.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(HaveLen(1))
			Expect(open[0].ID).To(Equal(fresh.ID))
			Expect(open[0].ID).NotTo(Equal(expired.ID))
		})
	})

	Describe("Accept", func() {
		It("assigns the request, creates the assignment and marks the writer busy", func() {
			whatsapp := "+254700000001"
			client.WhatsAppNumber = &whatsapp
			Expect(e.repos.Users.Update(e.ctx, client)).To(Succeed())

			req := e.openRequest(client)
			res, err := e.requests.Accept(e.ctx, writer, req.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.ClientName).To(Equal("Amina"))
			Expect(res.ClientWhatsApp).To(HaveValue(Equal(whatsapp)))
			Expect(res.Assignment.Status).To(Equal(entities.AssignmentInProgress))

			stored, _ := e.repos.Requests.FindByID(e.ctx, req.ID)
			Expect(stored.Status).To(Equal(entities.RequestAssigned))
			Expect(*e.reload(writer).WriterStatus).To(Equal(entities.WriterBusy))
			Expect(e.events.Types()).To(ContainElement(ports.EventRequestAssigned))
		})

		It("is writer only", func() {
			req := e.openRequest(client)
			_, err := e.requests.Accept(e.ctx, client, req.ID)
			Expect(err).To(MatchError(domainerrors.ErrWriterOnly))
		})

		It("rejects a second accept without creating another assignment", func() {
			req := e.openRequest(client)
			other := e.user(entities.RoleWriter, "Dan")

			_, err := e.requests.Accept(e.ctx, writer, req.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.requests.Accept(e.ctx, other, req.ID)
			Expect(err).To(MatchError(domainerrors.ErrRequestAlreadyAssigned))

			a, _ := e.repos.Assignments.FindByRequestID(e.ctx, req.ID)
			Expect(a.WriterID).To(Equal(writer.ID))
			Expect(*e.reload(other).WriterStatus).To(Equal(entities.WriterActive))
		})

		It("distinguishes missing and expired requests", func() {
			_, err := e.requests.Accept(e.ctx, writer, uuid.NewString())
			Expect(err).To(MatchError(domainerrors.ErrRequestNotFound))

			_, err = e.requests.Accept(e.ctx, writer, "not-a-uuid")
			Expect(err).To(MatchError(domainerrors.ErrRequestNotFound))

			req := e.openRequest(client)
			e.clock.Advance(entities.RequestLifetime)
			_, err = e.requests.Accept(e.ctx, writer, req.ID)
			Expect(err).To(MatchError(domainerrors.ErrRequestExpired))
		})

		It("forbids accepting your own request", func() {
			req := e.openRequest(client)
			client.ChangeRole(entities.RoleWriter)

			_, err := e.requests.Accept(e.ctx, client, req.ID)
			Expect(err).To(MatchError(domainerrors.ErrOwnRequest))
		})

		It("rolls every step back when a later step fails", func() {
			orphan := &entities.AssignmentRequest{
				ID:                 uuid.NewString(),
				ClientID:           uuid.NewString(),
				Status:             entities.RequestOpen,
				CreatedAt:          e.clock.Now(),
				ExpirationDeadline: e.clock.Now().Add(entities.RequestLifetime),
			}
			Expect(e.repos.Requests.Create(e.ctx, orphan)).To(Succeed())

			_, err := e.requests.Accept(e.ctx, writer, orphan.ID)
			Expect(err).To(MatchError(domainerrors.ErrUserNotFound))

			stored, _ := e.repos.Requests.FindByID(e.ctx, orphan.ID)
			Expect(stored.Status).To(Equal(entities.RequestOpen))
			a, _ := e.repos.Assignments.FindByRequestID(e.ctx, orphan.ID)
			Expect(a).To(BeNil())
			Expect(*e.reload(writer).WriterStatus).To(Equal(entities.WriterActive))
		})

		It("lets exactly one of many concurrent writers win", func() {
			req := e.openRequest(client)

			const n = 8
			writers := make([]*entities.User, n)
			for i := range writers {
				writers[i] = e.user(entities.RoleWriter, "writer")
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				wins      int
				conflicts int
			)
			for _, w := range writers {
				wg.Add(1)
				go func(w *entities.User) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := e.requests.Accept(e.ctx, w, req.ID)
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						wins++
					} else if domainerrors.KindOf(err) == domainerrors.KindConflict {
						conflicts++
					}
				}(w)
			}
			wg.Wait()

			Expect(wins).To(Equal(1))
			Expect(conflicts).To(Equal(n - 1))
		})
	})
})
