package services_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/services"
)

var _ = Describe("AssignmentService", func() {
	var (
		e      *env
		client *entities.User
		writer *entities.User
	)

	BeforeEach(func() {
		e = newEnv()
		client = e.user(entities.RoleStudent, "Amina")
		writer = e.user(entities.RoleWriter, "Brian")
	})

	Describe("Complete", func() {
		It("completes once and keeps the first completion time", func() {
			accepted := e.acceptedRequest(client, writer)

			first, err := e.assignments.Complete(e.ctx, writer, accepted.Assignment.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Status).To(Equal(entities.AssignmentCompleted))
			completedAt := *first.CompletedAt

			e.clock.Advance(time.Hour)
			second, err := e.assignments.Complete(e.ctx, writer, accepted.Assignment.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*second.CompletedAt).To(Equal(completedAt))
		})

		It("is limited to the assignment's writer", func() {
			accepted := e.acceptedRequest(client, writer)
			other := e.user(entities.RoleWriter, "Dan")

			_, err := e.assignments.Complete(e.ctx, other, accepted.Assignment.ID)
			Expect(err).To(MatchError(domainerrors.ErrNotAssignmentWriter))

			_, err = e.assignments.Complete(e.ctx, client, accepted.Assignment.ID)
			Expect(err).To(MatchError(domainerrors.ErrWriterOnly))

			_, err = e.assignments.Complete(e.ctx, writer, "missing")
			Expect(err).To(MatchError(domainerrors.ErrAssignmentNotFound))
		})
	})

	Describe("MyAssignments", func() {
		It("shows students their requests with the writer and has_rated_writer", func() {
			e.openRequest(client)
			e.clock.Advance(time.Minute)
			accepted := e.acceptedRequest(client, writer)
			_, err := e.ratings.Submit(e.ctx, client, services.SubmitRatingInput{
				RatedID: writer.ID, AssignmentRequestID: accepted.Request.ID, Rating: 5,
			})
			Expect(err).NotTo(HaveOccurred())

			items, err := e.assignments.MyAssignments(e.ctx, client)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))

			newest := items[0]
			Expect(newest.ID).To(Equal(accepted.Request.ID))
			Expect(newest.Writer.Name).To(Equal("Brian"))
			Expect(newest.Assignment.Status).To(Equal("completed"))
			Expect(newest.HasRatedWriter).To(HaveValue(BeTrue()))
			Expect(newest.HasRatedClient).To(BeNil())

			unassigned := items[1]
			Expect(unassigned.Writer).To(BeNil())
			Expect(unassigned.Assignment).To(BeNil())
			Expect(unassigned.HasRatedWriter).To(HaveValue(BeFalse()))
		})

		It("shows writers the work they accepted with the client", func() {
			accepted := e.acceptedRequest(client, writer)

			items, err := e.assignments.MyAssignments(e.ctx, writer)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ID).To(Equal(accepted.Request.ID))
			Expect(items[0].Client.Name).To(Equal("Amina"))
			Expect(items[0].HasRatedClient).To(HaveValue(BeFalse()))
			Expect(items[0].HasRatedWriter).To(BeNil())
		})
	})
})
