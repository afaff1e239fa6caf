package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/repositories"
	"github.com/writify/writify-backend/internal/infrastructure/logging"
	"github.com/writify/writify-backend/internal/services"
)

var errStorage = errors.New("storage unavailable")

// brokenSummaries fails every aggregate write.
type brokenSummaries struct {
	repositories.UserRepository
}

func (brokenSummaries) UpdateRatingSummary(context.Context, string, entities.RatingSummary) error {
	return errStorage
}

// brokenCompletion fails to complete assignments.
type brokenCompletion struct {
	repositories.AssignmentRepository
}

func (brokenCompletion) CompleteByRequest(context.Context, string, time.Time) (bool, error) {
	return false, errStorage
}

var _ = Describe("RatingService", func() {
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

	rate := func(rater, rated *entities.User, requestID string, score int) (*services.SubmitResult, error) {
		return e.ratings.Submit(e.ctx, rater, services.SubmitRatingInput{
			RatedID:             rated.ID,
			AssignmentRequestID: requestID,
			Rating:              score,
			Comment:             "thanks",
		})
	}

	It("records the rating, updates the aggregate and completes the assignment", func() {
		accepted := e.acceptedRequest(client, writer)

		res, err := rate(client, writer, accepted.Request.ID, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Updated).To(BeFalse())
		Expect(res.AssignmentCompleted).To(BeTrue())
		Expect(res.Summary).To(Equal(entities.RatingSummary{Average: 4, Count: 1}))

		w := e.reload(writer)
		Expect(w.Rating).To(Equal(4.0))
		Expect(w.TotalRatings).To(Equal(1))

		a, _ := e.repos.Assignments.FindByID(e.ctx, accepted.Assignment.ID)
		Expect(a.Status).To(Equal(entities.AssignmentCompleted))
		Expect(a.CompletedAt).NotTo(BeNil())
		Expect(e.events.Types()).To(ContainElements(ports.EventAssignmentCompleted, ports.EventRatingSubmitted))
	})

	It("updates in place on resubmission", func() {
		accepted := e.acceptedRequest(client, writer)

		first, err := rate(client, writer, accepted.Request.ID, 2)
		Expect(err).NotTo(HaveOccurred())
		e.clock.Advance(time.Hour)
		second, err := rate(client, writer, accepted.Request.ID, 5)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Updated).To(BeTrue())
		Expect(second.Rating.ID).To(Equal(first.Rating.ID))
		Expect(second.AssignmentCompleted).To(BeFalse())

		w := e.reload(writer)
		Expect(w.TotalRatings).To(Equal(1))
		Expect(w.Rating).To(Equal(5.0))
	})

	It("rounds the average to two places", func() {
		for _, score := range []int{4, 5, 5} {
			c := e.user(entities.RoleClient, "client")
			accepted := e.acceptedRequest(c, writer)
			_, err := rate(c, writer, accepted.Request.ID, score)
			Expect(err).NotTo(HaveOccurred())
		}

		w := e.reload(writer)
		Expect(w.Rating).To(Equal(4.67))
		Expect(w.TotalRatings).To(Equal(3))
	})

	It("lets the writer rate the client back", func() {
		accepted := e.acceptedRequest(client, writer)
		_, err := rate(client, writer, accepted.Request.ID, 5)
		Expect(err).NotTo(HaveOccurred())

		res, err := rate(writer, client, accepted.Request.ID, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.AssignmentCompleted).To(BeFalse())
		Expect(e.reload(client).Rating).To(Equal(3.0))
	})

	It("refuses ratings before a writer accepted the request", func() {
		req := e.openRequest(client)
		stranger := e.user(entities.RoleStudent, "Chloe")

		_, err := rate(client, writer, req.ID, 4)
		Expect(err).To(MatchError(domainerrors.ErrRequestNotAssigned))
		_, err = rate(client, stranger, req.ID, 1)
		Expect(err).To(MatchError(domainerrors.ErrRequestNotAssigned))

		Expect(e.reload(writer).TotalRatings).To(Equal(0))
		Expect(e.reload(stranger).TotalRatings).To(Equal(0))
	})

	It("only rates the other party of the assignment", func() {
		accepted := e.acceptedRequest(client, writer)
		bystander := e.user(entities.RoleWriter, "Dan")

		_, err := rate(client, bystander, accepted.Request.ID, 1)
		Expect(err).To(MatchError(domainerrors.ErrNotAssignmentParty))
		Expect(e.reload(bystander).TotalRatings).To(Equal(0))
	})

	It("still records ratings once the assignment is already completed", func() {
		accepted := e.acceptedRequest(client, writer)
		_, err := e.assignments.Complete(e.ctx, writer, accepted.Assignment.ID)
		Expect(err).NotTo(HaveOccurred())

		res, err := rate(client, writer, accepted.Request.ID, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.AssignmentCompleted).To(BeFalse())
		Expect(e.reload(writer).TotalRatings).To(Equal(1))
	})

	It("validates score and comment", func() {
		accepted := e.acceptedRequest(client, writer)

		_, err := rate(client, writer, accepted.Request.ID, 6)
		Expect(err).To(MatchError(domainerrors.ErrValidation))

		_, err = e.ratings.Submit(e.ctx, client, services.SubmitRatingInput{
			RatedID:             writer.ID,
			AssignmentRequestID: accepted.Request.ID,
			Rating:              3,
			Comment:             strings.Repeat("a", entities.MaxCommentLength+1),
		})
		Expect(err).To(MatchError(domainerrors.ErrValidation))
	})

	It("rejects self ratings", func() {
		req := e.openRequest(client)
		_, err := rate(client, client, req.ID, 5)
		Expect(err).To(MatchError(domainerrors.ErrSelfRating))
	})

	It("rejects outsiders and unknown requests", func() {
		accepted := e.acceptedRequest(client, writer)
		outsider := e.user(entities.RoleClient, "Eve")

		_, err := rate(outsider, writer, accepted.Request.ID, 1)
		Expect(err).To(MatchError(domainerrors.ErrNotAssignmentParty))

		_, err = rate(client, writer, uuid.NewString(), 1)
		Expect(err).To(MatchError(domainerrors.ErrRequestNotFound))

		Expect(e.reload(writer).TotalRatings).To(Equal(0))
	})

	It("reports malformed ids as invalid fields", func() {
		_, err := e.ratings.Submit(e.ctx, client, services.SubmitRatingInput{
			RatedID:             "writer-1",
			AssignmentRequestID: "42",
			Rating:              5,
		})
		Expect(err).To(MatchError(domainerrors.ErrValidation))

		de, _ := domainerrors.As(err)
		Expect(de.Fields).To(ConsistOf(
			SatisfyAll(HaveField("Field", "rated_id"), HaveField("Tag", "uuid")),
			SatisfyAll(HaveField("Field", "assignment_request_id"), HaveField("Tag", "uuid")),
		))
	})

	It("keeps one rating when the same rater submits concurrently", func() {
		accepted := e.acceptedRequest(client, writer)

		const n = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			inserted int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(score int) {
				defer GinkgoRecover()
				defer wg.Done()
				res, err := rate(client, writer, accepted.Request.ID, score)
				Expect(err).NotTo(HaveOccurred())
				if !res.Updated {
					mu.Lock()
					inserted++
					mu.Unlock()
				}
			}(i%5 + 1)
		}
		wg.Wait()

		Expect(inserted).To(Equal(1))
		Expect(e.reload(writer).TotalRatings).To(Equal(1))
	})

	Describe("when a later step fails", func() {
		submitWith := func(repos services.Repositories, rater, rated *entities.User, requestID string) error {
			svc := services.NewRatingService(repos, e.store, logging.NewNop(), services.WithClock(e.clock.Now))
			_, err := svc.Submit(e.ctx, rater, services.SubmitRatingInput{
				RatedID:             rated.ID,
				AssignmentRequestID: requestID,
				Rating:              2,
			})
			return err
		}

		It("drops the rating when the aggregate cannot be written", func() {
			accepted := e.acceptedRequest(client, writer)
			repos := e.repos
			repos.Users = brokenSummaries{e.repos.Users}

			err := submitWith(repos, client, writer, accepted.Request.ID)
			Expect(err).To(MatchError(errStorage))

			stored, err := e.repos.Ratings.FindByRaterAndRequest(e.ctx, client.ID, accepted.Request.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeNil())
			Expect(e.reload(writer).TotalRatings).To(Equal(0))
			a, _ := e.repos.Assignments.FindByID(e.ctx, accepted.Assignment.ID)
			Expect(a.Status).To(Equal(entities.AssignmentInProgress))
		})

		It("drops the rating and aggregate when completion fails", func() {
			accepted := e.acceptedRequest(client, writer)
			repos := e.repos
			repos.Assignments = brokenCompletion{e.repos.Assignments}

			err := submitWith(repos, client, writer, accepted.Request.ID)
			Expect(err).To(MatchError(errStorage))

			stored, _ := e.repos.Ratings.FindByRaterAndRequest(e.ctx, client.ID, accepted.Request.ID)
			Expect(stored).To(BeNil())
			w := e.reload(writer)
			Expect(w.TotalRatings).To(Equal(0))
			Expect(w.Rating).To(Equal(0.0))
			a, _ := e.repos.Assignments.FindByID(e.ctx, accepted.Assignment.ID)
			Expect(a.Status).To(Equal(entities.AssignmentInProgress))
		})

		It("leaves an earlier rating untouched when a revision fails", func() {
			accepted := e.acceptedRequest(client, writer)
			_, err := rate(client, writer, accepted.Request.ID, 5)
			Expect(err).NotTo(HaveOccurred())

			repos := e.repos
			repos.Users = brokenSummaries{e.repos.Users}
			Expect(submitWith(repos, client, writer, accepted.Request.ID)).To(MatchError(errStorage))

			stored, _ := e.repos.Ratings.FindByRaterAndRequest(e.ctx, client.ID, accepted.Request.ID)
			Expect(stored.Score).To(Equal(5))
			Expect(e.reload(writer).Rating).To(Equal(5.0))
		})
	})

	It("returns the caller's ratings newest first", func() {
		accepted := e.acceptedRequest(client, writer)
		_, err := rate(client, writer, accepted.Request.ID, 4)
		Expect(err).NotTo(HaveOccurred())

		mine, err := e.ratings.MyRatings(e.ctx, writer)
		Expect(err).NotTo(HaveOccurred())
		Expect(mine.TotalRatings).To(Equal(1))
		Expect(mine.Ratings).To(HaveLen(1))
		Expect(mine.Ratings[0].Rater.Name).To(Equal("Amina"))
	})
})
