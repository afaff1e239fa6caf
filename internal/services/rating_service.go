package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/writify/writify-backend/internal/domain"
	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/readmodel"
)

const myRatingsLimit = 20

// RatingService records ratings and keeps every user's reputation aggregate current.
type RatingService struct {
	base
	repos Repositories
	uow   domain.UnitOfWork
}

// NewRatingService creates a RatingService.
func NewRatingService(repos Repositories, uow domain.UnitOfWork, logger ports.Logger, opts ...Option) *RatingService {
	return &RatingService{
		base:  newBase(logger, opts),
		repos: repos,
		uow:   uow,
	}
}

// SubmitRatingInput is a rating as submitted by the rater.
type SubmitRatingInput struct {
	RatedID             string
	AssignmentRequestID string
	Rating              int
	Comment             string
}

// SubmitResult reports what a submission changed.
type SubmitResult struct {
	Rating              *entities.Rating
	Updated             bool
	Summary             entities.RatingSummary
	AssignmentCompleted bool
}

// MyRatings is the caller's reputation with the latest ratings received.
type MyRatings struct {
	Rating       float64                `json:"rating"`
	TotalRatings int                    `json:"total_ratings"`
	Ratings      []readmodel.RatingView `json:"ratings"`
}

// RatingEvent is the payload of rating.submitted.
type RatingEvent struct {
	RatingID            string  `json:"rating_id"`
	AssignmentRequestID string  `json:"assignment_request_id"`
	Rating              int     `json:"rating"`
	Average             float64 `json:"average"`
	TotalRatings        int     `json:"total_ratings"`
}

func validateRating(caller *entities.User, in *SubmitRatingInput) error {
	var fields []domainerrors.FieldError
	in.RatedID = strings.TrimSpace(in.RatedID)
	in.AssignmentRequestID = strings.TrimSpace(in.AssignmentRequestID)
	in.Comment = plainText(in.Comment)

	id := func(field, value string) {
		switch {
		case value == "":
			fields = append(fields, domainerrors.FieldError{Field: field, Tag: "required", Message: "is required"})
		case !isID(value):
			fields = append(fields, domainerrors.FieldError{Field: field, Tag: "uuid", Message: "must be a UUID"})
		}
	}
	id("rated_id", in.RatedID)
	id("assignment_request_id", in.AssignmentRequestID)
	if !entities.ValidScore(in.Rating) {
		fields = append(fields, domainerrors.FieldError{Field: "rating", Tag: "range", Message: "must be between 1 and 5"})
	}
	if len([]rune(in.Comment)) > entities.MaxCommentLength {
		fields = append(fields, domainerrors.FieldError{Field: "comment", Tag: "max", Message: "is too long"})
	}
	if len(fields) > 0 {
		return domainerrors.Validation(fields...)
	}
	if in.RatedID == caller.ID {
		return domainerrors.ErrSelfRating
	}
	return nil
}

// Submit records or revises the caller's rating for an accepted request,
// recomputes the rated user's aggregate and completes the request's
// assignment. The three steps commit together. Only the client and the
// writer of the assignment may rate, and only each other.
func (s *RatingService) Submit(ctx context.Context, caller *entities.User, in SubmitRatingInput) (*SubmitResult, error) {
	if err := validateRating(caller, &in); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		result              SubmitResult
		completedAssignment *entities.Assignment
	)

	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.repos.Requests.FindByID(txCtx, in.AssignmentRequestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		if request == nil {
			return domainerrors.ErrRequestNotFound
		}

		assignment, err := s.repos.Assignments.FindByRequestID(txCtx, request.ID)
		if err != nil {
			return fmt.Errorf("find assignment: %w", err)
		}
		if assignment == nil {
			return domainerrors.ErrRequestNotAssigned
		}
		if !assignment.IsParty(caller.ID) || assignment.Counterpart(caller.ID) != in.RatedID {
			return domainerrors.ErrNotAssignmentParty
		}

		rated, err := s.repos.Users.FindByID(txCtx, in.RatedID)
		if err != nil {
			return fmt.Errorf("find rated user: %w", err)
		}
		if rated == nil {
			return domainerrors.ErrUserNotFound
		}

		rating := &entities.Rating{
			ID:                  uuid.NewString(),
			RaterID:             caller.ID,
			RatedID:             in.RatedID,
			Score:               in.Rating,
			Comment:             in.Comment,
			AssignmentRequestID: request.ID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		inserted, err := s.repos.Ratings.Upsert(txCtx, rating)
		if err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		result.Rating = rating
		result.Updated = !inserted

		summary, err := s.repos.Ratings.Summarize(txCtx, in.RatedID)
		if err != nil {
			return fmt.Errorf("summarize ratings: %w", err)
		}
		if err := s.repos.Users.UpdateRatingSummary(txCtx, in.RatedID, summary); err != nil {
			return fmt.Errorf("update rating summary: %w", err)
		}
		result.Summary = summary

		completed, err := s.repos.Assignments.CompleteByRequest(txCtx, request.ID, now)
		if err != nil {
			return fmt.Errorf("complete assignment: %w", err)
		}
		result.AssignmentCompleted = completed
		if !completed {
			s.logger.Debug("no in-progress assignment matched rating",
				"assignment_request_id", request.ID,
				"rater_id", caller.ID,
			)
			return nil
		}
		assignment.Complete(now)
		completedAssignment = assignment
		return nil
	})
	if err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindServer {
			s.logger.Error("submit rating failed", "rater_id", caller.ID, "error", err)
		}
		return nil, err
	}

	s.logger.Info("rating submitted",
		"rating_id", result.Rating.ID,
		"rated_id", in.RatedID,
		"updated", result.Updated,
		"average", result.Summary.Average,
		"total_ratings", result.Summary.Count,
	)

	if completedAssignment != nil {
		s.publish(ctx, assignmentCompletedEvent(completedAssignment))
	}

	s.publish(ctx, ports.Event{
		Type: ports.EventRatingSubmitted,
		Payload: RatingEvent{
			RatingID:            result.Rating.ID,
			AssignmentRequestID: result.Rating.AssignmentRequestID,
			Rating:              result.Rating.Score,
			Average:             result.Summary.Average,
			TotalRatings:        result.Summary.Count,
		},
		Audience: ports.Audience{UserIDs: []string{in.RatedID}},
	})

	return &result, nil
}

// MyRatings returns the caller's aggregate and the most recent ratings they received.
func (s *RatingService) MyRatings(ctx context.Context, caller *entities.User) (*MyRatings, error) {
	user, err := s.repos.Users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	rows, err := s.repos.Queries.RatingsReceived(ctx, caller.ID, myRatingsLimit)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	return &MyRatings{
		Rating:       user.Rating,
		TotalRatings: user.TotalRatings,
		Ratings:      readmodel.ProjectRatings(rows),
	}, nil
}
