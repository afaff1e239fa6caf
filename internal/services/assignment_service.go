package services

import (
	"context"
	"fmt"

	"github.com/writify/writify-backend/internal/domain"
	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/readmodel"
)

// AssignmentService completes assignments and lists them per role.
type AssignmentService struct {
	base
	repos Repositories
	uow   domain.UnitOfWork
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(repos Repositories, uow domain.UnitOfWork, logger ports.Logger, opts ...Option) *AssignmentService {
	return &AssignmentService{
		base:  newBase(logger, opts),
		repos: repos,
		uow:   uow,
	}
}

// AssignmentEvent is the payload of assignment.completed.
type AssignmentEvent struct {
	AssignmentID string `json:"assignment_id"`
	RequestID    string `json:"request_id"`
	WriterID     string `json:"writer_id"`
	ClientID     string `json:"client_id"`
}

// Complete marks the caller's own assignment completed. Completing twice is a no-op.
func (s *AssignmentService) Complete(ctx context.Context, caller *entities.User, assignmentID string) (*entities.Assignment, error) {
	if !caller.IsWriter() {
		return nil, domainerrors.ErrWriterOnly
	}
	if !isID(assignmentID) {
		return nil, domainerrors.ErrAssignmentNotFound
	}

	var (
		assignment *entities.Assignment
		changed    bool
	)
	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		assignment, err = s.repos.Assignments.FindByID(txCtx, assignmentID)
		if err != nil {
			return fmt.Errorf("find assignment: %w", err)
		}
		if assignment == nil {
			return domainerrors.ErrAssignmentNotFound
		}
		if assignment.WriterID != caller.ID {
			return domainerrors.ErrNotAssignmentWriter
		}

		now := s.now()
		if !assignment.Complete(now) {
			return nil
		}
		changed, err = s.repos.Assignments.MarkCompleted(txCtx, assignment.ID, now)
		if err != nil {
			return fmt.Errorf("mark assignment completed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("assignment completed", "assignment_id", assignment.ID, "writer_id", caller.ID)
		s.publish(ctx, assignmentCompletedEvent(assignment))
	}

	return assignment, nil
}

func assignmentCompletedEvent(a *entities.Assignment) ports.Event {
	return ports.Event{
		Type: ports.EventAssignmentCompleted,
		Payload: AssignmentEvent{
			AssignmentID: a.ID,
			RequestID:    a.RequestID,
			WriterID:     a.WriterID,
			ClientID:     a.ClientID,
		},
		Audience: ports.Audience{UserIDs: []string{a.ClientID, a.WriterID}},
	}
}

// MyAssignments lists the caller's work: writers see what they accepted,
// clients and students see what they requested.
func (s *AssignmentService) MyAssignments(ctx context.Context, caller *entities.User) ([]readmodel.MyAssignment, error) {
	perspective := readmodel.PerspectiveFor(caller.Role)

	var (
		rows []readmodel.AssignmentRow
		err  error
	)
	switch perspective {
	case readmodel.PerspectiveWriter:
		rows, err = s.repos.Queries.WriterAssignments(ctx, caller.ID)
	default:
		rows, err = s.repos.Queries.ClientAssignments(ctx, caller.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	return readmodel.ProjectMyAssignments(perspective, rows, s.now()), nil
}
