package repositories

import (
	"context"
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
)

// AssignmentRequestRepository persists assignment requests.
type AssignmentRequestRepository interface {
	Create(ctx context.Context, request *entities.AssignmentRequest) error
	FindByID(ctx context.Context, id string) (*entities.AssignmentRequest, error)
	// MarkAssigned flips an open, unexpired request to assigned.
	// It reports false when no row matched the guard.
	MarkAssigned(ctx context.Context, id string, now time.Time) (bool, error)
}

// AssignmentRepository persists assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entities.Assignment) error
	FindByID(ctx context.Context, id string) (*entities.Assignment, error)
	FindByRequestID(ctx context.Context, requestID string) (*entities.Assignment, error)
	// MarkCompleted completes the in-progress assignment of id.
	// It reports false when the assignment was not in progress.
	MarkCompleted(ctx context.Context, id string, now time.Time) (bool, error)
	// CompleteByRequest completes the in-progress assignment of a request.
	// It reports false when there was none.
	CompleteByRequest(ctx context.Context, requestID string, now time.Time) (bool, error)
}
