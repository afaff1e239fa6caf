package repositories

import (
	"context"
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/readmodel"
)

// WriterFilters narrows the writer listing.
type WriterFilters struct {
	Status *entities.WriterStatus
}

// QueryRepository serves the joined read models. Results are newest first
// unless stated otherwise.
type QueryRepository interface {
	OpenRequests(ctx context.Context, now time.Time) ([]readmodel.OpenRequestRow, error)
	ClientAssignments(ctx context.Context, clientID string) ([]readmodel.AssignmentRow, error)
	WriterAssignments(ctx context.Context, writerID string) ([]readmodel.AssignmentRow, error)
	// Writers lists writers by rating, then number of ratings, then name.
	Writers(ctx context.Context, filters WriterFilters) ([]readmodel.WriterRow, error)
	Writer(ctx context.Context, id string) (*readmodel.WriterRow, error)
	RatingsReceived(ctx context.Context, ratedID string, limit int) ([]readmodel.RatingRow, error)
}
