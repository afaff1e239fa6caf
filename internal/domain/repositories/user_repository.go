package repositories

import (
	"context"

	"github.com/writify/writify-backend/internal/domain/entities"
)

// UserRepository persists users. Finders return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindByID(ctx context.Context, id string) (*entities.User, error)
	// UpsertByGoogleID inserts user unless its Google account is known, in
	// which case it refreshes email, picture and an empty name. It returns
	// the stored user and whether it was inserted.
	UpsertByGoogleID(ctx context.Context, user *entities.User) (*entities.User, bool, error)
	Update(ctx context.Context, user *entities.User) error
	SetWriterStatus(ctx context.Context, id string, status entities.WriterStatus) error
	UpdateRatingSummary(ctx context.Context, id string, summary entities.RatingSummary) error
}
