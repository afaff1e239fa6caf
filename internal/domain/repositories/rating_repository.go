package repositories

import (
	"context"

	"github.com/writify/writify-backend/internal/domain/entities"
)

// RatingRepository persists ratings.
type RatingRepository interface {
	FindByRaterAndRequest(ctx context.Context, raterID, requestID string) (*entities.Rating, error)
	// Upsert stores rating under its (rater, request) key. A revision keeps the
	// stored ID and CreatedAt and copies them back into rating. It reports
	// whether a new row was inserted.
	Upsert(ctx context.Context, rating *entities.Rating) (bool, error)
	// Summarize aggregates every rating received by ratedID.
	Summarize(ctx context.Context, ratedID string) (entities.RatingSummary, error)
}

// PortfolioRepository persists writer portfolios.
type PortfolioRepository interface {
	FindByWriterID(ctx context.Context, writerID string) (*entities.WriterPortfolio, error)
	Upsert(ctx context.Context, portfolio *entities.WriterPortfolio) error
}
