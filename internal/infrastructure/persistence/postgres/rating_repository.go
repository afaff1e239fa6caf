package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// RatingRepository implements repositories.RatingRepository.
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a RatingRepository.
func NewRatingRepository(db *gorm.DB) repositories.RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) FindByRaterAndRequest(ctx context.Context, raterID, requestID string) (*entities.Rating, error) {
	var m RatingModel
	err := conn(ctx, r.db).
		Where("rater_id = ? AND assignment_request_id = ?", raterID, requestID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entities.Rating{
		ID:                  m.ID,
		RaterID:             m.RaterID,
		RatedID:             m.RatedID,
		Score:               m.Rating,
		Comment:             m.Comment,
		AssignmentRequestID: m.AssignmentRequestID,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}, nil
}

const upsertRatingSQL = `
INSERT INTO ratings (id, rater_id, rated_id, rating, comment, assignment_request_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (rater_id, assignment_request_id) DO UPDATE
SET rated_id = EXCLUDED.rated_id,
    rating = EXCLUDED.rating,
    comment = EXCLUDED.comment,
    updated_at = EXCLUDED.updated_at
RETURNING id, created_at, (xmax = 0) AS inserted`

// Upsert writes in one statement so concurrent first submissions from the
// same rater serialize on the unique key instead of failing.
func (r *RatingRepository) Upsert(ctx context.Context, rating *entities.Rating) (bool, error) {
	var row struct {
		ID        string
		CreatedAt time.Time
		Inserted  bool
	}
	err := conn(ctx, r.db).Raw(upsertRatingSQL,
		rating.ID, rating.RaterID, rating.RatedID, rating.Score, rating.Comment,
		rating.AssignmentRequestID, rating.CreatedAt, rating.UpdatedAt,
	).Scan(&row).Error
	if err != nil {
		return false, err
	}
	rating.ID = row.ID
	rating.CreatedAt = row.CreatedAt.UTC()
	return row.Inserted, nil
}

// Summarize computes ROUND(AVG, 2) and COUNT in the database.
func (r *RatingRepository) Summarize(ctx context.Context, ratedID string) (entities.RatingSummary, error) {
	var row struct {
		Average float64
		Count   int
	}
	err := conn(ctx, r.db).Model(&RatingModel{}).
		Select("COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 AS average, COUNT(*) AS count").
		Where("rated_id = ?", ratedID).
		Scan(&row).Error
	if err != nil {
		return entities.RatingSummary{}, err
	}
	return entities.RatingSummary{Average: row.Average, Count: row.Count}, nil
}

func toRatingModel(rating *entities.Rating) *RatingModel {
	return &RatingModel{
		ID:                  rating.ID,
		RaterID:             rating.RaterID,
		RatedID:             rating.RatedID,
		Rating:              rating.Score,
		Comment:             rating.Comment,
		AssignmentRequestID: rating.AssignmentRequestID,
		CreatedAt:           rating.CreatedAt,
		UpdatedAt:           rating.UpdatedAt,
	}
}
