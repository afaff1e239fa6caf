package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// RequestRepository implements repositories.AssignmentRequestRepository.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a RequestRepository.
func NewRequestRepository(db *gorm.DB) repositories.AssignmentRequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, request *entities.AssignmentRequest) error {
	return conn(ctx, r.db).Create(&AssignmentRequestModel{
		ID:                 request.ID,
		ClientID:           request.ClientID,
		CourseName:         request.CourseName,
		CourseCode:         request.CourseCode,
		AssignmentType:     request.AssignmentType,
		NumPages:           request.NumPages,
		Deadline:           request.Deadline,
		EstimatedCost:      request.EstimatedCost,
		Status:             string(request.Status),
		CreatedAt:          request.CreatedAt,
		ExpirationDeadline: request.ExpirationDeadline,
	}).Error
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entities.AssignmentRequest, error) {
	var m AssignmentRequestModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entities.AssignmentRequest{
		ID:                 m.ID,
		ClientID:           m.ClientID,
		CourseName:         m.CourseName,
		CourseCode:         m.CourseCode,
		AssignmentType:     m.AssignmentType,
		NumPages:           m.NumPages,
		Deadline:           m.Deadline.UTC(),
		EstimatedCost:      m.EstimatedCost,
		Status:             entities.RequestStatus(m.Status),
		CreatedAt:          m.CreatedAt.UTC(),
		ExpirationDeadline: m.ExpirationDeadline.UTC(),
	}, nil
}

// MarkAssigned is the guarded status flip. Concurrent callers race on the
// row lock; the loser sees zero affected rows.
func (r *RequestRepository) MarkAssigned(ctx context.Context, id string, now time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&AssignmentRequestModel{}).
		Where("id = ? AND status = ? AND expiration_deadline > ?", id, string(entities.RequestOpen), now).
		Update("status", string(entities.RequestAssigned))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
