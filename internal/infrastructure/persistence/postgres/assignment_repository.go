package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// AssignmentRepository implements repositories.AssignmentRepository.
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates an AssignmentRepository.
func NewAssignmentRepository(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *entities.Assignment) error {
	return conn(ctx, r.db).Create(&AssignmentModel{
		ID:          a.ID,
		RequestID:   a.RequestID,
		WriterID:    a.WriterID,
		ClientID:    a.ClientID,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}).Error
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*entities.Assignment, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *AssignmentRepository) FindByRequestID(ctx context.Context, requestID string) (*entities.Assignment, error) {
	return r.findOne(ctx, "request_id = ?", requestID)
}

func (r *AssignmentRepository) findOne(ctx context.Context, query string, arg any) (*entities.Assignment, error) {
	var m AssignmentModel
	if err := conn(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	a := &entities.Assignment{
		ID:        m.ID,
		RequestID: m.RequestID,
		WriterID:  m.WriterID,
		ClientID:  m.ClientID,
		Status:    entities.AssignmentStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		t := m.CompletedAt.UTC()
		a.CompletedAt = &t
	}
	return a, nil
}

func (r *AssignmentRepository) MarkCompleted(ctx context.Context, id string, now time.Time) (bool, error) {
	return r.complete(ctx, "id = ?", id, now)
}

func (r *AssignmentRepository) CompleteByRequest(ctx context.Context, requestID string, now time.Time) (bool, error) {
	return r.complete(ctx, "request_id = ?", requestID, now)
}

func (r *AssignmentRepository) complete(ctx context.Context, query string, arg any, now time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&AssignmentModel{}).
		Where(query, arg).
		Where("status = ?", string(entities.AssignmentInProgress)).
		Updates(map[string]any{
			"status":       string(entities.AssignmentCompleted),
			"completed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
