package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/repositories"
	"github.com/writify/writify-backend/internal/domain/valueobjects"
)

// UserRepository implements repositories.UserRepository.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	return conn(ctx, r.db).Create(toUserModel(user)).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

const upsertUserSQL = `
INSERT INTO users (id, google_id, email, name, profile_picture, role, rating, total_ratings, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
ON CONFLICT (google_id) DO UPDATE
SET email = EXCLUDED.email,
    profile_picture = EXCLUDED.profile_picture,
    name = CASE WHEN users.name = '' THEN EXCLUDED.name ELSE users.name END,
    updated_at = EXCLUDED.updated_at
RETURNING *, (xmax = 0) AS inserted`

// UpsertByGoogleID resolves first logins racing on the same Google account
// inside the database.
func (r *UserRepository) UpsertByGoogleID(ctx context.Context, user *entities.User) (*entities.User, bool, error) {
	var row struct {
		UserModel
		Inserted bool
	}
	err := conn(ctx, r.db).Raw(upsertUserSQL,
		user.ID, user.GoogleID, user.Email.String(), user.Name, user.ProfilePicture,
		string(user.Role), user.CreatedAt, user.UpdatedAt,
	).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	stored, err := toUserEntity(&row.UserModel)
	if err != nil {
		return nil, false, err
	}
	return stored, row.Inserted, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entities.User, error) {
	var model UserModel
	if err := conn(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toUserEntity(&model)
}

// Update saves the profile columns. The rating aggregate is owned by
// UpdateRatingSummary and is never overwritten here.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	model := toUserModel(user)
	return conn(ctx, r.db).Model(&UserModel{ID: user.ID}).
		Select("email", "name", "profile_picture", "role", "writer_status", "whatsapp_number", "updated_at").
		Updates(model).Error
}

func (r *UserRepository) SetWriterStatus(ctx context.Context, id string, status entities.WriterStatus) error {
	return conn(ctx, r.db).Model(&UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"writer_status": string(status),
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

// UpdateRatingSummary stores a precomputed aggregate.
func (r *UserRepository) UpdateRatingSummary(ctx context.Context, id string, summary entities.RatingSummary) error {
	return conn(ctx, r.db).Model(&UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":        summary.Average,
			"total_ratings": summary.Count,
		}).Error
}

func toUserModel(user *entities.User) *UserModel {
	var status *string
	if user.WriterStatus != nil {
		s := string(*user.WriterStatus)
		status = &s
	}
	return &UserModel{
		ID:             user.ID,
		GoogleID:       user.GoogleID,
		Email:          user.Email.String(),
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
		Role:           string(user.Role),
		WriterStatus:   status,
		Rating:         user.Rating,
		TotalRatings:   user.TotalRatings,
		WhatsAppNumber: user.WhatsAppNumber,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func toUserEntity(model *UserModel) (*entities.User, error) {
	email, err := valueobjects.NewEmail(model.Email)
	if err != nil {
		return nil, err
	}

	var status *entities.WriterStatus
	if model.WriterStatus != nil {
		s := entities.WriterStatus(*model.WriterStatus)
		status = &s
	}

	return &entities.User{
		ID:             model.ID,
		GoogleID:       model.GoogleID,
		Email:          email,
		Name:           model.Name,
		ProfilePicture: model.ProfilePicture,
		Role:           entities.Role(model.Role),
		WriterStatus:   status,
		Rating:         model.Rating,
		TotalRatings:   model.TotalRatings,
		WhatsAppNumber: model.WhatsAppNumber,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}
