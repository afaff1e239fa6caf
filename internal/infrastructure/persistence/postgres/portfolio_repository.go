package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// PortfolioRepository implements repositories.PortfolioRepository.
type PortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a PortfolioRepository.
func NewPortfolioRepository(db *gorm.DB) repositories.PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) FindByWriterID(ctx context.Context, writerID string) (*entities.WriterPortfolio, error) {
	var m WriterPortfolioModel
	if err := conn(ctx, r.db).Where("writer_id = ?", writerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entities.WriterPortfolio{
		WriterID:        m.WriterID,
		SampleWorkImage: m.SampleWorkImage,
		Description:     m.Description,
		UpdatedAt:       m.UpdatedAt.UTC(),
	}, nil
}

// Upsert inserts or replaces the writer's portfolio.
func (r *PortfolioRepository) Upsert(ctx context.Context, p *entities.WriterPortfolio) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "writer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sample_work_image", "description", "updated_at"}),
	}).Create(&WriterPortfolioModel{
		WriterID:        p.WriterID,
		SampleWorkImage: p.SampleWorkImage,
		Description:     p.Description,
		UpdatedAt:       p.UpdatedAt,
	}).Error
}
