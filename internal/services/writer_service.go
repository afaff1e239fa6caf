package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/readmodel"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

const writerRecentRatings = 10

// WriterService serves the writer board.
type WriterService struct {
	base
	queries repositories.QueryRepository
	render  readmodel.MarkdownRenderer
}

// NewWriterService creates a WriterService. render turns portfolio markdown into safe HTML.
func NewWriterService(queries repositories.QueryRepository, render readmodel.MarkdownRenderer, logger ports.Logger, opts ...Option) *WriterService {
	return &WriterService{
		base:    newBase(logger, opts),
		queries: queries,
		render:  render,
	}
}

// List returns writers, optionally only those with the given status.
func (s *WriterService) List(ctx context.Context, status string) ([]readmodel.Writer, error) {
	var filters repositories.WriterFilters
	if status = strings.TrimSpace(status); status != "" {
		ws := entities.WriterStatus(status)
		if !ws.IsValid() {
			return nil, domainerrors.Validation(domainerrors.FieldError{
				Field: "status", Tag: "oneof", Message: "must be active, busy or inactive",
			})
		}
		filters.Status = &ws
	}

	rows, err := s.queries.Writers(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list writers: %w", err)
	}
	return readmodel.ProjectWriters(rows, s.render), nil
}

// Get returns one writer with portfolio and recent ratings.
func (s *WriterService) Get(ctx context.Context, id string) (*readmodel.Writer, error) {
	if !isID(id) {
		return nil, domainerrors.ErrWriterNotFound
	}
	row, err := s.queries.Writer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find writer: %w", err)
	}
	if row == nil {
		return nil, domainerrors.ErrWriterNotFound
	}

	ratings, err := s.queries.RatingsReceived(ctx, id, writerRecentRatings)
	if err != nil {
		return nil, fmt.Errorf("list writer ratings: %w", err)
	}

	writer := readmodel.ProjectWriter(*row, s.render)
	writer.RecentRatings = readmodel.ProjectRatings(ratings)
	return &writer, nil
}
