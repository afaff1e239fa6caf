package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/readmodel"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// QueryRepository implements repositories.QueryRepository with joined reads.
// Rows come back flat; readmodel shapes them.
type QueryRepository struct {
	db *gorm.DB
}

// NewQueryRepository creates a QueryRepository.
func NewQueryRepository(db *gorm.DB) repositories.QueryRepository {
	return &QueryRepository{db: db}
}

const requestColumns = `
	r.id AS request_id, r.course_name, r.course_code, r.assignment_type, r.num_pages,
	r.deadline, r.estimated_cost, r.status AS request_status,
	r.created_at AS request_created_at, r.expiration_deadline`

const clientColumns = `
	c.id AS client_id, c.name AS client_name, c.email AS client_email,
	c.profile_picture AS client_picture, c.rating AS client_rating,
	c.total_ratings AS client_total_ratings, c.whatsapp_number AS client_whatsapp`

const writerColumns = `
	w.id AS writer_id, w.name AS writer_name, w.email AS writer_email,
	w.profile_picture AS writer_picture, w.rating AS writer_rating,
	w.total_ratings AS writer_total_ratings, w.whatsapp_number AS writer_whatsapp`

const assignmentColumns = `
	a.id AS assignment_id, a.status AS assignment_status,
	a.created_at AS assignment_created_at, a.completed_at`

const hasRatedColumn = `
	EXISTS (SELECT 1 FROM ratings rt
	        WHERE rt.rater_id = @viewer AND rt.assignment_request_id = r.id) AS has_rated`

// Scan targets are exported so gorm promotes their fields when embedded.
type RequestScan struct {
	RequestID          string
	CourseName         string
	CourseCode         string
	AssignmentType     string
	NumPages           int
	Deadline           time.Time
	EstimatedCost      int
	RequestStatus      string
	RequestCreatedAt   time.Time
	ExpirationDeadline time.Time
}

type ClientScan struct {
	ClientID           *string
	ClientName         *string
	ClientEmail        *string
	ClientPicture      *string
	ClientRating       *float64
	ClientTotalRatings *int
	ClientWhatsapp     *string
}

type WriterScan struct {
	WriterID           *string
	WriterName         *string
	WriterEmail        *string
	WriterPicture      *string
	WriterRating       *float64
	WriterTotalRatings *int
	WriterWhatsapp     *string
}

type assignmentScan struct {
	RequestScan
	ClientScan
	WriterScan
	AssignmentID        *string
	AssignmentStatus    *string
	AssignmentCreatedAt *time.Time
	CompletedAt         *time.Time
	HasRated            bool
}

type openRequestScan struct {
	RequestScan
	ClientScan
}

func (q *QueryRepository) OpenRequests(ctx context.Context, now time.Time) ([]readmodel.OpenRequestRow, error) {
	var scans []openRequestScan
	err := conn(ctx, q.db).Raw(`
		SELECT `+requestColumns+`,`+clientColumns+`
		FROM assignment_requests r
		LEFT JOIN users c ON c.id = r.client_id
		WHERE r.status = @open AND r.expiration_deadline > @now
		ORDER BY r.created_at DESC`,
		map[string]any{"open": string(entities.RequestOpen), "now": now},
	).Scan(&scans).Error
	if err != nil {
		return nil, err
	}

	rows := make([]readmodel.OpenRequestRow, 0, len(scans))
	for _, s := range scans {
		rows = append(rows, readmodel.OpenRequestRow{
			RequestID:          s.RequestID,
			CourseName:         s.CourseName,
			CourseCode:         s.CourseCode,
			AssignmentType:     s.AssignmentType,
			NumPages:           s.NumPages,
			Deadline:           s.Deadline.UTC(),
			EstimatedCost:      s.EstimatedCost,
			RequestStatus:      s.RequestStatus,
			RequestCreatedAt:   s.RequestCreatedAt.UTC(),
			ExpirationDeadline: s.ExpirationDeadline.UTC(),
			Client:             s.ClientScan.row(),
		})
	}
	return rows, nil
}

// ClientAssignments lists the requests a client posted, assigned or not.
func (q *QueryRepository) ClientAssignments(ctx context.Context, clientID string) ([]readmodel.AssignmentRow, error) {
	return q.assignments(ctx, `
		SELECT `+requestColumns+`,`+assignmentColumns+`,`+clientColumns+`,`+writerColumns+`,`+hasRatedColumn+`
		FROM assignment_requests r
		LEFT JOIN assignments a ON a.request_id = r.id
		LEFT JOIN users c ON c.id = r.client_id
		LEFT JOIN users w ON w.id = a.writer_id
		WHERE r.client_id = @viewer
		ORDER BY r.created_at DESC`, clientID)
}

// WriterAssignments lists the work a writer accepted.
func (q *QueryRepository) WriterAssignments(ctx context.Context, writerID string) ([]readmodel.AssignmentRow, error) {
	return q.assignments(ctx, `
		SELECT `+requestColumns+`,`+assignmentColumns+`,`+clientColumns+`,`+writerColumns+`,`+hasRatedColumn+`
		FROM assignments a
		JOIN assignment_requests r ON r.id = a.request_id
		LEFT JOIN users c ON c.id = r.client_id
		LEFT JOIN users w ON w.id = a.writer_id
		WHERE a.writer_id = @viewer
		ORDER BY a.created_at DESC`, writerID)
}

func (q *QueryRepository) assignments(ctx context.Context, query, viewerID string) ([]readmodel.AssignmentRow, error) {
	var scans []assignmentScan
	if err := conn(ctx, q.db).Raw(query, map[string]any{"viewer": viewerID}).Scan(&scans).Error; err != nil {
		return nil, err
	}

	rows := make([]readmodel.AssignmentRow, 0, len(scans))
	for _, s := range scans {
		row := readmodel.AssignmentRow{
			RequestID:           s.RequestID,
			CourseName:          s.CourseName,
			CourseCode:          s.CourseCode,
			AssignmentType:      s.AssignmentType,
			NumPages:            s.NumPages,
			Deadline:            s.Deadline.UTC(),
			EstimatedCost:       s.EstimatedCost,
			RequestStatus:       s.RequestStatus,
			RequestCreatedAt:    s.RequestCreatedAt.UTC(),
			ExpirationDeadline:  s.ExpirationDeadline.UTC(),
			AssignmentID:        s.AssignmentID,
			AssignmentStatus:    s.AssignmentStatus,
			AssignmentCreatedAt: utcPtr(s.AssignmentCreatedAt),
			CompletedAt:         utcPtr(s.CompletedAt),
			Client:              s.ClientScan.row(),
			Writer:              s.WriterScan.row(),
			HasRated:            s.HasRated,
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type writerRowScan struct {
	ID                   string
	Name                 string
	Email                string
	ProfilePicture       string
	WriterStatus         *string
	Rating               float64
	TotalRatings         int
	PortfolioImage       *string
	PortfolioDescription *string
	PortfolioUpdatedAt   *time.Time
}

func (q *QueryRepository) writerQuery(ctx context.Context) *gorm.DB {
	return conn(ctx, q.db).Table("users u").
		Select(`u.id, u.name, u.email, u.profile_picture, u.writer_status, u.rating, u.total_ratings,
			p.sample_work_image AS portfolio_image, p.description AS portfolio_description,
			p.updated_at AS portfolio_updated_at`).
		Joins("LEFT JOIN writer_portfolios p ON p.writer_id = u.id").
		Where("u.role = ?", string(entities.RoleWriter))
}

func (q *QueryRepository) Writers(ctx context.Context, filters repositories.WriterFilters) ([]readmodel.WriterRow, error) {
	query := q.writerQuery(ctx)
	if filters.Status != nil {
		query = query.Where("u.writer_status = ?", string(*filters.Status))
	}

	var scans []writerRowScan
	if err := query.Order("u.rating DESC, u.total_ratings DESC, u.name ASC").Scan(&scans).Error; err != nil {
		return nil, err
	}

	rows := make([]readmodel.WriterRow, 0, len(scans))
	for _, s := range scans {
		rows = append(rows, s.row())
	}
	return rows, nil
}

func (q *QueryRepository) Writer(ctx context.Context, id string) (*readmodel.WriterRow, error) {
	var scans []writerRowScan
	if err := q.writerQuery(ctx).Where("u.id = ?", id).Limit(1).Scan(&scans).Error; err != nil {
		return nil, err
	}
	if len(scans) == 0 {
		return nil, nil
	}
	row := scans[0].row()
	return &row, nil
}

func (q *QueryRepository) RatingsReceived(ctx context.Context, ratedID string, limit int) ([]readmodel.RatingRow, error) {
	var scans []struct {
		ID                  string
		Rating              int
		Comment             string
		AssignmentRequestID string
		RaterID             string
		RaterName           string
		RaterPicture        string
		CreatedAt           time.Time
		UpdatedAt           time.Time
	}
	query := conn(ctx, q.db).Table("ratings rt").
		Select(`rt.id, rt.rating, rt.comment, rt.assignment_request_id, rt.rater_id,
			u.name AS rater_name, u.profile_picture AS rater_picture, rt.created_at, rt.updated_at`).
		Joins("JOIN users u ON u.id = rt.rater_id").
		Where("rt.rated_id = ?", ratedID).
		Order("rt.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&scans).Error; err != nil {
		return nil, err
	}

	rows := make([]readmodel.RatingRow, 0, len(scans))
	for _, s := range scans {
		rows = append(rows, readmodel.RatingRow{
			ID:                  s.ID,
			Score:               s.Rating,
			Comment:             s.Comment,
			AssignmentRequestID: s.AssignmentRequestID,
			RaterID:             s.RaterID,
			RaterName:           s.RaterName,
			RaterPicture:        s.RaterPicture,
			CreatedAt:           s.CreatedAt.UTC(),
			UpdatedAt:           s.UpdatedAt.UTC(),
		})
	}
	return rows, nil
}

func (s ClientScan) row() readmodel.UserRow {
	return readmodel.UserRow{
		ID:             s.ClientID,
		Name:           s.ClientName,
		Email:          s.ClientEmail,
		ProfilePicture: s.ClientPicture,
		Rating:         s.ClientRating,
		TotalRatings:   s.ClientTotalRatings,
		WhatsAppNumber: s.ClientWhatsapp,
	}
}

func (s WriterScan) row() readmodel.UserRow {
	return readmodel.UserRow{
		ID:             s.WriterID,
		Name:           s.WriterName,
		Email:          s.WriterEmail,
		ProfilePicture: s.WriterPicture,
		Rating:         s.WriterRating,
		TotalRatings:   s.WriterTotalRatings,
		WhatsAppNumber: s.WriterWhatsapp,
	}
}

func (s writerRowScan) row() readmodel.WriterRow {
	return readmodel.WriterRow{
		ID:                   s.ID,
		Name:                 s.Name,
		Email:                s.Email,
		ProfilePicture:       s.ProfilePicture,
		WriterStatus:         s.WriterStatus,
		Rating:               s.Rating,
		TotalRatings:         s.TotalRatings,
		PortfolioImage:       s.PortfolioImage,
		PortfolioDescription: s.PortfolioDescription,
		PortfolioUpdatedAt:   utcPtr(s.PortfolioUpdatedAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
