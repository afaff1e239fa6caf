package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/readmodel"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// QueryRepository implements repositories.QueryRepository with the same
// ordering the SQL queries use.
type QueryRepository struct{ s *Store }

func (q *QueryRepository) OpenRequests(_ context.Context, now time.Time) ([]readmodel.OpenRequestRow, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var out []readmodel.OpenRequestRow
	for _, req := range q.requestsNewestFirst(func(r entities.AssignmentRequest) bool {
		return r.Status == entities.RequestOpen && now.Before(r.ExpirationDeadline)
	}) {
		out = append(out, readmodel.OpenRequestRow{
			RequestID:          req.ID,
			CourseName:         req.CourseName,
			CourseCode:         req.CourseCode,
			AssignmentType:     req.AssignmentType,
			NumPages:           req.NumPages,
			Deadline:           req.Deadline,
			EstimatedCost:      req.EstimatedCost,
			RequestStatus:      string(req.Status),
			RequestCreatedAt:   req.CreatedAt,
			ExpirationDeadline: req.ExpirationDeadline,
			Client:             q.userRow(req.ClientID),
		})
	}
	return out, nil
}

func (q *QueryRepository) ClientAssignments(_ context.Context, clientID string) ([]readmodel.AssignmentRow, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var out []readmodel.AssignmentRow
	for _, req := range q.requestsNewestFirst(func(r entities.AssignmentRequest) bool {
		return r.ClientID == clientID
	}) {
		out = append(out, q.assignmentRow(req, clientID))
	}
	return out, nil
}

func (q *QueryRepository) WriterAssignments(_ context.Context, writerID string) ([]readmodel.AssignmentRow, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var mine []entities.Assignment
	for _, a := range q.s.assignments {
		if a.WriterID == writerID {
			mine = append(mine, a)
		}
	}
	slices.SortFunc(mine, func(a, b entities.Assignment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	out := make([]readmodel.AssignmentRow, 0, len(mine))
	for _, a := range mine {
		req, ok := q.s.requests[a.RequestID]
		if !ok {
			continue
		}
		out = append(out, q.assignmentRow(req, writerID))
	}
	return out, nil
}

func (q *QueryRepository) Writers(_ context.Context, filters repositories.WriterFilters) ([]readmodel.WriterRow, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var writers []entities.User
	for _, u := range q.s.users {
		if !u.IsWriter() {
			continue
		}
		if filters.Status != nil && (u.WriterStatus == nil || *u.WriterStatus != *filters.Status) {
			continue
		}
		writers = append(writers, u)
	}
	slices.SortFunc(writers, func(a, b entities.User) int {
		switch {
		case a.Rating != b.Rating:
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		case a.TotalRatings != b.TotalRatings:
			return b.TotalRatings - a.TotalRatings
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})

	out := make([]readmodel.WriterRow, 0, len(writers))
	for _, u := range writers {
		out = append(out, q.writerRow(u))
	}
	return out, nil
}

func (q *QueryRepository) Writer(_ context.Context, id string) (*readmodel.WriterRow, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	u, ok := q.s.users[id]
	if !ok || !u.IsWriter() {
		return nil, nil
	}
	row := q.writerRow(u)
	return &row, nil
}

func (q *QueryRepository) RatingsReceived(_ context.Context, ratedID string, limit int) ([]readmodel.RatingRow, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var received []entities.Rating
	for _, rt := range q.s.ratings {
		if rt.RatedID == ratedID {
			received = append(received, rt)
		}
	}
	slices.SortFunc(received, func(a, b entities.Rating) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(received) > limit {
		received = received[:limit]
	}

	out := make([]readmodel.RatingRow, 0, len(received))
	for _, rt := range received {
		rater := q.s.users[rt.RaterID]
		out = append(out, readmodel.RatingRow{
			ID:                  rt.ID,
			Score:               rt.Score,
			Comment:             rt.Comment,
			AssignmentRequestID: rt.AssignmentRequestID,
			RaterID:             rt.RaterID,
			RaterName:           rater.Name,
			RaterPicture:        rater.ProfilePicture,
			CreatedAt:           rt.CreatedAt,
			UpdatedAt:           rt.UpdatedAt,
		})
	}
	return out, nil
}

// requestsNewestFirst must be called with the read lock held.
func (q *QueryRepository) requestsNewestFirst(keep func(entities.AssignmentRequest) bool) []entities.AssignmentRequest {
	var out []entities.AssignmentRequest
	for _, r := range q.s.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b entities.AssignmentRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (q *QueryRepository) assignmentRow(req entities.AssignmentRequest, viewerID string) readmodel.AssignmentRow {
	row := readmodel.AssignmentRow{
		RequestID:          req.ID,
		CourseName:         req.CourseName,
		CourseCode:         req.CourseCode,
		AssignmentType:     req.AssignmentType,
		NumPages:           req.NumPages,
		Deadline:           req.Deadline,
		EstimatedCost:      req.EstimatedCost,
		RequestStatus:      string(req.Status),
		RequestCreatedAt:   req.CreatedAt,
		ExpirationDeadline: req.ExpirationDeadline,
		Client:             q.userRow(req.ClientID),
	}

	for _, a := range q.s.assignments {
		if a.RequestID != req.ID {
			continue
		}
		id, status, created := a.ID, string(a.Status), a.CreatedAt
		row.AssignmentID = &id
		row.AssignmentStatus = &status
		row.AssignmentCreatedAt = &created
		row.CompletedAt = a.CompletedAt
		row.Writer = q.userRow(a.WriterID)
		break
	}

	for _, rt := range q.s.ratings {
		if rt.RaterID == viewerID && rt.AssignmentRequestID == req.ID {
			row.HasRated = true
			break
		}
	}
	return row
}

func (q *QueryRepository) userRow(id string) readmodel.UserRow {
	u, ok := q.s.users[id]
	if !ok {
		return readmodel.UserRow{}
	}
	email := u.Email.String()
	return readmodel.UserRow{
		ID:             &u.ID,
		Name:           &u.Name,
		Email:          &email,
		ProfilePicture: &u.ProfilePicture,
		Rating:         &u.Rating,
		TotalRatings:   &u.TotalRatings,
		WhatsAppNumber: u.WhatsAppNumber,
	}
}

func (q *QueryRepository) writerRow(u entities.User) readmodel.WriterRow {
	row := readmodel.WriterRow{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email.String(),
		ProfilePicture: u.ProfilePicture,
		Rating:         u.Rating,
		TotalRatings:   u.TotalRatings,
	}
	if u.WriterStatus != nil {
		status := string(*u.WriterStatus)
		row.WriterStatus = &status
	}
	if p, ok := q.s.portfolios[u.ID]; ok {
		row.PortfolioImage = &p.SampleWorkImage
		row.PortfolioDescription = &p.Description
		row.PortfolioUpdatedAt = &p.UpdatedAt
	}
	return row
}
