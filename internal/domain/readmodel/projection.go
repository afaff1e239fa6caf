package readmodel

import (
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
)

// Perspective is the side of an assignment a viewer is on.
type Perspective int

const (
	PerspectiveClient Perspective = iota
	PerspectiveWriter
)

// PerspectiveFor maps a role to its listing perspective. Students see the client view.
func PerspectiveFor(role entities.Role) Perspective {
	if role == entities.RoleWriter {
		return PerspectiveWriter
	}
	return PerspectiveClient
}

// MarkdownRenderer renders user-authored markdown to safe HTML.
type MarkdownRenderer func(src string) string

// ProjectMyAssignments reshapes rows for a viewer with the given perspective.
func ProjectMyAssignments(p Perspective, rows []AssignmentRow, now time.Time) []MyAssignment {
	out := make([]MyAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, projectAssignment(p, row, now))
	}
	return out
}

func projectAssignment(p Perspective, row AssignmentRow, now time.Time) MyAssignment {
	item := MyAssignment{
		ID:                 row.RequestID,
		CourseName:         row.CourseName,
		CourseCode:         row.CourseCode,
		AssignmentType:     row.AssignmentType,
		NumPages:           row.NumPages,
		Deadline:           row.Deadline,
		EstimatedCost:      row.EstimatedCost,
		Status:             requestStatus(row.RequestStatus, row.ExpirationDeadline, now),
		CreatedAt:          row.RequestCreatedAt,
		ExpirationDeadline: row.ExpirationDeadline,
		Client:             projectUser(row.Client),
		Writer:             projectUser(row.Writer),
	}

	if row.AssignmentID != nil {
		item.Assignment = &AssignmentSummary{
			ID:          *row.AssignmentID,
			Status:      deref(row.AssignmentStatus),
			CreatedAt:   row.AssignmentCreatedAt,
			CompletedAt: row.CompletedAt,
		}
	}

	hasRated := row.HasRated
	switch p {
	case PerspectiveClient:
		item.HasRatedWriter = &hasRated
	case PerspectiveWriter:
		item.HasRatedClient = &hasRated
	}

	return item
}

// ProjectOpenRequests reshapes open request rows. Client contact details are withheld.
func ProjectOpenRequests(rows []OpenRequestRow, now time.Time) []OpenRequest {
	out := make([]OpenRequest, 0, len(rows))
	for _, row := range rows {
		client := projectUser(row.Client)
		if client != nil {
			client.WhatsAppNumber = nil
			client.Email = ""
		}
		out = append(out, OpenRequest{
			ID:                 row.RequestID,
			CourseName:         row.CourseName,
			CourseCode:         row.CourseCode,
			AssignmentType:     row.AssignmentType,
			NumPages:           row.NumPages,
			Deadline:           row.Deadline,
			EstimatedCost:      row.EstimatedCost,
			Status:             requestStatus(row.RequestStatus, row.ExpirationDeadline, now),
			CreatedAt:          row.RequestCreatedAt,
			ExpirationDeadline: row.ExpirationDeadline,
			Client:             client,
		})
	}
	return out
}

// ProjectWriter reshapes a writer row; render turns the portfolio description into HTML.
func ProjectWriter(row WriterRow, render MarkdownRenderer) Writer {
	w := Writer{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		ProfilePicture: row.ProfilePicture,
		WriterStatus:   row.WriterStatus,
		Rating:         row.Rating,
		TotalRatings:   row.TotalRatings,
	}
	if row.PortfolioImage != nil || row.PortfolioDescription != nil {
		desc := deref(row.PortfolioDescription)
		w.Portfolio = &Portfolio{
			SampleWorkImage: deref(row.PortfolioImage),
			Description:     desc,
			UpdatedAt:       row.PortfolioUpdatedAt,
		}
		if render != nil && desc != "" {
			w.Portfolio.DescriptionHTML = render(desc)
		}
	}
	return w
}

// ProjectWriters reshapes a list of writer rows.
func ProjectWriters(rows []WriterRow, render MarkdownRenderer) []Writer {
	out := make([]Writer, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProjectWriter(row, render))
	}
	return out
}

// ProjectRatings reshapes received ratings.
func ProjectRatings(rows []RatingRow) []RatingView {
	out := make([]RatingView, 0, len(rows))
	for _, row := range rows {
		out = append(out, RatingView{
			ID:                  row.ID,
			Rating:              row.Score,
			Comment:             row.Comment,
			AssignmentRequestID: row.AssignmentRequestID,
			Rater: &UserSummary{
				ID:             row.RaterID,
				Name:           row.RaterName,
				ProfilePicture: row.RaterPicture,
			},
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out
}

func projectUser(u UserRow) *UserSummary {
	if u.ID == nil {
		return nil
	}
	s := &UserSummary{
		ID:             *u.ID,
		Name:           deref(u.Name),
		Email:          deref(u.Email),
		ProfilePicture: deref(u.ProfilePicture),
		WhatsAppNumber: u.WhatsAppNumber,
	}
	if u.Rating != nil {
		s.Rating = *u.Rating
	}
	if u.TotalRatings != nil {
		s.TotalRatings = *u.TotalRatings
	}
	return s
}

func requestStatus(status string, expiration time.Time, now time.Time) string {
	if status == string(entities.RequestOpen) && !expiration.IsZero() && !now.Before(expiration) {
		return string(entities.RequestExpired)
	}
	return status
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
