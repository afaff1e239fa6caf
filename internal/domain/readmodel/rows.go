// Package readmodel turns flat joined rows into the nested shapes the API returns.
// Everything here is pure: no database access, no clock beyond the one passed in.
package readmodel

import "time"

// UserRow is the flattened columns of one user side of a join.
// All fields are pointers because the side may be missing (LEFT JOIN).
type UserRow struct {
	ID             *string
	Name           *string
	Email          *string
	ProfilePicture *string
	Rating         *float64
	TotalRatings   *int
	WhatsAppNumber *string
}

// AssignmentRow is one request joined with its assignment (optional),
// its client and its writer (optional), as seen by a viewer.
type AssignmentRow struct {
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

	AssignmentID        *string
	AssignmentStatus    *string
	AssignmentCreatedAt *time.Time
	CompletedAt         *time.Time

	Client UserRow
	Writer UserRow

	// HasRated is whether the viewer already rated the counterpart on this request.
	HasRated bool
}

// OpenRequestRow is an open request joined with its client.
type OpenRequestRow struct {
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
	Client             UserRow
}

// WriterRow is a writer joined with an optional portfolio.
type WriterRow struct {
	ID             string
	Name           string
	Email          string
	ProfilePicture string
	WriterStatus   *string
	Rating         float64
	TotalRatings   int

	PortfolioImage       *string
	PortfolioDescription *string
	PortfolioUpdatedAt   *time.Time
}

// RatingRow is a rating joined with its rater.
type RatingRow struct {
	ID                  string
	Score               int
	Comment             string
	AssignmentRequestID string
	RaterID             string
	RaterName           string
	RaterPicture        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
