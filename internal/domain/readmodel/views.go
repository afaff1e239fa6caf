package readmodel

import "time"

// UserSummary is the nested user object inside listings.
type UserSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	ProfilePicture string  `json:"profile_picture,omitempty"`
	Rating         float64 `json:"rating"`
	TotalRatings   int     `json:"total_ratings"`
	WhatsAppNumber *string `json:"whatsapp_number,omitempty"`
}

// AssignmentSummary is the nested assignment object.
type AssignmentSummary struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at"`
}

// MyAssignment is one entry of the role-dispatched "my assignments" listing.
// Exactly one of HasRatedWriter (client view) and HasRatedClient (writer view) is set.
type MyAssignment struct {
	ID                 string             `json:"id"`
	CourseName         string             `json:"course_name"`
	CourseCode         string             `json:"course_code"`
	AssignmentType     string             `json:"assignment_type"`
	NumPages           int                `json:"num_pages"`
	Deadline           time.Time          `json:"deadline"`
	EstimatedCost      int                `json:"estimated_cost"`
	Status             string             `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
	ExpirationDeadline time.Time          `json:"expiration_deadline"`
	Assignment         *AssignmentSummary `json:"assignment"`
	Client             *UserSummary       `json:"client"`
	Writer             *UserSummary       `json:"writer"`
	HasRatedWriter     *bool              `json:"has_rated_writer,omitempty"`
	HasRatedClient     *bool              `json:"has_rated_client,omitempty"`
}

// OpenRequest is one entry of the open request board.
type OpenRequest struct {
	ID                 string       `json:"id"`
	CourseName         string       `json:"course_name"`
	CourseCode         string       `json:"course_code"`
	AssignmentType     string       `json:"assignment_type"`
	NumPages           int          `json:"num_pages"`
	Deadline           time.Time    `json:"deadline"`
	EstimatedCost      int          `json:"estimated_cost"`
	Status             string       `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	ExpirationDeadline time.Time    `json:"expiration_deadline"`
	Client             *UserSummary `json:"client"`
}

// Portfolio is the nested portfolio object of a writer.
type Portfolio struct {
	SampleWorkImage string     `json:"sample_work_image"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Writer is a writer with portfolio, as shown on the writer board.
type Writer struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	ProfilePicture string       `json:"profile_picture"`
	WriterStatus   *string      `json:"writer_status"`
	Rating         float64      `json:"rating"`
	TotalRatings   int          `json:"total_ratings"`
	Portfolio      *Portfolio   `json:"portfolio"`
	RecentRatings  []RatingView `json:"recent_ratings,omitempty"`
}

// RatingView is a received rating with its rater.
type RatingView struct {
	ID                  string       `json:"id"`
	Rating              int          `json:"rating"`
	Comment             string       `json:"comment"`
	AssignmentRequestID string       `json:"assignment_request_id"`
	Rater               *UserSummary `json:"rater"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}
