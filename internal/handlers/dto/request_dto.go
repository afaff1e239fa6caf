package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/services"
)

// NumericString accepts a JSON number or a JSON string and keeps its text.
// Parsing happens in the service so both forms validate identically.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return errors.New("must be a number or a numeric string")
		}
		*n = NumericString(num.String())
	}
	return nil
}

// CreateAssignmentRequestRequest is the body of POST /api/assignment-requests.
type CreateAssignmentRequestRequest struct {
	CourseName     string        `json:"course_name" binding:"required"`
	CourseCode     string        `json:"course_code" binding:"required"`
	AssignmentType string        `json:"assignment_type" binding:"required"`
	NumPages       NumericString `json:"num_pages" binding:"required"`
	Deadline       string        `json:"deadline" binding:"required"`
	EstimatedCost  NumericString `json:"estimated_cost" binding:"required"`
}

// ToInput converts the body to service input.
func (r CreateAssignmentRequestRequest) ToInput() services.CreateRequestInput {
	return services.CreateRequestInput{
		CourseName:     r.CourseName,
		CourseCode:     r.CourseCode,
		AssignmentType: r.AssignmentType,
		NumPages:       string(r.NumPages),
		Deadline:       r.Deadline,
		EstimatedCost:  string(r.EstimatedCost),
	}
}

// AssignmentRequestResponse is a stored request.
type AssignmentRequestResponse struct {
	ID                 string    `json:"id"`
	ClientID           string    `json:"client_id"`
	CourseName         string    `json:"course_name"`
	CourseCode         string    `json:"course_code"`
	AssignmentType     string    `json:"assignment_type"`
	NumPages           int       `json:"num_pages"`
	Deadline           time.Time `json:"deadline"`
	EstimatedCost      int       `json:"estimated_cost"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	ExpirationDeadline time.Time `json:"expiration_deadline"`
}

func ToAssignmentRequestResponse(r *entities.AssignmentRequest) AssignmentRequestResponse {
	return AssignmentRequestResponse{
		ID:                 r.ID,
		ClientID:           r.ClientID,
		CourseName:         r.CourseName,
		CourseCode:         r.CourseCode,
		AssignmentType:     r.AssignmentType,
		NumPages:           r.NumPages,
		Deadline:           r.Deadline,
		EstimatedCost:      r.EstimatedCost,
		Status:             string(r.Status),
		CreatedAt:          r.CreatedAt,
		ExpirationDeadline: r.ExpirationDeadline,
	}
}

// AssignmentResponse is a stored assignment.
type AssignmentResponse struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"request_id"`
	WriterID    string     `json:"writer_id"`
	ClientID    string     `json:"client_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func ToAssignmentResponse(a *entities.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          a.ID,
		RequestID:   a.RequestID,
		WriterID:    a.WriterID,
		ClientID:    a.ClientID,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
}

// ClientContact is how a writer reaches the client after accepting.
type ClientContact struct {
	Name           string  `json:"name"`
	WhatsAppNumber *string `json:"whatsapp_number"`
}

// AcceptResponse is returned when a writer accepts a request.
type AcceptResponse struct {
	Message    string                    `json:"message"`
	Request    AssignmentRequestResponse `json:"request"`
	Assignment AssignmentResponse        `json:"assignment"`
	Client     ClientContact             `json:"client"`
}

func ToAcceptResponse(message string, r *services.AcceptResult) AcceptResponse {
	return AcceptResponse{
		Message:    message,
		Request:    ToAssignmentRequestResponse(r.Request),
		Assignment: ToAssignmentResponse(r.Assignment),
		Client: ClientContact{
			Name:           r.ClientName,
			WhatsAppNumber: r.ClientWhatsApp,
		},
	}
}

// SubmitRatingRequest is the body of POST /api/ratings.
type SubmitRatingRequest struct {
	RatedID             string        `json:"rated_id" binding:"required"`
	AssignmentRequestID string        `json:"assignment_request_id" binding:"required"`
	Rating              NumericString `json:"rating" binding:"required"`
	Comment             string        `json:"comment"`
}

// ToInput converts the body to service input. A rating that is not a whole
// number becomes 0 and fails range validation.
func (r SubmitRatingRequest) ToInput() services.SubmitRatingInput {
	score, err := strconv.Atoi(string(r.Rating))
	if err != nil {
		score = 0
	}
	return services.SubmitRatingInput{
		RatedID:             r.RatedID,
		AssignmentRequestID: r.AssignmentRequestID,
		Rating:              score,
		Comment:             r.Comment,
	}
}

// RatingResponse is a stored rating.
type RatingResponse struct {
	ID                  string    `json:"id"`
	RaterID             string    `json:"rater_id"`
	RatedID             string    `json:"rated_id"`
	Rating              int       `json:"rating"`
	Comment             string    `json:"comment"`
	AssignmentRequestID string    `json:"assignment_request_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SubmitRatingResponse reports the stored rating and the rated user's new aggregate.
type SubmitRatingResponse struct {
	Message             string         `json:"message"`
	Rating              RatingResponse `json:"rating"`
	Updated             bool           `json:"updated"`
	AverageRating       float64        `json:"average_rating"`
	TotalRatings        int            `json:"total_ratings"`
	AssignmentCompleted bool           `json:"assignment_completed"`
}

func ToSubmitRatingResponse(message string, r *services.SubmitResult) SubmitRatingResponse {
	return SubmitRatingResponse{
		Message: message,
		Rating: RatingResponse{
			ID:                  r.Rating.ID,
			RaterID:             r.Rating.RaterID,
			RatedID:             r.Rating.RatedID,
			Rating:              r.Rating.Score,
			Comment:             r.Rating.Comment,
			AssignmentRequestID: r.Rating.AssignmentRequestID,
			CreatedAt:           r.Rating.CreatedAt,
			UpdatedAt:           r.Rating.UpdatedAt,
		},
		Updated:             r.Updated,
		AverageRating:       r.Summary.Average,
		TotalRatings:        r.Summary.Count,
		AssignmentCompleted: r.AssignmentCompleted,
	}
}
