package entities

import (
	"math"
	"strings"
	"time"

	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
)

// RequestStatus is the stored status of an assignment request.
type RequestStatus string

const (
	RequestOpen     RequestStatus = "open"
	RequestAssigned RequestStatus = "assigned"
	// RequestExpired is never stored; it is derived from ExpirationDeadline.
	RequestExpired RequestStatus = "expired"
)

const (
	// RequestLifetime is how long a request stays open for writers.
	RequestLifetime = 7 * 24 * time.Hour
	// CostStep is the granularity estimated costs are rounded to.
	CostStep = 50
	// MaxNumPages and MaxEstimatedCost bound what a request may ask for;
	// both fit the INTEGER columns they are stored in.
	MaxNumPages      = 1000
	MaxEstimatedCost = 1_000_000_000

	MaxCourseNameLength     = 255
	MaxCourseCodeLength     = 50
	MaxAssignmentTypeLength = 100
)

// AssignmentRequest is a client's request for help with an assignment.
type AssignmentRequest struct {
	ID                 string
	ClientID           string
	CourseName         string
	CourseCode         string
	AssignmentType     string
	NumPages           int
	Deadline           time.Time
	EstimatedCost      int
	Status             RequestStatus
	CreatedAt          time.Time
	ExpirationDeadline time.Time
}

// NewRequestParams carries already-parsed request fields.
type NewRequestParams struct {
	ClientID       string
	CourseName     string
	CourseCode     string
	AssignmentType string
	NumPages       int
	Deadline       time.Time
	EstimatedCost  float64
}

// NewAssignmentRequest validates params and builds an open request created at now.
func NewAssignmentRequest(id string, p NewRequestParams, now time.Time) (*AssignmentRequest, error) {
	var fields []domainerrors.FieldError

	required := func(field, value string, max int) string {
		value = strings.TrimSpace(value)
		switch {
		case value == "":
			fields = append(fields, domainerrors.FieldError{Field: field, Tag: "required", Message: "is required"})
		case len([]rune(value)) > max:
			fields = append(fields, domainerrors.FieldError{Field: field, Tag: "max", Message: "is too long"})
		}
		return value
	}

	courseName := required("course_name", p.CourseName, MaxCourseNameLength)
	courseCode := required("course_code", p.CourseCode, MaxCourseCodeLength)
	assignmentType := required("assignment_type", p.AssignmentType, MaxAssignmentTypeLength)

	switch {
	case p.NumPages <= 0:
		fields = append(fields, domainerrors.FieldError{Field: "num_pages", Tag: "gt", Message: "must be greater than 0"})
	case p.NumPages > MaxNumPages:
		fields = append(fields, domainerrors.FieldError{Field: "num_pages", Tag: "lte", Message: "must be at most 1000"})
	}
	switch {
	case p.EstimatedCost < 0 || math.IsNaN(p.EstimatedCost) || math.IsInf(p.EstimatedCost, 0):
		fields = append(fields, domainerrors.FieldError{Field: "estimated_cost", Tag: "gte", Message: "must be a non-negative number"})
	case p.EstimatedCost > MaxEstimatedCost:
		fields = append(fields, domainerrors.FieldError{Field: "estimated_cost", Tag: "lte", Message: "must be at most 1000000000"})
	}
	if p.Deadline.IsZero() {
		fields = append(fields, domainerrors.FieldError{Field: "deadline", Tag: "required", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, domainerrors.Validation(fields...)
	}

	return &AssignmentRequest{
		ID:                 id,
		ClientID:           p.ClientID,
		CourseName:         courseName,
		CourseCode:         courseCode,
		AssignmentType:     assignmentType,
		NumPages:           p.NumPages,
		Deadline:           p.Deadline,
		EstimatedCost:      RoundCost(p.EstimatedCost),
		Status:             RequestOpen,
		CreatedAt:          now,
		ExpirationDeadline: now.Add(RequestLifetime),
	}, nil
}

// RoundCost rounds cost to the nearest multiple of CostStep, halves up.
func RoundCost(cost float64) int {
	return int(math.Floor(cost/CostStep+0.5)) * CostStep
}

// IsExpired reports whether an open request has outlived its expiration deadline.
func (r *AssignmentRequest) IsExpired(now time.Time) bool {
	return r.Status == RequestOpen && !r.ExpirationDeadline.IsZero() && !now.Before(r.ExpirationDeadline)
}

// IsAcceptable reports whether a writer may still accept the request.
func (r *AssignmentRequest) IsAcceptable(now time.Time) bool {
	return r.Status == RequestOpen && !r.IsExpired(now)
}

// DisplayStatus is the status shown to users, with expiry applied.
func (r *AssignmentRequest) DisplayStatus(now time.Time) RequestStatus {
	if r.IsExpired(now) {
		return RequestExpired
	}
	return r.Status
}
