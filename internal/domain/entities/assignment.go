package entities

import "time"

// AssignmentStatus is the progress of accepted work.
type AssignmentStatus string

const (
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

// Assignment is the work unit created when a writer accepts a request.
type Assignment struct {
	ID          string
	RequestID   string
	WriterID    string
	ClientID    string
	Status      AssignmentStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewAssignment starts in-progress work on request for writerID.
func NewAssignment(id string, request *AssignmentRequest, writerID string, now time.Time) *Assignment {
	return &Assignment{
		ID:        id,
		RequestID: request.ID,
		WriterID:  writerID,
		ClientID:  request.ClientID,
		Status:    AssignmentInProgress,
		CreatedAt: now,
	}
}

// Complete marks the assignment completed. It reports false when it already was,
// in which case the original completion time is kept.
func (a *Assignment) Complete(now time.Time) bool {
	if a.Status == AssignmentCompleted {
		return false
	}
	a.Status = AssignmentCompleted
	a.CompletedAt = &now
	return true
}

// IsParty reports whether userID is the client or the writer of the assignment.
func (a *Assignment) IsParty(userID string) bool {
	return userID == a.ClientID || userID == a.WriterID
}

// Counterpart returns the other party of the assignment.
func (a *Assignment) Counterpart(userID string) string {
	if userID == a.ClientID {
		return a.WriterID
	}
	return a.ClientID
}
