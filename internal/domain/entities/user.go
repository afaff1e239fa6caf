package entities

import (
	"time"

	"github.com/writify/writify-backend/internal/domain/valueobjects"
)

// User is a marketplace member, created on first Google login.
type User struct {
	ID             string
	GoogleID       string
	Email          valueobjects.Email
	Name           string
	ProfilePicture string
	Role           Role
	WriterStatus   *WriterStatus // nil unless Role is writer
	Rating         float64
	TotalRatings   int
	WhatsAppNumber *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsWriter reports whether the user offers to write assignments.
func (u *User) IsWriter() bool {
	return u.Role == RoleWriter
}

// ActsAsClient reports whether the user may post requests.
func (u *User) ActsAsClient() bool {
	return u.Role.ActsAsClient()
}

// ChangeRole switches the role and keeps WriterStatus consistent with it:
// becoming a writer starts as active, leaving the writer role clears it.
func (u *User) ChangeRole(role Role) {
	u.Role = role
	if role == RoleWriter {
		if u.WriterStatus == nil {
			status := WriterActive
			u.WriterStatus = &status
		}
		return
	}
	u.WriterStatus = nil
}

// SetWriterStatus changes availability. Only meaningful for writers.
func (u *User) SetWriterStatus(status WriterStatus) {
	u.WriterStatus = &status
}

// ApplyRatingSummary copies the aggregate computed over the user's ratings.
func (u *User) ApplyRatingSummary(s RatingSummary) {
	u.Rating = s.Average
	u.TotalRatings = s.Count
}
