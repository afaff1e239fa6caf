package ports

import (
	"context"
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
)

// Event types published after a lifecycle change commits.
const (
	EventRequestCreated      = "request.created"
	EventRequestAssigned     = "request.assigned"
	EventAssignmentCompleted = "assignment.completed"
	EventRatingSubmitted     = "rating.submitted"
	EventRoleChanged         = "user.role_changed"
)

// RoleChange is the payload of user.role_changed.
type RoleChange struct {
	UserID string        `json:"user_id"`
	Role   entities.Role `json:"role"`
}

// Audience selects who receives an event on the realtime feed.
// An empty audience reaches nobody.
type Audience struct {
	UserIDs []string
	Roles   []entities.Role
}

// Includes reports whether a connected user belongs to the audience.
func (a Audience) Includes(userID string, role entities.Role) bool {
	for _, id := range a.UserIDs {
		if id == userID {
			return true
		}
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Event is a lifecycle notification.
type Event struct {
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
	Audience   Audience  `json:"-"`
}

// EventPublisher delivers events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
