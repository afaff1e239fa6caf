package services

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// Repositories bundles the persistence ports the services depend on.
type Repositories struct {
	Users       repositories.UserRepository
	Requests    repositories.AssignmentRequestRepository
	Assignments repositories.AssignmentRepository
	Ratings     repositories.RatingRepository
	Portfolios  repositories.PortfolioRepository
	Queries     repositories.QueryRepository
}

// Option customizes a service.
type Option func(*base)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.clock = now
	}
}

// WithEvents sets the publisher lifecycle events go to.
func WithEvents(events ports.EventPublisher) Option {
	return func(b *base) {
		b.events = events
	}
}

// base holds what every service shares.
type base struct {
	logger ports.Logger
	events ports.EventPublisher
	clock  func() time.Time
}

func newBase(logger ports.Logger, opts []Option) base {
	b := base{
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) now() time.Time {
	return b.clock().UTC()
}

// publish delivers an event after commit. Failures are logged, never returned.
func (b *base) publish(ctx context.Context, event ports.Event) {
	if b.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now()
	}
	if err := b.events.Publish(ctx, event); err != nil {
		b.logger.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}

var strictPolicy = bluemonday.StrictPolicy()

// plainText strips any markup from user input and returns readable text.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// isID reports whether s is a canonical UUID, the only form primary keys take.
func isID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
