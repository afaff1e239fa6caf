// Package messaging delivers lifecycle events outside the process.
package messaging

import (
	"context"
	"errors"

	"github.com/writify/writify-backend/internal/domain/ports"
)

// FanOut publishes every event to each of its publishers and joins their errors.
type FanOut []ports.EventPublisher

func (f FanOut) Publish(ctx context.Context, event ports.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, ports.Event) error { return nil }
