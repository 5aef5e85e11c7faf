// ABOUTME: Notifier interface for operator alerts about detected leads
// ABOUTME: Includes a fan-out notifier that delivers to every configured channel

package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notifier delivers one lead notification. Implementations return transport
// errors to the caller unchanged apart from wrapping.
type Notifier interface {
	Notify(ctx context.Context, info string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, info string) error

// Notify calls f(ctx, info).
func (f NotifierFunc) Notify(ctx context.Context, info string) error {
	return f(ctx, info)
}

// Named tags a notifier with a channel name used in errors and logs.
type Named struct {
	Name     string
	Notifier Notifier
}

// Multi delivers to every channel, even when an earlier one fails.
type Multi []Named

// Notify sends info on each channel and joins the errors.
func (m Multi) Notify(ctx context.Context, info string) error {
	var errs []error
	for _, ch := range m {
		if err := ch.Notifier.Notify(ctx, info); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
		}
	}
	return errors.Join(errs...)
}
