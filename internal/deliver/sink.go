// Package deliver hands exported bytes to the user. Sinks are tried in
// order — share upload, local download, console copy — with each failure
// silently cascading to the next; only the final outcome is user-visible.
package deliver

import (
	"context"
	"errors"
	"fmt"

	"fieldmark/internal/field"
)

// Payload is a serialized export ready for delivery.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Outcome describes where a payload ended up.
type Outcome struct {
	Sink        string // sink name, e.g. "s3", "download"
	Destination string // human-readable destination (URL, path)
}

// Sink delivers a payload somewhere the user can reach it.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, p Payload) (destination string, err error)
}

// Cascade tries each sink in order until one succeeds. Intermediate
// failures are logged, not surfaced; only total failure returns an error.
type Cascade struct {
	sinks  []Sink
	logger field.Logger
}

// NewCascade creates a Cascade over the given sinks, tried in order.
func NewCascade(logger field.Logger, sinks ...Sink) *Cascade {
	return &Cascade{sinks: sinks, logger: logger}
}

// Deliver attempts each sink in order and returns the first success.
func (c *Cascade) Deliver(ctx context.Context, p Payload) (Outcome, error) {
	if len(c.sinks) == 0 {
		return Outcome{}, fmt.Errorf("no delivery sinks configured")
	}

	var errs []error
	for _, sink := range c.sinks {
		dest, err := sink.Deliver(ctx, p)
		if err == nil {
			c.logger.Info("export delivered", "sink", sink.Name(), "destination", dest)
			return Outcome{Sink: sink.Name(), Destination: dest}, nil
		}
		c.logger.Debug("delivery sink failed, cascading", "sink", sink.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
	}

	return Outcome{}, fmt.Errorf("all delivery sinks failed: %w", errors.Join(errs...))
}
