package location

import (
	"context"
	"sync"
	"time"

	"fieldmark/internal/field"
)

// Throttled enforces a minimum interval between reads of the underlying
// source. Reads arriving faster than the interval are answered from the last
// processed fix, so downstream consumers never see updates more often than
// the interval allows; intermediate sensor updates are dropped, not queued.
type Throttled struct {
	src      field.LocationSource
	interval time.Duration
	clock    field.Clock

	mu       sync.Mutex
	lastAt   time.Time
	lastFix  field.Fix
	lastErr  error
	haveLast bool
}

var _ field.LocationSource = (*Throttled)(nil)

// NewThrottled wraps src with a minimum inter-read interval.
func NewThrottled(src field.LocationSource, interval time.Duration, clock field.Clock) *Throttled {
	return &Throttled{src: src, interval: interval, clock: clock}
}

func (t *Throttled) Latest(ctx context.Context) (field.Fix, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if t.haveLast && now.Sub(t.lastAt) < t.interval {
		return t.lastFix, t.lastErr
	}

	fix, err := t.src.Latest(ctx)
	t.lastAt = now
	t.lastFix = fix
	t.lastErr = err
	t.haveLast = true
	return fix, err
}

// Feed turns a pull-style source into a subscription: it polls the source at
// the given interval and delivers fixes to the channel returned by Watch.
// Delivery is non-blocking; a slow consumer misses intermediate fixes rather
// than queuing them.
type Feed struct {
	src      field.LocationSource
	interval time.Duration
}

// NewFeed creates a Feed polling src every interval.
func NewFeed(src field.LocationSource, interval time.Duration) *Feed {
	return &Feed{src: src, interval: interval}
}

// Watch starts polling and returns the fix channel. The channel is closed
// when ctx is done. Fixes are only emitted when newer than the previous one.
func (f *Feed) Watch(ctx context.Context) <-chan field.Fix {
	out := make(chan field.Fix, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		var lastCaptured int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			fix, err := f.src.Latest(ctx)
			if err != nil || fix.CapturedAt <= lastCaptured {
				continue
			}
			lastCaptured = fix.CapturedAt

			select {
			case out <- fix:
			default: // consumer busy, drop
			}
		}
	}()

	return out
}
