package field

import (
	"context"

	"fieldmark/internal/model"
)

// Identity resolves the collector name for "today" and keeps the daily
// session bookkeeping.
type Identity interface {
	// HasNameForToday reports whether a name is already stored for today.
	HasNameForToday() (bool, error)

	// GetOrPromptName returns today's name, prompting only when none is
	// stored. A dismissed prompt returns an error wrapping
	// ErrPromptCancelled.
	GetOrPromptName(ctx context.Context, prompter NamePrompter) (string, error)

	// RecordName validates and stores a name for today, initializing
	// today's session. Returns the trimmed name as stored.
	RecordName(name string) (string, error)

	// BumpSessionPointCount increments today's session point count and
	// refreshes its last activity. It never fails; problems are logged
	// and swallowed.
	BumpSessionPointCount()

	// SessionForToday returns today's CollectorSession if one exists.
	SessionForToday() (model.CollectorSession, bool, error)

	// PruneStaleSessions removes identity entries from prior days.
	PruneStaleSessions() (int, error)
}
