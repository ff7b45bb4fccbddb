package field

import (
	"context"
	"errors"
	"fmt"

	"fieldmark/internal/model"
)

// Service is the orchestration layer that coordinates the point store,
// identity provider, and location feed to perform the operations the UI
// surface exposes.
type Service struct {
	store    PointStore
	identity Identity
	location LocationSource
	logger   Logger
	clock    Clock
}

// NewService creates a Service with the provided dependencies.
func NewService(store PointStore, identity Identity, location LocationSource, logger Logger, clock Clock) *Service {
	return &Service{
		store:    store,
		identity: identity,
		location: location,
		logger:   logger,
		clock:    clock,
	}
}

// Startup runs the once-per-launch maintenance: pruning identity entries
// left over from prior days.
func (s *Service) Startup() error {
	removed, err := s.identity.PruneStaleSessions()
	if err != nil {
		return fmt.Errorf("pruning stale sessions: %w", err)
	}
	s.logger.Debug("startup maintenance complete", "pruned", removed)
	return nil
}

// Mark creates one point of the given category at the current position,
// attributed to today's collector. Each call runs its own request through
// the phases position → identity → persist, so rapid repeated invocations
// are independent and cannot share partial state.
//
// Expected recoverable outcomes: an error wrapping ErrNoFix when no usable
// position exists, ErrPromptCancelled when the user dismisses the name
// prompt. In both cases no point is created. An error wrapping ErrStorage
// means the point WAS created in memory but not persisted; the returned
// point is valid and the store reports Degraded.
func (s *Service) Mark(ctx context.Context, category model.Category, prompter NamePrompter) (model.Point, error) {
	if !category.Valid() {
		return model.Point{}, fmt.Errorf("unknown category: %q", category)
	}

	req := newMarkRequest(category, s.logger)

	req.transition(markAwaitingPosition)
	fix, err := s.location.Latest(ctx)
	if err != nil {
		req.fail(err)
		return model.Point{}, fmt.Errorf("%w: %v", ErrNoFix, err)
	}

	req.transition(markAwaitingIdentity)
	name, err := s.identity.GetOrPromptName(ctx, prompter)
	if err != nil {
		req.fail(err)
		if errors.Is(err, ErrPromptCancelled) {
			return model.Point{}, err
		}
		return model.Point{}, fmt.Errorf("resolving collector identity: %w", err)
	}

	req.transition(markPersisting)
	point, err := s.store.Create(model.Point{
		Category:       category,
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		AccuracyMeters: fix.AccuracyMeters,
		CapturedAt:     s.clock.Now().UnixMilli(),
		RecordedBy:     name,
		SessionID:      DayKey(s.clock.Now()),
	})
	if err != nil && !errors.Is(err, ErrStorage) {
		req.fail(err)
		return model.Point{}, fmt.Errorf("creating point: %w", err)
	}

	// The point exists (possibly only in memory when err wraps ErrStorage),
	// so the session count moves regardless.
	s.identity.BumpSessionPointCount()
	req.done(point)
	return point, err
}

// MarkActive is Mark using the persisted active-category selection.
func (s *Service) MarkActive(ctx context.Context, prompter NamePrompter) (model.Point, error) {
	category, ok := s.store.ActiveCategory()
	if !ok {
		return model.Point{}, fmt.Errorf("no active category selected")
	}
	return s.Mark(ctx, category, prompter)
}

// DeletePoint removes a point. Returns false when the id is unknown.
func (s *Service) DeletePoint(id string, category model.Category) (bool, error) {
	return s.store.Delete(id, category)
}

// UpdateNotes replaces a point's notes. Returns false when the id is unknown.
func (s *Service) UpdateNotes(id string, category model.Category, notes string) (bool, error) {
	return s.store.UpdateNotes(id, category, notes)
}

// ClearAll destroys every point after obtaining explicit confirmation with
// the exact count. It returns ErrNothingToClear when the store is empty and
// ErrNotConfirmed when the user declines; the destructive call is
// unconditional once confirmed.
func (s *Service) ClearAll(ctx context.Context, confirmer Confirmer) error {
	count := s.store.TotalCount()
	if count == 0 {
		return ErrNothingToClear
	}

	ok, err := confirmer.ConfirmClear(ctx, count)
	if err != nil {
		return fmt.Errorf("confirming clear: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}

	if err := s.store.ClearAll(); err != nil {
		return err
	}
	s.logger.Info("cleared all points", "count", count)
	return nil
}

// Snapshot returns a caller-owned copy of the store contents.
func (s *Service) Snapshot() model.Snapshot {
	return s.store.Snapshot()
}

// PointsByCategory returns one category's points in insertion order.
func (s *Service) PointsByCategory(category model.Category) ([]model.Point, error) {
	return s.store.ByCategory(category)
}

// RecordNameForToday stores an explicitly provided collector name for
// today, bypassing the prompt. Returns the trimmed name as stored.
func (s *Service) RecordNameForToday(name string) (string, error) {
	return s.identity.RecordName(name)
}

// SessionToday returns today's collector session, if any.
func (s *Service) SessionToday() (model.CollectorSession, bool, error) {
	return s.identity.SessionForToday()
}

// Store exposes the point store for settings passthrough (active category,
// visibility) at the UI boundary.
func (s *Service) Store() PointStore {
	return s.store
}
