// Package identity resolves the collector display name for "today" and
// keeps the daily CollectorSession bookkeeping. Names are asked for at most
// once per calendar day; the answer is stored under the day-key.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"fieldmark/internal/field"
	"fieldmark/internal/kv"
	"fieldmark/internal/model"
)

const (
	nameKeyPrefix    = "identity/name/"
	sessionKeyPrefix = "identity/session/"

	// MaxNameLength caps a collector name after trimming.
	MaxNameLength = 50
)

// Provider implements the daily collector-identity model. The day boundary
// follows the injected clock's local wall-clock time; no timezone pinning is
// attempted when a collector travels mid-session.
type Provider struct {
	kv     kv.Store
	clock  field.Clock
	logger field.Logger
}

var _ field.Identity = (*Provider)(nil)

// NewProvider creates a Provider over the given store and clock.
func NewProvider(store kv.Store, clock field.Clock, logger field.Logger) *Provider {
	return &Provider{kv: store, clock: clock, logger: logger}
}

func (p *Provider) todayKey() string {
	return field.DayKey(p.clock.Now())
}

// HasNameForToday reports whether a non-blank name is stored under today's
// day-key.
func (p *Provider) HasNameForToday() (bool, error) {
	name, ok, err := p.nameForDay(p.todayKey())
	if err != nil {
		return false, err
	}
	return ok && name != "", nil
}

// GetOrPromptName returns today's collector name, prompting through prompter
// only when none is stored yet. A dismissed prompt returns an error wrapping
// field.ErrPromptCancelled; callers treat that as "do not proceed", not as a
// failure.
func (p *Provider) GetOrPromptName(ctx context.Context, prompter field.NamePrompter) (string, error) {
	day := p.todayKey()

	name, ok, err := p.nameForDay(day)
	if err != nil {
		return "", err
	}
	if ok && name != "" {
		return name, nil
	}

	entered, confirmed, err := prompter.PromptName(ctx)
	if err != nil {
		return "", fmt.Errorf("prompting for collector name: %w", err)
	}
	if !confirmed {
		return "", field.ErrPromptCancelled
	}

	return p.RecordName(entered)
}

// RecordName validates, trims, and persists name under today's day-key, and
// initializes today's CollectorSession with a zero point count. It returns
// the trimmed name as stored.
func (p *Provider) RecordName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("collector name must not be blank")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", fmt.Errorf("collector name exceeds %d characters", MaxNameLength)
	}

	day := p.todayKey()
	if err := p.kv.Put(nameKeyPrefix+day, trimmed); err != nil {
		return "", fmt.Errorf("%w: storing collector name: %v", field.ErrStorage, err)
	}

	session := model.CollectorSession{
		DayKey:       day,
		DisplayName:  trimmed,
		PointCount:   0,
		LastActivity: p.clock.Now().UnixMilli(),
	}
	if err := p.putSession(session); err != nil {
		return "", err
	}

	p.logger.Info("collector name recorded", "name", trimmed, "day", day)
	return trimmed, nil
}

// BumpSessionPointCount increments today's session point count and refreshes
// its last-activity timestamp. It never fails: a missing session or a
// storage error is logged and swallowed.
func (p *Provider) BumpSessionPointCount() {
	session, ok, err := p.SessionForToday()
	if err != nil {
		p.logger.Warn("reading session for bump failed", "err", err)
		return
	}
	if !ok {
		p.logger.Warn("no session for today, skipping point count bump")
		return
	}

	session.PointCount++
	session.LastActivity = p.clock.Now().UnixMilli()
	if err := p.putSession(session); err != nil {
		p.logger.Warn("storing bumped session failed", "err", err)
	}
}

// SessionForToday returns today's CollectorSession if one exists.
func (p *Provider) SessionForToday() (model.CollectorSession, bool, error) {
	day := p.todayKey()

	raw, ok, err := p.kv.Get(sessionKeyPrefix + day)
	if err != nil {
		return model.CollectorSession{}, false, fmt.Errorf("reading session: %w", err)
	}
	if !ok {
		return model.CollectorSession{}, false, nil
	}

	var session model.CollectorSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return model.CollectorSession{}, false, fmt.Errorf("decoding session: %w", err)
	}
	return session, true, nil
}

// PruneStaleSessions removes every stored name and session whose day-key is
// not today's. Run once at startup; it bounds storage growth and prevents a
// prior day's name from being reused. Returns the number of keys removed.
func (p *Provider) PruneStaleSessions() (int, error) {
	today := p.todayKey()
	removed := 0

	for _, prefix := range []string{nameKeyPrefix, sessionKeyPrefix} {
		keys, err := p.kv.Keys(prefix)
		if err != nil {
			return removed, fmt.Errorf("listing identity keys: %w", err)
		}
		for _, k := range keys {
			if strings.TrimPrefix(k, prefix) == today {
				continue
			}
			if err := p.kv.Delete(k); err != nil {
				return removed, fmt.Errorf("pruning %s: %w", k, err)
			}
			removed++
		}
	}

	if removed > 0 {
		p.logger.Info("stale identity entries pruned", "count", removed)
	}
	return removed, nil
}

func (p *Provider) nameForDay(day string) (string, bool, error) {
	name, ok, err := p.kv.Get(nameKeyPrefix + day)
	if err != nil {
		return "", false, fmt.Errorf("reading collector name: %w", err)
	}
	return name, ok, nil
}

func (p *Provider) putSession(session model.CollectorSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := p.kv.Put(sessionKeyPrefix+session.DayKey, string(data)); err != nil {
		return fmt.Errorf("%w: storing session: %v", field.ErrStorage, err)
	}
	return nil
}
