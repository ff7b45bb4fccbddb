package identity_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fieldmark/internal/field"
	"fieldmark/internal/identity"
	"fieldmark/internal/kv"
	"fieldmark/internal/testutil"
)

func newProvider(t *testing.T) (*identity.Provider, kv.Store, *testutil.StubClock) {
	t.Helper()
	mem := kv.NewMemoryStore()
	clock := testutil.FixedClock()
	return identity.NewProvider(mem, clock, field.NewNopLogger()), mem, clock
}

func TestProvider_GetOrPromptName(t *testing.T) {
	t.Run("prompts once then reuses the stored name", func(t *testing.T) {
		p, _, _ := newProvider(t)
		prompter := &testutil.StubPrompter{Name: "Alice", OK: true}

		name, err := p.GetOrPromptName(context.Background(), prompter)
		if err != nil {
			t.Fatalf("GetOrPromptName() error = %v", err)
		}
		if name != "Alice" {
			t.Errorf("name = %q, want Alice", name)
		}

		prompter.Prompted = 0
		name, err = p.GetOrPromptName(context.Background(), prompter)
		if err != nil || name != "Alice" {
			t.Fatalf("second call = %q, %v; want Alice, nil", name, err)
		}
		if prompter.Prompted != 0 {
			t.Errorf("prompter invoked %d times on second call, want 0", prompter.Prompted)
		}
	})

	t.Run("dismissed prompt returns ErrPromptCancelled", func(t *testing.T) {
		p, _, _ := newProvider(t)
		prompter := &testutil.StubPrompter{OK: false}

		_, err := p.GetOrPromptName(context.Background(), prompter)
		if !errors.Is(err, field.ErrPromptCancelled) {
			t.Errorf("error = %v, want ErrPromptCancelled", err)
		}

		has, _ := p.HasNameForToday()
		if has {
			t.Error("name stored after a dismissed prompt")
		}
	})

	t.Run("prompts again on a new day", func(t *testing.T) {
		p, _, clock := newProvider(t)
		prompter := &testutil.StubPrompter{Name: "Alice", OK: true}

		if _, err := p.GetOrPromptName(context.Background(), prompter); err != nil {
			t.Fatalf("GetOrPromptName() error = %v", err)
		}

		clock.Advance(25 * time.Hour)
		prompter.Prompted = 0
		prompter.Name = "Bob"

		name, err := p.GetOrPromptName(context.Background(), prompter)
		if err != nil {
			t.Fatalf("GetOrPromptName() error = %v", err)
		}
		if prompter.Prompted != 1 || name != "Bob" {
			t.Errorf("new day: prompted=%d name=%q, want 1/Bob", prompter.Prompted, name)
		}
	})
}

func TestProvider_RecordName(t *testing.T) {
	t.Run("trims and stores", func(t *testing.T) {
		p, _, _ := newProvider(t)

		name, err := p.RecordName("  Alice  ")
		if err != nil {
			t.Fatalf("RecordName() error = %v", err)
		}
		if name != "Alice" {
			t.Errorf("name = %q, want Alice", name)
		}

		session, ok, err := p.SessionForToday()
		if err != nil || !ok {
			t.Fatalf("SessionForToday() = %v, %v", ok, err)
		}
		if session.DisplayName != "Alice" || session.PointCount != 0 {
			t.Errorf("session = %+v, want Alice with 0 points", session)
		}
	})

	t.Run("rejects blank", func(t *testing.T) {
		p, _, _ := newProvider(t)

		if _, err := p.RecordName("   "); err == nil {
			t.Error("RecordName() accepted a blank name")
		}
	})

	t.Run("rejects over-long names", func(t *testing.T) {
		p, _, _ := newProvider(t)

		if _, err := p.RecordName(strings.Repeat("a", identity.MaxNameLength+1)); err == nil {
			t.Error("RecordName() accepted an over-long name")
		}
		if _, err := p.RecordName(strings.Repeat("é", identity.MaxNameLength)); err != nil {
			t.Errorf("RecordName() rejected %d runes: %v", identity.MaxNameLength, err)
		}
	})
}

func TestProvider_BumpSessionPointCount(t *testing.T) {
	t.Run("increments count and activity", func(t *testing.T) {
		p, _, clock := newProvider(t)
		p.RecordName("Alice")

		before, _, _ := p.SessionForToday()
		clock.Advance(time.Minute)
		p.BumpSessionPointCount()
		p.BumpSessionPointCount()

		session, ok, _ := p.SessionForToday()
		if !ok || session.PointCount != 2 {
			t.Errorf("PointCount = %d, want 2", session.PointCount)
		}
		if session.LastActivity <= before.LastActivity {
			t.Error("LastActivity did not advance")
		}
	})

	t.Run("no session is a logged no-op", func(t *testing.T) {
		p, _, _ := newProvider(t)

		p.BumpSessionPointCount()

		if _, ok, _ := p.SessionForToday(); ok {
			t.Error("bump created a session out of nothing")
		}
	})
}

func TestProvider_PruneStaleSessions(t *testing.T) {
	p, mem, clock := newProvider(t)

	if _, err := p.RecordName("Alice"); err != nil {
		t.Fatalf("RecordName() error = %v", err)
	}

	clock.Advance(48 * time.Hour)
	if _, err := p.RecordName("Alice"); err != nil {
		t.Fatalf("RecordName() error = %v", err)
	}

	removed, err := p.PruneStaleSessions()
	if err != nil {
		t.Fatalf("PruneStaleSessions() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2 (stale name + stale session)", removed)
	}

	has, _ := p.HasNameForToday()
	if !has {
		t.Error("today's name pruned")
	}

	keys, _ := mem.Keys("identity/")
	if len(keys) != 2 {
		t.Errorf("identity keys = %v, want exactly today's pair", keys)
	}

	removed, _ = p.PruneStaleSessions()
	if removed != 0 {
		t.Errorf("second prune removed %d, want 0", removed)
	}
}
