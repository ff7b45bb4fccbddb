package location_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fieldmark/internal/config"
	"fieldmark/internal/field"
	"fieldmark/internal/location"
	"fieldmark/internal/testutil"
)

func writeFix(t *testing.T, path string, fix field.Fix) {
	t.Helper()
	data, err := json.Marshal(fix)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStaticSource(t *testing.T) {
	clock := testutil.FixedClock()
	s := &location.StaticSource{Lat: 48.8566, Lon: 2.3522, Accuracy: 3, Clock: clock}

	fix, err := s.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if fix.Latitude != 48.8566 || fix.Longitude != 2.3522 {
		t.Errorf("fix = %+v", fix)
	}
	if fix.CapturedAt != clock.Now().UnixMilli() {
		t.Errorf("CapturedAt = %d, want clock time", fix.CapturedAt)
	}
}

func TestFileSource(t *testing.T) {
	clock := testutil.FixedClock()

	t.Run("reads a current fix", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fix.json")
		writeFix(t, path, field.Fix{
			Latitude: 48.8566, Longitude: 2.3522, AccuracyMeters: 8,
			CapturedAt: clock.Now().UnixMilli(),
		})

		s := &location.FileSource{Path: path, MaxAge: time.Minute, Clock: clock}
		fix, err := s.Latest(context.Background())
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if fix.AccuracyMeters != 8 {
			t.Errorf("fix = %+v", fix)
		}
	})

	t.Run("missing file is position-unavailable", func(t *testing.T) {
		s := &location.FileSource{Path: filepath.Join(t.TempDir(), "absent.json"), Clock: clock}

		_, err := s.Latest(context.Background())
		var locErr *location.Error
		if !errors.As(err, &locErr) || locErr.Kind != location.KindPositionUnavailable {
			t.Errorf("error = %v, want position-unavailable", err)
		}
	})

	t.Run("stale fix is a timeout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fix.json")
		writeFix(t, path, field.Fix{
			Latitude: 48.8566, Longitude: 2.3522,
			CapturedAt: clock.Now().Add(-2 * time.Minute).UnixMilli(),
		})

		s := &location.FileSource{Path: path, MaxAge: time.Minute, Clock: clock}
		_, err := s.Latest(context.Background())
		var locErr *location.Error
		if !errors.As(err, &locErr) || locErr.Kind != location.KindTimeout {
			t.Errorf("error = %v, want timeout", err)
		}
	})

	t.Run("garbage file is position-unavailable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fix.json")
		os.WriteFile(path, []byte("not json"), 0644)

		s := &location.FileSource{Path: path, Clock: clock}
		_, err := s.Latest(context.Background())
		var locErr *location.Error
		if !errors.As(err, &locErr) || locErr.Kind != location.KindPositionUnavailable {
			t.Errorf("error = %v, want position-unavailable", err)
		}
	})
}

func TestUnsupportedSource(t *testing.T) {
	_, err := location.UnsupportedSource{}.Latest(context.Background())
	var locErr *location.Error
	if !errors.As(err, &locErr) || locErr.Kind != location.KindUnsupported {
		t.Errorf("error = %v, want unsupported", err)
	}
}

// countingSource tracks how many reads reach the underlying source.
type countingSource struct {
	calls int
	fix   field.Fix
}

func (c *countingSource) Latest(context.Context) (field.Fix, error) {
	c.calls++
	c.fix.CapturedAt++
	return c.fix, nil
}

func TestThrottled(t *testing.T) {
	clock := testutil.FixedClock()
	inner := &countingSource{}
	s := location.NewThrottled(inner, 2*time.Second, clock)

	first, _ := s.Latest(context.Background())

	// Reads inside the interval answer from the cached fix.
	again, _ := s.Latest(context.Background())
	if inner.calls != 1 {
		t.Errorf("inner reads = %d, want 1", inner.calls)
	}
	if again.CapturedAt != first.CapturedAt {
		t.Error("cached read returned a different fix")
	}

	// After the interval the source is read again.
	clock.Advance(3 * time.Second)
	next, _ := s.Latest(context.Background())
	if inner.calls != 2 {
		t.Errorf("inner reads = %d, want 2", inner.calls)
	}
	if next.CapturedAt == first.CapturedAt {
		t.Error("read after interval did not refresh")
	}
}

func TestFeed_Watch(t *testing.T) {
	clock := testutil.FixedClock()
	path := filepath.Join(t.TempDir(), "fix.json")
	writeFix(t, path, field.Fix{Latitude: 1, Longitude: 2, CapturedAt: 100})

	src := &location.FileSource{Path: path, Clock: clock}
	feed := location.NewFeed(src, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fixes := feed.Watch(ctx)

	select {
	case fix := <-fixes:
		if fix.CapturedAt != 100 {
			t.Errorf("fix = %+v", fix)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no fix emitted")
	}

	// An unchanged file emits nothing; a newer fix comes through.
	writeFix(t, path, field.Fix{Latitude: 1, Longitude: 2, CapturedAt: 200})
	select {
	case fix := <-fixes:
		if fix.CapturedAt != 200 {
			t.Errorf("fix = %+v, want the newer capture", fix)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("newer fix not emitted")
	}

	cancel()
	for range fixes {
	}
}

func TestNewSourceFromConfig(t *testing.T) {
	clock := testutil.FixedClock()

	t.Run("file source requires a path", func(t *testing.T) {
		_, err := location.NewSourceFromConfig(config.LocationConfig{Type: "file"}, clock)
		if err == nil {
			t.Error("file source accepted without fix_path")
		}
	})

	t.Run("static source serves the configured position", func(t *testing.T) {
		src, err := location.NewSourceFromConfig(config.LocationConfig{
			Type: "static", Latitude: 48.8566, Longitude: 2.3522,
		}, clock)
		if err != nil {
			t.Fatalf("NewSourceFromConfig() error = %v", err)
		}
		fix, err := src.Latest(context.Background())
		if err != nil || fix.Latitude != 48.8566 {
			t.Errorf("fix = %+v, %v", fix, err)
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		_, err := location.NewSourceFromConfig(config.LocationConfig{Type: "satellite"}, clock)
		if err == nil {
			t.Error("unknown source type accepted")
		}
	})
}
