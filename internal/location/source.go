package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"fieldmark/internal/config"
	"fieldmark/internal/field"
)

// StaticSource always reports the same coordinates, stamped with the current
// time. Used for surveyed base stations and in tests.
type StaticSource struct {
	Lat, Lon, Accuracy float64
	Clock              field.Clock
}

var _ field.LocationSource = (*StaticSource)(nil)

func (s *StaticSource) Latest(_ context.Context) (field.Fix, error) {
	return field.Fix{
		Latitude:       s.Lat,
		Longitude:      s.Lon,
		AccuracyMeters: s.Accuracy,
		CapturedAt:     s.Clock.Now().UnixMilli(),
	}, nil
}

// FileSource reads the latest fix from a JSON file that an external GPS
// process keeps current (a gpsd bridge, a phone companion app, a serial
// reader). A fix older than MaxAge is treated as no position.
type FileSource struct {
	Path   string
	MaxAge time.Duration
	Clock  field.Clock
}

var _ field.LocationSource = (*FileSource)(nil)

func (s *FileSource) Latest(_ context.Context) (field.Fix, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return field.Fix{}, newError(KindPositionUnavailable, fmt.Errorf("no fix file at %s", s.Path))
		}
		if errors.Is(err, os.ErrPermission) {
			return field.Fix{}, newError(KindPermissionDenied, err)
		}
		return field.Fix{}, newError(KindPositionUnavailable, err)
	}

	var fix field.Fix
	if err := json.Unmarshal(data, &fix); err != nil {
		return field.Fix{}, newError(KindPositionUnavailable, fmt.Errorf("decoding fix file: %w", err))
	}

	if s.MaxAge > 0 {
		age := s.Clock.Now().Sub(time.UnixMilli(fix.CapturedAt))
		if age > s.MaxAge {
			return field.Fix{}, newError(KindTimeout, fmt.Errorf("last fix is %s old", age.Round(time.Second)))
		}
	}

	return fix, nil
}

// UnsupportedSource reports that no location capability is configured.
type UnsupportedSource struct{}

var _ field.LocationSource = (*UnsupportedSource)(nil)

func (UnsupportedSource) Latest(context.Context) (field.Fix, error) {
	return field.Fix{}, newError(KindUnsupported, nil)
}

// NewSourceFromConfig creates a LocationSource based on the location config
// type, wrapped with the configured minimum-interval throttle.
func NewSourceFromConfig(cfg config.LocationConfig, clock field.Clock) (field.LocationSource, error) {
	var src field.LocationSource
	switch cfg.Type {
	case "file", "":
		if cfg.FixPath == "" {
			return nil, fmt.Errorf("file location source requires fix_path to be set")
		}
		src = &FileSource{
			Path:   cfg.FixPath,
			MaxAge: time.Duration(cfg.MaxFixAgeMillis) * time.Millisecond,
			Clock:  clock,
		}
	case "static":
		src = &StaticSource{Lat: cfg.Latitude, Lon: cfg.Longitude, Clock: clock}
	case "none":
		src = UnsupportedSource{}
	default:
		return nil, fmt.Errorf("unknown location source type: %s", cfg.Type)
	}

	if cfg.MinIntervalMillis > 0 {
		src = NewThrottled(src, time.Duration(cfg.MinIntervalMillis)*time.Millisecond, clock)
	}
	return src, nil
}
