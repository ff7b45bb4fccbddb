package field

import "context"

// Fix is a single position report from the location feed.
type Fix struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracyMeters"`
	CapturedAt     int64   `json:"capturedAt"` // epoch millis
}

// LocationSource supplies the most recent position fix.
// Implementations return an error categorizing why no fix is available;
// the service treats every such error as the recoverable no-fix condition.
type LocationSource interface {
	// Latest returns the most recent fix that is still considered fresh.
	Latest(ctx context.Context) (Fix, error)
}
