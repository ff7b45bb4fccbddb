package model

// Point is a geotagged field record. Everything except Notes is fixed at
// creation time.
type Point struct {
	ID             string   `json:"id"`             // UUID
	Category       Category `json:"category"`
	SequenceNumber int      `json:"sequenceNumber"` // unique within the category, never reused
	Latitude       float64  `json:"latitude"`       // WGS84 decimal degrees
	Longitude      float64  `json:"longitude"`
	AccuracyMeters float64  `json:"accuracyMeters"` // sensor accuracy radius; 0 when unknown
	CapturedAt     int64    `json:"capturedAt"`     // epoch millis
	Notes          string   `json:"notes,omitempty"`
	RecordedBy     string   `json:"recordedBy"`
	SessionID      string   `json:"sessionId"` // day-key (YYYY-MM-DD) active at creation
}

// CollectorSession groups the points captured by one collector on one
// calendar day. It is keyed by day-key and superseded, not merged, when the
// day changes.
type CollectorSession struct {
	DayKey       string `json:"dayKey"`
	DisplayName  string `json:"displayName"`
	PointCount   int    `json:"pointCount"`
	LastActivity int64  `json:"lastActivity"` // epoch millis
}

// Snapshot is a point-in-time, caller-owned copy of the store contents:
// per-category point slices in insertion order (oldest first).
type Snapshot map[Category][]Point

// TotalCount returns the number of points across all categories.
func (s Snapshot) TotalCount() int {
	n := 0
	for _, pts := range s {
		n += len(pts)
	}
	return n
}
