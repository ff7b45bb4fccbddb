package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"fieldmark/internal/model"
)

// GeoJSON-style feature collection. Geometry coordinates are
// [longitude, latitude] — longitude first is a hard format requirement.
type featureCollection struct {
	Type       string          `json:"type"`
	Features   []feature       `json:"features"`
	Properties collectionProps `json:"properties"`
}

type feature struct {
	Type       string        `json:"type"`
	Geometry   pointGeometry `json:"geometry"`
	Properties featureProps  `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

// featureProps carries every Point field plus the display fields needed for
// symbolization without re-joining against the category registry.
type featureProps struct {
	ID             string         `json:"id"`
	Category       model.Category `json:"category"`
	SequenceNumber int            `json:"sequenceNumber"`
	AccuracyMeters float64        `json:"accuracyMeters"`
	CapturedAt     int64          `json:"capturedAt"`
	Notes          string         `json:"notes,omitempty"`
	RecordedBy     string         `json:"recordedBy"`
	SessionID      string         `json:"sessionId"`
	Icon           string         `json:"icon"`
	Color          string         `json:"color"`
	Label          string         `json:"label"`
}

type collectionProps struct {
	Version         string                 `json:"version"`
	ExportedAt      int64                  `json:"exportedAt"`
	TotalCount      int                    `json:"totalCount"`
	Collectors      []string               `json:"collectors"`
	Sessions        []string               `json:"sessions"`
	CountByCategory map[model.Category]int `json:"countByCategory"`
}

func (e *Exporter) encodeGeoJSON(snap model.Snapshot) ([]byte, error) {
	fc := featureCollection{
		Type: "FeatureCollection",
		Properties: collectionProps{
			Version:         Version,
			ExportedAt:      e.clock.Now().UnixMilli(),
			TotalCount:      snap.TotalCount(),
			CountByCategory: make(map[model.Category]int),
		},
	}

	collectors := make(map[string]bool)
	sessions := make(map[string]bool)

	for _, p := range orderedPoints(snap) {
		spec := p.Category.Spec()
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Geometry: pointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{p.Longitude, p.Latitude},
			},
			Properties: featureProps{
				ID:             p.ID,
				Category:       p.Category,
				SequenceNumber: p.SequenceNumber,
				AccuracyMeters: p.AccuracyMeters,
				CapturedAt:     p.CapturedAt,
				Notes:          p.Notes,
				RecordedBy:     p.RecordedBy,
				SessionID:      p.SessionID,
				Icon:           spec.Icon,
				Color:          spec.Color,
				Label:          fmt.Sprintf("%s %d", e.label(p.Category), p.SequenceNumber),
			},
		})
		collectors[p.RecordedBy] = true
		sessions[p.SessionID] = true
		fc.Properties.CountByCategory[p.Category]++
	}

	fc.Properties.Collectors = sortedKeys(collectors)
	fc.Properties.Sessions = sortedKeys(sessions)

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding geojson export: %w", err)
	}
	return append(data, '\n'), nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
