package export

import (
	"encoding/json"
	"fmt"

	"fieldmark/internal/model"
)

// Document is the generic JSON export layout. It carries every Point field
// verbatim so DecodeJSON can reconstruct the snapshot exactly.
type Document struct {
	ExportedAt int64                               `json:"exportedAt"` // epoch millis
	Version    string                              `json:"version"`
	Language   string                              `json:"language"`
	TotalCount int                                 `json:"totalCount"`
	Categories map[model.Category]CategoryDocument `json:"categories"`
}

// CategoryDocument is one category's slice of the export, with its resolved
// display strings.
type CategoryDocument struct {
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Points      []ExportedPoint `json:"points"`
}

// ExportedPoint is a Point augmented with its resolved display label, so
// consumers don't need to re-join against a category registry.
type ExportedPoint struct {
	model.Point
	TypeName        string `json:"typeName"`
	TypeDescription string `json:"typeDescription"`
}

func (e *Exporter) encodeJSON(snap model.Snapshot) ([]byte, error) {
	doc := Document{
		ExportedAt: e.clock.Now().UnixMilli(),
		Version:    Version,
		Language:   e.lang.Tag(),
		TotalCount: snap.TotalCount(),
		Categories: make(map[model.Category]CategoryDocument),
	}

	for c, pts := range snap {
		cd := CategoryDocument{
			Label:       e.label(c),
			Description: e.description(c),
			Points:      make([]ExportedPoint, 0, len(pts)),
		}
		for _, p := range pts {
			cd.Points = append(cd.Points, ExportedPoint{
				Point:           p,
				TypeName:        e.label(c),
				TypeDescription: e.description(c),
			})
		}
		doc.Categories[c] = cd
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json export: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeJSON reads a generic JSON export back into a snapshot. Every Point
// field round-trips exactly; the display augmentations are dropped.
func DecodeJSON(data []byte) (model.Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding json export: %w", err)
	}

	snap := make(model.Snapshot)
	for c, cd := range doc.Categories {
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category in export: %q", c)
		}
		pts := make([]model.Point, 0, len(cd.Points))
		for _, ep := range cd.Points {
			p := ep.Point
			if p.Category != c {
				return nil, fmt.Errorf("point %s filed under %q but categorized %q", p.ID, c, p.Category)
			}
			pts = append(pts, p)
		}
		snap[c] = pts
	}
	return snap, nil
}
