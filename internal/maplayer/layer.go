// Package maplayer translates point-store state into the per-category
// marker layers and counters a map renderer consumes. It is the produced
// half of the map-surface boundary: this module never draws anything.
package maplayer

import (
	"fmt"

	"fieldmark/internal/i18n"
	"fieldmark/internal/model"
)

// Marker is one map-friendly record: geometry plus the display properties
// needed to symbolize it without consulting the category registry.
type Marker struct {
	ID             string
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Label          string // e.g. "Exploitation 3"
	Icon           string
	Color          string
	Notes          string
}

// Layer is one category's marker collection with its visibility toggle.
type Layer struct {
	Category model.Category
	Label    string
	Visible  bool
	Markers  []Marker
}

// View is the full presentation snapshot: layers in the fixed category
// order plus the UI counters.
type View struct {
	Layers []Layer
	Counts map[model.Category]int
	Total  int
}

// Build derives a View from a store snapshot and visibility map. Hidden
// categories keep their counters but carry no markers; hiding is a
// rendering concern and never affects storage.
func Build(snap model.Snapshot, visibility map[model.Category]bool, lang *i18n.Catalog) View {
	view := View{Counts: make(map[model.Category]int)}

	for _, c := range model.Categories() {
		pts := snap[c]
		spec := c.Spec()
		label := lang.Get(spec.LabelKey)

		layer := Layer{
			Category: c,
			Label:    label,
			Visible:  visibility[c],
		}
		if layer.Visible {
			layer.Markers = make([]Marker, 0, len(pts))
			for _, p := range pts {
				layer.Markers = append(layer.Markers, Marker{
					ID:             p.ID,
					Latitude:       p.Latitude,
					Longitude:      p.Longitude,
					AccuracyMeters: p.AccuracyMeters,
					Label:          fmt.Sprintf("%s %d", label, p.SequenceNumber),
					Icon:           spec.Icon,
					Color:          spec.Color,
					Notes:          p.Notes,
				})
			}
		}

		view.Layers = append(view.Layers, layer)
		view.Counts[c] = len(pts)
		view.Total += len(pts)
	}

	return view
}
