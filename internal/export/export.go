// Package export serializes point-store snapshots into the interchange
// formats (CSV, GPX, generic JSON, GeoJSON). Serialization is lossless:
// the generic JSON document round-trips back into identical points.
package export

import (
	"fmt"

	"fieldmark/internal/field"
	"fieldmark/internal/i18n"
	"fieldmark/internal/model"
)

// Version tags generated documents so later readers can detect the layout.
const Version = "fieldmark/1"

// Format identifies one interchange format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatGPX     Format = "gpx"
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
)

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatGPX, FormatJSON, FormatGeoJSON}
}

// ParseFormat validates a raw format string.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	switch f {
	case FormatCSV, FormatGPX, FormatJSON, FormatGeoJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format: %q", s)
}

// Extension returns the filename extension, dot included.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type matching the serialized content.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatGPX:
		return "application/gpx+xml"
	case FormatJSON:
		return "application/json"
	case FormatGeoJSON:
		return "application/geo+json"
	}
	return "application/octet-stream"
}

// Exporter serializes snapshots. Labels and descriptions come from the
// catalog; timestamps from the clock.
type Exporter struct {
	lang  *i18n.Catalog
	clock field.Clock
}

// NewExporter creates an Exporter resolving labels against lang.
func NewExporter(lang *i18n.Catalog, clock field.Clock) *Exporter {
	return &Exporter{lang: lang, clock: clock}
}

// Export serializes the included categories of snap in the given format.
// include nil means all categories. When the included categories hold zero
// points, Export returns an error wrapping field.ErrNothingToExport and no
// bytes; an empty-but-valid file is never produced.
func (e *Exporter) Export(format Format, snap model.Snapshot, include []model.Category) ([]byte, error) {
	selected, err := selectCategories(snap, include)
	if err != nil {
		return nil, err
	}
	if selected.TotalCount() == 0 {
		return nil, field.ErrNothingToExport
	}

	switch format {
	case FormatCSV:
		return e.encodeCSV(selected)
	case FormatGPX:
		return e.encodeGPX(selected)
	case FormatJSON:
		return e.encodeJSON(selected)
	case FormatGeoJSON:
		return e.encodeGeoJSON(selected)
	}
	return nil, fmt.Errorf("unknown export format: %q", format)
}

// Filename returns a timestamped filename for the given format, e.g.
// "fieldmark-20240301-154500.gpx".
func (e *Exporter) Filename(format Format) string {
	return "fieldmark-" + e.clock.Now().Format("20060102-150405") + format.Extension()
}

// selectCategories filters snap down to the included categories, in the
// fixed category iteration order.
func selectCategories(snap model.Snapshot, include []model.Category) (model.Snapshot, error) {
	if include == nil {
		include = model.Categories()
	}

	wanted := make(map[model.Category]bool, len(include))
	for _, c := range include {
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category: %q", c)
		}
		wanted[c] = true
	}

	out := make(model.Snapshot)
	for _, c := range model.Categories() {
		if wanted[c] {
			out[c] = snap[c]
		}
	}
	return out, nil
}

// orderedPoints flattens a snapshot in category-then-insertion order.
func orderedPoints(snap model.Snapshot) []model.Point {
	var pts []model.Point
	for _, c := range model.Categories() {
		pts = append(pts, snap[c]...)
	}
	return pts
}

func (e *Exporter) label(c model.Category) string {
	return e.lang.Get(c.Spec().LabelKey)
}

func (e *Exporter) description(c model.Category) string {
	return e.lang.Get(c.Spec().DescKey)
}
