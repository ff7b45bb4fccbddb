package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"reflect"
	"strings"
	"testing"

	"fieldmark/internal/export"
	"fieldmark/internal/field"
	"fieldmark/internal/i18n"
	"fieldmark/internal/model"
	"fieldmark/internal/testutil"
)

func newExporter(lang string) *export.Exporter {
	return export.NewExporter(i18n.Match(lang), testutil.FixedClock())
}

// sampleSnapshot holds two clearing points and one boundary point from a
// single day of collection.
func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		model.CategoryClearing: {
			{ID: "c-1", Category: model.CategoryClearing, SequenceNumber: 1,
				Latitude: 48.8566, Longitude: 2.3522, AccuracyMeters: 8,
				CapturedAt: 1709285400000, RecordedBy: "Alice", SessionID: "2024-03-01"},
			{ID: "c-2", Category: model.CategoryClearing, SequenceNumber: 2,
				Latitude: 48.857, Longitude: 2.3531, AccuracyMeters: 12.5,
				CapturedAt: 1709285460000, Notes: "skid trail, \"wet\" section",
				RecordedBy: "Alice", SessionID: "2024-03-01"},
		},
		model.CategoryBoundary: {
			{ID: "b-1", Category: model.CategoryBoundary, SequenceNumber: 1,
				Latitude: 48.858, Longitude: 2.354, AccuracyMeters: 5,
				CapturedAt: 1709285520000, RecordedBy: "Alice", SessionID: "2024-03-01"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range export.Formats() {
		got, err := export.ParseFormat(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f, got, err)
		}
	}
	if _, err := export.ParseFormat("kml"); err == nil {
		t.Error("ParseFormat(kml) did not fail")
	}
}

func TestExport_NothingToExport(t *testing.T) {
	e := newExporter("en")

	t.Run("empty snapshot", func(t *testing.T) {
		_, err := e.Export(export.FormatCSV, model.Snapshot{}, nil)
		if !errors.Is(err, field.ErrNothingToExport) {
			t.Errorf("error = %v, want ErrNothingToExport", err)
		}
	})

	t.Run("selection excludes every point", func(t *testing.T) {
		_, err := e.Export(export.FormatCSV, sampleSnapshot(), []model.Category{model.CategoryExploitation})
		if !errors.Is(err, field.ErrNothingToExport) {
			t.Errorf("error = %v, want ErrNothingToExport", err)
		}
	})

	t.Run("unknown category in selection", func(t *testing.T) {
		_, err := e.Export(export.FormatCSV, sampleSnapshot(), []model.Category{"swamp"})
		if err == nil || errors.Is(err, field.ErrNothingToExport) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})
}

func TestExport_CSV(t *testing.T) {
	data, err := newExporter("en").Export(export.FormatCSV, sampleSnapshot(), nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("reading produced csv: %v", err)
	}

	wantHeader := []string{"category", "number", "latitude", "longitude", "accuracy_m", "recorded_by", "captured_at", "notes"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3 points", len(rows))
	}

	// Category order is fixed: clearing before boundary.
	if rows[1][0] != "Clearing" || rows[3][0] != "Boundary" {
		t.Errorf("row order = %q, %q, %q", rows[1][0], rows[2][0], rows[3][0])
	}
	if rows[1][2] != "48.8566" || rows[1][3] != "2.3522" {
		t.Errorf("coordinates = %q, %q", rows[1][2], rows[1][3])
	}
	if rows[2][7] != `skid trail, "wet" section` {
		t.Errorf("notes did not survive quoting: %q", rows[2][7])
	}
}

func TestExport_CSV_FrenchLabels(t *testing.T) {
	data, err := newExporter("fr").Export(export.FormatCSV, sampleSnapshot(), nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(string(data), "Débardage") {
		t.Error("french labels missing from csv")
	}
}

func TestExport_GPX(t *testing.T) {
	data, err := newExporter("en").Export(export.FormatGPX, sampleSnapshot(), nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc struct {
		Version string `xml:"version,attr"`
		Wpts    []struct {
			Lat  float64 `xml:"lat,attr"`
			Lon  float64 `xml:"lon,attr"`
			Name string  `xml:"name"`
			Desc string  `xml:"desc"`
		} `xml:"wpt"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing produced gpx: %v", err)
	}

	if doc.Version != "1.1" {
		t.Errorf("gpx version = %q, want 1.1", doc.Version)
	}
	if len(doc.Wpts) != 3 {
		t.Fatalf("waypoints = %d, want 3", len(doc.Wpts))
	}
	if doc.Wpts[0].Lat != 48.8566 || doc.Wpts[0].Lon != 2.3522 {
		t.Errorf("waypoint position = (%v, %v)", doc.Wpts[0].Lat, doc.Wpts[0].Lon)
	}
	if doc.Wpts[0].Name != "Clearing 1" {
		t.Errorf("waypoint name = %q, want %q", doc.Wpts[0].Name, "Clearing 1")
	}
	if doc.Wpts[1].Desc != `Alice - skid trail, "wet" section` {
		t.Errorf("waypoint desc = %q", doc.Wpts[1].Desc)
	}
}

func TestExport_JSON_RoundTrip(t *testing.T) {
	snap := sampleSnapshot()

	data, err := newExporter("en").Export(export.FormatJSON, snap, nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing produced json: %v", err)
	}
	if doc.Version != export.Version {
		t.Errorf("version = %q, want %q", doc.Version, export.Version)
	}
	if doc.TotalCount != 3 {
		t.Errorf("totalCount = %d, want 3", doc.TotalCount)
	}
	if got := doc.Categories[model.CategoryClearing].Points[0].TypeName; got != "Clearing" {
		t.Errorf("typeName = %q, want Clearing", got)
	}

	decoded, err := export.DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	for c, pts := range snap {
		if !reflect.DeepEqual(decoded[c], pts) {
			t.Errorf("%s points did not round-trip:\n got %+v\nwant %+v", c, decoded[c], pts)
		}
	}
}

func TestExport_JSON_SinglePoint(t *testing.T) {
	snap := model.Snapshot{
		model.CategoryExploitation: {
			{ID: "p-1", Category: model.CategoryExploitation, SequenceNumber: 1,
				Latitude: 48.8566, Longitude: 2.3522, AccuracyMeters: 8,
				CapturedAt: 1709285400000, RecordedBy: "Alice", SessionID: "2024-03-01"},
		},
	}

	data, err := newExporter("en").Export(export.FormatJSON, snap, nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing produced json: %v", err)
	}

	pts := doc.Categories[model.CategoryExploitation].Points
	if len(pts) != 1 {
		t.Fatalf("exploitation points = %d, want 1", len(pts))
	}
	p := pts[0]
	if p.SequenceNumber != 1 || p.Latitude != 48.8566 || p.Longitude != 2.3522 ||
		p.AccuracyMeters != 8 || p.RecordedBy != "Alice" || p.SessionID != "2024-03-01" {
		t.Errorf("exported point = %+v", p)
	}
	if p.TypeName != "Exploitation" {
		t.Errorf("typeName = %q, want the localized label", p.TypeName)
	}
}

func TestDecodeJSON_RejectsMismatchedCategory(t *testing.T) {
	data, _ := newExporter("en").Export(export.FormatJSON, sampleSnapshot(), nil)
	tampered := bytes.Replace(data, []byte(`"category": "clearing"`), []byte(`"category": "boundary"`), 1)

	if _, err := export.DecodeJSON(tampered); err == nil {
		t.Error("DecodeJSON() accepted a point filed under the wrong category")
	}
}

func TestExport_GeoJSON(t *testing.T) {
	// Latitude and longitude magnitudes differ so a swapped ordering fails.
	data, err := newExporter("en").Export(export.FormatGeoJSON, sampleSnapshot(), nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string     `json:"type"`
				Coordinates [2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
		Properties struct {
			TotalCount      int            `json:"totalCount"`
			Collectors      []string       `json:"collectors"`
			CountByCategory map[string]int `json:"countByCategory"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("parsing produced geojson: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q", fc.Type)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("features = %d, want 3", len(fc.Features))
	}

	coords := fc.Features[0].Geometry.Coordinates
	if coords[0] != 2.3522 || coords[1] != 48.8566 {
		t.Errorf("coordinates = %v, want [longitude, latitude] = [2.3522, 48.8566]", coords)
	}

	props := fc.Features[0].Properties
	if props["icon"] != "truck" || props["color"] != "#f0ad4e" {
		t.Errorf("symbolization = %v/%v", props["icon"], props["color"])
	}
	if props["label"] != "Clearing 1" {
		t.Errorf("label = %v, want Clearing 1", props["label"])
	}

	if fc.Properties.TotalCount != 3 {
		t.Errorf("totalCount = %d, want 3", fc.Properties.TotalCount)
	}
	if !reflect.DeepEqual(fc.Properties.Collectors, []string{"Alice"}) {
		t.Errorf("collectors = %v", fc.Properties.Collectors)
	}
	if fc.Properties.CountByCategory["clearing"] != 2 {
		t.Errorf("countByCategory = %v", fc.Properties.CountByCategory)
	}
}

func TestExport_CategorySelection(t *testing.T) {
	data, err := newExporter("en").Export(export.FormatCSV, sampleSnapshot(), []model.Category{model.CategoryBoundary})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 boundary point", len(rows))
	}
	if rows[1][0] != "Boundary" {
		t.Errorf("category = %q", rows[1][0])
	}
}

func TestExporter_Filename(t *testing.T) {
	got := newExporter("en").Filename(export.FormatGPX)
	if got != "fieldmark-20240301-103000.gpx" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestFormat_ContentType(t *testing.T) {
	cases := map[export.Format]string{
		export.FormatCSV:     "text/csv",
		export.FormatGPX:     "application/gpx+xml",
		export.FormatJSON:    "application/json",
		export.FormatGeoJSON: "application/geo+json",
	}
	for f, want := range cases {
		if got := f.ContentType(); got != want {
			t.Errorf("ContentType(%s) = %q, want %q", f, got, want)
		}
	}
}
