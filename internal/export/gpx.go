package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"fieldmark/internal/model"
)

// GPX 1.1 document structure. Accuracy and attribution are carried twice:
// once in the waypoint description for humans, once in an extension block
// for tools that ignore descriptions.
type gpxDoc struct {
	XMLName  xml.Name    `xml:"gpx"`
	Version  string      `xml:"version,attr"`
	Creator  string      `xml:"creator,attr"`
	Xmlns    string      `xml:"xmlns,attr"`
	Metadata gpxMetadata `xml:"metadata"`
	Points   []gpxWpt    `xml:"wpt"`
}

type gpxMetadata struct {
	Name string `xml:"name"`
	Desc string `xml:"desc"`
	Time string `xml:"time"`
}

type gpxWpt struct {
	Lat        float64  `xml:"lat,attr"`
	Lon        float64  `xml:"lon,attr"`
	Time       string   `xml:"time"`
	Name       string   `xml:"name"`
	Desc       string   `xml:"desc"`
	Extensions gpxExt   `xml:"extensions"`
}

type gpxExt struct {
	Accuracy     string `xml:"fieldmark:accuracy"`
	RecordedBy   string `xml:"fieldmark:recordedBy"`
	RecordedDate string `xml:"fieldmark:recordedDate"`
}

func (e *Exporter) encodeGPX(snap model.Snapshot) ([]byte, error) {
	doc := gpxDoc{
		Version: "1.1",
		Creator: Version,
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Metadata: gpxMetadata{
			Name: e.lang.Get("export.title"),
			Desc: e.lang.Get("export.description"),
			Time: e.clock.Now().UTC().Format(time.RFC3339),
		},
	}

	for _, p := range orderedPoints(snap) {
		desc := p.RecordedBy
		if p.Notes != "" {
			desc += " - " + p.Notes
		}
		doc.Points = append(doc.Points, gpxWpt{
			Lat:  p.Latitude,
			Lon:  p.Longitude,
			Time: time.UnixMilli(p.CapturedAt).UTC().Format(time.RFC3339),
			Name: fmt.Sprintf("%s %d", e.label(p.Category), p.SequenceNumber),
			Desc: desc,
			Extensions: gpxExt{
				Accuracy:     strconv.FormatFloat(p.AccuracyMeters, 'f', -1, 64),
				RecordedBy:   p.RecordedBy,
				RecordedDate: time.UnixMilli(p.CapturedAt).UTC().Format(time.RFC3339),
			},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding gpx: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
