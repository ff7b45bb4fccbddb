package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"fieldmark/internal/model"
)

// encodeCSV writes one header row plus one row per point in
// category-then-insertion order. encoding/csv quotes any field containing
// the delimiter.
func (e *Exporter) encodeCSV(snap model.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"category", "number", "latitude", "longitude", "accuracy_m", "recorded_by", "captured_at", "notes"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, p := range orderedPoints(snap) {
		row := []string{
			e.label(p.Category),
			strconv.Itoa(p.SequenceNumber),
			strconv.FormatFloat(p.Latitude, 'f', -1, 64),
			strconv.FormatFloat(p.Longitude, 'f', -1, 64),
			strconv.FormatFloat(p.AccuracyMeters, 'f', -1, 64),
			p.RecordedBy,
			time.UnixMilli(p.CapturedAt).Format("2006-01-02 15:04:05"),
			p.Notes,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
