package deliver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DownloadSink writes the payload into the configured export directory,
// mirroring the browser's download fallback.
type DownloadSink struct {
	Dir string
}

var _ Sink = (*DownloadSink)(nil)

func (d *DownloadSink) Name() string { return "download" }

func (d *DownloadSink) Deliver(_ context.Context, p Payload) (string, error) {
	if d.Dir == "" {
		return "", fmt.Errorf("no export directory configured")
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	dest := filepath.Join(d.Dir, p.Filename)
	if err := os.WriteFile(dest, p.Data, 0644); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return dest, nil
}

// ConsoleSink streams the serialized text to a writer (normally stdout) so
// the user can copy it by hand. Last-resort analogue of the clipboard path.
type ConsoleSink struct {
	W io.Writer
}

var _ Sink = (*ConsoleSink)(nil)

func (c *ConsoleSink) Name() string { return "console" }

func (c *ConsoleSink) Deliver(_ context.Context, p Payload) (string, error) {
	if c.W == nil {
		return "", fmt.Errorf("no console writer available")
	}
	if _, err := c.W.Write(p.Data); err != nil {
		return "", fmt.Errorf("writing to console: %w", err)
	}
	return "console output", nil
}
