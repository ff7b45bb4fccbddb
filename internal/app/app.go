package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fieldmark/internal/config"
	"fieldmark/internal/deliver"
	"fieldmark/internal/encryption"
	"fieldmark/internal/export"
	"fieldmark/internal/field"
	"fieldmark/internal/i18n"
	"fieldmark/internal/identity"
	"fieldmark/internal/kv"
	"fieldmark/internal/location"
	"fieldmark/internal/maplayer"
	"fieldmark/internal/model"
	"fieldmark/internal/pointstore"
	"fieldmark/internal/prefs"
)

// App is the application layer between the CLI and the field service. It
// constructs all dependencies from config, exposes the export/import flows,
// and manages the store lifecycle on Close.
type App struct {
	cfg       *config.Config
	kv        kv.Store
	service   *field.Service
	prefs     *prefs.Prefs
	encryptor field.Encryptor
	logger    field.Logger
	clock     field.Clock
	logFile   *os.File

	// Console is the writer the last-resort delivery sink uses; stdout in
	// production, a buffer in tests.
	Console io.Writer
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Mark", "Export"). The caller
// must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger.With("operation", operation)}

	store, err := kv.NewStoreFromConfig(cfg.Storage)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	a, err := newApp(cfg, store, logger, field.RealClock{})
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

// newApp wires an App over an already-open KV store. Split out so tests can
// inject memory backends and fixed clocks.
func newApp(cfg *config.Config, store kv.Store, logger field.Logger, clock field.Clock) (*App, error) {
	points, err := pointstore.Open(store, field.UUIDGenerator{}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening point store: %w", err)
	}

	ident := identity.NewProvider(store, clock, logger)

	source, err := location.NewSourceFromConfig(cfg.Location, clock)
	if err != nil {
		return nil, fmt.Errorf("creating location source: %w", err)
	}

	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	service := field.NewService(points, ident, source, logger, clock)
	if err := service.Startup(); err != nil {
		return nil, fmt.Errorf("startup maintenance: %w", err)
	}

	return &App{
		cfg:       cfg,
		kv:        store,
		service:   service,
		prefs:     prefs.New(store),
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		Console:   os.Stdout,
	}, nil
}

// Close releases the store and the log file.
func (a *App) Close() error {
	err := a.kv.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// Service returns the field service the CLI commands call.
func (a *App) Service() *field.Service { return a.service }

// Prefs returns the presentation preferences.
func (a *App) Prefs() *prefs.Prefs { return a.prefs }

// Encryptor returns the export encryptor.
func (a *App) Encryptor() field.Encryptor { return a.encryptor }

// Catalog resolves the i18n catalog for the stored language preference.
func (a *App) Catalog() (*i18n.Catalog, error) {
	lang, err := a.prefs.Language()
	if err != nil {
		return nil, err
	}
	return i18n.Match(lang), nil
}

// View builds the presentation snapshot: per-category marker layers plus
// counters, honoring the persisted visibility toggles.
func (a *App) View() (maplayer.View, error) {
	cat, err := a.Catalog()
	if err != nil {
		return maplayer.View{}, err
	}
	return maplayer.Build(a.service.Snapshot(), a.service.Store().Visibility(), cat), nil
}

// Export serializes the included categories in the given format and runs
// the delivery cascade: share upload when configured, the download
// directory, then the console. Only the final outcome is returned; a
// zero-point selection returns an error wrapping field.ErrNothingToExport
// before anything is delivered.
func (a *App) Export(ctx context.Context, format export.Format, include []model.Category) (deliver.Outcome, error) {
	cat, err := a.Catalog()
	if err != nil {
		return deliver.Outcome{}, err
	}

	exporter := export.NewExporter(cat, a.clock)
	data, err := exporter.Export(format, a.service.Snapshot(), include)
	if err != nil {
		return deliver.Outcome{}, err
	}

	payload := deliver.Payload{
		Filename:    exporter.Filename(format),
		ContentType: format.ContentType(),
		Data:        data,
	}

	if a.cfg.Export.Encrypt {
		if !a.encryptor.IsConfigured() {
			return deliver.Outcome{}, fmt.Errorf("export encryption enabled but no keys configured; run 'fieldmark keys init'")
		}
		var buf bytes.Buffer
		if err := a.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
			return deliver.Outcome{}, fmt.Errorf("encrypting export: %w", err)
		}
		payload.Data = buf.Bytes()
		payload.Filename += ".age"
		payload.ContentType = "application/octet-stream"
	}

	cascade := deliver.NewCascade(a.logger, a.sinks()...)
	return cascade.Deliver(ctx, payload)
}

// sinks assembles the delivery cascade in fallback order.
func (a *App) sinks() []deliver.Sink {
	var sinks []deliver.Sink
	if a.cfg.Share.Type == "s3" {
		if s3, err := deliver.NewS3Sink(a.cfg.Share); err == nil {
			sinks = append(sinks, s3)
		} else {
			a.logger.Warn("share sink misconfigured, skipping", "err", err)
		}
	}
	sinks = append(sinks,
		&deliver.DownloadSink{Dir: a.cfg.Export.Dir},
		&deliver.ConsoleSink{W: a.Console},
	)
	return sinks
}

// Import reads a generic-JSON export file (optionally age-encrypted, by
// filename suffix) and replaces the store contents with it. Returns the
// number of points restored.
func (a *App) Import(path, passphrase string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading import file: %w", err)
	}

	if strings.HasSuffix(path, ".age") {
		var buf bytes.Buffer
		if err := a.encryptor.Decrypt(passphrase, bytes.NewReader(data), &buf); err != nil {
			return 0, fmt.Errorf("decrypting import file: %w", err)
		}
		data = buf.Bytes()
	}

	snap, err := export.DecodeJSON(data)
	if err != nil {
		return 0, err
	}

	if err := a.service.Store().Restore(snap); err != nil {
		return 0, err
	}
	return snap.TotalCount(), nil
}
