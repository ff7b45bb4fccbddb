package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for fieldmark.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Storage    StorageConfig    `toml:"storage"`
	Location   LocationConfig   `toml:"location"`
	Export     ExportConfig     `toml:"export"`
	Share      ShareConfig      `toml:"share"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// StorageConfig configures the durable key-value store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type    string `toml:"type"`               // "sqlite" (default) or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// LocationConfig configures where position fixes come from.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type LocationConfig struct {
	Type    string `toml:"type"`               // "file" (default), "static", or "none"
	FixPath string `toml:"fix_path,omitempty"` // only used for type=file

	// Static coordinates, only used for type=static (surveyed base station).
	Latitude  float64 `toml:"latitude,omitempty"`
	Longitude float64 `toml:"longitude,omitempty"`

	// MinIntervalMillis is the minimum spacing between processed fixes;
	// faster updates are dropped. MaxFixAgeMillis is how old the latest fix
	// may be before the feed reports no usable position.
	MinIntervalMillis int64 `toml:"min_interval_millis"`
	MaxFixAgeMillis   int64 `toml:"max_fix_age_millis"`
}

// ExportConfig configures export serialization and the download directory.
type ExportConfig struct {
	Dir     string `toml:"dir"`     // where download-fallback files land
	Encrypt bool   `toml:"encrypt"` // age-encrypt export payloads before delivery
}

// ShareConfig configures the primary (share-sheet analogue) delivery sink.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ShareConfig struct {
	Type string `toml:"type"` // "none" (default) or "s3"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for export encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config with default paths under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Location: LocationConfig{
			Type:              "file",
			FixPath:           filepath.Join(baseDir, "fix.json"),
			MinIntervalMillis: 2000,
			MaxFixAgeMillis:   60000,
		},
		Export: ExportConfig{
			Dir: filepath.Join(baseDir, "exports"),
		},
		Share: ShareConfig{Type: "none"},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "fieldmark.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "fieldmark.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
