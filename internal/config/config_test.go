package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/fieldmark",
		LogDir:  "/home/user/.local/share/fieldmark/log",
		Storage: StorageConfig{Type: "sqlite", DataDir: "/home/user/.local/share/fieldmark/data"},
		Location: LocationConfig{
			Type:              "file",
			FixPath:           "/run/gps/fix.json",
			MinIntervalMillis: 2000,
			MaxFixAgeMillis:   60000,
		},
		Export: ExportConfig{Dir: "/home/user/exports", Encrypt: true},
		Share:  ShareConfig{Type: "s3", S3Bucket: "field-data", S3Prefix: "team-a/", S3Region: "eu-west-3"},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/fieldmark/keys/fieldmark.pub",
			PrivateKeyPath: "/home/user/.local/share/fieldmark/keys/fieldmark.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "sqlite")
	}
	if got.Location.FixPath != "/run/gps/fix.json" {
		t.Errorf("Location.FixPath = %q, want %q", got.Location.FixPath, "/run/gps/fix.json")
	}
	if got.Location.MinIntervalMillis != 2000 {
		t.Errorf("Location.MinIntervalMillis = %d, want %d", got.Location.MinIntervalMillis, 2000)
	}
	if !got.Export.Encrypt {
		t.Error("Export.Encrypt = false, want true")
	}
	if got.Share.S3Bucket != "field-data" {
		t.Errorf("Share.S3Bucket = %q, want %q", got.Share.S3Bucket, "field-data")
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/fieldmark")

	if cfg.BaseDir != "/data/fieldmark" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/fieldmark")
	}
	if cfg.LogDir != "/data/fieldmark/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/fieldmark/log")
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q, want %q", cfg.Storage.Type, "sqlite")
	}
	if cfg.Location.Type != "file" {
		t.Errorf("Location.Type = %q, want %q", cfg.Location.Type, "file")
	}
	if cfg.Location.MinIntervalMillis != 2000 {
		t.Errorf("Location.MinIntervalMillis = %d, want %d", cfg.Location.MinIntervalMillis, 2000)
	}
	if cfg.Location.MaxFixAgeMillis != 60000 {
		t.Errorf("Location.MaxFixAgeMillis = %d, want %d", cfg.Location.MaxFixAgeMillis, 60000)
	}
	if cfg.Share.Type != "none" {
		t.Errorf("Share.Type = %q, want %q", cfg.Share.Type, "none")
	}
	if cfg.Encryption.PublicKeyPath != "/data/fieldmark/keys/fieldmark.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/fieldmark/keys/fieldmark.pub")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fieldmark.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fieldmark.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fieldmark.toml")
		cfg := NewConfig(dir)
		cfg.Storage = StorageConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/fieldmark.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
