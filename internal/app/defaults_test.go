package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("environment overrides win", func(t *testing.T) {
		t.Setenv("FIELDMARK_CONFIG_PATH", "/etc/fieldmark/fm.toml")
		t.Setenv("FIELDMARK_HOME", "/srv/fieldmark")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != "/etc/fieldmark/fm.toml" {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/srv/fieldmark" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
		if defaults["log_dir"] != "/srv/fieldmark/log" {
			t.Errorf("log_dir = %q", defaults["log_dir"])
		}
	})

	t.Run("falls back to home-relative paths", func(t *testing.T) {
		t.Setenv("FIELDMARK_CONFIG_PATH", "")
		t.Setenv("FIELDMARK_HOME", "")
		home := t.TempDir()
		t.Setenv("HOME", home)

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != filepath.Join(home, ".config", "fieldmark.toml") {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != filepath.Join(home, ".local", "share", "fieldmark") {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
	})
}
