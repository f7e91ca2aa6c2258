package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	settings := Default()
	if settings.DefaultNightly != "nightly" {
		t.Errorf("got nightly %q", settings.DefaultNightly)
	}
	if settings.DownloadRetries != 3 {
		t.Errorf("got retries %d, want 3", settings.DownloadRetries)
	}
	if settings.EspIdfRepositoryURL == "" {
		t.Error("expected a default ESP-IDF repository URL")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "espup.yaml")
	content := "default_nightly: nightly-2023-02-01\ndownload_retries: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing settings file: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.DefaultNightly != "nightly-2023-02-01" {
		t.Errorf("got nightly %q", settings.DefaultNightly)
	}
	if settings.DownloadRetries != 5 {
		t.Errorf("got retries %d, want 5", settings.DownloadRetries)
	}
	// Untouched fields keep their defaults.
	if settings.DefaultLlvmVersion != "15" {
		t.Errorf("got llvm version %q, want 15", settings.DefaultLlvmVersion)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "espup.yaml")
	if err := os.WriteFile(path, []byte("default_nightly: [broken"), 0o644); err != nil {
		t.Fatalf("writing settings file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed file")
	}
}
