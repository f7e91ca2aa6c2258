package state

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(filepath.Join(t.TempDir(), "espup", "espup.json"), logger)
}

func sampleConfig() *Config {
	return &Config{
		HostTriple:     "x86_64-unknown-linux-gnu",
		Targets:        []string{"esp32", "esp32c3"},
		XtensaRust:     &XtensaRust{Version: "1.64.0.0", Path: "/home/u/.rustup/toolchains/esp"},
		LlvmPath:       "/home/u/.espressif/tools/llvm",
		ExtraCrates:    []string{"cargo-espflash"},
		ExportFile:     "/home/u/export-esp.sh",
		NightlyVersion: "nightly",
	}
}

func TestLoadMissingRecord(t *testing.T) {
	store := testStore(t)

	_, err := store.Load()
	if !errors.Is(err, ErrNoInstallation) {
		t.Fatalf("expected ErrNoInstallation, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)
	cfg := sampleConfig()

	if err := store.Save(cfg); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !store.Exists() {
		t.Fatal("expected record to exist after save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.HostTriple != cfg.HostTriple {
		t.Errorf("got host triple %q, want %q", loaded.HostTriple, cfg.HostTriple)
	}
	if loaded.XtensaRust == nil || loaded.XtensaRust.Version != "1.64.0.0" {
		t.Errorf("got xtensa rust %+v", loaded.XtensaRust)
	}
	if len(loaded.Targets) != 2 {
		t.Errorf("got targets %v", loaded.Targets)
	}
}

func TestSaveClearedFieldsOmitted(t *testing.T) {
	store := testStore(t)
	cfg := sampleConfig()
	cfg.XtensaRust = nil
	cfg.LlvmPath = ""

	if err := store.Save(cfg); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	for _, field := range []string{"xtensa_rust", "llvm_path"} {
		if strings.Contains(string(data), field) {
			t.Errorf("cleared field %q still serialized", field)
		}
	}
}

func TestLoadCorruptRecord(t *testing.T) {
	store := testStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load()
	if err == nil || errors.Is(err, ErrNoInstallation) {
		t.Fatalf("expected corrupt-record error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	if err := store.Save(sampleConfig()); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if store.Exists() {
		t.Error("expected record to be gone")
	}
	// Deleting again is a no-op.
	if err := store.Delete(); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}
