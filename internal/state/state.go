// Package state persists the durable record of what espup has installed.
//
// The record obeys one invariant: a field is present if and only if the
// corresponding artifact is currently present on disk or in the rustup
// registry. Install writes the record exactly once, after every component
// succeeded. Uninstall clears fields one group at a time, always after the
// physical removal, and persists between groups so that a crash at any
// point leaves a record that still names only artifacts genuinely present.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ErrNoInstallation indicates there is no recorded installation to act on.
var ErrNoInstallation = errors.New("no espup installation found")

// XtensaRust records the installed Xtensa Rust toolchain.
type XtensaRust struct {
	Version string `json:"version"`
	Path    string `json:"path"`
}

// Config is the persisted installation record.
type Config struct {
	HostTriple     string      `json:"host_triple"`
	Targets        []string    `json:"targets"`
	EspIdfVersion  string      `json:"esp_idf_version,omitempty"`
	XtensaRust     *XtensaRust `json:"xtensa_rust,omitempty"`
	LlvmPath       string      `json:"llvm_path,omitempty"`
	ExtraCrates    []string    `json:"extra_crates,omitempty"`
	ExportFile     string      `json:"export_file,omitempty"`
	NightlyVersion string      `json:"nightly_version"`
}

// Store reads and writes the installation record at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// DefaultPath returns the per-user location of the installation record.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "espup", "espup.json"), nil
}

// NewStore creates a store for the record at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the record location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether an installation record is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the installation record. A missing record fails with
// ErrNoInstallation.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoInstallation
		}
		return nil, fmt.Errorf("reading state file %s: %w", s.path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("state file %s is corrupt, resolve it manually: %w", s.path, err)
	}
	return &cfg, nil
}

// Save persists the record atomically: the record is written to a
// temporary file first and moved into place with a rename, so a crash
// mid-write never leaves a truncated record behind.
func (s *Store) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".espup-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}

	s.logger.Debug("state saved", "path", s.path)
	return nil
}

// Delete removes the record entirely. Deleting an absent record is not an
// error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file %s: %w", s.path, err)
	}
	s.logger.Debug("state deleted", "path", s.path)
	return nil
}
