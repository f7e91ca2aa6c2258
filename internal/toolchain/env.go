package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/esp-rs/espup/internal/config"
	"github.com/esp-rs/espup/internal/download"
	"github.com/esp-rs/espup/internal/host"
)

// Env bundles the collaborators and filesystem layout shared by the
// installable components.
type Env struct {
	Host     host.Triple
	Settings *config.Settings
	Client   *download.Client
	Logger   *slog.Logger

	// ToolsDir holds unpacked LLVM and GCC toolchains.
	ToolsDir string
	// DistDir holds downloaded distribution archives.
	DistDir string
	// FrameworksDir holds ESP-IDF checkouts.
	FrameworksDir string
	// RustToolchainDir is the rustup directory of the "esp" toolchain.
	RustToolchainDir string
}

// NewEnv resolves the default filesystem layout for the given host.
func NewEnv(h host.Triple, settings *config.Settings, client *download.Client, logger *slog.Logger) (*Env, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	rustupHome := os.Getenv("RUSTUP_HOME")
	if rustupHome == "" {
		rustupHome = filepath.Join(home, ".rustup")
	}

	if settings == nil {
		settings = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	espressifDir := filepath.Join(home, ".espressif")
	return &Env{
		Host:             h,
		Settings:         settings,
		Client:           client,
		Logger:           logger,
		ToolsDir:         filepath.Join(espressifDir, "tools"),
		DistDir:          filepath.Join(espressifDir, "dist"),
		FrameworksDir:    filepath.Join(espressifDir, "frameworks"),
		RustToolchainDir: filepath.Join(rustupHome, "toolchains", "esp"),
	}, nil
}

// ClearDistDir removes the downloaded distribution archives. Used by the
// minimal profile after install and by uninstall.
func (e *Env) ClearDistDir() error {
	if _, err := os.Stat(e.DistDir); os.IsNotExist(err) {
		return nil
	}
	e.Logger.Info("clearing dist folder", "path", e.DistDir)
	return RemoveToolDir(e.DistDir)
}

// fetch downloads an artifact into the dist dir and returns the archive
// path.
func (e *Env) fetch(ctx context.Context, url string) (string, error) {
	dest := filepath.Join(e.DistDir, path.Base(url))
	_, err := e.Client.Download(ctx, download.Options{
		URL:        url,
		DestPath:   dest,
		RetryCount: e.Settings.DownloadRetries,
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

// RemoveToolDir removes an installed tool directory. Removing an absent
// directory is not an error; a failed removal tells the operator to
// resolve it manually.
func RemoveToolDir(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove '%s', verify it is removed manually and re-run uninstall: %w", path, err)
	}
	return nil
}
