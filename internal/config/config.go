package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Settings carries tunable defaults that can be overridden by an optional
// YAML settings file. CLI flags take precedence over file values.
type Settings struct {
	// RustBuildReleasesURL is the download base of Xtensa Rust dists.
	RustBuildReleasesURL string `yaml:"rust_build_releases_url"`
	// RustBuildIndexURL is the release index queried for "latest".
	RustBuildIndexURL string `yaml:"rust_build_index_url"`
	// LlvmReleasesURL is the download base of Xtensa LLVM dists.
	LlvmReleasesURL string `yaml:"llvm_releases_url"`
	// GccReleasesURL is the download base of the cross-GCC dists.
	GccReleasesURL string `yaml:"gcc_releases_url"`
	// EspIdfRepositoryURL is the ESP-IDF source repository.
	EspIdfRepositoryURL string `yaml:"esp_idf_repository_url"`

	DefaultNightly     string `yaml:"default_nightly"`
	DefaultLlvmVersion string `yaml:"default_llvm_version"`
	DownloadRetries    int    `yaml:"download_retries"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		RustBuildReleasesURL: "https://github.com/esp-rs/rust-build/releases/download",
		RustBuildIndexURL:    "https://api.github.com/repos/esp-rs/rust-build/releases/latest",
		LlvmReleasesURL:      "https://github.com/espressif/llvm-project/releases/download",
		GccReleasesURL:       "https://github.com/espressif/crosstool-NG/releases/download",
		EspIdfRepositoryURL:  "https://github.com/espressif/esp-idf",
		DefaultNightly:       "nightly",
		DefaultLlvmVersion:   "15",
		DownloadRetries:      3,
	}
}

// Load reads a settings file from the given path on top of the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	settings := Default()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return settings, nil
}

// FindFile searches for a settings file in standard locations. An empty
// path with a nil error means no file exists and defaults apply.
func FindFile() (string, error) {
	searchPaths := []string{"espup.yaml"}
	if home, err := homedir.Dir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "espup", "espup.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Resolve loads the discovered settings file, falling back to defaults
// when none exists.
func Resolve() (*Settings, error) {
	path, err := FindFile()
	if err != nil || path == "" {
		return Default(), nil
	}
	return Load(path)
}
