package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esp-rs/espup/internal/download"
)

// llvmReleases pins each supported major version to its dist tag.
var llvmReleases = map[string]string{
	"15": "esp-15.0.0-20221201",
}

// Llvm installs the Xtensa-enabled LLVM build. The minified profile only
// fetches the libraries artifact, which is all that bindgen needs.
type Llvm struct {
	MajorVersion string
	FullVersion  string
	Minified     bool

	env        *Env
	installDir string
}

// NewLlvm creates the component for the requested major version.
func NewLlvm(env *Env, majorVersion string, minified bool) (*Llvm, error) {
	full, ok := llvmReleases[majorVersion]
	if !ok {
		return nil, fmt.Errorf("LLVM version '%s' is not supported", majorVersion)
	}
	return &Llvm{
		MajorVersion: majorVersion,
		FullVersion:  full,
		Minified:     minified,
		env:          env,
		installDir:   filepath.Join(env.ToolsDir, "llvm", full),
	}, nil
}

func (l *Llvm) Name() string { return "llvm" }

// Path returns the LLVM install directory, recorded in the state file.
func (l *Llvm) Path() string { return l.installDir }

func (l *Llvm) Install(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(l.installDir); err == nil {
		l.env.Logger.Warn("LLVM already installed, reusing", "path", l.installDir)
		return l.exports(), nil
	}

	l.env.Logger.Info("installing LLVM", "version", l.FullVersion, "minified", l.Minified)

	prefix := "llvm"
	if l.Minified {
		prefix = "libs_llvm"
	}
	url := fmt.Sprintf("%s/%s/%s-%s-%s.tar.xz",
		l.env.Settings.LlvmReleasesURL, l.FullVersion, prefix, l.FullVersion, l.env.Host)

	archive, err := l.env.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading LLVM dist: %w", err)
	}
	if err := download.Unpack(archive, l.installDir); err != nil {
		return nil, fmt.Errorf("installing LLVM dist: %w", err)
	}

	l.env.Logger.Info("LLVM installed", "path", l.installDir)
	return l.exports(), nil
}

func (l *Llvm) exports() []string {
	exports := []string{
		exportVar(l.env.Host, "LIBCLANG_PATH", filepath.Join(l.installDir, "lib")),
	}
	if !l.Minified {
		exports = append(exports, exportPath(l.env.Host, filepath.Join(l.installDir, "bin")))
	}
	return exports
}

func (l *Llvm) Uninstall(ctx context.Context) error {
	l.env.Logger.Info("deleting LLVM", "path", l.installDir)
	return RemoveToolDir(l.installDir)
}
