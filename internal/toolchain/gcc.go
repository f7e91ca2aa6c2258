package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esp-rs/espup/internal/download"
	"github.com/esp-rs/espup/internal/host"
	"github.com/esp-rs/espup/internal/targets"
)

const (
	gccRelease = "esp-12.2.0_20230208"

	// RiscvGccName is the shared RISC-V cross-GCC toolchain. It covers the
	// C2/C3 primary cores and the S2/S3 ULP coprocessors.
	RiscvGccName = "riscv32-esp-elf"
)

// GccToolchainName returns the cross-GCC toolchain name for a chip.
func GccToolchainName(t targets.Target) string {
	if t.Xtensa() {
		return "xtensa-" + t.String() + "-elf"
	}
	return RiscvGccName
}

// Gcc installs one cross-GCC toolchain, either a per-chip Xtensa one or
// the shared RISC-V one.
type Gcc struct {
	ToolchainName string

	env        *Env
	installDir string
}

// NewGcc creates the per-target Xtensa cross-GCC component.
func NewGcc(env *Env, target targets.Target) *Gcc {
	return newGcc(env, GccToolchainName(target))
}

// NewRiscvGcc creates the shared RISC-V cross-GCC component.
func NewRiscvGcc(env *Env) *Gcc {
	return newGcc(env, RiscvGccName)
}

func newGcc(env *Env, name string) *Gcc {
	return &Gcc{
		ToolchainName: name,
		env:           env,
		installDir:    filepath.Join(env.ToolsDir, name),
	}
}

func (g *Gcc) Name() string { return g.ToolchainName }

// Path returns the toolchain install directory.
func (g *Gcc) Path() string { return g.installDir }

func (g *Gcc) Install(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(g.installDir); err == nil {
		g.env.Logger.Warn("GCC toolchain already installed, reusing", "toolchain", g.ToolchainName)
		return g.exports(), nil
	}

	g.env.Logger.Info("installing GCC toolchain", "toolchain", g.ToolchainName)

	suffix, ext, err := gccArtifactSuffix(g.env.Host)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s/%s-%s-%s.%s",
		g.env.Settings.GccReleasesURL, gccRelease, g.ToolchainName, gccRelease, suffix, ext)

	archive, err := g.env.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading %s dist: %w", g.ToolchainName, err)
	}
	if err := download.Unpack(archive, g.installDir); err != nil {
		return nil, fmt.Errorf("installing %s dist: %w", g.ToolchainName, err)
	}

	g.env.Logger.Info("GCC toolchain installed", "toolchain", g.ToolchainName, "path", g.installDir)
	return g.exports(), nil
}

func (g *Gcc) exports() []string {
	return []string{
		exportPath(g.env.Host, filepath.Join(g.installDir, g.ToolchainName, "bin")),
	}
}

func (g *Gcc) Uninstall(ctx context.Context) error {
	g.env.Logger.Info("deleting GCC toolchain", "toolchain", g.ToolchainName)
	return RemoveToolDir(g.installDir)
}

// gccArtifactSuffix maps the host triple onto the artifact platform suffix
// used by the crosstool-NG releases.
func gccArtifactSuffix(t host.Triple) (suffix, ext string, err error) {
	switch t {
	case host.X8664LinuxGnu:
		return "x86_64-linux-gnu", "tar.xz", nil
	case host.Aarch64LinuxGnu:
		return "aarch64-linux-gnu", "tar.xz", nil
	case host.X8664Darwin:
		return "x86_64-apple-darwin", "tar.xz", nil
	case host.Aarch64Darwin:
		return "aarch64-apple-darwin", "tar.xz", nil
	case host.X8664WindowsMsvc, host.X8664WindowsGnu:
		return "x86_64-w64-mingw32", "zip", nil
	default:
		return "", "", fmt.Errorf("no GCC artifact for host triple '%s'", t)
	}
}
