package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/esp-rs/espup/internal/download"
)

// AlreadyInstalledError indicates a previous Xtensa Rust toolchain occupies
// the install location.
type AlreadyInstalledError struct {
	Path string
}

func (e *AlreadyInstalledError) Error() string {
	return fmt.Sprintf("a previous Rust toolchain installation exists in '%s', remove the directory before installing", e.Path)
}

// XtensaRust installs the Xtensa-enabled Rust toolchain build into the
// rustup toolchains directory under the name "esp".
type XtensaRust struct {
	Version string

	env *Env
}

// NewXtensaRust creates the component for a resolved toolchain version.
func NewXtensaRust(env *Env, version string) *XtensaRust {
	return &XtensaRust{Version: version, env: env}
}

func (x *XtensaRust) Name() string { return "xtensa-rust" }

// Path returns the rustup toolchain directory the build installs into.
func (x *XtensaRust) Path() string { return x.env.RustToolchainDir }

func (x *XtensaRust) Install(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(x.env.RustToolchainDir); err == nil {
		return nil, &AlreadyInstalledError{Path: x.env.RustToolchainDir}
	}

	x.env.Logger.Info("installing Xtensa Rust toolchain", "version", x.Version)

	ext := "tar.xz"
	if x.env.Host.Windows() {
		ext = "zip"
	}
	base := fmt.Sprintf("%s/v%s", x.env.Settings.RustBuildReleasesURL, x.Version)
	artifacts := []string{
		fmt.Sprintf("%s/rust-%s-%s.%s", base, x.Version, x.env.Host, ext),
		fmt.Sprintf("%s/rust-src-%s.%s", base, x.Version, ext),
	}

	for _, url := range artifacts {
		archive, err := x.env.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("downloading Xtensa Rust dist: %w", err)
		}
		if err := download.Unpack(archive, x.env.RustToolchainDir); err != nil {
			return nil, fmt.Errorf("installing Xtensa Rust dist: %w", err)
		}
	}

	x.env.Logger.Info("Xtensa Rust toolchain installed", "path", x.env.RustToolchainDir)
	return nil, nil
}

func (x *XtensaRust) Uninstall(ctx context.Context) error {
	x.env.Logger.Info("deleting Xtensa Rust toolchain", "path", x.env.RustToolchainDir)
	return RemoveToolDir(x.env.RustToolchainDir)
}

// RiscvTarget adds RISC-V cross-compilation support to the Rust nightly
// channel via rustup.
type RiscvTarget struct {
	Nightly string

	env *Env
}

const riscvTargetTriple = "riscv32imc-unknown-none-elf"

// NewRiscvTarget creates the component for the given nightly channel.
func NewRiscvTarget(env *Env, nightly string) *RiscvTarget {
	return &RiscvTarget{Nightly: nightly, env: env}
}

func (r *RiscvTarget) Name() string { return "riscv-target" }

func (r *RiscvTarget) Install(ctx context.Context) ([]string, error) {
	r.env.Logger.Info("installing RISC-V target support", "toolchain", r.Nightly)

	if err := runCommand(ctx, r.env.Logger, "rustup", "component", "add", "rust-src", "--toolchain", r.Nightly); err != nil {
		return nil, fmt.Errorf("adding rust-src component: %w", err)
	}
	if err := runCommand(ctx, r.env.Logger, "rustup", "target", "add", "--toolchain", r.Nightly, riscvTargetTriple); err != nil {
		return nil, fmt.Errorf("adding RISC-V target: %w", err)
	}
	return nil, nil
}

func (r *RiscvTarget) Uninstall(ctx context.Context) error {
	r.env.Logger.Info("removing RISC-V target support", "toolchain", r.Nightly)
	if err := runCommand(ctx, r.env.Logger, "rustup", "target", "remove", "--toolchain", r.Nightly, riscvTargetTriple); err != nil {
		// The target may already be absent after a resumed uninstall.
		r.env.Logger.Warn("could not remove RISC-V target", "error", err)
	}
	return nil
}

// Crate is an extra cargo-installed tool, e.g. a flashing utility.
type Crate struct {
	CrateName string

	env *Env
}

// NewCrate creates the component for one cargo crate.
func NewCrate(env *Env, name string) *Crate {
	return &Crate{CrateName: name, env: env}
}

func (c *Crate) Name() string { return "crate:" + c.CrateName }

func (c *Crate) Install(ctx context.Context) ([]string, error) {
	c.env.Logger.Info("installing crate", "crate", c.CrateName)
	if err := runCommand(ctx, c.env.Logger, "cargo", "install", c.CrateName); err != nil {
		return nil, fmt.Errorf("installing crate %s: %w", c.CrateName, err)
	}
	return nil, nil
}

func (c *Crate) Uninstall(ctx context.Context) error {
	c.env.Logger.Info("uninstalling crate", "crate", c.CrateName)
	if err := runCommand(ctx, c.env.Logger, "cargo", "uninstall", c.CrateName); err != nil {
		// cargo fails when the crate is already gone; that is fine here.
		c.env.Logger.Warn("could not uninstall crate", "crate", c.CrateName, "error", err)
	}
	return nil
}

// ParseCrates parses a comma or space separated crate list into a sorted,
// duplicate-free slice.
func ParseCrates(input string) []string {
	tokens := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' '
	})

	seen := make(map[string]struct{}, len(tokens))
	var crates []string
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		crates = append(crates, token)
	}
	sort.Strings(crates)
	return crates
}

// AddCrate inserts a crate into a sorted crate list, keeping it
// duplicate-free.
func AddCrate(crates []string, name string) []string {
	for _, c := range crates {
		if c == name {
			return crates
		}
	}
	crates = append(crates, name)
	sort.Strings(crates)
	return crates
}

// CheckRustInstallation verifies rustup is available and the requested
// nightly channel is installed, installing the channel if it is missing.
func CheckRustInstallation(ctx context.Context, env *Env, nightly string) error {
	if _, err := exec.LookPath("rustup"); err != nil {
		return fmt.Errorf("rustup not found, install it from https://rustup.rs and retry: %w", err)
	}

	out, err := commandOutput(ctx, env.Logger, "rustup", "toolchain", "list")
	if err != nil {
		return fmt.Errorf("detecting rustup toolchains: %w", err)
	}
	if strings.Contains(out, nightly) {
		return nil
	}

	env.Logger.Info("installing nightly toolchain", "toolchain", nightly)
	if err := runCommand(ctx, env.Logger, "rustup", "toolchain", "install", nightly, "--profile", "minimal"); err != nil {
		return fmt.Errorf("installing nightly toolchain: %w", err)
	}
	return nil
}
