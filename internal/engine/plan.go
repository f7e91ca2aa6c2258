package engine

import (
	"context"
	"fmt"

	"github.com/esp-rs/espup/internal/targets"
	"github.com/esp-rs/espup/internal/toolchain"
)

// Options carries the resolved install request.
type Options struct {
	Targets targets.Set
	// EspIdfVersion is the ESP-IDF version expression. Empty means no
	// framework checkout; GCC toolchains are installed standalone instead.
	EspIdfVersion string
	// ToolchainVersion pins the Xtensa Rust toolchain. Empty resolves the
	// latest release.
	ToolchainVersion string
	LlvmVersion      string
	Nightly          string
	ExtraCrates      []string
	Minified         bool
	ExportFilePath   string
}

// Plan is the set of components one install run provisions, plus the
// resolved identities the installation record needs afterwards.
type Plan struct {
	Components []toolchain.Installable

	XtensaRustVersion string
	XtensaRustPath    string
	LlvmPath          string
	Crates            []string
}

// BuildPlan maps the request onto concrete components. Construction is
// deterministic for identical inputs; the components are mutually
// independent and may run in any order.
func (m *Manager) BuildPlan(ctx context.Context, opts *Options) (*Plan, error) {
	plan := &Plan{Crates: opts.ExtraCrates}

	if opts.Targets.NeedsXtensaRust() {
		version := opts.ToolchainVersion
		if version == "" {
			latest, err := m.resolver.LatestXtensaRust(ctx)
			if err != nil {
				return nil, fmt.Errorf("resolving latest Xtensa Rust version: %w", err)
			}
			version = latest
		}
		rust := toolchain.NewXtensaRust(m.env, version)
		plan.XtensaRustVersion = version
		plan.XtensaRustPath = rust.Path()
		plan.Components = append(plan.Components, rust)
	}

	llvm, err := toolchain.NewLlvm(m.env, opts.LlvmVersion, opts.Minified)
	if err != nil {
		return nil, err
	}
	plan.LlvmPath = llvm.Path()
	plan.Components = append(plan.Components, llvm)

	if opts.Targets.NeedsRiscvTarget() {
		plan.Components = append(plan.Components, toolchain.NewRiscvTarget(m.env, opts.Nightly))
	}

	if opts.EspIdfVersion != "" {
		// The framework build links through ldproxy, so the crate rides
		// along whether requested or not.
		plan.Crates = toolchain.AddCrate(plan.Crates, "ldproxy")
		plan.Components = append(plan.Components,
			toolchain.NewEspIdf(m.env, opts.EspIdfVersion, opts.Minified, opts.Targets))
	} else {
		riscvGcc := false
		for _, t := range opts.Targets.Sorted() {
			if t.Xtensa() {
				plan.Components = append(plan.Components, toolchain.NewGcc(m.env, t))
			}
			if t != targets.ESP32 {
				riscvGcc = true
			}
		}
		if riscvGcc {
			plan.Components = append(plan.Components, toolchain.NewRiscvGcc(m.env))
		}
	}

	for _, crate := range plan.Crates {
		plan.Components = append(plan.Components, toolchain.NewCrate(m.env, crate))
	}

	names := make([]string, 0, len(plan.Components))
	for _, c := range plan.Components {
		names = append(names, c.Name())
	}
	m.logger.Debug("installation plan built", "components", names)
	return plan, nil
}
