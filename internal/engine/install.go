package engine

import (
	"context"
	"fmt"

	"github.com/esp-rs/espup/internal/exportfile"
	"github.com/esp-rs/espup/internal/state"
	"github.com/esp-rs/espup/internal/store"
	"github.com/esp-rs/espup/internal/targets"
	"github.com/esp-rs/espup/internal/toolchain"
)

type installResult struct {
	name    string
	exports []string
	err     error
}

// runPlan installs the plan's components concurrently, one goroutine per
// component. Exports are aggregated in completion order. The first error
// received is returned as the overall result; components still in flight
// are not cancelled and run to completion with their side effects kept.
// The channel buffer covers the whole plan so unfinished producers never
// block after an early return.
func (m *Manager) runPlan(ctx context.Context, run *store.Run, components []toolchain.Installable) ([]string, error) {
	results := make(chan installResult, len(components))
	for _, c := range components {
		go func(c toolchain.Installable) {
			exports, err := c.Install(ctx)
			results <- installResult{name: c.Name(), exports: exports, err: err}
		}(c)
	}

	var exports []string
	for range components {
		res := <-results
		if res.err != nil {
			m.recordEvent(run, res.name, store.ActionInstall, store.StatusFailed, res.err.Error())
			return nil, fmt.Errorf("installing %s: %w", res.name, res.err)
		}
		m.recordEvent(run, res.name, store.ActionInstall, store.StatusSuccess, "")
		exports = append(exports, res.exports...)
	}
	return exports, nil
}

// Install provisions the requested toolchains and writes the installation
// record. The record is written exactly once, after every component
// succeeded; any failure leaves no record for the run.
func (m *Manager) Install(ctx context.Context, opts *Options) (retErr error) {
	if opts.EspIdfVersion != "" && m.env.Host.Windows() && len(opts.Targets) != len(targets.All()) {
		return fmt.Errorf("ESP-IDF installation on Windows requires all targets, got '%s'", opts.Targets)
	}

	if err := toolchain.CheckRustInstallation(ctx, m.env, opts.Nightly); err != nil {
		return err
	}

	plan, err := m.BuildPlan(ctx, opts)
	if err != nil {
		return err
	}

	exportPath, err := exportfile.Resolve(opts.ExportFilePath, m.env.Host.Windows())
	if err != nil {
		return err
	}

	run := &store.Run{
		Action:     store.ActionInstall,
		HostTriple: string(m.env.Host),
		Targets:    opts.Targets.String(),
	}
	m.beginRun(run)
	defer func() { m.finishRun(run, retErr) }()

	m.logger.Info("installing toolchains",
		"targets", opts.Targets.String(), "host", string(m.env.Host), "components", len(plan.Components))

	exports, err := m.runPlan(ctx, run, plan.Components)
	if err != nil {
		return err
	}

	if err := exportfile.Write(exportPath, exports, m.env.Host.Windows()); err != nil {
		return err
	}

	if opts.Minified {
		if err := m.env.ClearDistDir(); err != nil {
			m.logger.Warn("could not clear dist folder", "error", err)
		}
	}

	cfg := &state.Config{
		HostTriple:     string(m.env.Host),
		Targets:        opts.Targets.Strings(),
		EspIdfVersion:  opts.EspIdfVersion,
		LlvmPath:       plan.LlvmPath,
		ExtraCrates:    plan.Crates,
		ExportFile:     exportPath,
		NightlyVersion: opts.Nightly,
	}
	if plan.XtensaRustVersion != "" {
		cfg.XtensaRust = &state.XtensaRust{
			Version: plan.XtensaRustVersion,
			Path:    plan.XtensaRustPath,
		}
	}
	if err := m.state.Save(cfg); err != nil {
		return fmt.Errorf("recording installation: %w", err)
	}

	m.logger.Info("installation complete", "export_file", exportPath)
	return nil
}
