package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/esp-rs/espup/internal/exportfile"
	"github.com/esp-rs/espup/internal/state"
	"github.com/esp-rs/espup/internal/store"
	"github.com/esp-rs/espup/internal/targets"
	"github.com/esp-rs/espup/internal/toolchain"
)

// Uninstall reverses the recorded installation group by group. Each group
// removes its artifacts first, then clears the matching record fields and
// persists, so a crash between groups leaves a record that still names
// only artifacts genuinely present. Re-running uninstall resumes from the
// top; groups whose fields are already cleared are skipped.
func (m *Manager) Uninstall(ctx context.Context) (retErr error) {
	cfg, err := m.state.Load()
	if err != nil {
		return err
	}

	run := &store.Run{
		Action:     store.ActionUninstall,
		HostTriple: cfg.HostTriple,
		Targets:    strings.Join(cfg.Targets, ","),
	}
	m.beginRun(run)
	defer func() { m.finishRun(run, retErr) }()

	m.logger.Info("uninstalling espup installation", "host", cfg.HostTriple)

	if cfg.XtensaRust != nil {
		rust := toolchain.NewXtensaRust(m.env, cfg.XtensaRust.Version)
		if err := m.uninstallGroup(ctx, run, rust, func() {
			cfg.XtensaRust = nil
		}, cfg); err != nil {
			return err
		}
	}

	if cfg.LlvmPath != "" {
		path := cfg.LlvmPath
		if err := m.removeGroup(ctx, run, "llvm", path, func() {
			cfg.LlvmPath = ""
		}, cfg); err != nil {
			return err
		}
	}

	ts, err := targets.FromStrings(cfg.Targets)
	if err != nil {
		return fmt.Errorf("state file records unknown targets: %w", err)
	}

	if ts.NeedsRiscvTarget() {
		riscv := toolchain.NewRiscvTarget(m.env, cfg.NightlyVersion)
		if err := riscv.Uninstall(ctx); err != nil {
			m.recordEvent(run, riscv.Name(), store.ActionUninstall, store.StatusFailed, err.Error())
			return err
		}
		m.recordEvent(run, riscv.Name(), store.ActionUninstall, store.StatusSuccess, "")
	}

	if cfg.EspIdfVersion != "" {
		path := toolchain.InstallDirForVersion(m.env, cfg.EspIdfVersion)
		if err := m.removeGroup(ctx, run, "esp-idf", path, func() {
			cfg.EspIdfVersion = ""
		}, cfg); err != nil {
			return err
		}
	} else {
		if err := m.uninstallGccToolchains(ctx, run, ts); err != nil {
			return err
		}
	}

	if len(cfg.ExtraCrates) > 0 {
		for _, name := range cfg.ExtraCrates {
			crate := toolchain.NewCrate(m.env, name)
			if err := crate.Uninstall(ctx); err != nil {
				m.recordEvent(run, crate.Name(), store.ActionUninstall, store.StatusFailed, err.Error())
				return err
			}
			m.recordEvent(run, crate.Name(), store.ActionUninstall, store.StatusSuccess, "")
		}
		cfg.ExtraCrates = nil
		if err := m.state.Save(cfg); err != nil {
			return fmt.Errorf("recording uninstall progress: %w", err)
		}
	}

	if cfg.ExportFile != "" {
		if err := exportfile.Delete(cfg.ExportFile); err != nil {
			return err
		}
		cfg.ExportFile = ""
		if err := m.state.Save(cfg); err != nil {
			return fmt.Errorf("recording uninstall progress: %w", err)
		}
	}

	if err := m.env.ClearDistDir(); err != nil {
		m.logger.Warn("could not clear dist folder", "error", err)
	}

	if err := m.state.Delete(); err != nil {
		return err
	}

	m.logger.Info("uninstall complete")
	return nil
}

// uninstallGroup reverses one component, clears its record fields, and
// persists before the next group runs.
func (m *Manager) uninstallGroup(ctx context.Context, run *store.Run, c toolchain.Installable, clear func(), cfg *state.Config) error {
	if err := c.Uninstall(ctx); err != nil {
		m.recordEvent(run, c.Name(), store.ActionUninstall, store.StatusFailed, err.Error())
		return err
	}
	m.recordEvent(run, c.Name(), store.ActionUninstall, store.StatusSuccess, "")

	clear()
	if err := m.state.Save(cfg); err != nil {
		return fmt.Errorf("recording uninstall progress: %w", err)
	}
	return nil
}

// removeGroup is uninstallGroup for components whose reversal is a
// recorded directory removal.
func (m *Manager) removeGroup(ctx context.Context, run *store.Run, name, path string, clear func(), cfg *state.Config) error {
	m.logger.Info("deleting "+name, "path", path)
	if err := toolchain.RemoveToolDir(path); err != nil {
		m.recordEvent(run, name, store.ActionUninstall, store.StatusFailed, err.Error())
		return err
	}
	m.recordEvent(run, name, store.ActionUninstall, store.StatusSuccess, "")

	clear()
	if err := m.state.Save(cfg); err != nil {
		return fmt.Errorf("recording uninstall progress: %w", err)
	}
	return nil
}

// uninstallGccToolchains removes the standalone cross-GCC toolchains
// derived from the recorded target set. Removal is idempotent, so no
// record field tracks them individually.
func (m *Manager) uninstallGccToolchains(ctx context.Context, run *store.Run, ts targets.Set) error {
	var gccs []*toolchain.Gcc
	riscvGcc := false
	for _, t := range ts.Sorted() {
		if t.Xtensa() {
			gccs = append(gccs, toolchain.NewGcc(m.env, t))
		}
		if t != targets.ESP32 {
			riscvGcc = true
		}
	}
	if riscvGcc {
		gccs = append(gccs, toolchain.NewRiscvGcc(m.env))
	}

	for _, g := range gccs {
		if err := g.Uninstall(ctx); err != nil {
			m.recordEvent(run, g.Name(), store.ActionUninstall, store.StatusFailed, err.Error())
			return err
		}
		m.recordEvent(run, g.Name(), store.ActionUninstall, store.StatusSuccess, "")
	}
	return nil
}
