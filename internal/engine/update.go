package engine

import (
	"context"
	"fmt"

	"github.com/esp-rs/espup/internal/release"
	"github.com/esp-rs/espup/internal/store"
	"github.com/esp-rs/espup/internal/toolchain"
)

// Update moves the recorded Xtensa Rust toolchain to the requested
// version, or to the latest release when none is requested. A matching
// recorded version is a no-op.
func (m *Manager) Update(ctx context.Context, toolchainVersion string) (retErr error) {
	cfg, err := m.state.Load()
	if err != nil {
		return err
	}
	if cfg.XtensaRust == nil {
		return fmt.Errorf("no Xtensa Rust toolchain is recorded, nothing to update")
	}

	desired := toolchainVersion
	if desired == "" {
		desired, err = m.resolver.LatestXtensaRust(ctx)
		if err != nil {
			return fmt.Errorf("resolving latest Xtensa Rust version: %w", err)
		}
	} else if desired, err = release.ParseVersion(desired); err != nil {
		return err
	}

	if desired == cfg.XtensaRust.Version {
		m.logger.Info("Xtensa Rust toolchain is already up to date", "version", desired)
		return nil
	}

	run := &store.Run{
		Action:     store.ActionUpdate,
		HostTriple: cfg.HostTriple,
	}
	m.beginRun(run)
	defer func() { m.finishRun(run, retErr) }()

	m.logger.Info("updating Xtensa Rust toolchain",
		"from", cfg.XtensaRust.Version, "to", desired)

	old := toolchain.NewXtensaRust(m.env, cfg.XtensaRust.Version)
	if err := old.Uninstall(ctx); err != nil {
		m.recordEvent(run, old.Name(), store.ActionUninstall, store.StatusFailed, err.Error())
		return err
	}
	m.recordEvent(run, old.Name(), store.ActionUninstall, store.StatusSuccess, "")

	next := toolchain.NewXtensaRust(m.env, desired)
	if _, err := next.Install(ctx); err != nil {
		m.recordEvent(run, next.Name(), store.ActionInstall, store.StatusFailed, err.Error())
		return fmt.Errorf("installing %s: %w", next.Name(), err)
	}
	m.recordEvent(run, next.Name(), store.ActionInstall, store.StatusSuccess, "")

	cfg.XtensaRust.Version = desired
	cfg.XtensaRust.Path = next.Path()
	if err := m.state.Save(cfg); err != nil {
		return fmt.Errorf("recording update: %w", err)
	}

	m.logger.Info("update complete", "version", desired)
	return nil
}
