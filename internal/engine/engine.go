// Package engine orchestrates espup runs: it builds the installation plan
// for a target set, executes the plan's components concurrently, and
// drives the crash-safe uninstall sequence over the persisted record.
package engine

import (
	"log/slog"

	"github.com/esp-rs/espup/internal/release"
	"github.com/esp-rs/espup/internal/state"
	"github.com/esp-rs/espup/internal/store"
	"github.com/esp-rs/espup/internal/toolchain"
)

// Manager wires the collaborators of one espup invocation.
type Manager struct {
	env      *toolchain.Env
	resolver *release.Resolver
	state    *state.Store
	history  *store.Store
	logger   *slog.Logger
}

// New creates a Manager. The history store may be nil; recording is then
// skipped entirely.
func New(env *toolchain.Env, resolver *release.Resolver, st *state.Store, history *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		env:      env,
		resolver: resolver,
		state:    st,
		history:  history,
		logger:   logger,
	}
}

// History recording is best effort: a broken ledger is logged and never
// fails a run.

func (m *Manager) beginRun(run *store.Run) {
	if m.history == nil {
		return
	}
	if err := m.history.BeginRun(run); err != nil {
		m.logger.Warn("could not record run start", "error", err)
	}
}

func (m *Manager) recordEvent(run *store.Run, component, action, status, detail string) {
	if m.history == nil || run.ID == 0 {
		return
	}
	ev := &store.ComponentEvent{
		RunID:     run.ID,
		Component: component,
		Action:    action,
		Status:    status,
		Detail:    detail,
	}
	if err := m.history.RecordEvent(ev); err != nil {
		m.logger.Warn("could not record component event", "component", component, "error", err)
	}
}

func (m *Manager) finishRun(run *store.Run, runErr error) {
	if m.history == nil || run.ID == 0 {
		return
	}
	if runErr != nil {
		run.Status = store.StatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = store.StatusSuccess
	}
	if err := m.history.FinishRun(run); err != nil {
		m.logger.Warn("could not record run end", "error", err)
	}
}
