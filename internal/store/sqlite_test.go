package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(filepath.Join(t.TempDir(), "history.db"), logger)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func TestBeginFinishRun(t *testing.T) {
	s := testStore(t)

	run := &Run{
		Action:     ActionInstall,
		HostTriple: "x86_64-unknown-linux-gnu",
		Targets:    "esp32,esp32c3",
	}
	if err := s.BeginRun(run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected run ID to be set")
	}
	if run.Status != StatusRunning {
		t.Errorf("got status %q, want %q", run.Status, StatusRunning)
	}

	run.Status = StatusSuccess
	if err := s.FinishRun(run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Status != StatusSuccess {
		t.Errorf("got status %q, want %q", runs[0].Status, StatusSuccess)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	s := testStore(t)

	run := &Run{ID: 42, Action: ActionUninstall, Status: StatusFailed}
	if err := s.FinishRun(run); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestRecordAndListEvents(t *testing.T) {
	s := testStore(t)

	run := &Run{Action: ActionInstall}
	if err := s.BeginRun(run); err != nil {
		t.Fatal(err)
	}

	events := []*ComponentEvent{
		{RunID: run.ID, Component: "llvm", Action: ActionInstall, Status: StatusSuccess, Detail: "/tools/llvm"},
		{RunID: run.ID, Component: "xtensa-rust", Action: ActionInstall, Status: StatusFailed, Detail: "download failed"},
	}
	for _, ev := range events {
		if err := s.RecordEvent(ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := s.EventsForRun(run.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Component != "llvm" || got[1].Component != "xtensa-rust" {
		t.Errorf("events out of order: %+v", got)
	}
	if got[1].Status != StatusFailed {
		t.Errorf("got status %q, want %q", got[1].Status, StatusFailed)
	}
}

func TestRecentRunsOrder(t *testing.T) {
	s := testStore(t)

	for _, action := range []string{ActionInstall, ActionUpdate, ActionUninstall} {
		if err := s.BeginRun(&Run{Action: action}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.RecentRuns(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Action != ActionUninstall {
		t.Errorf("got newest run %q, want %q", runs[0].Action, ActionUninstall)
	}
}
