package store

import "time"

// Run records one espup invocation that mutated the environment.
type Run struct {
	ID           int64
	Action       string // "install", "update", "uninstall"
	HostTriple   string
	Targets      string // comma-separated target names
	Status       string // "running", "success", "failed"
	ErrorMessage string
	StartTime    time.Time
	EndTime      time.Time
}

// Run actions.
const (
	ActionInstall   = "install"
	ActionUpdate    = "update"
	ActionUninstall = "uninstall"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ComponentEvent records the outcome of one component within a run.
type ComponentEvent struct {
	ID        int64
	RunID     int64
	Component string
	Action    string // "install" or "uninstall"
	Status    string // "success" or "failed"
	Detail    string // version, path, or error text
	CreatedAt time.Time
}
