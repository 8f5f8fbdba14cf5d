// Package history records build and deploy runs in a local SQLite database so
// `meshbuild history` can show what happened on this machine.
package history

import (
	"context"
	"time"
)

// Run kinds.
const (
	KindBuild  = "build"
	KindDeploy = "deploy"
)

// Run is one recorded build or deploy invocation.
type Run struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Environment string            `json:"environment"`
	StartedAt   time.Time         `json:"startedAt"`
	Duration    time.Duration     `json:"duration"`
	Success     bool              `json:"success"`
	Outcome     string            `json:"outcome"`
	Details     map[string]string `json:"details,omitempty"`
}

// Store persists runs.
type Store interface {
	// Record appends a finished run.
	Record(ctx context.Context, run Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// ByEnvironment returns up to limit runs for one environment, newest first.
	ByEnvironment(ctx context.Context, env string, limit int) ([]Run, error)

	// Close releases the store.
	Close() error
}
