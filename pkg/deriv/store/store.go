package store

import (
	"context"
	"time"
)

// Store persists finished runs. Only outcomes are stored: a run cannot be
// resumed from the store.
type Store interface {
	Close() error

	PutRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Run is the record of one finished search
type Run struct {
	ID         string // ULID, sorts by start time
	Problem    string
	Status     string // succeeded, exhausted, aborted
	Depth      int
	Expansions int
	StepBudget int
	Steps      []Step
	Final      []string
	StartedAt  time.Time
	Duration   time.Duration
}

// Step is a stored rule application
type Step struct {
	Rule  string `json:"rule"`
	Added string `json:"added"`
}
