package ports

import (
	"context"
	"time"
)

// ProgressEventKind identifies a point in the experiment loop
type ProgressEventKind string

const (
	EventSeedStarted       ProgressEventKind = "seed_started"
	EventInferenceStarted  ProgressEventKind = "inference_started"
	EventInferenceFinished ProgressEventKind = "inference_finished"
	EventNetworkWritten    ProgressEventKind = "network_written"
	EventRunPlanned        ProgressEventKind = "run_planned"
)

// ProgressEvent carries what a progress message needs. Fields not relevant to
// Kind are zero.
type ProgressEvent struct {
	Kind       ProgressEventKind
	Algorithm  string
	Dataset    string
	Seed       int64
	Elapsed    time.Duration
	OutputPath string
}

// ProgressObserver receives progress from the experiment runner. Observers are
// informational: they cannot fail a run.
type ProgressObserver interface {
	Observe(ctx context.Context, event ProgressEvent)
}
