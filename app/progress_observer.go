package app

import (
	"context"

	"grnseeds/internal"
	"grnseeds/ports"
)

// LogObserver prints progress through the leveled logger
type LogObserver struct {
	logger *internal.Logger
}

// NewLogObserver creates an observer; nil uses the default logger
func NewLogObserver(logger *internal.Logger) *LogObserver {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LogObserver{logger: logger.WithComponent("Experiment")}
}

// Observe implements ports.ProgressObserver
func (o *LogObserver) Observe(_ context.Context, e ports.ProgressEvent) {
	switch e.Kind {
	case ports.EventSeedStarted:
		o.logger.Info("running %s with seed %d", e.Algorithm, e.Seed)
	case ports.EventInferenceStarted:
		o.logger.Info("inferring %s with seed %d", e.Dataset, e.Seed)
	case ports.EventInferenceFinished:
		o.logger.Info("inferred %s with seed %d in %.3f seconds", e.Dataset, e.Seed, e.Elapsed.Seconds())
	case ports.EventNetworkWritten:
		o.logger.Info("%s with seed %d written to %s", e.Dataset, e.Seed, e.OutputPath)
	case ports.EventRunPlanned:
		o.logger.Info("dry run: %s on %s with seed %d -> %s", e.Algorithm, e.Dataset, e.Seed, e.OutputPath)
	default:
		o.logger.Debug("unhandled progress event %s", e.Kind)
	}
}
