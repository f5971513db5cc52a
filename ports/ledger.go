package ports

import (
	"context"

	"grnseeds/domain/core"
	"grnseeds/domain/experiment"
)

// RunLedgerPort keeps an append-only record of written networks
type RunLedgerPort interface {
	RecordRun(ctx context.Context, record *experiment.RunRecord) error
	ListRuns(ctx context.Context, filter RunFilter) ([]experiment.RunRecord, error)
}

// RunFilter narrows ListRuns; zero values match everything
type RunFilter struct {
	BatchID   core.BatchID
	Algorithm experiment.Algorithm
	Dataset   string
	Limit     int
}
