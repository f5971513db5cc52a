package ports

import (
	"context"

	"grnseeds/domain/experiment"
	"grnseeds/domain/network"
)

// ExpressionReaderPort loads the two per-dataset inputs
type ExpressionReaderPort interface {
	ReadExpression(ctx context.Context, path string, layout experiment.Layout) (*network.ExpressionMatrix, error)
	// ReadTFNames returns one identifier per non-empty line, in file order, duplicates kept
	ReadTFNames(ctx context.Context, path string) ([]string, error)
}
