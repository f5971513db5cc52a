package ports

import (
	"context"

	"grnseeds/domain/core"
	"grnseeds/domain/network"
)

// InferencePort infers a regulatory network from an expression matrix.
// Implementations must return identical tables for identical inputs and seed.
type InferencePort interface {
	Name() string
	Infer(ctx context.Context, expr *network.ExpressionMatrix, tfNames []string, seed int64) (*network.EdgeTable, error)
}

// ParameterizedInference is implemented by engines whose output also depends on tunable parameters
type ParameterizedInference interface {
	ParamsHash() core.Hash
}
