package inference

import (
	"context"
	"math/rand"

	"grnseeds/domain/experiment"
	"grnseeds/internal"

	"gonum.org/v1/gonum/floats"
)

// NewGENIE3 returns the random forest engine
func NewGENIE3(params Params, logger *internal.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	reg := &forestRegressor{params: params.Forest}
	return newEngine(experiment.AlgorithmGENIE3.String(), reg, params.Forest.hash(), params, logger), nil
}

// forestRegressor averages impurity importances over bootstrapped trees
type forestRegressor struct {
	params ForestParams
}

func (r *forestRegressor) fit(ctx context.Context, x [][]float64, y []float64, rng *rand.Rand) ([]float64, error) {
	p, n := len(x), len(y)
	mtry, err := resolveMaxFeatures(r.params.MaxFeatures, p)
	if err != nil {
		return nil, err
	}
	builder := newTreeBuilder(x, treeConfig{
		maxDepth:        r.params.MaxDepth,
		maxFeatures:     mtry,
		minSamplesSplit: 2,
		minSamplesLeaf:  r.params.MinSamplesLeaf,
	}, rng)

	total := make([]float64, p)
	treeImportance := make([]float64, p)
	bag := make([]int, n)
	for t := 0; t < r.params.NEstimators; t++ {
		if t%50 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i := range bag {
			bag[i] = rng.Intn(n)
		}
		for i := range treeImportance {
			treeImportance[i] = 0
		}
		builder.grow(bag, y, treeImportance)

		// Each tree contributes its normalized importances; stumps contribute nothing.
		if s := floats.Sum(treeImportance); s > 0 {
			floats.AddScaled(total, 1/s, treeImportance)
		}
	}

	if s := floats.Sum(total); s > 0 {
		floats.Scale(1/s, total)
	}
	return total, nil
}
