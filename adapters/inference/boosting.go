package inference

import (
	"context"
	"math/rand"

	"grnseeds/domain/experiment"
	"grnseeds/internal"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NewGRNBoost2 returns the stochastic gradient boosting engine
func NewGRNBoost2(params Params, logger *internal.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	reg := &boostingRegressor{params: params.Boosting}
	return newEngine(experiment.AlgorithmGRNBoost2.String(), reg, params.Boosting.hash(), params, logger), nil
}

// boostingRegressor fits shallow trees to squared-error residuals on random
// subsamples and stops once the out-of-bag improvement, averaged over the last
// EarlyStopWindow stages, turns negative.
type boostingRegressor struct {
	params BoostingParams
}

func (r *boostingRegressor) fit(ctx context.Context, x [][]float64, y []float64, rng *rand.Rand) ([]float64, error) {
	p, n := len(x), len(y)
	mtry, err := resolveMaxFeatures(r.params.MaxFeatures, p)
	if err != nil {
		return nil, err
	}
	builder := newTreeBuilder(x, treeConfig{
		maxDepth:        r.params.MaxDepth,
		maxFeatures:     mtry,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}, rng)

	pred := make([]float64, n)
	floats.AddConst(stat.Mean(y, nil), pred)
	residual := make([]float64, n)

	nInBag := max(1, int(r.params.Subsample*float64(n)))
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	inBag := make([]bool, n)

	total := make([]float64, p)
	treeImportance := make([]float64, p)
	improvements := make([]float64, 0, r.params.NEstimators)
	window := r.params.EarlyStopWindow

	stages := 0
	for m := 0; m < r.params.NEstimators; m++ {
		if m%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		floats.SubTo(residual, y, pred)

		// Partial Fisher-Yates: perm[:nInBag] is a uniform sample without replacement.
		for i := 0; i < nInBag; i++ {
			j := i + rng.Intn(n-i)
			perm[i], perm[j] = perm[j], perm[i]
		}
		for i := range inBag {
			inBag[i] = false
		}
		for _, s := range perm[:nInBag] {
			inBag[s] = true
		}
		before := outOfBagLoss(y, pred, inBag)

		for i := range treeImportance {
			treeImportance[i] = 0
		}
		tree := builder.grow(perm[:nInBag], residual, treeImportance)
		for i := range pred {
			pred[i] += r.params.LearningRate * tree.predict(x, i)
		}
		stages++

		if s := floats.Sum(treeImportance); s > 0 {
			floats.AddScaled(total, 1/s, treeImportance)
		}

		improvements = append(improvements, before-outOfBagLoss(y, pred, inBag))
		if window > 0 && m >= window-1 && stat.Mean(improvements[m-window+1:], nil) < 0 {
			break
		}
	}

	// Normalized importances scaled by the number of fitted stages, so targets
	// that kept improving for longer weigh more.
	if s := floats.Sum(total); s > 0 {
		floats.Scale(float64(stages)/s, total)
	}
	return total, nil
}

// outOfBagLoss is the mean squared error over samples not in the bag; zero if
// every sample is in the bag.
func outOfBagLoss(y, pred []float64, inBag []bool) float64 {
	var sum float64
	count := 0
	for i, in := range inBag {
		if in {
			continue
		}
		d := y[i] - pred[i]
		sum += d * d
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
