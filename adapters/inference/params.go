package inference

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"grnseeds/domain/core"
)

// ForestParams configures the GENIE3 random forest
type ForestParams struct {
	NEstimators    int    `json:"n_estimators"`
	MaxFeatures    string `json:"max_features"`
	MaxDepth       int    `json:"max_depth"`
	MinSamplesLeaf int    `json:"min_samples_leaf"`
}

// BoostingParams configures the GRNBoost2 stochastic gradient boosting regressor
type BoostingParams struct {
	NEstimators     int     `json:"n_estimators"`
	LearningRate    float64 `json:"learning_rate"`
	MaxFeatures     string  `json:"max_features"`
	Subsample       float64 `json:"subsample"`
	MaxDepth        int     `json:"max_depth"`
	EarlyStopWindow int     `json:"early_stop_window"`
}

// Params holds everything an inference engine can be tuned with
type Params struct {
	Forest   ForestParams   `json:"forest"`
	Boosting BoostingParams `json:"boosting"`
	Workers  int            `json:"workers"`
	Limit    int            `json:"limit"` // keep only the top-N edges; 0 keeps all
}

// DefaultParams returns the reference settings of both algorithms
func DefaultParams() Params {
	return Params{
		Forest: ForestParams{
			NEstimators:    1000,
			MaxFeatures:    "sqrt",
			MinSamplesLeaf: 1,
		},
		Boosting: BoostingParams{
			NEstimators:     5000,
			LearningRate:    0.01,
			MaxFeatures:     "0.1",
			Subsample:       0.9,
			MaxDepth:        3,
			EarlyStopWindow: 25,
		},
		Workers: runtime.NumCPU(),
	}
}

// Validate rejects settings no regressor can be trained with
func (p Params) Validate() error {
	switch {
	case p.Forest.NEstimators < 1:
		return fmt.Errorf("%w: forest n_estimators %d", core.ErrInvalidParameters, p.Forest.NEstimators)
	case p.Forest.MaxDepth < 0 || p.Forest.MinSamplesLeaf < 1:
		return fmt.Errorf("%w: forest depth/leaf bounds", core.ErrInvalidParameters)
	case p.Boosting.NEstimators < 1:
		return fmt.Errorf("%w: boosting n_estimators %d", core.ErrInvalidParameters, p.Boosting.NEstimators)
	case p.Boosting.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate %g", core.ErrInvalidParameters, p.Boosting.LearningRate)
	case p.Boosting.Subsample <= 0 || p.Boosting.Subsample > 1:
		return fmt.Errorf("%w: subsample %g", core.ErrInvalidParameters, p.Boosting.Subsample)
	case p.Boosting.MaxDepth < 1:
		return fmt.Errorf("%w: boosting max_depth %d", core.ErrInvalidParameters, p.Boosting.MaxDepth)
	case p.Boosting.EarlyStopWindow < 0:
		return fmt.Errorf("%w: early_stop_window %d", core.ErrInvalidParameters, p.Boosting.EarlyStopWindow)
	case p.Limit < 0:
		return fmt.Errorf("%w: limit %d", core.ErrInvalidParameters, p.Limit)
	}
	for _, spec := range []string{p.Forest.MaxFeatures, p.Boosting.MaxFeatures} {
		if _, err := resolveMaxFeatures(spec, 100); err != nil {
			return err
		}
	}
	return nil
}

// resolveMaxFeatures turns "sqrt", "log2", "all", a fraction in (0, 1] or an
// absolute count into a number of candidate features out of p.
func resolveMaxFeatures(spec string, p int) (int, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	var k int
	switch spec {
	case "sqrt":
		k = int(math.Sqrt(float64(p)))
	case "log2":
		k = int(math.Log2(float64(p)))
	case "", "all", "auto":
		k = p
	default:
		if n, err := strconv.Atoi(spec); err == nil && n >= 1 {
			k = n
			break
		}
		frac, err := strconv.ParseFloat(spec, 64)
		if err != nil || frac <= 0 || frac > 1 {
			return 0, fmt.Errorf("%w: max_features %q", core.ErrInvalidParameters, spec)
		}
		k = int(frac * float64(p))
	}
	return min(max(k, 1), p), nil
}

func (f ForestParams) hash() core.Hash {
	return core.ComputeParamsHash(map[string]interface{}{
		"n_estimators":     f.NEstimators,
		"max_features":     f.MaxFeatures,
		"max_depth":        f.MaxDepth,
		"min_samples_leaf": f.MinSamplesLeaf,
	})
}

func (b BoostingParams) hash() core.Hash {
	return core.ComputeParamsHash(map[string]interface{}{
		"n_estimators":      b.NEstimators,
		"learning_rate":     b.LearningRate,
		"max_features":      b.MaxFeatures,
		"subsample":         b.Subsample,
		"max_depth":         b.MaxDepth,
		"early_stop_window": b.EarlyStopWindow,
	})
}
