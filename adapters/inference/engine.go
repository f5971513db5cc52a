package inference

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"grnseeds/domain/core"
	"grnseeds/domain/network"
	"grnseeds/internal"

	"golang.org/x/sync/errgroup"
)

// regressor trains one target gene on its candidate regulators and returns one
// importance per feature column of x.
type regressor interface {
	fit(ctx context.Context, x [][]float64, y []float64, rng *rand.Rand) ([]float64, error)
}

// Engine runs a regressor per target gene, GENIE3 style: every gene is
// regressed on the transcription factors other than itself and the resulting
// feature importances become TF -> target edge scores.
type Engine struct {
	name       string
	regressor  regressor
	paramsHash core.Hash
	workers    int
	limit      int
	logger     *internal.Logger
}

func newEngine(name string, reg regressor, paramsHash core.Hash, params Params, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}
	combined := core.ComputeParamsHash(map[string]interface{}{
		"regressor": paramsHash,
		"limit":     params.Limit,
	})
	return &Engine{
		name:       name,
		regressor:  reg,
		paramsHash: combined,
		workers:    workers,
		limit:      params.Limit,
		logger:     logger.WithComponent(name),
	}
}

// Name returns the algorithm name
func (e *Engine) Name() string {
	return e.name
}

// ParamsHash identifies the settings that shape this engine's output. The
// worker count is excluded: it never changes the result.
func (e *Engine) ParamsHash() core.Hash {
	return e.paramsHash
}

// Infer trains one regressor per gene. Targets are fitted concurrently, each
// with its own generator seeded by seed, and assembled in gene order, so the
// edge table depends only on the inputs and the seed.
func (e *Engine) Infer(ctx context.Context, expr *network.ExpressionMatrix, tfNames []string, seed int64) (*network.EdgeTable, error) {
	if expr == nil || expr.NumGenes() == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if expr.NumSamples() < 2 {
		return nil, fmt.Errorf("%w: %d samples", core.ErrInsufficientData, expr.NumSamples())
	}

	regulators := regulatorIndices(expr.Genes, tfNames)
	if len(regulators) == 0 {
		return nil, core.ErrNoRegulators
	}

	start := time.Now()
	perTarget := make([][]network.Edge, expr.NumGenes())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for target := range expr.Genes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			features := excluding(regulators, target)
			if len(features) == 0 {
				return nil
			}
			x := make([][]float64, len(features))
			for i, f := range features {
				x[i] = expr.Columns[f]
			}

			importances, err := e.regressor.fit(gctx, x, expr.Columns[target], rand.New(rand.NewSource(seed)))
			if err != nil {
				return fmt.Errorf("target %s: %w", expr.Genes[target], err)
			}

			var edges []network.Edge
			for i, imp := range importances {
				if imp > 0 {
					edges = append(edges, network.Edge{
						TF:         expr.Genes[features[i]],
						Target:     expr.Genes[target],
						Importance: imp,
					})
				}
			}
			perTarget[target] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := &network.EdgeTable{}
	for _, edges := range perTarget {
		table.Edges = append(table.Edges, edges...)
	}
	table.SortByImportance()
	table.Truncate(e.limit)

	e.logger.Debug("%d regulators, %d targets, %d edges in %s",
		len(regulators), expr.NumGenes(), table.Len(), time.Since(start).Round(time.Millisecond))
	return table, nil
}

// regulatorIndices returns the matrix positions of the genes named in tfNames,
// in matrix order, each once.
func regulatorIndices(genes []string, tfNames []string) []int {
	wanted := make(map[string]bool, len(tfNames))
	for _, name := range tfNames {
		wanted[name] = true
	}
	var idx []int
	for i, gene := range genes {
		if wanted[gene] {
			idx = append(idx, i)
		}
	}
	return idx
}

func excluding(indices []int, skip int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i != skip {
			out = append(out, i)
		}
	}
	return out
}
