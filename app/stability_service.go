package app

import (
	"context"
	"fmt"
	"math"
	"sort"

	"grnseeds/domain/experiment"
	"grnseeds/domain/network"
	"grnseeds/internal"
	apperrors "grnseeds/internal/errors"
	"grnseeds/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// StabilityService compares the networks written for one dataset under
// different seeds.
type StabilityService struct {
	reader ports.NetworkReaderPort
	logger *internal.Logger
}

// NewStabilityService creates a service reading networks through reader
func NewStabilityService(reader ports.NetworkReaderPort, logger *internal.Logger) *StabilityService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StabilityService{reader: reader, logger: logger.WithComponent("Stability")}
}

// StabilityRequest selects the networks to compare
type StabilityRequest struct {
	Algorithm experiment.Algorithm
	Dataset   string
	Seeds     []int64
	OutputDir string
	TopK      int
}

// Analyze reads {OutputDir}/{Dataset}.seed_{s}.csv for every seed and compares
// the top-K edges of every pair.
func (s *StabilityService) Analyze(ctx context.Context, req StabilityRequest) (*experiment.StabilityReport, error) {
	if len(req.Seeds) < 2 {
		return nil, apperrors.ValidationError(fmt.Sprintf("stability of %s needs at least two seeds, got %d", req.Dataset, len(req.Seeds)))
	}
	if req.TopK < 1 {
		return nil, apperrors.ValidationError(fmt.Sprintf("top-k must be positive, got %d", req.TopK))
	}

	report := &experiment.StabilityReport{
		Algorithm: req.Algorithm,
		Dataset:   req.Dataset,
		TopK:      req.TopK,
	}
	tables := make([]*network.EdgeTable, len(req.Seeds))
	edgeCounts := make([]float64, len(req.Seeds))
	for i, seed := range req.Seeds {
		path := experiment.OutputPath(req.OutputDir, req.Algorithm, req.Dataset, seed)
		table, err := s.reader.ReadNetwork(ctx, path)
		if err != nil {
			return nil, err
		}
		table.SortByImportance()
		tables[i] = table
		edgeCounts[i] = float64(table.Len())
		report.Networks = append(report.Networks, experiment.SeedNetworkSummary{Seed: seed, Path: path, EdgeCount: table.Len()})
	}

	var jaccards, rhos []float64
	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			pair := comparePair(tables[i], tables[j], req.TopK)
			pair.SeedA, pair.SeedB = req.Seeds[i], req.Seeds[j]
			report.Pairs = append(report.Pairs, pair)
			jaccards = append(jaccards, pair.Jaccard)
			if !math.IsNaN(pair.Spearman) {
				rhos = append(rhos, pair.Spearman)
			}
		}
	}

	report.EdgeCountMean, _ = stats.Mean(edgeCounts)
	report.EdgeCountStdDev, _ = stats.StandardDeviation(edgeCounts)
	report.JaccardMean, _ = stats.Mean(jaccards)
	report.JaccardMin, _ = stats.Min(jaccards)
	report.JaccardStdDev, _ = stats.StandardDeviation(jaccards)
	if len(rhos) > 0 {
		report.SpearmanMean, _ = stats.Mean(rhos)
		report.SpearmanStdDev, _ = stats.StandardDeviation(rhos)
	} else {
		report.SpearmanMean = math.NaN()
		report.SpearmanStdDev = math.NaN()
	}
	report.ConsensusEdges = consensusCount(tables, req.TopK)

	s.logger.Debug("%s/%s: %d seeds, mean top-%d jaccard %.3f",
		req.Algorithm, req.Dataset, len(req.Seeds), req.TopK, report.JaccardMean)
	return report, nil
}

// AnalyzeAll runs Analyze for each dataset in order
func (s *StabilityService) AnalyzeAll(ctx context.Context, algorithm experiment.Algorithm, datasets []experiment.Dataset,
	seeds []int64, outputDir string, topK int) ([]*experiment.StabilityReport, error) {
	reports := make([]*experiment.StabilityReport, 0, len(datasets))
	for _, d := range datasets {
		report, err := s.Analyze(ctx, StabilityRequest{
			Algorithm: algorithm,
			Dataset:   d.Name,
			Seeds:     seeds,
			OutputDir: outputDir,
			TopK:      topK,
		})
		if err != nil {
			return nil, apperrors.Wrapf(err, "stability of %s", d.Name)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func topKeys(table *network.EdgeTable, k int) map[string]bool {
	n := min(k, table.Len())
	keys := make(map[string]bool, n)
	for _, e := range table.Edges[:n] {
		keys[e.Key()] = true
	}
	return keys
}

// comparePair computes the top-K Jaccard overlap and the Spearman correlation of
// importances over the union of both top-K sets; an edge missing from a
// network scores zero there.
func comparePair(a, b *network.EdgeTable, k int) experiment.PairwiseStability {
	topA, topB := topKeys(a, k), topKeys(b, k)
	union := make([]string, 0, len(topA)+len(topB))
	intersection := 0
	for key := range topA {
		union = append(union, key)
		if topB[key] {
			intersection++
		}
	}
	for key := range topB {
		if !topA[key] {
			union = append(union, key)
		}
	}
	sort.Strings(union)

	pair := experiment.PairwiseStability{Support: len(union)}
	if len(union) > 0 {
		pair.Jaccard = float64(intersection) / float64(len(union))
	}

	scoreA, scoreB := importanceByKey(a), importanceByKey(b)
	xs := make([]float64, len(union))
	ys := make([]float64, len(union))
	for i, key := range union {
		xs[i] = scoreA[key]
		ys[i] = scoreB[key]
	}
	pair.Spearman, pair.PValue = spearman(xs, ys)
	return pair
}

func importanceByKey(table *network.EdgeTable) map[string]float64 {
	scores := make(map[string]float64, table.Len())
	for _, e := range table.Edges {
		scores[e.Key()] = e.Importance
	}
	return scores
}

// spearman returns rho and its two-sided p-value from the t approximation.
// Fewer than three points, or a constant input, yield NaN and p = 1.
func spearman(x, y []float64) (float64, float64) {
	n := len(x)
	if n < 3 {
		return math.NaN(), 1
	}
	rho := stat.Correlation(ranks(x), ranks(y), nil)
	if math.IsNaN(rho) {
		return math.NaN(), 1
	}
	if math.Abs(rho) >= 1 {
		return rho, 0
	}
	df := float64(n - 2)
	t := rho * math.Sqrt(df/(1-rho*rho))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return rho, 2 * (1 - tDist.CDF(math.Abs(t)))
}

// ranks assigns 1-based ranks, averaging ties
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return values[idx[i]] < values[idx[j]] })

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

func consensusCount(tables []*network.EdgeTable, k int) int {
	if len(tables) == 0 {
		return 0
	}
	common := topKeys(tables[0], k)
	for _, t := range tables[1:] {
		next := topKeys(t, k)
		for key := range common {
			if !next[key] {
				delete(common, key)
			}
		}
	}
	return len(common)
}
