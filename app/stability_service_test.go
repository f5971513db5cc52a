package app

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"grnseeds/adapters/netfile"
	"grnseeds/domain/experiment"
	"grnseeds/domain/network"
	apperrors "grnseeds/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNetwork(t *testing.T, dir string, seed int64, edges ...network.Edge) {
	t.Helper()
	path := experiment.OutputPath(dir, experiment.AlgorithmGRNBoost2, "net1", seed)
	require.NoError(t, netfile.NewTSVWriter().WriteNetwork(context.Background(), path, &network.EdgeTable{Edges: edges}))
}

func TestStabilityService_Analyze(t *testing.T) {
	dir := t.TempDir()
	writeNetwork(t, dir, 0,
		network.Edge{TF: "A", Target: "X", Importance: 0.9},
		network.Edge{TF: "A", Target: "Y", Importance: 0.5},
		network.Edge{TF: "B", Target: "X", Importance: 0.1},
	)
	writeNetwork(t, dir, 100,
		network.Edge{TF: "A", Target: "X", Importance: 0.8},
		network.Edge{TF: "A", Target: "Y", Importance: 0.6},
		network.Edge{TF: "B", Target: "Y", Importance: 0.2},
	)

	service := NewStabilityService(netfile.NewTSVReader(), nil)
	report, err := service.Analyze(context.Background(), StabilityRequest{
		Algorithm: experiment.AlgorithmGRNBoost2,
		Dataset:   "net1",
		Seeds:     []int64{0, 100},
		OutputDir: dir,
		TopK:      3,
	})
	require.NoError(t, err)

	require.Len(t, report.Pairs, 1)
	pair := report.Pairs[0]
	assert.Equal(t, int64(0), pair.SeedA)
	assert.Equal(t, int64(100), pair.SeedB)
	assert.Equal(t, 4, pair.Support)
	assert.InDelta(t, 0.5, pair.Jaccard, 1e-12)
	assert.InDelta(t, 0.8, pair.Spearman, 1e-12)
	assert.Greater(t, pair.PValue, 0.05)
	assert.Less(t, pair.PValue, 1.0)

	assert.Equal(t, 2, report.ConsensusEdges)
	assert.InDelta(t, 3, report.EdgeCountMean, 1e-12)
	assert.Zero(t, report.EdgeCountStdDev)
	assert.InDelta(t, 0.5, report.JaccardMin, 1e-12)
	assert.Len(t, report.Networks, 2)
}

func TestStabilityService_IdenticalNetworks(t *testing.T) {
	dir := t.TempDir()
	edges := []network.Edge{
		{TF: "A", Target: "X", Importance: 3},
		{TF: "A", Target: "Y", Importance: 2},
		{TF: "B", Target: "X", Importance: 1},
	}
	for _, seed := range []int64{0, 100, 200} {
		writeNetwork(t, dir, seed, edges...)
	}

	report, err := NewStabilityService(netfile.NewTSVReader(), nil).Analyze(context.Background(), StabilityRequest{
		Algorithm: experiment.AlgorithmGRNBoost2,
		Dataset:   "net1",
		Seeds:     []int64{0, 100, 200},
		OutputDir: dir,
		TopK:      10,
	})
	require.NoError(t, err)

	assert.Len(t, report.Pairs, 3)
	assert.Equal(t, 1.0, report.JaccardMean)
	assert.InDelta(t, 1.0, report.SpearmanMean, 1e-12)
	assert.Equal(t, 3, report.ConsensusEdges)
	for _, p := range report.Pairs {
		assert.InDelta(t, 0, p.PValue, 1e-6)
	}
}

func TestStabilityService_Errors(t *testing.T) {
	service := NewStabilityService(netfile.NewTSVReader(), nil)
	dir := t.TempDir()

	_, err := service.Analyze(context.Background(), StabilityRequest{Dataset: "net1", Seeds: []int64{0}, OutputDir: dir, TopK: 5})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationError))

	_, err = service.Analyze(context.Background(), StabilityRequest{Dataset: "net1", Seeds: []int64{0, 1}, OutputDir: dir, TopK: 0})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationError))

	_, err = service.AnalyzeAll(context.Background(), experiment.AlgorithmGRNBoost2,
		[]experiment.Dataset{{Name: "net1"}}, []int64{0, 100}, filepath.Join(dir, "none"), 5)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInputLoad))
}

func TestRanks_AveragesTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{5, -1, 0}))
}

func TestSpearman_Degenerate(t *testing.T) {
	rho, p := spearman([]float64{1, 2}, []float64{2, 1})
	assert.True(t, math.IsNaN(rho))
	assert.Equal(t, 1.0, p)

	rho, p = spearman([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.True(t, math.IsNaN(rho))
	assert.Equal(t, 1.0, p)

	rho, p = spearman([]float64{1, 2, 3}, []float64{3, 2, 1})
	assert.InDelta(t, -1, rho, 1e-12)
	assert.InDelta(t, 0, p, 1e-6)
}
