package container

import (
	"context"
	"path/filepath"
	"testing"

	"grnseeds/domain/experiment"
	"grnseeds/internal/config"
	"grnseeds/internal/errors"
	"grnseeds/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	datasets, err := config.DREAM5Datasets(t.TempDir(), []string{"net1"}, "")
	require.NoError(t, err)
	return &config.Config{
		Experiment: config.ExperimentConfig{
			Algorithm: "grnboost2",
			Seeds:     []int64{0},
			Datasets:  datasets,
			OutputDir: t.TempDir(),
		},
		Inference: config.InferenceConfig{BoostingEarlyStopWindow: -1},
		Stability: config.StabilityConfig{TopK: 10},
	}
}

func TestNew_RegistersEngines(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, []experiment.Algorithm{experiment.AlgorithmGENIE3, experiment.AlgorithmGRNBoost2}, c.Registry.Algorithms())
	_, engine, err := c.Registry.Resolve("genie3")
	require.NoError(t, err)
	assert.Equal(t, "genie3", engine.Name())

	_, err = New(nil)
	assert.Error(t, err)
}

func TestNew_InvalidInferenceParams(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inference.BoostingMaxFeatures = "most"

	_, err := New(cfg)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestInferenceParams(t *testing.T) {
	params := InferenceParams(config.InferenceConfig{
		Workers:                 3,
		Limit:                   10,
		ForestTrees:             20,
		BoostingSubsample:       0.5,
		BoostingEarlyStopWindow: 0,
	})
	assert.Equal(t, 3, params.Workers)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Forest.NEstimators)
	assert.Equal(t, "sqrt", params.Forest.MaxFeatures)
	assert.Equal(t, 0.5, params.Boosting.Subsample)
	assert.Equal(t, 0, params.Boosting.EarlyStopWindow)
	assert.Equal(t, 0.01, params.Boosting.LearningRate)

	defaults := InferenceParams(config.InferenceConfig{BoostingEarlyStopWindow: -1})
	assert.Equal(t, 25, defaults.Boosting.EarlyStopWindow)
}

func TestInitRunner_WithLedger(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ledger = config.LedgerConfig{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "runs.db")}

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.InitRunner(context.Background()))
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	require.NotNil(t, c.Runner)
	require.NotNil(t, c.Ledger)
	runs, err := c.Ledger.ListRuns(context.Background(), ports.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestInitRunner_DryRunSkipsLedger(t *testing.T) {
	cfg := testConfig(t)
	cfg.Experiment.DryRun = true
	cfg.Ledger = config.LedgerConfig{Driver: "postgres", DSN: "postgres://unreachable.invalid/db"}

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.InitRunner(context.Background()))
	assert.Nil(t, c.Ledger)

	planned, err := c.Runner.Plan("grnboost2")
	require.NoError(t, err)
	assert.Len(t, planned, 1)
}
