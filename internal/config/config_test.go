package config

import (
	"os"
	"path/filepath"
	"testing"

	"grnseeds/domain/experiment"
	"grnseeds/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "grnboost2", config.Experiment.Algorithm)
	assert.Equal(t, []int64{0}, config.Experiment.Seeds)
	assert.Equal(t, DefaultOutputDir, config.Experiment.OutputDir)
	assert.False(t, config.Experiment.DryRun)
	assert.False(t, config.Ledger.Enabled())
	assert.Equal(t, DefaultTopK, config.Stability.TopK)
	assert.Equal(t, -1, config.Inference.BoostingEarlyStopWindow)

	require.Len(t, config.Experiment.Datasets, 3)
	net3 := config.Experiment.Datasets[1]
	assert.Equal(t, "net3", net3.Name)
	assert.Equal(t, filepath.Join(DefaultResourcesDir, "net3", "net3_expression_data.tsv"), net3.ExpressionPath)
	assert.Equal(t, filepath.Join(DefaultResourcesDir, "net3", "net3_transcription_factors.tsv"), net3.TFPath)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ALGORITHM", "genie3")
	t.Setenv("SEED_COUNT", "4")
	t.Setenv("SEED_STEP", "10")
	t.Setenv("DATASETS", "net1, net4")
	t.Setenv("RESOURCES_DIR", "/data/dream5")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("LEDGER_DRIVER", "sqlite3")
	t.Setenv("LEDGER_DSN", "runs.db")
	t.Setenv("GRNBOOST2_LEARNING_RATE", "0.05")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "genie3", config.Experiment.Algorithm)
	assert.Equal(t, []int64{0, 10, 20, 30}, config.Experiment.Seeds)
	assert.True(t, config.Experiment.DryRun)
	assert.True(t, config.Ledger.Enabled())
	assert.Equal(t, 0.05, config.Inference.BoostingLearningRate)
	require.Len(t, config.Experiment.Datasets, 2)
	assert.Equal(t, "/data/dream5/net4/net4_expression_data.tsv", config.Experiment.Datasets[1].ExpressionPath)

	t.Setenv("SEEDS", "7, 3,7")
	config, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3, 7}, config.Experiment.Seeds)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"bad seed":           {"SEEDS", "1,x"},
		"negative seed":      {"SEEDS", "-1"},
		"no seeds":           {"SEED_COUNT", "0"},
		"duplicate dataset":  {"DATASETS", "net1,net1"},
		"ledger without dsn": {"LEDGER_DRIVER", "postgres"},
		"bad layout":         {"EXPRESSION_LAYOUT", "diagonal"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid), "%v", err)
		})
	}
}

func TestApplyPlanFile(t *testing.T) {
	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(plan, []byte(`{
		"algorithm": "genie3",
		"seeds": [0, 100, 200],
		"output_dir": "out/{algorithm}",
		"create_output_dir": true,
		"resources_dir": "res",
		"datasets": [
			"net1",
			{"name": "toy", "expression": "/abs/toy.tsv", "tfs": "toy_tfs.tsv", "layout": "genes_by_samples"}
		],
		"inference": {"workers": 2, "genie3": {"n_estimators": 50}, "grnboost2": {"subsample": 0.5}},
		"ledger": {"driver": "sqlite3", "dsn": "runs.db"},
		"stability": {"top_k": 25, "report": "stability.md"}
	}`), 0o644))
	t.Setenv("PLAN_FILE", plan)
	t.Setenv("ALGORITHM", "grnboost2")

	config, err := Load()
	require.NoError(t, err)

	exp := config.Experiment
	assert.Equal(t, "genie3", exp.Algorithm)
	assert.Equal(t, []int64{0, 100, 200}, exp.Seeds)
	assert.Equal(t, filepath.Join(dir, "out", "{algorithm}"), exp.OutputDir)
	assert.True(t, exp.CreateOutputDir)
	require.Len(t, exp.Datasets, 2)
	assert.Equal(t, filepath.Join(dir, "res", "net1", "net1_expression_data.tsv"), exp.Datasets[0].ExpressionPath)
	assert.Equal(t, "/abs/toy.tsv", exp.Datasets[1].ExpressionPath)
	assert.Equal(t, filepath.Join(dir, "toy_tfs.tsv"), exp.Datasets[1].TFPath)
	assert.Equal(t, experiment.LayoutGenesBySamples, exp.Datasets[1].Layout)

	assert.Equal(t, 2, config.Inference.Workers)
	assert.Equal(t, 50, config.Inference.ForestTrees)
	assert.Equal(t, 0.5, config.Inference.BoostingSubsample)
	assert.Equal(t, "runs.db", config.Ledger.DSN)
	assert.Equal(t, 25, config.Stability.TopK)
	assert.Equal(t, filepath.Join(dir, "stability.md"), config.Stability.ReportPath)
}

func TestApplyPlanFile_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	cases := map[string]string{
		"missing":         filepath.Join(dir, "absent.json"),
		"invalid json":    write("broken.json", `{"seeds": [`),
		"seed not number": write("seed.json", `{"seeds": ["a"]}`),
		"seeds not array": write("seeds.json", `{"seeds": 5}`),
		"bad dataset":     write("dataset.json", `{"datasets": [5]}`),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			err := ApplyPlanFile(&Config{}, path)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid), "%v", err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRNSEEDS_TEST_VALUE=from-dotenv\n"), 0o644))
	t.Setenv("GRNSEEDS_TEST_VALUE", "")
	os.Unsetenv("GRNSEEDS_TEST_VALUE")

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "from-dotenv", os.Getenv("GRNSEEDS_TEST_VALUE"))
}
