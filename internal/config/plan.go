package config

import (
	"fmt"
	"os"
	"path/filepath"

	"grnseeds/domain/experiment"
	"grnseeds/internal/errors"

	"github.com/tidwall/gjson"
)

// ApplyPlanFile overlays the JSON plan at path onto config. Keys absent from
// the plan leave the environment values in place. Relative paths in the plan
// are resolved against the plan file's directory.
//
//	{
//	  "algorithm": "genie3",
//	  "seeds": [0, 100, 200],                 // or "seed_count" + "seed_step"
//	  "output_dir": "out/{algorithm}",
//	  "dry_run": false,
//	  "create_output_dir": true,
//	  "resources_dir": "resources/dream5",
//	  "datasets": ["net1", {"name": "x", "expression": "x.tsv", "tfs": "x_tfs.tsv", "layout": "genes_by_samples"}],
//	  "inference": {"workers": 8, "limit": 100000, "genie3": {...}, "grnboost2": {...}},
//	  "ledger": {"driver": "sqlite3", "dsn": "runs.db"},
//	  "stability": {"top_k": 1000, "report": "stability.html"}
//	}
func ApplyPlanFile(config *Config, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, fmt.Sprintf("cannot read plan file %s", path))
	}
	if !gjson.ValidBytes(body) {
		return errors.ConfigInvalid(fmt.Sprintf("plan file %s is not valid JSON", path))
	}
	return applyPlan(config, gjson.ParseBytes(body), filepath.Dir(path))
}

func applyPlan(config *Config, plan gjson.Result, baseDir string) error {
	exp := &config.Experiment
	if v := plan.Get("algorithm"); v.Exists() {
		exp.Algorithm = v.String()
	}
	if v := plan.Get("output_dir"); v.Exists() {
		exp.OutputDir = resolve(baseDir, v.String())
	}
	if v := plan.Get("dry_run"); v.Exists() {
		exp.DryRun = v.Bool()
	}
	if v := plan.Get("create_output_dir"); v.Exists() {
		exp.CreateOutputDir = v.Bool()
	}

	if seeds := plan.Get("seeds"); seeds.Exists() {
		if !seeds.IsArray() {
			return errors.ConfigInvalid("plan: seeds must be an array")
		}
		exp.Seeds = exp.Seeds[:0:0]
		for _, s := range seeds.Array() {
			if s.Type != gjson.Number || s.Float() != float64(s.Int()) {
				return errors.ConfigInvalid(fmt.Sprintf("plan: invalid seed %s", s.Raw))
			}
			exp.Seeds = append(exp.Seeds, s.Int())
		}
	} else if count := plan.Get("seed_count"); count.Exists() {
		step := int64(DefaultSeedStep)
		if v := plan.Get("seed_step"); v.Exists() {
			step = v.Int()
		}
		exp.Seeds = experiment.GenerateSeeds(int(count.Int()), step)
	}

	if datasets := plan.Get("datasets"); datasets.Exists() {
		parsed, err := planDatasets(datasets, plan, baseDir)
		if err != nil {
			return err
		}
		exp.Datasets = parsed
	}

	applyInference(&config.Inference, plan.Get("inference"))

	if v := plan.Get("ledger.driver"); v.Exists() {
		config.Ledger.Driver = v.String()
	}
	if v := plan.Get("ledger.dsn"); v.Exists() {
		config.Ledger.DSN = v.String()
	}
	if v := plan.Get("stability.top_k"); v.Exists() {
		config.Stability.TopK = int(v.Int())
	}
	if v := plan.Get("stability.report"); v.Exists() {
		config.Stability.ReportPath = resolve(baseDir, v.String())
	}
	return nil
}

func planDatasets(datasets, plan gjson.Result, baseDir string) ([]experiment.Dataset, error) {
	if !datasets.IsArray() {
		return nil, errors.ConfigInvalid("plan: datasets must be an array")
	}
	resourcesDir := DefaultResourcesDir
	if v := plan.Get("resources_dir"); v.Exists() {
		resourcesDir = resolve(baseDir, v.String())
	}
	layout := experiment.Layout(plan.Get("layout").String())

	var out []experiment.Dataset
	for _, entry := range datasets.Array() {
		switch {
		case entry.Type == gjson.String:
			named, err := DREAM5Datasets(resourcesDir, []string{entry.String()}, layout)
			if err != nil {
				return nil, err
			}
			out = append(out, named...)
		case entry.IsObject():
			d := experiment.Dataset{
				Name:           entry.Get("name").String(),
				ExpressionPath: resolve(baseDir, entry.Get("expression").String()),
				TFPath:         resolve(baseDir, entry.Get("tfs").String()),
				Layout:         layout,
			}
			if v := entry.Get("layout"); v.Exists() {
				d.Layout = experiment.Layout(v.String())
			}
			out = append(out, d)
		default:
			return nil, errors.ConfigInvalid(fmt.Sprintf("plan: invalid dataset entry %s", entry.Raw))
		}
	}
	return out, nil
}

func applyInference(cfg *InferenceConfig, inference gjson.Result) {
	if !inference.Exists() {
		return
	}
	setInt := func(dst *int, path string) {
		if v := inference.Get(path); v.Exists() {
			*dst = int(v.Int())
		}
	}
	setFloat := func(dst *float64, path string) {
		if v := inference.Get(path); v.Exists() {
			*dst = v.Float()
		}
	}
	setString := func(dst *string, path string) {
		if v := inference.Get(path); v.Exists() {
			*dst = v.String()
		}
	}

	setInt(&cfg.Workers, "workers")
	setInt(&cfg.Limit, "limit")
	setInt(&cfg.ForestTrees, "genie3.n_estimators")
	setString(&cfg.ForestMaxFeatures, "genie3.max_features")
	setInt(&cfg.BoostingEstimators, "grnboost2.n_estimators")
	setFloat(&cfg.BoostingLearningRate, "grnboost2.learning_rate")
	setString(&cfg.BoostingMaxFeatures, "grnboost2.max_features")
	setFloat(&cfg.BoostingSubsample, "grnboost2.subsample")
	setInt(&cfg.BoostingMaxDepth, "grnboost2.max_depth")
	setInt(&cfg.BoostingEarlyStopWindow, "grnboost2.early_stop_window")
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
