package main

import (
	"grnseeds/domain/experiment"
	"grnseeds/internal/config"
	"grnseeds/internal/errors"

	"github.com/spf13/cobra"
)

// experimentFlags are shared by every command that selects runs
type experimentFlags struct {
	envFile         string
	planFile        string
	algorithm       string
	seeds           []int64
	seedCount       int
	seedStep        int64
	datasets        []string
	resourcesDir    string
	layout          string
	outputDir       string
	createOutputDir bool
	workers         int
	limit           int
	ledgerDriver    string
	ledgerDSN       string
	logLevel        string
}

func (f *experimentFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.envFile, "env-file", ".env", "Environment file loaded before reading configuration")
	flags.StringVar(&f.planFile, "plan", "", "JSON plan file (overrides environment)")
	flags.StringVarP(&f.algorithm, "algorithm", "a", config.DefaultAlgorithm, "Inference algorithm: genie3 or grnboost2")
	flags.Int64SliceVar(&f.seeds, "seeds", nil, "Explicit seed list, e.g. 0,100,200")
	flags.IntVar(&f.seedCount, "seed-count", config.DefaultSeedCount, "Number of generated seeds")
	flags.Int64Var(&f.seedStep, "seed-step", config.DefaultSeedStep, "Spacing of generated seeds")
	flags.StringSliceVar(&f.datasets, "datasets", nil, "DREAM5 dataset names, e.g. net1,net3,net4")
	flags.StringVar(&f.resourcesDir, "resources-dir", config.DefaultResourcesDir, "Directory holding {name}/{name}_expression_data.tsv")
	flags.StringVar(&f.layout, "layout", "", "Expression layout: samples_by_genes or genes_by_samples")
	flags.StringVarP(&f.outputDir, "output-dir", "o", config.DefaultOutputDir, "Output directory; {algorithm} is substituted")
	flags.BoolVar(&f.createOutputDir, "create-output-dir", false, "Create the output directory if missing")
	flags.IntVar(&f.workers, "workers", 0, "Parallel target regressions per inference call (0 = all CPUs)")
	flags.IntVar(&f.limit, "limit", 0, "Keep only the top-N edges of each network (0 = all)")
	flags.StringVar(&f.ledgerDriver, "ledger-driver", "", "Run ledger driver: sqlite3 or postgres")
	flags.StringVar(&f.ledgerDSN, "ledger-dsn", "", "Run ledger data source name")
	flags.StringVar(&f.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE")
}

// load reads environment and plan file configuration, then applies the flags
// that were set explicitly
func (f *experimentFlags) load(cmd *cobra.Command) (*config.Config, error) {
	config.LoadDotEnv(f.envFile)
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if f.planFile != "" {
		if err := config.ApplyPlanFile(cfg, f.planFile); err != nil {
			return nil, err
		}
	}

	exp := &cfg.Experiment
	if flags.Changed("algorithm") {
		exp.Algorithm = f.algorithm
	}
	switch {
	case flags.Changed("seeds"):
		exp.Seeds = f.seeds
	case flags.Changed("seed-count") || flags.Changed("seed-step"):
		exp.Seeds = experiment.GenerateSeeds(f.seedCount, f.seedStep)
	}
	if flags.Changed("datasets") || flags.Changed("resources-dir") || flags.Changed("layout") {
		names := f.datasets
		if len(names) == 0 {
			for _, d := range exp.Datasets {
				names = append(names, d.Name)
			}
		}
		datasets, err := config.DREAM5Datasets(f.resourcesDir, names, experiment.Layout(f.layout))
		if err != nil {
			return nil, err
		}
		exp.Datasets = datasets
	}
	if flags.Changed("output-dir") {
		exp.OutputDir = f.outputDir
	}
	if flags.Changed("create-output-dir") {
		exp.CreateOutputDir = f.createOutputDir
	}
	if flags.Changed("workers") {
		cfg.Inference.Workers = f.workers
	}
	if flags.Changed("limit") {
		cfg.Inference.Limit = f.limit
	}
	if flags.Changed("ledger-driver") {
		cfg.Ledger.Driver = f.ledgerDriver
	}
	if flags.Changed("ledger-dsn") {
		cfg.Ledger.DSN = f.ledgerDSN
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}
