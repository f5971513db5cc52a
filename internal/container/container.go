package container

import (
	"context"
	"fmt"

	"grnseeds/adapters/expression"
	"grnseeds/adapters/inference"
	"grnseeds/adapters/ledger"
	"grnseeds/adapters/netfile"
	"grnseeds/app"
	"grnseeds/domain/experiment"
	"grnseeds/internal"
	"grnseeds/internal/config"
	"grnseeds/internal/errors"
	"grnseeds/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Reader        *expression.DataReader
	Writer        *netfile.TSVWriter
	NetworkReader *netfile.TSVReader
	Ledger        *ledger.RunRepository

	// Application services
	Registry  *app.AlgorithmRegistry
	Observer  ports.ProgressObserver
	Runner    *app.ExperimentRunner
	Stability *app.StabilityService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}
	c.Reader = expression.NewDataReader(c.Logger)
	c.Writer = netfile.NewTSVWriter()
	c.NetworkReader = netfile.NewTSVReader()
	c.Observer = app.NewLogObserver(c.Logger)
	c.Stability = app.NewStabilityService(c.NetworkReader, c.Logger)

	if err := c.initRegistry(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize inference engines")
	}
	return c, nil
}

// InferenceParams maps configuration overrides onto the engine defaults
func InferenceParams(cfg config.InferenceConfig) inference.Params {
	params := inference.DefaultParams()
	if cfg.Workers > 0 {
		params.Workers = cfg.Workers
	}
	params.Limit = cfg.Limit
	if cfg.ForestTrees > 0 {
		params.Forest.NEstimators = cfg.ForestTrees
	}
	if cfg.ForestMaxFeatures != "" {
		params.Forest.MaxFeatures = cfg.ForestMaxFeatures
	}
	if cfg.BoostingEstimators > 0 {
		params.Boosting.NEstimators = cfg.BoostingEstimators
	}
	if cfg.BoostingLearningRate > 0 {
		params.Boosting.LearningRate = cfg.BoostingLearningRate
	}
	if cfg.BoostingMaxFeatures != "" {
		params.Boosting.MaxFeatures = cfg.BoostingMaxFeatures
	}
	if cfg.BoostingSubsample > 0 {
		params.Boosting.Subsample = cfg.BoostingSubsample
	}
	if cfg.BoostingMaxDepth > 0 {
		params.Boosting.MaxDepth = cfg.BoostingMaxDepth
	}
	if cfg.BoostingEarlyStopWindow >= 0 {
		params.Boosting.EarlyStopWindow = cfg.BoostingEarlyStopWindow
	}
	return params
}

// initRegistry registers both native engines
func (c *Container) initRegistry() error {
	params := InferenceParams(c.Config.Inference)

	genie3, err := inference.NewGENIE3(params, c.Logger)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "invalid GENIE3 parameters")
	}
	grnboost2, err := inference.NewGRNBoost2(params, c.Logger)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "invalid GRNBoost2 parameters")
	}

	c.Registry = app.NewAlgorithmRegistry()
	if err := c.Registry.Register(experiment.AlgorithmGENIE3, genie3); err != nil {
		return err
	}
	return c.Registry.Register(experiment.AlgorithmGRNBoost2, grnboost2)
}

// InitLedger opens the run ledger when one is configured
func (c *Container) InitLedger(ctx context.Context) error {
	if !c.Config.Ledger.Enabled() || c.Ledger != nil {
		return nil
	}
	repo, err := ledger.Open(ctx, c.Config.Ledger.Driver, c.Config.Ledger.DSN, c.Logger)
	if err != nil {
		return err
	}
	c.Ledger = repo
	c.Logger.Info("Run ledger enabled (%s)", c.Config.Ledger.Driver)
	return nil
}

// InitRunner builds the experiment runner from the experiment configuration.
// Dry runs never touch the ledger.
func (c *Container) InitRunner(ctx context.Context) error {
	exp := c.Config.Experiment
	opts := []app.RunnerOption{app.WithLogger(c.Logger)}
	if !exp.DryRun {
		if err := c.InitLedger(ctx); err != nil {
			return errors.Wrap(err, "failed to initialize run ledger")
		}
		if c.Ledger != nil {
			opts = append(opts, app.WithLedger(c.Ledger))
		}
	}

	runner, err := app.NewExperimentRunner(app.ExperimentConfig{
		Seeds:           exp.Seeds,
		Datasets:        exp.Datasets,
		OutputDir:       exp.OutputDir,
		DryRun:          exp.DryRun,
		CreateOutputDir: exp.CreateOutputDir,
	}, c.Registry, c.Reader, c.Writer, c.Observer, opts...)
	if err != nil {
		return err
	}
	c.Runner = runner
	return nil
}

// Shutdown releases the ledger connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Ledger != nil {
		return c.Ledger.Close()
	}
	return nil
}
