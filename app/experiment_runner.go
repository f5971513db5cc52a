package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"grnseeds/domain/core"
	"grnseeds/domain/experiment"
	"grnseeds/internal"
	apperrors "grnseeds/internal/errors"
	"grnseeds/ports"
)

// ExperimentConfig is everything a batch of runs is parameterized by
type ExperimentConfig struct {
	Seeds     []int64
	Datasets  []experiment.Dataset
	OutputDir string
	// DryRun enumerates and reports every (dataset, seed) without reading,
	// inferring or writing anything.
	DryRun bool
	// CreateOutputDir creates the expanded output directory before the first
	// write; otherwise a missing directory fails the run.
	CreateOutputDir bool
}

// Validate checks the configuration before any run starts
func (c ExperimentConfig) Validate() error {
	if c.OutputDir == "" {
		return apperrors.ConfigInvalid("output directory is required")
	}
	if err := experiment.ValidateSeeds(c.Seeds); err != nil {
		return apperrors.WithCode(apperrors.CodeConfigInvalid, err, "invalid seed list")
	}
	if err := experiment.ValidateDatasets(c.Datasets); err != nil {
		return apperrors.WithCode(apperrors.CodeConfigInvalid, err, "invalid dataset list")
	}
	return nil
}

// ExperimentRunner runs every configured dataset for a seed, strictly one
// after the other.
type ExperimentRunner struct {
	config   ExperimentConfig
	registry *AlgorithmRegistry
	reader   ports.ExpressionReaderPort
	writer   ports.NetworkWriterPort
	observer ports.ProgressObserver
	ledger   ports.RunLedgerPort
	logger   *internal.Logger
	now      func() time.Time
	batchID  core.BatchID
}

// RunnerOption customizes an ExperimentRunner
type RunnerOption func(*ExperimentRunner)

// WithLedger records every written network in ledger
func WithLedger(ledger ports.RunLedgerPort) RunnerOption {
	return func(r *ExperimentRunner) { r.ledger = ledger }
}

// WithClock replaces time.Now for elapsed-time measurement
func WithClock(now func() time.Time) RunnerOption {
	return func(r *ExperimentRunner) { r.now = now }
}

// WithBatchID fixes the batch id instead of generating one
func WithBatchID(id core.BatchID) RunnerOption {
	return func(r *ExperimentRunner) { r.batchID = id }
}

// WithLogger sets the logger used for non-progress diagnostics
func WithLogger(logger *internal.Logger) RunnerOption {
	return func(r *ExperimentRunner) { r.logger = logger }
}

// NewExperimentRunner validates config and wires the runner's collaborators
func NewExperimentRunner(
	config ExperimentConfig,
	registry *AlgorithmRegistry,
	reader ports.ExpressionReaderPort,
	writer ports.NetworkWriterPort,
	observer ports.ProgressObserver,
	opts ...RunnerOption,
) (*ExperimentRunner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if registry == nil || reader == nil || writer == nil {
		return nil, apperrors.ConfigInvalid("registry, reader and writer are required")
	}

	r := &ExperimentRunner{
		config:   config,
		registry: registry,
		reader:   reader,
		writer:   writer,
		observer: observer,
		logger:   internal.DefaultLogger,
		now:      time.Now,
		batchID:  core.NewBatchID(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.observer == nil {
		r.observer = NewLogObserver(r.logger)
	}
	r.logger = r.logger.WithComponent("ExperimentRunner")
	return r, nil
}

// BatchID identifies the runs of this runner in the ledger
func (r *ExperimentRunner) BatchID() core.BatchID {
	return r.batchID
}

// Plan lists every (dataset, seed) combination in run order
func (r *ExperimentRunner) Plan(algorithmName string) ([]experiment.PlannedRun, error) {
	algorithm, _, err := r.registry.Resolve(algorithmName)
	if err != nil {
		return nil, err
	}
	planned := make([]experiment.PlannedRun, 0, len(r.config.Seeds)*len(r.config.Datasets))
	for _, seed := range r.config.Seeds {
		planned = append(planned, r.planSeed(algorithm, seed)...)
	}
	return planned, nil
}

func (r *ExperimentRunner) planSeed(algorithm experiment.Algorithm, seed int64) []experiment.PlannedRun {
	planned := make([]experiment.PlannedRun, 0, len(r.config.Datasets))
	for _, dataset := range r.config.Datasets {
		planned = append(planned, experiment.PlannedRun{
			Algorithm:  algorithm,
			Dataset:    dataset,
			Seed:       seed,
			OutputPath: experiment.OutputPath(r.config.OutputDir, algorithm, dataset.Name, seed),
		})
	}
	return planned
}

// RunAll runs every configured seed in order. The algorithm is resolved once
// up front; the first failing run aborts the remaining seeds.
func (r *ExperimentRunner) RunAll(ctx context.Context, algorithmName string) error {
	algorithm, _, err := r.registry.Resolve(algorithmName)
	if err != nil {
		return err
	}
	r.logger.Debug("batch %s: %d seeds x %d datasets (dry run: %t)",
		r.batchID, len(r.config.Seeds), len(r.config.Datasets), r.config.DryRun)

	for _, seed := range r.config.Seeds {
		r.observer.Observe(ctx, ports.ProgressEvent{
			Kind:      ports.EventSeedStarted,
			Algorithm: algorithm.String(),
			Seed:      seed,
		})
		if err := r.Run(ctx, algorithm.String(), seed); err != nil {
			return apperrors.Wrapf(err, "%s with seed %d", algorithm, seed)
		}
	}
	return nil
}

// Run infers every configured dataset with the given seed. Outputs already
// written by this call stay on disk when a later dataset fails.
func (r *ExperimentRunner) Run(ctx context.Context, algorithmName string, seed int64) error {
	algorithm, engine, err := r.registry.Resolve(algorithmName)
	if err != nil {
		return err
	}
	if seed < 0 {
		return apperrors.ValidationError(fmt.Sprintf("seed must be non-negative, got %d", seed))
	}

	if r.config.DryRun {
		for _, planned := range r.planSeed(algorithm, seed) {
			r.observer.Observe(ctx, ports.ProgressEvent{
				Kind:       ports.EventRunPlanned,
				Algorithm:  algorithm.String(),
				Dataset:    planned.Dataset.Name,
				Seed:       planned.Seed,
				OutputPath: planned.OutputPath,
			})
		}
		return nil
	}

	if r.config.CreateOutputDir {
		dir := experiment.ExpandOutputDir(r.config.OutputDir, algorithm)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.OutputWrite(dir, err)
		}
	}

	for _, dataset := range r.config.Datasets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runDataset(ctx, algorithm, engine, dataset, seed); err != nil {
			return err
		}
	}
	return nil
}

func (r *ExperimentRunner) runDataset(
	ctx context.Context,
	algorithm experiment.Algorithm,
	engine ports.InferencePort,
	dataset experiment.Dataset,
	seed int64,
) error {
	start := r.now()
	r.observer.Observe(ctx, ports.ProgressEvent{
		Kind:      ports.EventInferenceStarted,
		Algorithm: algorithm.String(),
		Dataset:   dataset.Name,
		Seed:      seed,
	})

	expr, err := r.reader.ReadExpression(ctx, dataset.ExpressionPath, dataset.Layout)
	if err != nil {
		return ensureCode(err, apperrors.CodeInputLoad, func(e error) error { return apperrors.InputLoad(dataset.ExpressionPath, e) })
	}
	tfNames, err := r.reader.ReadTFNames(ctx, dataset.TFPath)
	if err != nil {
		return ensureCode(err, apperrors.CodeInputLoad, func(e error) error { return apperrors.InputLoad(dataset.TFPath, e) })
	}

	table, err := engine.Infer(ctx, expr, tfNames, seed)
	if err != nil {
		return apperrors.Inference(algorithm.String(), dataset.Name, err)
	}

	elapsed := r.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	r.observer.Observe(ctx, ports.ProgressEvent{
		Kind:      ports.EventInferenceFinished,
		Algorithm: algorithm.String(),
		Dataset:   dataset.Name,
		Seed:      seed,
		Elapsed:   elapsed,
	})

	outputPath := experiment.OutputPath(r.config.OutputDir, algorithm, dataset.Name, seed)
	if err := r.writer.WriteNetwork(ctx, outputPath, table); err != nil {
		return ensureCode(err, apperrors.CodeOutputWrite, func(e error) error { return apperrors.OutputWrite(outputPath, e) })
	}
	r.observer.Observe(ctx, ports.ProgressEvent{
		Kind:       ports.EventNetworkWritten,
		Algorithm:  algorithm.String(),
		Dataset:    dataset.Name,
		Seed:       seed,
		OutputPath: outputPath,
	})

	r.record(ctx, algorithm, engine, dataset, seed, outputPath, table.Len(), elapsed)
	return nil
}

// record appends the run to the ledger. The network file is the product of a
// run, so a ledger failure is logged and does not fail the run.
func (r *ExperimentRunner) record(
	ctx context.Context,
	algorithm experiment.Algorithm,
	engine ports.InferencePort,
	dataset experiment.Dataset,
	seed int64,
	outputPath string,
	edgeCount int,
	elapsed time.Duration,
) {
	if r.ledger == nil {
		return
	}
	var paramsHash core.Hash
	if p, ok := engine.(ports.ParameterizedInference); ok {
		paramsHash = p.ParamsHash()
	}
	outputHash, err := core.HashFile(outputPath)
	if err != nil {
		r.logger.Warn("could not hash %s: %v", outputPath, err)
	}

	record := &experiment.RunRecord{
		ID:          core.NewRunID(),
		BatchID:     r.batchID,
		Fingerprint: experiment.NewRunFingerprint(algorithm, dataset, seed, paramsHash).Fingerprint,
		Algorithm:   algorithm,
		Dataset:     dataset.Name,
		Seed:        seed,
		OutputPath:  outputPath,
		OutputHash:  outputHash,
		EdgeCount:   edgeCount,
		ElapsedMS:   elapsed.Milliseconds(),
		CreatedAt:   r.now().UTC(),
	}
	if err := r.ledger.RecordRun(ctx, record); err != nil {
		r.logger.Warn("ledger: failed to record %s seed %d: %v", dataset.Name, seed, err)
	}
}

// ensureCode leaves coded errors untouched and wraps anything else
func ensureCode(err error, code string, wrap func(error) error) error {
	if apperrors.HasCode(err, code) {
		return err
	}
	return wrap(err)
}
