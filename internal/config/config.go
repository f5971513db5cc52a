package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grnseeds/domain/experiment"
	"grnseeds/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Experiment ExperimentConfig
	Inference  InferenceConfig
	Ledger     LedgerConfig
	Stability  StabilityConfig
	LogLevel   string
}

// ExperimentConfig selects what gets run
type ExperimentConfig struct {
	Algorithm       string
	Seeds           []int64
	Datasets        []experiment.Dataset
	OutputDir       string
	DryRun          bool
	CreateOutputDir bool
	PlanFile        string
}

// InferenceConfig holds engine tuning; zero values keep the engine defaults
type InferenceConfig struct {
	Workers int
	Limit   int

	ForestTrees       int
	ForestMaxFeatures string

	BoostingEstimators      int
	BoostingLearningRate    float64
	BoostingMaxFeatures     string
	BoostingSubsample       float64
	BoostingMaxDepth        int
	BoostingEarlyStopWindow int
}

// LedgerConfig enables the SQL run ledger when Driver is set
type LedgerConfig struct {
	Driver string
	DSN    string
}

// Enabled reports whether runs should be recorded
func (l LedgerConfig) Enabled() bool {
	return l.Driver != ""
}

// StabilityConfig drives the seed stability analysis
type StabilityConfig struct {
	TopK       int
	ReportPath string
}

// Defaults mirror the DREAM5 experiment layout
const (
	DefaultAlgorithm    = "grnboost2"
	DefaultResourcesDir = "../resources/dream5"
	DefaultOutputDir    = "../output/dream5/{algorithm}"
	DefaultDatasets     = "net1,net3,net4"
	DefaultSeedCount    = 1
	DefaultSeedStep     = 100
	DefaultTopK         = 1000
)

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding the environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load reads configuration from environment variables, applies the plan file
// if PLAN_FILE is set, and validates the result
func Load() (*Config, error) {
	config := &Config{LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO")}

	experimentConfig, err := loadExperimentConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load experiment configuration")
	}
	config.Experiment = *experimentConfig

	config.Inference = *loadInferenceConfig()
	config.Ledger = *loadLedgerConfig()
	config.Stability = *loadStabilityConfig()

	if config.Experiment.PlanFile != "" {
		if err := ApplyPlanFile(config, config.Experiment.PlanFile); err != nil {
			return nil, errors.Wrap(err, "failed to apply plan file")
		}
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadExperimentConfig() (*ExperimentConfig, error) {
	seeds, err := loadSeeds()
	if err != nil {
		return nil, err
	}
	datasets, err := DREAM5Datasets(
		getEnvOrDefault("RESOURCES_DIR", DefaultResourcesDir),
		splitList(getEnvOrDefault("DATASETS", DefaultDatasets)),
		experiment.Layout(getEnvOrDefault("EXPRESSION_LAYOUT", "")),
	)
	if err != nil {
		return nil, err
	}

	return &ExperimentConfig{
		Algorithm:       getEnvOrDefault("ALGORITHM", DefaultAlgorithm),
		Seeds:           seeds,
		Datasets:        datasets,
		OutputDir:       getEnvOrDefault("OUTPUT_DIR", DefaultOutputDir),
		DryRun:          getEnvBoolOrDefault("DRY_RUN", false),
		CreateOutputDir: getEnvBoolOrDefault("CREATE_OUTPUT_DIR", false),
		PlanFile:        getEnvOrDefault("PLAN_FILE", ""),
	}, nil
}

// loadSeeds prefers an explicit SEEDS list over the SEED_COUNT/SEED_STEP generator
func loadSeeds() ([]int64, error) {
	if raw := os.Getenv("SEEDS"); raw != "" {
		return ParseSeeds(raw)
	}
	count := getEnvIntOrDefault("SEED_COUNT", DefaultSeedCount)
	step := getEnvIntOrDefault("SEED_STEP", DefaultSeedStep)
	return experiment.GenerateSeeds(count, int64(step)), nil
}

// ParseSeeds parses a comma separated seed list
func ParseSeeds(raw string) ([]int64, error) {
	var seeds []int64
	for _, part := range splitList(raw) {
		seed, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("invalid seed %q", part))
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// DREAM5Datasets builds descriptors following {dir}/{name}/{name}_expression_data.tsv
// and {dir}/{name}/{name}_transcription_factors.tsv
func DREAM5Datasets(resourcesDir string, names []string, layout experiment.Layout) ([]experiment.Dataset, error) {
	if _, err := experiment.ParseLayout(string(layout)); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err, "invalid EXPRESSION_LAYOUT")
	}
	datasets := make([]experiment.Dataset, 0, len(names))
	for _, name := range names {
		datasets = append(datasets, experiment.Dataset{
			Name:           name,
			ExpressionPath: filepath.Join(resourcesDir, name, name+"_expression_data.tsv"),
			TFPath:         filepath.Join(resourcesDir, name, name+"_transcription_factors.tsv"),
			Layout:         layout,
		})
	}
	return datasets, nil
}

func loadInferenceConfig() *InferenceConfig {
	return &InferenceConfig{
		Workers:                 getEnvIntOrDefault("INFERENCE_WORKERS", 0),
		Limit:                   getEnvIntOrDefault("INFERENCE_LIMIT", 0),
		ForestTrees:             getEnvIntOrDefault("GENIE3_TREES", 0),
		ForestMaxFeatures:       getEnvOrDefault("GENIE3_MAX_FEATURES", ""),
		BoostingEstimators:      getEnvIntOrDefault("GRNBOOST2_ESTIMATORS", 0),
		BoostingLearningRate:    getEnvFloatOrDefault("GRNBOOST2_LEARNING_RATE", 0),
		BoostingMaxFeatures:     getEnvOrDefault("GRNBOOST2_MAX_FEATURES", ""),
		BoostingSubsample:       getEnvFloatOrDefault("GRNBOOST2_SUBSAMPLE", 0),
		BoostingMaxDepth:        getEnvIntOrDefault("GRNBOOST2_MAX_DEPTH", 0),
		BoostingEarlyStopWindow: getEnvIntOrDefault("GRNBOOST2_EARLY_STOP_WINDOW", -1),
	}
}

func loadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Driver: getEnvOrDefault("LEDGER_DRIVER", ""),
		DSN:    getEnvOrDefault("LEDGER_DSN", ""),
	}
}

func loadStabilityConfig() *StabilityConfig {
	return &StabilityConfig{
		TopK:       getEnvIntOrDefault("STABILITY_TOP_K", DefaultTopK),
		ReportPath: getEnvOrDefault("STABILITY_REPORT", ""),
	}
}

// Validate checks fields every command relies on
func Validate(config *Config) error {
	if config.Experiment.Algorithm == "" {
		return errors.ConfigInvalid("algorithm is required")
	}
	if config.Experiment.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if len(config.Experiment.Seeds) == 0 {
		return errors.ConfigInvalid("at least one seed is required")
	}
	if err := experiment.ValidateSeeds(config.Experiment.Seeds); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "invalid seeds")
	}
	if err := experiment.ValidateDatasets(config.Experiment.Datasets); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "invalid datasets")
	}
	if config.Ledger.Enabled() && config.Ledger.DSN == "" {
		return errors.ConfigInvalid("LEDGER_DSN is required when LEDGER_DRIVER is set")
	}
	if config.Stability.TopK < 1 {
		return errors.ConfigInvalid("stability top-k must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
