package experiment

import (
	"fmt"
	"path/filepath"
	"strings"

	"grnseeds/domain/core"
)

// Algorithm tags an inference variant
type Algorithm string

const (
	AlgorithmGENIE3    Algorithm = "genie3"
	AlgorithmGRNBoost2 Algorithm = "grnboost2"
)

// String returns the string representation
func (a Algorithm) String() string { return string(a) }

// Layout describes how an expression table is oriented on disk
type Layout string

const (
	// LayoutSamplesByGenes: header row holds gene ids, every following row is one sample
	LayoutSamplesByGenes Layout = "samples_by_genes"
	// LayoutGenesBySamples: header row holds sample ids, first column holds gene ids
	LayoutGenesBySamples Layout = "genes_by_samples"
)

// ParseLayout accepts the two layout names; empty selects samples_by_genes
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.TrimSpace(s)) {
	case "", LayoutSamplesByGenes:
		return LayoutSamplesByGenes, nil
	case LayoutGenesBySamples:
		return LayoutGenesBySamples, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownLayout, s)
}

// Dataset describes one benchmark network input
type Dataset struct {
	Name           string `json:"name"`
	ExpressionPath string `json:"expression_path"`
	TFPath         string `json:"tf_path"`
	Layout         Layout `json:"layout"`
}

// Validate checks that the descriptor can produce a safe output file name
func (d Dataset) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return core.NewValidationError("dataset.name", "cannot be empty")
	}
	if strings.ContainsAny(d.Name, `/\`) {
		return core.NewValidationError("dataset.name", fmt.Sprintf("%q contains a path separator", d.Name))
	}
	if d.ExpressionPath == "" {
		return core.NewValidationError("dataset.expression_path", fmt.Sprintf("missing for %s", d.Name))
	}
	if d.TFPath == "" {
		return core.NewValidationError("dataset.tf_path", fmt.Sprintf("missing for %s", d.Name))
	}
	if _, err := ParseLayout(string(d.Layout)); err != nil {
		return err
	}
	return nil
}

// ValidateDatasets checks every descriptor and name uniqueness
func ValidateDatasets(datasets []Dataset) error {
	seen := make(map[string]bool, len(datasets))
	for _, d := range datasets {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: %s", core.ErrDuplicateDataset, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// ValidateSeeds rejects negative seeds
func ValidateSeeds(seeds []int64) error {
	for _, s := range seeds {
		if s < 0 {
			return fmt.Errorf("%w: %d", core.ErrNegativeSeed, s)
		}
	}
	return nil
}

// GenerateSeeds returns count seeds spaced step apart starting at zero
func GenerateSeeds(count int, step int64) []int64 {
	seeds := make([]int64, 0, max(count, 0))
	for i := 0; i < count; i++ {
		seeds = append(seeds, int64(i)*step)
	}
	return seeds
}

// AlgorithmPlaceholder is substituted in output directories
const AlgorithmPlaceholder = "{algorithm}"

// ExpandOutputDir substitutes the algorithm name into dir
func ExpandOutputDir(dir string, algorithm Algorithm) string {
	return strings.ReplaceAll(dir, AlgorithmPlaceholder, string(algorithm))
}

// OutputPath is {outputDir}/{dataset}.seed_{seed}.csv with the algorithm placeholder expanded
func OutputPath(outputDir string, algorithm Algorithm, dataset string, seed int64) string {
	return filepath.Join(ExpandOutputDir(outputDir, algorithm), fmt.Sprintf("%s.seed_%d.csv", dataset, seed))
}

// PlannedRun is one (dataset, seed) combination of a batch
type PlannedRun struct {
	Algorithm  Algorithm
	Dataset    Dataset
	Seed       int64
	OutputPath string
}
