package experiment

import (
	"errors"
	"path/filepath"
	"testing"

	"grnseeds/domain/core"
)

func TestOutputPath(t *testing.T) {
	got := OutputPath("out", AlgorithmGRNBoost2, "netA", 0)
	if got != filepath.Join("out", "netA.seed_0.csv") {
		t.Errorf("unexpected path %s", got)
	}

	got = OutputPath("../output/dream5/{algorithm}", AlgorithmGENIE3, "net1", 300)
	want := filepath.Join("..", "output", "dream5", "genie3", "net1.seed_300.csv")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestOutputPath_NoCollisionAcrossSeeds(t *testing.T) {
	seen := make(map[string]int64)
	for _, seed := range GenerateSeeds(100, 100) {
		path := OutputPath("out", AlgorithmGRNBoost2, "net1", seed)
		if prev, exists := seen[path]; exists {
			t.Fatalf("seeds %d and %d collide on %s", prev, seed, path)
		}
		seen[path] = seed
	}
}

func TestGenerateSeeds(t *testing.T) {
	seeds := GenerateSeeds(4, 100)
	expected := []int64{0, 100, 200, 300}
	if len(seeds) != len(expected) {
		t.Fatalf("Expected %d seeds, got %d", len(expected), len(seeds))
	}
	for i := range expected {
		if seeds[i] != expected[i] {
			t.Errorf("seed %d: expected %d, got %d", i, expected[i], seeds[i])
		}
	}
	if len(GenerateSeeds(0, 100)) != 0 {
		t.Error("Expected no seeds for count 0")
	}
}

func TestValidateDatasets(t *testing.T) {
	valid := Dataset{Name: "net1", ExpressionPath: "e.tsv", TFPath: "t.tsv"}

	if err := ValidateDatasets([]Dataset{valid}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateDatasets([]Dataset{valid, valid}); !errors.Is(err, core.ErrDuplicateDataset) {
		t.Errorf("Expected duplicate dataset error, got %v", err)
	}

	cases := map[string]Dataset{
		"empty name":     {ExpressionPath: "e", TFPath: "t"},
		"path separator": {Name: "a/b", ExpressionPath: "e", TFPath: "t"},
		"no expression":  {Name: "a", TFPath: "t"},
		"no tfs":         {Name: "a", ExpressionPath: "e"},
		"bad layout":     {Name: "a", ExpressionPath: "e", TFPath: "t", Layout: "sideways"},
	}
	for name, d := range cases {
		if err := d.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestValidateSeeds(t *testing.T) {
	if err := ValidateSeeds([]int64{0, 100}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateSeeds([]int64{0, -1}); !errors.Is(err, core.ErrNegativeSeed) {
		t.Errorf("Expected negative seed error, got %v", err)
	}
}

func TestParseLayout(t *testing.T) {
	layout, err := ParseLayout("")
	if err != nil || layout != LayoutSamplesByGenes {
		t.Errorf("Expected default layout, got %s (%v)", layout, err)
	}
	layout, err = ParseLayout("genes_by_samples")
	if err != nil || layout != LayoutGenesBySamples {
		t.Errorf("Expected genes_by_samples, got %s (%v)", layout, err)
	}
	if _, err := ParseLayout("columns"); !errors.Is(err, core.ErrUnknownLayout) {
		t.Errorf("Expected unknown layout error, got %v", err)
	}
}
