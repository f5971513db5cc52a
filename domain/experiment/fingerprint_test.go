package experiment

import (
	"testing"

	"grnseeds/domain/core"
)

func TestRunFingerprint_Deterministic(t *testing.T) {
	dataset := Dataset{Name: "net1", ExpressionPath: "net1_expression_data.tsv", TFPath: "net1_transcription_factors.tsv"}
	params := core.Hash("params")

	fp1 := NewRunFingerprint(AlgorithmGRNBoost2, dataset, 42, params)
	fp2 := NewRunFingerprint(AlgorithmGRNBoost2, dataset, 42, params)

	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}
	if fp1.Seed != 42 {
		t.Errorf("Seed mismatch: %d", fp1.Seed)
	}
	if fp1.Dataset != "net1" {
		t.Errorf("Dataset mismatch: %s", fp1.Dataset)
	}
}

func TestRunFingerprint_Unique(t *testing.T) {
	dataset := Dataset{Name: "net1", ExpressionPath: "e.tsv", TFPath: "t.tsv"}
	base := NewRunFingerprint(AlgorithmGRNBoost2, dataset, 0, "params")

	other := dataset
	other.Name = "net3"
	moved := dataset
	moved.ExpressionPath = "elsewhere.tsv"

	testCases := []struct {
		name string
		fp   RunFingerprint
	}{
		{"different algorithm", NewRunFingerprint(AlgorithmGENIE3, dataset, 0, "params")},
		{"different dataset", NewRunFingerprint(AlgorithmGRNBoost2, other, 0, "params")},
		{"different input", NewRunFingerprint(AlgorithmGRNBoost2, moved, 0, "params")},
		{"different seed", NewRunFingerprint(AlgorithmGRNBoost2, dataset, 100, "params")},
		{"different params", NewRunFingerprint(AlgorithmGRNBoost2, dataset, 0, "other")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Expected fingerprint to change")
			}
		})
	}
}
