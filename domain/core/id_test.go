package core

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseBatchID tests batch ID parsing
func TestParseBatchID(t *testing.T) {
	tests := []struct {
		input    string
		expected BatchID
		hasError bool
	}{
		{"valid-id", BatchID("valid-id"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseBatchID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestComputeParamsHashOrderIndependent(t *testing.T) {
	a := ComputeParamsHash(map[string]interface{}{"n_estimators": 1000, "max_features": "sqrt"})
	b := ComputeParamsHash(map[string]interface{}{"max_features": "sqrt", "n_estimators": 1000})
	c := ComputeParamsHash(map[string]interface{}{"max_features": "sqrt", "n_estimators": 500})

	if a != b {
		t.Errorf("Expected identical hashes, got %s vs %s", a, b)
	}
	if a == c {
		t.Error("Expected different hashes for different parameters")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", a.Short())
	}
}

func TestHashFileMatchesNewHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.csv")
	content := []byte("\tTF\ttarget\timportance\n0\tG1\tG2\t0.5\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if got != NewHash(content) {
		t.Errorf("Expected %s, got %s", NewHash(content), got)
	}
}
