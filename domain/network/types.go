package network

import (
	"fmt"
	"sort"

	"grnseeds/domain/core"
)

// ExpressionMatrix holds expression measurements column-major: Columns[g][s] is
// the value of gene g in sample s.
type ExpressionMatrix struct {
	Genes   []string
	Samples []string
	Columns [][]float64
}

// NewExpressionMatrix validates shape and gene uniqueness
func NewExpressionMatrix(genes, samples []string, columns [][]float64) (*ExpressionMatrix, error) {
	if len(genes) == 0 || len(samples) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if len(columns) != len(genes) {
		return nil, fmt.Errorf("%w: %d genes, %d columns", core.ErrRaggedRow, len(genes), len(columns))
	}
	seen := make(map[string]bool, len(genes))
	for g, gene := range genes {
		if seen[gene] {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateGene, gene)
		}
		seen[gene] = true
		if len(columns[g]) != len(samples) {
			return nil, fmt.Errorf("%w: gene %s has %d values, expected %d",
				core.ErrRaggedRow, gene, len(columns[g]), len(samples))
		}
	}
	return &ExpressionMatrix{Genes: genes, Samples: samples, Columns: columns}, nil
}

// NumGenes returns the number of genes
func (m *ExpressionMatrix) NumGenes() int { return len(m.Genes) }

// NumSamples returns the number of samples
func (m *ExpressionMatrix) NumSamples() int { return len(m.Samples) }

// GeneIndex maps gene id to column position
func (m *ExpressionMatrix) GeneIndex() map[string]int {
	idx := make(map[string]int, len(m.Genes))
	for i, g := range m.Genes {
		idx[g] = i
	}
	return idx
}

// Edge is one predicted regulatory link
type Edge struct {
	TF         string
	Target     string
	Importance float64
}

// EdgeTable is the inference result, one row per predicted edge
type EdgeTable struct {
	Edges []Edge
}

// Len returns the number of edges
func (t *EdgeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Edges)
}

// SortByImportance orders edges by descending importance, breaking ties by TF then target
func (t *EdgeTable) SortByImportance() {
	sort.SliceStable(t.Edges, func(i, j int) bool {
		a, b := t.Edges[i], t.Edges[j]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.TF != b.TF {
			return a.TF < b.TF
		}
		return a.Target < b.Target
	})
}

// Truncate keeps at most n leading edges; n <= 0 keeps everything
func (t *EdgeTable) Truncate(n int) {
	if n > 0 && len(t.Edges) > n {
		t.Edges = t.Edges[:n]
	}
}

// Key identifies an edge independent of its score
func (e Edge) Key() string {
	return e.TF + "\x00" + e.Target
}
