package expression

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"grnseeds/domain/core"
	"grnseeds/domain/experiment"
	apperrors "grnseeds/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadExpression_SamplesByGenes(t *testing.T) {
	path := writeFixture(t, "net_expression_data.tsv", "G1\tG2\tG3\n0.1\t1.5\t2\n0.2\t1.25\t-3e-2\n")

	m, err := NewDataReader(nil).ReadExpression(context.Background(), path, experiment.LayoutSamplesByGenes)
	require.NoError(t, err)

	assert.Equal(t, []string{"G1", "G2", "G3"}, m.Genes)
	assert.Equal(t, []string{"0", "1"}, m.Samples)
	assert.Equal(t, []float64{0.1, 0.2}, m.Columns[0])
	assert.Equal(t, []float64{2, -0.03}, m.Columns[2])
}

func TestReadExpression_GenesBySamples(t *testing.T) {
	path := writeFixture(t, "expr.tsv", "gene\ts1\ts2\ts3\nG1\t1\t2\t3\nG2\t4\t5\t6\n")

	m, err := NewDataReader(nil).ReadExpression(context.Background(), path, experiment.LayoutGenesBySamples)
	require.NoError(t, err)

	assert.Equal(t, []string{"G1", "G2"}, m.Genes)
	assert.Equal(t, []string{"s1", "s2", "s3"}, m.Samples)
	assert.Equal(t, []float64{4, 5, 6}, m.Columns[1])
}

func TestReadExpression_CSV(t *testing.T) {
	path := writeFixture(t, "expr.csv", "G1,G2\n1,2\n3,4\n")

	m, err := NewDataReader(nil).ReadExpression(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, m.Columns[1])
}

func TestReadExpression_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expr.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"G1", "G2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1.5, 2}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{3, 4.25}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	m, err := NewDataReader(nil).ReadExpression(context.Background(), path, experiment.LayoutSamplesByGenes)
	require.NoError(t, err)
	assert.Equal(t, []string{"G1", "G2"}, m.Genes)
	assert.Equal(t, []float64{1.5, 3}, m.Columns[0])
	assert.Equal(t, []float64{2, 4.25}, m.Columns[1])
}

func TestReadExpression_MissingFile(t *testing.T) {
	_, err := NewDataReader(nil).ReadExpression(context.Background(), filepath.Join(t.TempDir(), "nope.tsv"), "")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInputLoad))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadExpression_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"non numeric", "G1\tG2\n1\tabc\n", core.ErrNonNumericValue},
		{"nan", "G1\tG2\n1\tNaN\n", core.ErrNonNumericValue},
		{"ragged", "G1\tG2\n1\t2\t3\n", core.ErrRaggedRow},
		{"header only", "G1\tG2\n", core.ErrEmptyMatrix},
		{"duplicate gene", "G1\tG1\n1\t2\n", core.ErrDuplicateGene},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFixture(t, "bad.tsv", tc.content)
			_, err := NewDataReader(nil).ReadExpression(context.Background(), path, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInputLoad))
		})
	}
}

func TestReadTFNames_KeepsOrderAndDuplicates(t *testing.T) {
	path := writeFixture(t, "tfs.tsv", "G3\nG1\n\nG3\n  G2  \n")

	names, err := NewDataReader(nil).ReadTFNames(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"G3", "G1", "G3", "G2"}, names)
}

func TestReadTFNames_Errors(t *testing.T) {
	reader := NewDataReader(nil)

	_, err := reader.ReadTFNames(context.Background(), filepath.Join(t.TempDir(), "missing.tsv"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInputLoad))

	_, err = reader.ReadTFNames(context.Background(), writeFixture(t, "empty.tsv", "\n\n"))
	assert.True(t, errors.Is(err, core.ErrEmptyTFList))
}
