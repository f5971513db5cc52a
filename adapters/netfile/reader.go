package netfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"grnseeds/domain/core"
	"grnseeds/domain/network"
	apperrors "grnseeds/internal/errors"
)

// TSVReader reads networks written by TSVWriter (or pandas)
type TSVReader struct{}

// NewTSVReader creates a reader
func NewTSVReader() *TSVReader {
	return &TSVReader{}
}

// ReadNetwork locates the TF, target and importance columns by header name, so
// files with or without the index column are accepted.
func (r *TSVReader) ReadNetwork(ctx context.Context, path string) (*network.EdgeTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.InputLoad(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.InputLoad(path, fmt.Errorf("missing header: %w", err))
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	tfCol, okTF := cols[Header[0]]
	targetCol, okTarget := cols[Header[1]]
	impCol, okImp := cols[Header[2]]
	if !okTF || !okTarget || !okImp {
		return nil, apperrors.InputLoad(path, fmt.Errorf("header %v lacks one of %v", header, Header))
	}
	width := max(tfCol, targetCol, impCol) + 1

	table := &network.EdgeTable{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.InputLoad(path, err)
		}
		if len(record) < width {
			return nil, apperrors.InputLoad(path, core.NewParseError(path, line, core.ErrRaggedRow))
		}
		importance, err := strconv.ParseFloat(record[impCol], 64)
		if err != nil {
			return nil, apperrors.InputLoad(path, core.NewParseError(path, line,
				fmt.Errorf("%w: %q", core.ErrNonNumericValue, record[impCol])))
		}
		table.Edges = append(table.Edges, network.Edge{
			TF:         record[tfCol],
			Target:     record[targetCol],
			Importance: importance,
		})
	}
	return table, nil
}
