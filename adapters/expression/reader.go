package expression

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"grnseeds/domain/core"
	"grnseeds/domain/experiment"
	"grnseeds/domain/network"
	"grnseeds/internal"
	apperrors "grnseeds/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader loads expression tables (tsv, csv, xlsx) and transcription factor lists
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader logging through logger; nil uses the default logger
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger.WithComponent("DataReader")}
}

// fileTypeOf picks the parser from the extension; anything unknown is treated as tsv
func fileTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	default:
		return "tsv"
	}
}

// ReadExpression reads the table at path into a column-major matrix
func (r *DataReader) ReadExpression(ctx context.Context, path string, layout experiment.Layout) (*network.ExpressionMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch fileType := fileTypeOf(path); fileType {
	case "xlsx":
		rows, err = r.readExcelRows(path)
	case "csv":
		rows, err = r.readDelimitedRows(path, ',')
	default:
		rows, err = r.readDelimitedRows(path, '\t')
	}
	if err != nil {
		return nil, apperrors.InputLoad(path, err)
	}

	var matrix *network.ExpressionMatrix
	switch layout {
	case experiment.LayoutGenesBySamples:
		matrix, err = processGenesBySamples(path, rows)
	case experiment.LayoutSamplesByGenes, "":
		matrix, err = processSamplesByGenes(path, rows)
	default:
		err = fmt.Errorf("%w: %q", core.ErrUnknownLayout, layout)
	}
	if err != nil {
		return nil, apperrors.InputLoad(path, err)
	}

	r.logger.Debug("%s read in %.2fms (%d genes, %d samples)",
		path, float64(time.Since(startTime).Nanoseconds())/1e6, matrix.NumGenes(), matrix.NumSamples())
	return matrix, nil
}

func (r *DataReader) readDelimitedRows(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1<<20))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of a workbook
func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	r.logger.Trace("sheet %s of %s has %d rows", sheets[0], path, len(rows))
	return rows, nil
}

// processSamplesByGenes: header row is gene ids, each further row one sample.
// Samples are numbered from 0 in file order.
func processSamplesByGenes(path string, rows [][]string) (*network.ExpressionMatrix, error) {
	if len(rows) < 2 {
		return nil, core.ErrEmptyMatrix
	}
	genes := trimAll(rows[0])
	columns := make([][]float64, len(genes))
	samples := make([]string, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != len(genes) {
			return nil, core.NewParseError(path, i+2,
				fmt.Errorf("%w: %d fields, expected %d", core.ErrRaggedRow, len(row), len(genes)))
		}
		for g, cell := range row {
			v, err := parseValue(cell)
			if err != nil {
				return nil, core.NewParseError(path, i+2, err)
			}
			columns[g] = append(columns[g], v)
		}
		samples = append(samples, strconv.Itoa(i))
	}
	return network.NewExpressionMatrix(genes, samples, columns)
}

// processGenesBySamples: header row is a label followed by sample ids, each
// further row a gene id followed by its values.
func processGenesBySamples(path string, rows [][]string) (*network.ExpressionMatrix, error) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, core.ErrEmptyMatrix
	}
	samples := trimAll(rows[0][1:])
	genes := make([]string, 0, len(rows)-1)
	columns := make([][]float64, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != len(samples)+1 {
			return nil, core.NewParseError(path, i+2,
				fmt.Errorf("%w: %d fields, expected %d", core.ErrRaggedRow, len(row), len(samples)+1))
		}
		values := make([]float64, len(samples))
		for s, cell := range row[1:] {
			v, err := parseValue(cell)
			if err != nil {
				return nil, core.NewParseError(path, i+2, err)
			}
			values[s] = v
		}
		genes = append(genes, strings.TrimSpace(row[0]))
		columns = append(columns, values)
	}
	return network.NewExpressionMatrix(genes, samples, columns)
}

func parseValue(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", core.ErrNonNumericValue, cell)
	}
	return v, nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// ReadTFNames reads one identifier per line. Blank lines are skipped; order and
// duplicates are kept as in the file.
func (r *DataReader) ReadTFNames(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.InputLoad(path, err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.InputLoad(path, err)
	}
	if len(names) == 0 {
		return nil, apperrors.InputLoad(path, core.ErrEmptyTFList)
	}

	r.logger.Debug("%s: %d transcription factors", path, len(names))
	return names, nil
}
