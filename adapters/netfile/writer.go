package netfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grnseeds/domain/network"
	apperrors "grnseeds/internal/errors"
)

// Column names of a persisted network, after the leading index column
var Header = []string{"TF", "target", "importance"}

// TSVWriter writes edge tables as tab-separated text with a leading row index
// column and a header row, the layout pandas produces with to_csv(sep='\t').
type TSVWriter struct{}

// NewTSVWriter creates a writer
func NewTSVWriter() *TSVWriter {
	return &TSVWriter{}
}

// WriteNetwork replaces the file at path. The table is written to a temporary
// file in the same directory and renamed into place, so an existing file is
// never left half-written.
func (w *TSVWriter) WriteNetwork(ctx context.Context, path string, table *network.EdgeTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return apperrors.OutputWrite(path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp, table); err != nil {
		tmp.Close()
		return apperrors.OutputWrite(path, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	return nil
}

func encode(f *os.File, table *network.EdgeTable) error {
	buf := bufio.NewWriterSize(f, 1<<16)
	cw := csv.NewWriter(buf)
	cw.Comma = '\t'

	if err := cw.Write(append([]string{""}, Header...)); err != nil {
		return err
	}
	if table != nil {
		for i, e := range table.Edges {
			if err := cw.Write([]string{strconv.Itoa(i), e.TF, e.Target, FormatFloat(e.Importance)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

// FormatFloat renders v the way Python's repr does: shortest round-trip digits,
// positional notation for decimal exponents in [-4, 16) with a trailing ".0" for
// integral values, scientific notation otherwise.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
