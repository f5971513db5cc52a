package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"grnseeds/domain/experiment"
	apperrors "grnseeds/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders stability reports as a single Markdown document
func Markdown(reports []*experiment.StabilityReport) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Seed stability\n\n")
	if len(reports) == 0 {
		buf.WriteString("No networks compared.\n")
		return buf.Bytes()
	}

	buf.WriteString("| Dataset | Algorithm | Seeds | Edges (mean ± sd) | Top-K | Jaccard mean | Jaccard min | Spearman mean | Consensus |\n")
	buf.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range reports {
		fmt.Fprintf(&buf, "| %s | %s | %d | %.1f ± %.1f | %d | %s | %s | %s | %d |\n",
			r.Dataset, r.Algorithm, len(r.Networks), r.EdgeCountMean, r.EdgeCountStdDev,
			r.TopK, num(r.JaccardMean), num(r.JaccardMin), num(r.SpearmanMean), r.ConsensusEdges)
	}

	for _, r := range reports {
		fmt.Fprintf(&buf, "\n## %s\n\n", r.Dataset)
		buf.WriteString("| Seed A | Seed B | Jaccard | Spearman | p-value |\n")
		buf.WriteString("|---:|---:|---:|---:|---:|\n")
		for _, p := range r.Pairs {
			fmt.Fprintf(&buf, "| %d | %d | %s | %s | %s |\n",
				p.SeedA, p.SeedB, num(p.Jaccard), num(p.Spearman), pValue(p.PValue))
		}
	}
	return buf.Bytes()
}

// HTML renders the Markdown report as a standalone page
func HTML(reports []*experiment.StabilityReport, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(Markdown(reports), p, renderer)
}

// WriteFile writes the report to path; a .html extension selects HTML output
func WriteFile(path string, reports []*experiment.StabilityReport) error {
	var content []byte
	if isHTML(path) {
		content = HTML(reports, "Seed stability")
	} else {
		content = Markdown(reports)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	return nil
}

func isHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func pValue(v float64) string {
	if v < 1e-4 {
		return "< 1e-4"
	}
	return fmt.Sprintf("%.4f", v)
}
