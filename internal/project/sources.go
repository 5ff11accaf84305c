// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/papergen/internal/httputil"
	"github.com/pdiddy/papergen/internal/toolchain"
	"github.com/pdiddy/papergen/pkg/types"
)

// BatchResult holds the outcome of a batch ingestion run.
type BatchResult struct {
	Added   int
	Skipped int
	Failed  int
}

// Total returns the number of inputs processed.
func (r BatchResult) Total() int { return r.Added + r.Skipped + r.Failed }

// HasFailures reports whether any inputs failed.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// Ingestor adds research sources to a project. PDFs are extracted through
// the external pdftotext tool, URLs fetched over HTTP, anything else read
// verbatim as a note.
type Ingestor struct {
	Project *Project
	Cfg     types.IngestConfig
	HTTP    *http.Client

	// PDF runs pdftotext. Nil defers lookup to the first batch with a PDF
	// input, so projects without PDF sources never need the tool installed.
	PDF toolchain.Runner

	// pdfErr records a failed pdftotext lookup; every PDF input in the
	// batch then fails with it.
	pdfErr error
}

// itemResult is one input's private result slot.
type itemResult struct {
	source  types.Source
	skipped bool
	err     error
}

// AddAll ingests every input, bounding parallelism, and reports per-item
// outcomes to w in input order. A failed item is reported with its input
// name and does not abort the rest of the batch.
func (ing *Ingestor) AddAll(ctx context.Context, inputs []string, w io.Writer) BatchResult {
	parallelism := ing.Cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	// The PDF runner is shared by the goroutines below, so a lazy lookup
	// must happen before any of them start.
	if ing.PDF == nil && hasPDFInput(inputs) {
		ing.PDF, ing.pdfErr = toolchain.Pdftotext()
	}

	results := make([]itemResult, len(inputs))

	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for i, input := range inputs {
		g.Go(func() error {
			results[i] = ing.addOne(ctx, input)
			return nil
		})
	}
	g.Wait()

	var summary BatchResult
	for i, input := range inputs {
		switch {
		case results[i].err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", input, results[i].err)
			summary.Failed++
		case results[i].skipped:
			fmt.Fprintf(w, "skipped %s (already added)\n", results[i].source.ID)
			summary.Skipped++
		default:
			fmt.Fprintf(w, "added   %s (%s)\n", results[i].source.ID, results[i].source.Type)
			summary.Added++
		}
	}
	return summary
}

func (ing *Ingestor) addOne(ctx context.Context, input string) itemResult {
	srcType := classifyInput(input)
	id := sourceSlug(input, srcType)
	if id == "" {
		return itemResult{err: fmt.Errorf("cannot derive a source name from %q", input)}
	}

	if ing.Project.HasSource(id) {
		return itemResult{source: types.Source{ID: id}, skipped: true}
	}

	var text string
	var err error
	switch srcType {
	case types.SourcePDF:
		text, err = ing.extractPDF(input)
	case types.SourceURL:
		text, err = httputil.FetchText(ctx, ing.HTTP, input, ing.Cfg.UserAgent)
	default:
		text, err = readNote(input)
	}
	if err != nil {
		return itemResult{err: err}
	}
	if strings.TrimSpace(text) == "" {
		return itemResult{err: fmt.Errorf("no text extracted from %s", input)}
	}

	s := types.Source{
		ID:     id,
		Type:   srcType,
		Origin: input,
		Title:  id,
		Added:  time.Now().UTC(),
	}
	if err := ing.Project.SaveSource(s, text); err != nil {
		return itemResult{err: err}
	}
	return itemResult{source: s}
}

func (ing *Ingestor) extractPDF(path string) (string, error) {
	if ing.pdfErr != nil {
		return "", ing.pdfErr
	}
	rt := ing.PDF
	if rt == nil {
		var err error
		rt, err = toolchain.Pdftotext()
		if err != nil {
			return "", err
		}
	}
	return toolchain.ExtractPDFText(rt, path)
}

func readNote(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading note %s: %w", path, err)
	}
	return string(data), nil
}

// hasPDFInput reports whether any input will need the PDF runner.
func hasPDFInput(inputs []string) bool {
	for _, input := range inputs {
		if classifyInput(input) == types.SourcePDF {
			return true
		}
	}
	return false
}

// classifyInput tags an input as a PDF path, a URL, or a note file.
func classifyInput(input string) types.SourceType {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return types.SourceURL
	}
	if strings.EqualFold(filepath.Ext(input), ".pdf") {
		return types.SourcePDF
	}
	return types.SourceNote
}

// sourceSlug derives a stable source ID from the input. File inputs use the
// base name; URLs use the host plus the last path element.
func sourceSlug(input string, srcType types.SourceType) string {
	var base string
	if srcType == types.SourceURL {
		u, err := url.Parse(input)
		if err != nil {
			return ""
		}
		base = u.Host
		if last := filepath.Base(u.Path); last != "." && last != "/" && last != "" {
			base += "-" + last
		}
	} else {
		base = filepath.Base(input)
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Slugify(base)
}

// Slugify lowercases s and collapses runs of non-alphanumerics to single
// hyphens. Used for source IDs and section slugs.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
