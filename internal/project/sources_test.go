// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papergen/pkg/types"
)

// fakePDF pretends to be pdftotext: it emits fixed text for any input.
type fakePDF struct {
	text string
	err  error
}

func (f *fakePDF) Name() string    { return "pdftotext" }
func (f *fakePDF) Available() bool { return true }

func (f *fakePDF) Run(dir string, args []string, stdout, stderr io.Writer) error {
	if f.err != nil {
		fmt.Fprint(stderr, "Syntax Error: bad xref")
		return f.err
	}
	io.WriteString(stdout, f.text)
	return nil
}

func testIngestor(t *testing.T) (*Ingestor, *Project) {
	t.Helper()
	p, err := Init(t.TempDir(), types.ProjectMeta{Topic: "t"})
	require.NoError(t, err)
	ing := &Ingestor{
		Project: p,
		Cfg:     types.IngestConfig{Parallelism: 2},
		HTTP:    http.DefaultClient,
		PDF:     &fakePDF{text: "extracted pdf text"},
	}
	return ing, p
}

func TestAddAll_MixedInputs(t *testing.T) {
	ing, p := testIngestor(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("web page text"))
	}))
	defer ts.Close()
	ing.HTTP = ts.Client()

	noteDir := t.TempDir()
	notePath := filepath.Join(noteDir, "My Notes.txt")
	require.NoError(t, os.WriteFile(notePath, []byte("note text"), 0o644))

	var out bytes.Buffer
	result := ing.AddAll(context.Background(),
		[]string{"Survey Paper.pdf", ts.URL + "/blog-post", notePath}, &out)

	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 0, result.Failed)

	sources, err := p.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 3)

	text, err := p.SourceText("survey-paper")
	require.NoError(t, err)
	assert.Equal(t, "extracted pdf text", text)

	text, err = p.SourceText("my-notes")
	require.NoError(t, err)
	assert.Equal(t, "note text", text)
}

func TestAddAll_FailureDoesNotAbortBatch(t *testing.T) {
	ing, p := testIngestor(t)
	ing.PDF = &fakePDF{err: fmt.Errorf("exit status 1")}

	noteDir := t.TempDir()
	notePath := filepath.Join(noteDir, "good.md")
	require.NoError(t, os.WriteFile(notePath, []byte("fine"), 0o644))

	var out bytes.Buffer
	result := ing.AddAll(context.Background(), []string{"broken.pdf", notePath}, &out)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())

	// The failure line carries the identifying input name.
	assert.Contains(t, out.String(), "failed  broken.pdf")
	assert.Contains(t, out.String(), "added   good")

	sources, err := p.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "good", sources[0].ID)
}

func TestAddAll_SkipsExisting(t *testing.T) {
	ing, _ := testIngestor(t)

	var out bytes.Buffer
	first := ing.AddAll(context.Background(), []string{"paper.pdf"}, &out)
	require.Equal(t, 1, first.Added)

	second := ing.AddAll(context.Background(), []string{"paper.pdf"}, &out)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Added)
}

func TestAddAll_EmptyExtractionFails(t *testing.T) {
	ing, _ := testIngestor(t)
	ing.PDF = &fakePDF{text: "   \n"}

	var out bytes.Buffer
	result := ing.AddAll(context.Background(), []string{"blank.pdf"}, &out)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, out.String(), "no text extracted")
}

// TestAddAll_LazyPDFLookupSharedAcrossBatch exercises the nil-PDF path with
// several PDFs in one batch: the pdftotext lookup must resolve once, before
// the ingestion goroutines start sharing the runner. Run with -race.
func TestAddAll_LazyPDFLookupSharedAcrossBatch(t *testing.T) {
	ing, p := testIngestor(t)
	ing.PDF = nil

	binDir := t.TempDir()
	script := filepath.Join(binDir, "pdftotext")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho extracted pdf text\n"), 0o755))
	t.Setenv("PATH", binDir)

	var out bytes.Buffer
	result := ing.AddAll(context.Background(),
		[]string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, &out)

	assert.Equal(t, 4, result.Added)
	assert.Equal(t, 0, result.Failed)
	assert.NotNil(t, ing.PDF)

	sources, err := p.Sources()
	require.NoError(t, err)
	assert.Len(t, sources, 4)
}

func TestAddAll_PDFToolMissingFailsPerItem(t *testing.T) {
	ing, p := testIngestor(t)
	ing.PDF = nil
	t.Setenv("PATH", t.TempDir())

	noteDir := t.TempDir()
	notePath := filepath.Join(noteDir, "good.md")
	require.NoError(t, os.WriteFile(notePath, []byte("fine"), 0o644))

	var out bytes.Buffer
	result := ing.AddAll(context.Background(), []string{"a.pdf", "b.pdf", notePath}, &out)

	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Added)
	assert.Contains(t, out.String(), "failed  a.pdf")
	assert.Contains(t, out.String(), "failed  b.pdf")

	sources, err := p.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "good", sources[0].ID)
}

func TestClassifyInput(t *testing.T) {
	assert.Equal(t, types.SourceURL, classifyInput("https://example.com/post"))
	assert.Equal(t, types.SourcePDF, classifyInput("paper.PDF"))
	assert.Equal(t, types.SourceNote, classifyInput("notes.md"))
}

func TestSourceSlug_URL(t *testing.T) {
	assert.Equal(t, "example-com-attention-html",
		sourceSlug("https://example.com/papers/attention.html", types.SourceURL))
	assert.Equal(t, "example-com", sourceSlug("https://example.com/", types.SourceURL))
}
