// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain locates and runs the external document tools papergen
// depends on: pdftotext for source ingestion and a LaTeX engine for
// format compile.
package toolchain

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes one external tool.
type Runner interface {
	// Name returns the tool's binary name (e.g. "pdftotext", "latexmk").
	Name() string

	// Available reports whether the binary exists on PATH.
	Available() bool

	// Run executes the tool with args in dir (empty for the current
	// directory), writing its stdout and stderr to the given writers.
	Run(dir string, args []string, stdout, stderr io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name, dir string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name, dir string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// tool implements Runner for a single binary.
type tool struct {
	bin  string
	exec executor
}

func (t *tool) Name() string { return t.bin }

func (t *tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *tool) Run(dir string, args []string, stdout, stderr io.Writer) error {
	if err := t.exec.Run(t.bin, dir, args, stdout, stderr); err != nil {
		return fmt.Errorf("running %s: %w", t.bin, err)
	}
	return nil
}

// Find returns a Runner for the first available binary among names.
func Find(names ...string) (Runner, error) {
	return find(defaultExec, names...)
}

func find(exec executor, names ...string) (Runner, error) {
	for _, name := range names {
		t := &tool{bin: name, exec: exec}
		if t.Available() {
			return t, nil
		}
	}
	return nil, fmt.Errorf("none of %v found on PATH", names)
}

// Pdftotext locates the pdftotext binary used for PDF source ingestion.
func Pdftotext() (Runner, error) {
	r, err := Find("pdftotext")
	if err != nil {
		return nil, fmt.Errorf("pdftotext not available (install poppler-utils): %w", err)
	}
	return r, nil
}

// LatexEngine locates a LaTeX build tool. latexmk is preferred because it
// handles reruns and BibTeX; pdflatex and tectonic are fallbacks.
func LatexEngine() (Runner, error) {
	r, err := Find("latexmk", "pdflatex", "tectonic")
	if err != nil {
		return nil, fmt.Errorf("no LaTeX engine available: %w", err)
	}
	return r, nil
}

// ExtractPDFText runs a pdftotext Runner over path with layout preserved
// and returns the text. A nil runner autodetects pdftotext from PATH.
func ExtractPDFText(r Runner, path string) (string, error) {
	if r == nil {
		var err error
		r, err = Pdftotext()
		if err != nil {
			return "", err
		}
	}
	var out, diag bytes.Buffer
	if err := r.Run("", []string{"-layout", path, "-"}, &out, &diag); err != nil {
		return "", fmt.Errorf("extracting %s: %w: %s", path, err, strings.TrimSpace(diag.String()))
	}
	return out.String(), nil
}
