// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/papergen/internal/draft"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

func testProject(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.Init(t.TempDir(), types.ProjectMeta{
		Topic:    "Efficient Attention & Friends",
		Author:   "A. Researcher",
		Template: types.TemplateIEEE,
	})
	if err != nil {
		t.Fatal(err)
	}

	outline := &types.Outline{Sections: []types.OutlineSection{
		{Number: "01", Title: "Introduction", File: "01-introduction.md",
			Description: "Motivation.", Status: types.StatusDraft},
		{Number: "02", Title: "Methods", File: "02-methods.md",
			Description: "Approach.", Status: types.StatusOutline},
	}}
	if err := draft.SaveOutline(p, outline); err != nil {
		t.Fatal(err)
	}

	intro := `# Introduction

Attention is 100% quadratic [Vaswani2017].

## Background

Prior work [Tay2022; Vaswani2017] surveys the field.
`
	if err := os.WriteFile(filepath.Join(p.DraftsDir(), "01-introduction.md"), []byte(intro), 0o644); err != nil {
		t.Fatal(err)
	}

	refsYAML := `papers:
  - citation_key: Vaswani2017
    title: Attention Is All You Need
    authors: [Vaswani, Shazeer]
    year: 2017
    venue: NeurIPS
`
	if err := os.WriteFile(p.ReferencesPath(), []byte(refsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	return p
}

// --- LaTeX tests ---

func TestLaTeX(t *testing.T) {
	p := testProject(t)

	res, err := LaTeX(p, "")
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(res.TexPath)
	if err != nil {
		t.Fatal(err)
	}
	tex := string(data)

	if !strings.Contains(tex, `\documentclass[conference]{IEEEtran}`) {
		t.Errorf("missing IEEE preamble: %s", tex)
	}
	if !strings.Contains(tex, `\title{Efficient Attention \& Friends}`) {
		t.Errorf("title not escaped: %s", tex)
	}
	if !strings.Contains(tex, `\section{Introduction}`) {
		t.Errorf("missing section: %s", tex)
	}
	if !strings.Contains(tex, `\subsection{Background}`) {
		t.Errorf("nested heading not converted: %s", tex)
	}
	if !strings.Contains(tex, `\cite{Vaswani2017}`) {
		t.Errorf("citation not converted: %s", tex)
	}
	if !strings.Contains(tex, `\cite{Tay2022,Vaswani2017}`) {
		t.Errorf("multi-citation not converted: %s", tex)
	}
	if !strings.Contains(tex, `100\%`) {
		t.Errorf("percent not escaped: %s", tex)
	}
	// The draft's own H1 does not repeat inside the section.
	if strings.Count(tex, "Introduction") != 1 {
		t.Errorf("leading heading not stripped: %s", tex)
	}
	// Undrafted section still appears, empty.
	if !strings.Contains(tex, `\section{Methods}`) {
		t.Errorf("missing undrafted section: %s", tex)
	}

	bib, err := os.ReadFile(res.BibPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bib), "@article{Vaswani2017,") {
		t.Errorf("bib missing entry: %s", bib)
	}

	if len(res.MissingCitations) != 1 || res.MissingCitations[0] != "Tay2022" {
		t.Errorf("MissingCitations = %v, want [Tay2022]", res.MissingCitations)
	}
}

func TestLaTeXTemplates(t *testing.T) {
	wants := map[types.TemplateID]string{
		types.TemplateIEEE:    "IEEEtran",
		types.TemplateACL:     "{acl}",
		types.TemplateACM:     "acmart",
		types.TemplateNeurIPS: "neurips_2024",
	}
	for tmpl, want := range wants {
		t.Run(string(tmpl), func(t *testing.T) {
			p := testProject(t)
			res, err := LaTeX(p, tmpl)
			if err != nil {
				t.Fatal(err)
			}
			data, _ := os.ReadFile(res.TexPath)
			if !strings.Contains(string(data), want) {
				t.Errorf("preamble missing %q", want)
			}
		})
	}
}

func TestLaTeXUnknownTemplate(t *testing.T) {
	p := testProject(t)
	if _, err := LaTeX(p, "pnas"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestLaTeXDeterministic(t *testing.T) {
	p := testProject(t)

	read := func() string {
		t.Helper()
		res, err := LaTeX(p, "")
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(res.TexPath)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	if first, second := read(), read(); first != second {
		t.Error("renders of unchanged state differ")
	}
}

func TestEscapeLaTeX(t *testing.T) {
	got := escapeLaTeX(`50% of $x_i & #1 {braces} ~a^b \cmd`)
	for _, want := range []string{`\%`, `\$`, `\_`, `\&`, `\#`, `\{`, `\}`, `\textasciitilde{}`, `\textasciicircum{}`, `\textbackslash{}`} {
		if !strings.Contains(got, want) {
			t.Errorf("escaped text missing %q: %s", want, got)
		}
	}
}

func TestConvertCitationsLeavesProse(t *testing.T) {
	line := "See [the appendix] and [Smith2020]."
	got := convertCitations(line)
	if !strings.Contains(got, "[the appendix]") {
		t.Errorf("prose brackets rewritten: %s", got)
	}
	if !strings.Contains(got, `\cite{Smith2020}`) {
		t.Errorf("citation not rewritten: %s", got)
	}
}

// --- Markdown tests ---

func TestMarkdownArxiv(t *testing.T) {
	p := testProject(t)

	outPath, err := Markdown(p, types.FlavorArxiv)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)

	if !strings.HasPrefix(md, "# Efficient Attention & Friends\n") {
		t.Errorf("missing title: %s", md)
	}
	if !strings.Contains(md, "## 1. Introduction") {
		t.Errorf("sections not numbered: %s", md)
	}
	if !strings.Contains(md, "## 2. Methods") {
		t.Errorf("undrafted section missing: %s", md)
	}
	if !strings.Contains(md, "### Background") {
		t.Errorf("draft headings not demoted: %s", md)
	}
	if !strings.Contains(md, "## References") || !strings.Contains(md, "**[Vaswani2017]**") {
		t.Errorf("missing reference list: %s", md)
	}
}

func TestMarkdownGithub(t *testing.T) {
	p := testProject(t)

	outPath, err := Markdown(p, types.FlavorGithub)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)

	if !strings.Contains(md, "## Contents") {
		t.Errorf("missing TOC: %s", md)
	}
	if !strings.Contains(md, "- [Introduction](#introduction)") {
		t.Errorf("missing TOC entry: %s", md)
	}
	if !strings.Contains(md, "## Introduction") {
		t.Errorf("missing section heading: %s", md)
	}
}

func TestMarkdownUnknownFlavor(t *testing.T) {
	p := testProject(t)
	if _, err := Markdown(p, "commonmark"); err == nil {
		t.Error("expected error for unknown flavor")
	}
}

func TestAnchor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Introduction", "introduction"},
		{"Related Work", "related-work"},
		{"Q&A: Setup", "qa-setup"},
	}
	for _, tt := range tests {
		if got := anchor(tt.in); got != tt.want {
			t.Errorf("anchor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Compile tests ---

type fakeEngine struct {
	name   string
	output string
	err    error
	dir    string
	args   []string
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return true }

func (f *fakeEngine) Run(dir string, args []string, stdout, stderr io.Writer) error {
	f.dir = dir
	f.args = args
	fmt.Fprint(stdout, f.output)
	return f.err
}

func TestCompile(t *testing.T) {
	p := testProject(t)
	if _, err := LaTeX(p, ""); err != nil {
		t.Fatal(err)
	}

	engine := &fakeEngine{name: "latexmk", output: "Latexmk: All targets up-to-date"}
	pdfPath, err := Compile(p, engine)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(pdfPath) != "paper.pdf" {
		t.Errorf("pdfPath = %q", pdfPath)
	}
	if engine.dir != p.OutputDir() {
		t.Errorf("engine ran in %q, want output dir", engine.dir)
	}
	if len(engine.args) == 0 || engine.args[len(engine.args)-1] != "paper.tex" {
		t.Errorf("args = %v", engine.args)
	}
}

func TestCompileWithoutTexFails(t *testing.T) {
	p := testProject(t)
	_, err := Compile(p, &fakeEngine{name: "pdflatex"})
	if err == nil {
		t.Fatal("expected error without paper.tex")
	}
	if !strings.Contains(err.Error(), "format latex") {
		t.Errorf("err = %v", err)
	}
}

func TestCompileErrorCarriesOutput(t *testing.T) {
	p := testProject(t)
	if _, err := LaTeX(p, ""); err != nil {
		t.Fatal(err)
	}

	engine := &fakeEngine{
		name:   "pdflatex",
		output: "! Undefined control sequence.\nl.42 \\badmacro",
		err:    fmt.Errorf("exit status 1"),
	}
	_, err := Compile(p, engine)
	if err == nil {
		t.Fatal("expected error")
	}

	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %T, want *CompileError", err)
	}
	if !strings.Contains(compileErr.Output, "Undefined control sequence") {
		t.Errorf("Output = %q, want engine diagnostics", compileErr.Output)
	}
	if !strings.Contains(err.Error(), "l.42") {
		t.Errorf("Error() should carry diagnostics verbatim: %s", err)
	}
}
