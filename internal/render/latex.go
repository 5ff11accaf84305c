// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats the project's drafts into publishable outputs:
// LaTeX per venue template, Markdown per flavor, and a compiled PDF via an
// external LaTeX engine. Rendering is deterministic; the same project
// state always produces byte-identical output.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/papergen/internal/draft"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

const (
	texFile = "paper.tex"
	bibFile = "references.bib"
)

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// preambles carry the venue-specific document class and packages.
var preambles = map[types.TemplateID]string{
	types.TemplateIEEE: `\documentclass[conference]{IEEEtran}
\usepackage{cite}
\usepackage{graphicx}`,
	types.TemplateACL: `\documentclass[11pt]{article}
\usepackage[final]{acl}
\usepackage{graphicx}`,
	types.TemplateACM: `\documentclass[sigconf]{acmart}`,
	types.TemplateNeurIPS: `\documentclass{article}
\usepackage[final]{neurips_2024}
\usepackage{graphicx}`,
}

var latexDocTmpl = template.Must(template.New("latex-doc").Parse(`{{.Preamble}}

\title{ {{- .Title -}} }
\author{ {{- .Author -}} }

\begin{document}
\maketitle

{{.Body}}
\bibliographystyle{plain}
\bibliography{references}

\end{document}
`))

// LaTeXResult reports what a LaTeX render produced.
type LaTeXResult struct {
	TexPath string
	BibPath string

	// MissingCitations lists citation keys used in drafts with no entry in
	// references.yaml. Missing keys are a warning, not a failure.
	MissingCitations []string
}

// LaTeX renders the project's drafts as output/paper.tex plus
// output/references.bib for the given venue template.
func LaTeX(p *project.Project, tmplID types.TemplateID) (*LaTeXResult, error) {
	if tmplID == "" {
		tmplID = p.Meta.Template
	}
	if !types.ValidTemplate(tmplID) {
		return nil, fmt.Errorf("unknown template %q", tmplID)
	}

	outline, err := draft.LoadOutline(p)
	if err != nil {
		return nil, err
	}
	refs, err := draft.LoadReferences(p)
	if err != nil {
		return nil, err
	}
	missing, err := draft.ValidateCitations(p)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	for _, s := range outline.Sections {
		text, err := sectionBody(p, s)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&body, "\\section{%s}\n", escapeLaTeX(s.Title))
		if text != "" {
			body.WriteString(markdownToLaTeX(text))
			body.WriteString("\n")
		}
		body.WriteString("\n")
	}

	var doc strings.Builder
	err = latexDocTmpl.Execute(&doc, struct {
		Preamble, Title, Author, Body string
	}{
		Preamble: preambles[tmplID],
		Title:    escapeLaTeX(p.Meta.Topic),
		Author:   escapeLaTeX(p.Meta.Author),
		Body:     body.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	if err := os.MkdirAll(p.OutputDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	res := &LaTeXResult{
		TexPath:          filepath.Join(p.OutputDir(), texFile),
		BibPath:          filepath.Join(p.OutputDir(), bibFile),
		MissingCitations: missing,
	}
	if err := os.WriteFile(res.TexPath, []byte(doc.String()), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", texFile, err)
	}
	if err := os.WriteFile(res.BibPath, []byte(draft.GenerateBibTeX(refs)), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", bibFile, err)
	}
	return res, nil
}

// sectionBody reads a section's draft text with its leading H1 stripped.
// An undrafted section renders as an empty section.
func sectionBody(p *project.Project, s types.OutlineSection) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.DraftsDir(), s.File))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", s.File, err)
	}
	return stripLeadingHeading(string(data)), nil
}

// stripLeadingHeading drops the first top-level heading line if present.
func stripLeadingHeading(text string) string {
	trimmed := strings.TrimLeft(text, "\n")
	if strings.HasPrefix(trimmed, "# ") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			trimmed = trimmed[i+1:]
		} else {
			trimmed = ""
		}
	}
	return strings.TrimSpace(trimmed)
}

// latexEscaper handles the characters LaTeX treats specially in text mode.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func escapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// markdownToLaTeX converts draft Markdown to LaTeX line by line: nested
// headings become subsections, inline citations become \cite, everything
// else is escaped prose.
func markdownToLaTeX(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "### "):
			fmt.Fprintf(&b, "\\subsubsection{%s}\n", escapeLaTeX(strings.TrimPrefix(trimmed, "### ")))
		case strings.HasPrefix(trimmed, "## "):
			fmt.Fprintf(&b, "\\subsection{%s}\n", escapeLaTeX(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "# "):
			fmt.Fprintf(&b, "\\subsection{%s}\n", escapeLaTeX(strings.TrimPrefix(trimmed, "# ")))
		default:
			b.WriteString(convertCitations(escapeLaTeX(line)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// convertCitations rewrites [Key] and [Key1; Key2] to \cite{...}. It runs
// on escaped text, so brackets are still literal.
func convertCitations(line string) string {
	return citationPattern.ReplaceAllStringFunc(line, func(m string) string {
		inner := strings.Trim(m, "[]")
		var keys []string
		for _, part := range strings.Split(inner, ";") {
			key := strings.TrimSpace(part)
			if key == "" || !draft.IsCitationKey(key) {
				return m
			}
			keys = append(keys, key)
		}
		return fmt.Sprintf("\\cite{%s}", strings.Join(keys, ","))
	})
}
