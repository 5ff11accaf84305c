// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/papergen/internal/draft"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

const mdFile = "paper.md"

// Markdown renders the project's drafts as a single output/paper.md in the
// requested flavor. The arxiv flavor numbers sections like a preprint; the
// github flavor reads like a README with a table of contents.
func Markdown(p *project.Project, flavor types.MarkdownFlavor) (string, error) {
	switch flavor {
	case "", types.FlavorArxiv:
		flavor = types.FlavorArxiv
	case types.FlavorGithub:
	default:
		return "", fmt.Errorf("unknown markdown flavor %q", flavor)
	}

	outline, err := draft.LoadOutline(p)
	if err != nil {
		return "", err
	}
	refs, err := draft.LoadReferences(p)
	if err != nil {
		return "", err
	}

	var doc strings.Builder
	switch flavor {
	case types.FlavorArxiv:
		err = renderArxiv(&doc, p, outline, refs)
	case types.FlavorGithub:
		err = renderGithub(&doc, p, outline, refs)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.OutputDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(p.OutputDir(), mdFile)
	if err := os.WriteFile(outPath, []byte(doc.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", mdFile, err)
	}
	return outPath, nil
}

func renderArxiv(doc *strings.Builder, p *project.Project, outline *types.Outline, refs *types.ReferencesFile) error {
	fmt.Fprintf(doc, "# %s\n\n", p.Meta.Topic)
	if p.Meta.Author != "" {
		fmt.Fprintf(doc, "*%s*\n\n", p.Meta.Author)
	}

	for i, s := range outline.Sections {
		body, err := sectionBody(p, s)
		if err != nil {
			return err
		}
		fmt.Fprintf(doc, "## %d. %s\n\n", i+1, s.Title)
		if body != "" {
			doc.WriteString(demoteHeadings(body))
			doc.WriteString("\n\n")
		}
	}

	writeReferenceList(doc, refs)
	return nil
}

func renderGithub(doc *strings.Builder, p *project.Project, outline *types.Outline, refs *types.ReferencesFile) error {
	fmt.Fprintf(doc, "# %s\n\n", p.Meta.Topic)
	if p.Meta.Author != "" {
		fmt.Fprintf(doc, "by %s\n\n", p.Meta.Author)
	}

	doc.WriteString("## Contents\n\n")
	for _, s := range outline.Sections {
		fmt.Fprintf(doc, "- [%s](#%s)\n", s.Title, anchor(s.Title))
	}
	doc.WriteString("\n")

	for _, s := range outline.Sections {
		body, err := sectionBody(p, s)
		if err != nil {
			return err
		}
		fmt.Fprintf(doc, "## %s\n\n", s.Title)
		if body != "" {
			doc.WriteString(demoteHeadings(body))
			doc.WriteString("\n\n")
		}
	}

	writeReferenceList(doc, refs)
	return nil
}

func writeReferenceList(doc *strings.Builder, refs *types.ReferencesFile) {
	if len(refs.Papers) == 0 {
		return
	}
	doc.WriteString("## References\n\n")
	for _, r := range refs.Papers {
		fmt.Fprintf(doc, "- **[%s]**", r.CitationKey)
		if len(r.Authors) > 0 {
			fmt.Fprintf(doc, " %s.", strings.Join(r.Authors, ", "))
		}
		fmt.Fprintf(doc, " *%s*.", r.Title)
		if r.Venue != "" {
			fmt.Fprintf(doc, " %s.", r.Venue)
		}
		if r.Year > 0 {
			fmt.Fprintf(doc, " %d.", r.Year)
		}
		doc.WriteString("\n")
	}
	doc.WriteString("\n")
}

// demoteHeadings pushes draft headings one level down so they nest under
// the per-section H2.
func demoteHeadings(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = "#" + trimmed
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// anchor builds a GitHub-style heading anchor.
func anchor(title string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(title) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ', c == '-':
			b.WriteByte('-')
		}
	}
	return b.String()
}
