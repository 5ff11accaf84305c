// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/internal/revision"
	"github.com/pdiddy/papergen/pkg/types"
)

// Stats summarizes the structure of one Markdown draft.
type Stats struct {
	Words      int
	Headings   int
	Paragraphs int
	CodeBlocks int
}

// SectionReport pairs an outline section with its draft stats.
type SectionReport struct {
	Section   types.OutlineSection
	Stats     Stats
	HasDraft  bool
	Snapshots int
}

// TextStats walks the Markdown AST and counts words, headings,
// paragraphs, and code blocks. Code block content does not count toward
// words.
func TextStats(src []byte) Stats {
	doc := goldmark.New().Parser().Parse(gtext.NewReader(src))

	var stats Stats
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Heading:
			stats.Headings++
		case *ast.Paragraph:
			stats.Paragraphs++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			stats.CodeBlocks++
		case *ast.Text:
			stats.Words += len(strings.Fields(string(t.Segment.Value(src))))
		}
		return ast.WalkContinue, nil
	})
	return stats
}

// Report computes per-section draft stats for the whole outline. Sections
// without a draft yet report zero stats.
func Report(p *project.Project, outline *types.Outline) ([]SectionReport, error) {
	var reports []SectionReport
	for i := range outline.Sections {
		s := outline.Sections[i]
		r := SectionReport{Section: s}

		log := &revision.Log{
			HistoryDir: p.HistoryDir(SectionSlug(&s)),
			DraftPath:  filepath.Join(p.DraftsDir(), s.File),
		}
		n, err := log.Len()
		if err != nil {
			return nil, err
		}
		r.Snapshots = n

		data, err := os.ReadFile(log.DraftPath)
		if err == nil {
			r.HasDraft = true
			r.Stats = TextStats(data)
		} else if !os.IsNotExist(err) {
			return nil, err
		}

		reports = append(reports, r)
	}
	return reports, nil
}
