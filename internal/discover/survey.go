// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/prompt"
	"github.com/pdiddy/papergen/internal/toolchain"
	"github.com/pdiddy/papergen/pkg/types"
)

// Analyzer runs single-model analyses over PDF papers.
type Analyzer struct {
	Client     llm.Client
	MaxRetries int

	// PDF extracts text from papers. Nil autodetects pdftotext.
	PDF toolchain.Runner
}

// Survey extracts a survey paper's text and maps the research landscape of
// the topic: gaps, key papers, and future directions.
func (a *Analyzer) Survey(ctx context.Context, pdfPath, topic string) (*types.SurveyLandscape, error) {
	text, err := toolchain.ExtractPDFText(a.PDF, pdfPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text extracted from %s", pdfPath)
	}

	p, err := prompt.Survey(topic, text)
	if err != nil {
		return nil, err
	}
	reply, err := llm.GenerateWithRetry(ctx, a.Client, llm.Request{Prompt: p}, a.MaxRetries)
	if err != nil {
		return nil, err
	}

	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return nil, err
	}
	var landscape types.SurveyLandscape
	if err := json.Unmarshal([]byte(obj), &landscape); err != nil {
		return nil, fmt.Errorf("parsing survey analysis: %w", err)
	}
	landscape.Topic = topic

	for i, kp := range landscape.KeyPapers {
		if strings.TrimSpace(kp.Title) == "" {
			return nil, fmt.Errorf("key paper %d has no title", i+1)
		}
	}
	if len(landscape.KeyPapers) == 0 && len(landscape.ResearchGaps) == 0 {
		return nil, fmt.Errorf("survey analysis is empty")
	}
	return &landscape, nil
}

// Paper runs a deep analysis of a single paper. Title defaults to the PDF
// filename.
func (a *Analyzer) Paper(ctx context.Context, pdfPath, title string) (*types.PaperAnalysis, error) {
	text, err := toolchain.ExtractPDFText(a.PDF, pdfPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text extracted from %s", pdfPath)
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	}

	p, err := prompt.Paper(title, text)
	if err != nil {
		return nil, err
	}
	reply, err := llm.GenerateWithRetry(ctx, a.Client, llm.Request{Prompt: p}, a.MaxRetries)
	if err != nil {
		return nil, err
	}

	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return nil, err
	}
	var analysis types.PaperAnalysis
	if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
		return nil, fmt.Errorf("parsing paper analysis: %w", err)
	}
	if analysis.Title == "" {
		analysis.Title = title
	}
	return &analysis, nil
}
