// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/multillm"
	"github.com/pdiddy/papergen/internal/prompt"
	"github.com/pdiddy/papergen/pkg/types"
)

// BrainstormContext seeds brainstorming with prior analysis, typically the
// output of discover survey.
type BrainstormContext struct {
	Gaps       []string `json:"research_gaps"`
	Weaknesses []string `json:"weaknesses"`
	Directions []string `json:"future_directions"`
}

// LoadContext reads a brainstorming context file. Survey landscape JSON
// works directly since the field names match.
func LoadContext(path string) (*BrainstormContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	var c BrainstormContext
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing context %s: %w", path, err)
	}
	return &c, nil
}

// Generator runs brainstorming across a provider pool and consolidates the
// pooled ideas through a summarizer model.
type Generator struct {
	Pool       *multillm.Pool
	Summarizer llm.Client
	MaxRetries int

	// Count is the number of ideas requested per provider (default 5).
	Count int

	// Timeout bounds the whole fan-out. Zero uses the pool default.
	Timeout time.Duration
}

// RunOutput is everything one brainstorming run produced.
type RunOutput struct {
	RunID   string
	Topic   string
	Reports []types.ProviderReport

	// Summary is the consolidated analysis. Nil when the summarizer failed;
	// SummaryErr then says why and the raw reports still stand.
	Summary    *types.BrainstormSummary
	SummaryErr string
}

// Brainstorm fans the idea prompt out to every provider in the pool,
// collects per-provider reports, and summarizes the pooled ideas. When all
// providers fail the aggregate error is returned alongside the reports, so
// callers can still show what each provider said.
func (g *Generator) Brainstorm(ctx context.Context, topic string, bctx *BrainstormContext) (*RunOutput, error) {
	count := g.Count
	if count <= 0 {
		count = 5
	}

	data := prompt.BrainstormData{Topic: topic, Count: count}
	if bctx != nil {
		data.Gaps = bctx.Gaps
		data.Weaknesses = bctx.Weaknesses
		data.Directions = bctx.Directions
	}
	p, err := prompt.Brainstorm(data)
	if err != nil {
		return nil, err
	}

	out := &RunOutput{RunID: uuid.NewString(), Topic: topic}

	results, genErr := g.Pool.Generate(ctx, llm.Request{
		System:      prompt.BrainstormSystem,
		Prompt:      p,
		Temperature: 0.9,
	}, g.Timeout)

	var pooled []types.Idea
	for _, r := range results {
		report := types.ProviderReport{Provider: r.Provider, Model: r.Model}
		switch {
		case r.Err != nil:
			report.Error = r.Err.Error()
		default:
			ideas, err := ParseIdeas(r.Text)
			if err != nil {
				report.Error = err.Error()
			} else {
				report.Ideas = ideas
				pooled = append(pooled, ideas...)
			}
		}
		out.Reports = append(out.Reports, report)
	}

	if genErr != nil {
		return out, genErr
	}
	if len(pooled) == 0 {
		return out, fmt.Errorf("no provider produced parseable ideas")
	}

	g.summarize(ctx, out, pooled)
	return out, nil
}

// summarize runs the dedup-and-rank step over the pooled ideas. Its
// failure is recorded, not propagated; the raw reports are the fallback.
func (g *Generator) summarize(ctx context.Context, out *RunOutput, pooled []types.Idea) {
	ideasJSON, err := json.MarshalIndent(pooled, "", "  ")
	if err != nil {
		out.SummaryErr = err.Error()
		return
	}
	p, err := prompt.SummarizeIdeas(string(ideasJSON))
	if err != nil {
		out.SummaryErr = err.Error()
		return
	}

	reply, err := llm.GenerateWithRetry(ctx, g.Summarizer, llm.Request{Prompt: p}, g.MaxRetries)
	if err != nil {
		out.SummaryErr = err.Error()
		return
	}

	obj, err := ExtractJSONObject(reply)
	if err != nil {
		out.SummaryErr = err.Error()
		return
	}
	var summary types.BrainstormSummary
	if err := json.Unmarshal([]byte(obj), &summary); err != nil {
		out.SummaryErr = fmt.Sprintf("parsing summary: %v", err)
		return
	}
	summary.RunID = out.RunID
	summary.Topic = out.Topic
	out.Summary = &summary
}

// reportFile wraps a provider report with run metadata for the on-disk
// report.
type reportFile struct {
	RunID string `json:"run_id"`
	Topic string `json:"topic"`
	types.ProviderReport
}

// WriteReports writes one JSON report per provider plus the consolidated
// summary (when present) into dir. It returns the written paths.
func (out *RunOutput) WriteReports(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	var paths []string
	for _, r := range out.Reports {
		path := filepath.Join(dir, fmt.Sprintf("brainstorm-%s.json", r.Provider))
		data, err := json.MarshalIndent(reportFile{RunID: out.RunID, Topic: out.Topic, ProviderReport: r}, "", "  ")
		if err != nil {
			return paths, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	if out.Summary != nil {
		path := filepath.Join(dir, "brainstorm-summary.json")
		data, err := json.MarshalIndent(out.Summary, "", "  ")
		if err != nil {
			return paths, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}
