// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/multillm"
	"github.com/pdiddy/papergen/pkg/types"
)

// fakeClient is a scriptable llm.Client.
type fakeClient struct {
	name  string
	reply string
	err   error
}

func (f *fakeClient) Name() string  { return f.name }
func (f *fakeClient) Model() string { return f.name + "-model" }

func (f *fakeClient) Generate(_ context.Context, _ llm.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakePDF pretends to be pdftotext.
type fakePDF struct {
	text string
	err  error
}

func (f *fakePDF) Name() string    { return "pdftotext" }
func (f *fakePDF) Available() bool { return true }

func (f *fakePDF) Run(_ string, _ []string, stdout, _ io.Writer) error {
	if f.err != nil {
		return f.err
	}
	fmt.Fprint(stdout, f.text)
	return nil
}

func ideaReply(titles ...string) string {
	var ideas []types.Idea
	for _, t := range titles {
		ideas = append(ideas, types.Idea{Title: t, OneSentence: "about " + t, Feasibility: "high"})
	}
	data, _ := json.Marshal(map[string]any{"ideas": ideas})
	return "Sure thing:\n" + string(data)
}

// --- JSON parsing ---

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, false},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"prose around", `Here you go: {"a": 1} enjoy`, `{"a": 1}`, false},
		{"no object", "no json here", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.reply)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIdeas(t *testing.T) {
	ideas, err := ParseIdeas(ideaReply("Sparse Attention Distillation", "Cheap Long Context"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ideas) != 2 {
		t.Fatalf("len(ideas) = %d, want 2", len(ideas))
	}
	if ideas[0].Title != "Sparse Attention Distillation" {
		t.Errorf("Title = %q", ideas[0].Title)
	}
}

func TestParseIdeasErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json", "cannot help with that"},
		{"empty ideas", `{"ideas": []}`},
		{"untitled idea", `{"ideas": [{"one_sentence": "x"}]}`},
		{"wrong shape", `{"results": [1, 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseIdeas(tt.reply); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// --- survey and paper analysis ---

const surveyReply = `{
  "research_gaps": ["long-context efficiency"],
  "key_papers_to_read": [{"title": "Attention Is All You Need", "reason": "foundation"}],
  "future_directions": ["hardware-aware attention"]
}`

func TestSurvey(t *testing.T) {
	a := &Analyzer{
		Client: &fakeClient{name: "anthropic", reply: surveyReply},
		PDF:    &fakePDF{text: "survey text body"},
	}

	landscape, err := a.Survey(context.Background(), "survey.pdf", "efficient attention")
	if err != nil {
		t.Fatal(err)
	}
	if landscape.Topic != "efficient attention" {
		t.Errorf("Topic = %q", landscape.Topic)
	}
	if len(landscape.KeyPapers) != 1 || landscape.KeyPapers[0].Title != "Attention Is All You Need" {
		t.Errorf("KeyPapers = %+v", landscape.KeyPapers)
	}
	if len(landscape.ResearchGaps) != 1 {
		t.Errorf("ResearchGaps = %v", landscape.ResearchGaps)
	}
}

func TestSurveyRejectsUntitledKeyPaper(t *testing.T) {
	a := &Analyzer{
		Client: &fakeClient{name: "anthropic", reply: `{"research_gaps": ["x"], "key_papers_to_read": [{"reason": "no title"}]}`},
		PDF:    &fakePDF{text: "body"},
	}
	if _, err := a.Survey(context.Background(), "s.pdf", "t"); err == nil {
		t.Error("expected error for untitled key paper")
	}
}

func TestSurveyEmptyExtractionFails(t *testing.T) {
	a := &Analyzer{
		Client: &fakeClient{name: "anthropic", reply: surveyReply},
		PDF:    &fakePDF{text: "   \n"},
	}
	if _, err := a.Survey(context.Background(), "s.pdf", "t"); err == nil {
		t.Error("expected error for empty extraction")
	}
}

func TestPaperDefaultsTitleFromFilename(t *testing.T) {
	a := &Analyzer{
		Client: &fakeClient{name: "openai", reply: `{"core_contribution": "a new cache", "strengths": ["fast"]}`},
		PDF:    &fakePDF{text: "paper body"},
	}

	analysis, err := a.Paper(context.Background(), "/papers/kv-cache-tricks.pdf", "")
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Title != "kv-cache-tricks" {
		t.Errorf("Title = %q", analysis.Title)
	}
	if analysis.CoreContribution != "a new cache" {
		t.Errorf("CoreContribution = %q", analysis.CoreContribution)
	}
}

// --- brainstorming ---

func TestBrainstormMergesProviderReports(t *testing.T) {
	pool := multillm.NewPool(
		&fakeClient{name: "anthropic", reply: ideaReply("Idea A1", "Idea A2")},
		&fakeClient{name: "openai", err: &llm.RateLimitError{Provider: "openai"}},
		&fakeClient{name: "gemini", reply: ideaReply("Idea G1")},
	)
	summarizer := &fakeClient{name: "anthropic", reply: `{
		"unique_ideas": [{"title": "Idea A1"}, {"title": "Idea G1"}],
		"consensus_themes": ["efficiency"],
		"top_recommendations": ["Idea A1"],
		"summary": "two strong ideas"
	}`}

	g := &Generator{Pool: pool, Summarizer: summarizer, Count: 2}
	out, err := g.Brainstorm(context.Background(), "efficient attention", nil)
	if err != nil {
		t.Fatal(err)
	}

	if out.RunID == "" {
		t.Error("missing run ID")
	}
	if len(out.Reports) != 3 {
		t.Fatalf("len(Reports) = %d, want 3", len(out.Reports))
	}

	// Reports follow registration order; the failure is recorded in place.
	if out.Reports[0].Provider != "anthropic" || len(out.Reports[0].Ideas) != 2 {
		t.Errorf("report 0 = %+v", out.Reports[0])
	}
	if out.Reports[1].Provider != "openai" || out.Reports[1].Error == "" {
		t.Errorf("report 1 should record the failure: %+v", out.Reports[1])
	}
	if len(out.Reports[2].Ideas) != 1 {
		t.Errorf("report 2 = %+v", out.Reports[2])
	}

	if out.Summary == nil {
		t.Fatalf("missing summary (SummaryErr = %q)", out.SummaryErr)
	}
	if out.Summary.RunID != out.RunID {
		t.Errorf("summary run ID = %q, want %q", out.Summary.RunID, out.RunID)
	}
	if len(out.Summary.UniqueIdeas) != 2 {
		t.Errorf("UniqueIdeas = %+v", out.Summary.UniqueIdeas)
	}
}

func TestBrainstormAllProvidersFail(t *testing.T) {
	pool := multillm.NewPool(
		&fakeClient{name: "anthropic", err: &llm.AuthError{Provider: "anthropic"}},
		&fakeClient{name: "openai", err: &llm.ProviderError{Provider: "openai", Status: 500, Message: "boom"}},
	)
	g := &Generator{Pool: pool, Summarizer: &fakeClient{name: "anthropic"}}

	out, err := g.Brainstorm(context.Background(), "topic", nil)

	var aggErr *multillm.AggregateError
	if !errors.As(err, &aggErr) {
		t.Fatalf("err = %v, want AggregateError", err)
	}
	// Partial results still come back for reporting.
	if out == nil || len(out.Reports) != 2 {
		t.Fatalf("out = %+v, want 2 reports", out)
	}
	for _, r := range out.Reports {
		if r.Error == "" {
			t.Errorf("report %s should record an error", r.Provider)
		}
	}
	if out.Summary != nil {
		t.Error("no summary should exist when all providers fail")
	}
}

func TestBrainstormSummarizerFailureKeepsReports(t *testing.T) {
	pool := multillm.NewPool(&fakeClient{name: "anthropic", reply: ideaReply("Idea A")})
	g := &Generator{
		Pool:       pool,
		Summarizer: &fakeClient{name: "anthropic", err: &llm.ProviderError{Provider: "anthropic", Message: "overloaded"}},
	}

	out, err := g.Brainstorm(context.Background(), "topic", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary != nil {
		t.Error("summary should be nil when the summarizer fails")
	}
	if out.SummaryErr == "" {
		t.Error("SummaryErr should say why")
	}
	if len(out.Reports) != 1 || len(out.Reports[0].Ideas) != 1 {
		t.Errorf("raw reports must survive: %+v", out.Reports)
	}
}

func TestBrainstormUsesContext(t *testing.T) {
	var seen string
	client := &fakeClient{name: "anthropic", reply: ideaReply("Idea A")}
	pool := multillm.NewPool(&captureClient{fakeClient: client, prompt: &seen})

	g := &Generator{Pool: pool, Summarizer: &fakeClient{name: "anthropic", reply: `{"unique_ideas": [{"title": "Idea A"}]}`}}
	bctx := &BrainstormContext{
		Gaps:       []string{"sparse eval protocols"},
		Weaknesses: []string{"weak baselines"},
		Directions: []string{"hybrid retrieval"},
	}
	if _, err := g.Brainstorm(context.Background(), "topic", bctx); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"sparse eval protocols", "weak baselines", "hybrid retrieval"} {
		if !strings.Contains(seen, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// captureClient records the prompt it was sent.
type captureClient struct {
	*fakeClient
	prompt *string
}

func (c *captureClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	*c.prompt = req.Prompt
	return c.fakeClient.Generate(ctx, req)
}

func TestLoadContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.json")
	content := `{"research_gaps": ["g"], "weaknesses": ["w"], "future_directions": ["d"]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadContext(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Gaps) != 1 || c.Gaps[0] != "g" {
		t.Errorf("Gaps = %v", c.Gaps)
	}

	if _, err := LoadContext(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteReports(t *testing.T) {
	pool := multillm.NewPool(&fakeClient{name: "anthropic", reply: ideaReply("Idea A")})
	g := &Generator{Pool: pool, Summarizer: &fakeClient{name: "anthropic", reply: `{"unique_ideas": [{"title": "Idea A"}], "summary": "ok"}`}}

	out, err := g.Brainstorm(context.Background(), "topic", nil)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	paths, err := out.WriteReports(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want provider report + summary", paths)
	}

	data, err := os.ReadFile(filepath.Join(dir, "brainstorm-anthropic.json"))
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		RunID string `json:"run_id"`
		Ideas []types.Idea
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if report.RunID != out.RunID {
		t.Errorf("report run_id = %q, want %q", report.RunID, out.RunID)
	}

	if _, err := os.Stat(filepath.Join(dir, "brainstorm-summary.json")); err != nil {
		t.Errorf("missing summary report: %v", err)
	}
}
