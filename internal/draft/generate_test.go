// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

// fakeClient returns canned replies keyed by a substring of the prompt.
type fakeClient struct {
	replies  map[string]string
	fallback string
	err      error
	prompts  []string
	lastReq  llm.Request
}

func (f *fakeClient) Name() string  { return "fake" }
func (f *fakeClient) Model() string { return "fake-model" }

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	f.prompts = append(f.prompts, req.Prompt)
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	for needle, reply := range f.replies {
		if strings.Contains(req.Prompt, needle) {
			return reply, nil
		}
	}
	return f.fallback, nil
}

const outlineReply = `Here is your outline:
{"sections": [
  {"title": "Introduction", "description": "Motivates the problem."},
  {"title": "Efficient Attention", "description": "Surveys mechanisms."},
  {"title": "Conclusion", "description": "Sums up."}
]}`

func testWriter(t *testing.T, client llm.Client) *Writer {
	t.Helper()
	p, err := project.Init(t.TempDir(), types.ProjectMeta{Topic: "efficient attention"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SaveSource(types.Source{
		ID: "survey-notes", Type: types.SourceNote, Origin: "notes.md",
		Title: "Survey Notes", Added: time.Now(),
	}, "Efficient attention trades exactness for speed."); err != nil {
		t.Fatal(err)
	}
	return &Writer{Project: p, Client: client}
}

func TestWriterAppliesGenerationConfig(t *testing.T) {
	fake := &fakeClient{fallback: outlineReply}
	w := testWriter(t, fake)
	w.Cfg = types.LLMConfig{MaxTokens: 2048, Temperature: 0.3}

	if _, err := w.GenerateOutline(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if fake.lastReq.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", fake.lastReq.MaxTokens)
	}
	if fake.lastReq.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", fake.lastReq.Temperature)
	}
}

func TestGenerateOutline(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})

	outline, err := w.GenerateOutline(context.Background(), "keep it short")
	if err != nil {
		t.Fatal(err)
	}
	if len(outline.Sections) != 3 {
		t.Fatalf("len(Sections) = %d, want 3", len(outline.Sections))
	}

	s := outline.Sections[1]
	if s.Number != "02" {
		t.Errorf("Number = %q, want 02", s.Number)
	}
	if s.File != "02-efficient-attention.md" {
		t.Errorf("File = %q, want 02-efficient-attention.md", s.File)
	}
	if s.Status != types.StatusOutline {
		t.Errorf("Status = %q, want outline", s.Status)
	}

	// Outline is persisted.
	loaded, err := LoadOutline(w.Project)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Sections) != 3 {
		t.Errorf("persisted sections = %d, want 3", len(loaded.Sections))
	}
}

func TestGenerateOutlinePromptIncludesSourcesAndGuidance(t *testing.T) {
	client := &fakeClient{fallback: outlineReply}
	w := testWriter(t, client)

	if _, err := w.GenerateOutline(context.Background(), "emphasize benchmarks"); err != nil {
		t.Fatal(err)
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, "Survey Notes") {
		t.Errorf("prompt missing source title: %s", prompt)
	}
	if !strings.Contains(prompt, "emphasize benchmarks") {
		t.Errorf("prompt missing guidance: %s", prompt)
	}
}

func TestGenerateOutlineBadReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json", "sorry, cannot help"},
		{"empty sections", `{"sections": []}`},
		{"missing title", `{"sections": [{"description": "x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testWriter(t, &fakeClient{fallback: tt.reply})
			if _, err := w.GenerateOutline(context.Background(), ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRefineOutlineKeepsSurvivingSections(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})
	if _, err := w.GenerateOutline(context.Background(), ""); err != nil {
		t.Fatal(err)
	}

	// Mark a section drafted, then refine with a reply that keeps its title.
	outline, _ := LoadOutline(w.Project)
	outline.Sections[0].Status = types.StatusDraft
	if err := SaveOutline(w.Project, outline); err != nil {
		t.Fatal(err)
	}

	w.Client = &fakeClient{fallback: `{"sections": [
  {"title": "Introduction", "description": "Rewritten scope."},
  {"title": "Benchmarks", "description": "New section."}
]}`}

	revised, err := w.RefineOutline(context.Background(), "add benchmarks, drop the rest")
	if err != nil {
		t.Fatal(err)
	}
	if len(revised.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(revised.Sections))
	}
	if revised.Sections[0].File != "01-introduction.md" {
		t.Errorf("surviving section lost its file: %q", revised.Sections[0].File)
	}
	if revised.Sections[0].Status != types.StatusDraft {
		t.Errorf("surviving section lost its status: %q", revised.Sections[0].Status)
	}
	if revised.Sections[1].File != "02-benchmarks.md" {
		t.Errorf("new section file = %q", revised.Sections[1].File)
	}
}

func TestDraftSection(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})
	outline, err := w.GenerateOutline(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	w.Client = &fakeClient{fallback: "Attention mechanisms matter because..."}
	section := &outline.Sections[0]
	if err := w.DraftSection(context.Background(), outline, section, ""); err != nil {
		t.Fatal(err)
	}

	// Draft file carries the heading and body.
	data, err := os.ReadFile(w.Log(section).DraftPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Introduction\n\n") {
		t.Errorf("draft missing heading: %q", string(data))
	}
	if !strings.Contains(string(data), "Attention mechanisms matter") {
		t.Errorf("draft missing body: %q", string(data))
	}

	// First history snapshot exists.
	n, err := w.Log(section).Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("snapshots = %d, want 1", n)
	}

	// Status persisted as draft.
	loaded, _ := LoadOutline(w.Project)
	if loaded.Sections[0].Status != types.StatusDraft {
		t.Errorf("Status = %q, want draft", loaded.Sections[0].Status)
	}
}

func TestDraftAllSkipsDraftedAndReportsFailures(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})
	outline, err := w.GenerateOutline(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	// Draft the first section up front.
	w.Client = &fakeClient{fallback: "prose"}
	if err := w.DraftSection(context.Background(), outline, &outline.Sections[0], ""); err != nil {
		t.Fatal(err)
	}

	// Remaining sections fail at the provider.
	w.Client = &fakeClient{err: &llm.ProviderError{Provider: "fake", Status: 500, Message: "boom"}}

	var buf strings.Builder
	err = w.DraftAll(context.Background(), &buf)
	if err == nil {
		t.Fatal("expected error when sections fail")
	}
	out := buf.String()
	if !strings.Contains(out, "skipped 01-introduction.md") {
		t.Errorf("output missing skip line: %s", out)
	}
	if !strings.Contains(out, "failed  02-efficient-attention.md") {
		t.Errorf("output missing failure line: %s", out)
	}
	if !strings.Contains(out, "failed  03-conclusion.md") {
		t.Errorf("failure should not abort the batch: %s", out)
	}
}

func TestReviseCapturesManualEdits(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})
	outline, err := w.GenerateOutline(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	section := &outline.Sections[0]

	w.Client = &fakeClient{fallback: "original draft"}
	if err := w.DraftSection(context.Background(), outline, section, ""); err != nil {
		t.Fatal(err)
	}

	// Hand-edit the draft file, then revise.
	log := w.Log(section)
	if err := os.WriteFile(log.DraftPath, []byte("hand-edited draft"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := &fakeClient{fallback: "revised text"}
	w.Client = client
	if err := w.Revise(context.Background(), outline, section, "tighten it"); err != nil {
		t.Fatal(err)
	}

	// The edit became snapshot 2, the revision snapshot 3.
	n, _ := log.Len()
	if n != 3 {
		t.Fatalf("snapshots = %d, want 3 (draft, manual edit, revision)", n)
	}
	edited, _ := log.Read(2)
	if edited != "hand-edited draft" {
		t.Errorf("snapshot 2 = %q, want the manual edit", edited)
	}

	// The model saw the edited text, not the original.
	if !strings.Contains(client.prompts[0], "hand-edited draft") {
		t.Errorf("revision prompt should include the edited text: %s", client.prompts[0])
	}

	loaded, _ := LoadOutline(w.Project)
	if loaded.Sections[0].Status != types.StatusRevised {
		t.Errorf("Status = %q, want revised", loaded.Sections[0].Status)
	}
}

func TestReviseWithoutDraftFails(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})
	outline, err := w.GenerateOutline(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	err = w.Revise(context.Background(), outline, &outline.Sections[0], "feedback")
	if err == nil {
		t.Fatal("expected error revising an undrafted section")
	}
}

func TestReviewWritesNothing(t *testing.T) {
	w := testWriter(t, &fakeClient{fallback: outlineReply})
	outline, err := w.GenerateOutline(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	section := &outline.Sections[0]

	w.Client = &fakeClient{fallback: "draft body"}
	if err := w.DraftSection(context.Background(), outline, section, ""); err != nil {
		t.Fatal(err)
	}

	w.Client = &fakeClient{fallback: "strengths: ... weaknesses: ..."}
	review, err := w.Review(context.Background(), section)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(review, "weaknesses") {
		t.Errorf("review = %q", review)
	}

	n, _ := w.Log(section).Len()
	if n != 1 {
		t.Errorf("snapshots = %d, want 1 (review must not write)", n)
	}
}

func TestGenerateOutlinePropagatesClientError(t *testing.T) {
	w := testWriter(t, &fakeClient{err: &llm.AuthError{Provider: "fake"}})

	_, err := w.GenerateOutline(context.Background(), "")
	var authErr *llm.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("err = %v, want AuthError", err)
	}
}
