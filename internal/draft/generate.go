// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/internal/prompt"
	"github.com/pdiddy/papergen/internal/revision"
	"github.com/pdiddy/papergen/pkg/types"
)

// Writer drives the LLM-backed writing workflow for one project.
type Writer struct {
	Project *project.Project
	Client  llm.Client

	// Cfg carries the generation parameters and retry budget for every
	// call the writer makes.
	Cfg types.LLMConfig
}

// request builds a generation request with the configured parameters.
func (w *Writer) request(p string) llm.Request {
	return llm.Request{Prompt: p, MaxTokens: w.Cfg.MaxTokens, Temperature: w.Cfg.Temperature}
}

// Log returns the revision log for a section.
func (w *Writer) Log(s *types.OutlineSection) *revision.Log {
	return &revision.Log{
		HistoryDir: w.Project.HistoryDir(SectionSlug(s)),
		DraftPath:  filepath.Join(w.Project.DraftsDir(), s.File),
	}
}

// GenerateOutline asks the model for a section outline and writes
// outline.yaml. Guidance is optional author steering. An existing outline
// is overwritten; section drafts and their history are untouched.
func (w *Writer) GenerateOutline(ctx context.Context, guidance string) (*types.Outline, error) {
	sources, err := w.Project.Sources()
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, s := range sources {
		titles = append(titles, fmt.Sprintf("%s (%s)", s.Title, s.Type))
	}

	p, err := prompt.Outline(prompt.OutlineData{
		Topic:    w.Project.Meta.Topic,
		Guidance: guidance,
		Sources:  titles,
	})
	if err != nil {
		return nil, err
	}

	reply, err := llm.GenerateWithRetry(ctx, w.Client, w.request(p), w.Cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	outline, err := parseOutline(reply)
	if err != nil {
		return nil, err
	}
	if err := SaveOutline(w.Project, outline); err != nil {
		return nil, err
	}
	return outline, nil
}

// RefineOutline revises the outline per author feedback. Sections whose
// title survives the revision keep their draft file and status, so
// existing drafts and history stay attached.
func (w *Writer) RefineOutline(ctx context.Context, feedback string) (*types.Outline, error) {
	current, err := LoadOutline(w.Project)
	if err != nil {
		return nil, err
	}

	p, err := prompt.RefineOutline(w.Project.Meta.Topic, current, feedback)
	if err != nil {
		return nil, err
	}

	reply, err := llm.GenerateWithRetry(ctx, w.Client, w.request(p), w.Cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	revised, err := parseOutline(reply)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]types.OutlineSection)
	for _, s := range current.Sections {
		byTitle[strings.ToLower(s.Title)] = s
	}
	for i := range revised.Sections {
		if old, ok := byTitle[strings.ToLower(revised.Sections[i].Title)]; ok {
			revised.Sections[i].File = old.File
			revised.Sections[i].Status = old.Status
		}
	}

	if err := SaveOutline(w.Project, revised); err != nil {
		return nil, err
	}
	return revised, nil
}

// DraftSection generates the first or a fresh draft of one section,
// records it as a history snapshot, and marks the section drafted. Focus
// optionally narrows the drafting instructions.
func (w *Writer) DraftSection(ctx context.Context, outline *types.Outline, section *types.OutlineSection, focus string) error {
	sources, err := w.Project.Sources()
	if err != nil {
		return err
	}
	var texts []string
	for _, s := range sources {
		text, err := w.Project.SourceText(s.ID)
		if err != nil {
			return err
		}
		texts = append(texts, text)
	}

	p, err := prompt.DraftSection(prompt.DraftSectionData{
		Topic:       w.Project.Meta.Topic,
		Outline:     outline,
		Section:     *section,
		SourceTexts: texts,
		Focus:       focus,
	})
	if err != nil {
		return err
	}

	text, err := llm.GenerateWithRetry(ctx, w.Client, w.request(p), w.Cfg.MaxRetries)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("# %s\n\n%s\n", section.Title, strings.TrimSpace(text))
	if _, err := w.Log(section).Append(body); err != nil {
		return err
	}

	section.Status = types.StatusDraft
	return SaveOutline(w.Project, outline)
}

// DraftAll drafts every section still at outline status, in order.
// Failures are reported per section and do not abort the run.
func (w *Writer) DraftAll(ctx context.Context, out io.Writer) error {
	outline, err := LoadOutline(w.Project)
	if err != nil {
		return err
	}

	drafted, failed := 0, 0
	for i := range outline.Sections {
		s := &outline.Sections[i]
		if s.Status != types.StatusOutline && s.Status != "" {
			fmt.Fprintf(out, "skipped %s (already %s)\n", s.File, s.Status)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.DraftSection(ctx, outline, s, ""); err != nil {
			fmt.Fprintf(out, "failed  %s: %v\n", s.File, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "drafted %s\n", s.File)
		drafted++
	}

	fmt.Fprintf(out, "\ndrafted: %d, failed: %d\n", drafted, failed)
	if failed > 0 {
		return fmt.Errorf("%d section(s) failed", failed)
	}
	return nil
}

// Revise rewrites a section per author feedback. Manual edits to the draft
// file are captured as a snapshot first, so feedback always applies to
// what the author last saw.
func (w *Writer) Revise(ctx context.Context, outline *types.Outline, section *types.OutlineSection, feedback string) error {
	log := w.Log(section)
	current, err := log.Sync()
	if err != nil {
		return err
	}

	p, err := prompt.Revise(section.Title, current, feedback)
	if err != nil {
		return err
	}

	text, err := llm.GenerateWithRetry(ctx, w.Client, w.request(p), w.Cfg.MaxRetries)
	if err != nil {
		return err
	}

	if _, err := log.Append(strings.TrimSpace(text) + "\n"); err != nil {
		return err
	}

	section.Status = types.StatusRevised
	return SaveOutline(w.Project, outline)
}

// Polish runs a copy-editing pass over a section. Focus optionally narrows
// the pass, e.g. "tighten transitions".
func (w *Writer) Polish(ctx context.Context, outline *types.Outline, section *types.OutlineSection, focus string) error {
	log := w.Log(section)
	current, err := log.Sync()
	if err != nil {
		return err
	}

	p, err := prompt.Polish(section.Title, current, focus)
	if err != nil {
		return err
	}

	text, err := llm.GenerateWithRetry(ctx, w.Client, w.request(p), w.Cfg.MaxRetries)
	if err != nil {
		return err
	}

	if _, err := log.Append(strings.TrimSpace(text) + "\n"); err != nil {
		return err
	}

	section.Status = types.StatusRevised
	return SaveOutline(w.Project, outline)
}

// Review asks the model for a critique of a section. It writes nothing;
// the review text goes to the caller.
func (w *Writer) Review(ctx context.Context, section *types.OutlineSection) (string, error) {
	current, err := w.Log(section).Sync()
	if err != nil {
		return "", err
	}

	p, err := prompt.Review(section.Title, current)
	if err != nil {
		return "", err
	}
	return llm.GenerateWithRetry(ctx, w.Client, w.request(p), w.Cfg.MaxRetries)
}

// parseOutline pulls {"sections": [...]} out of a model reply and assigns
// sequence numbers and draft filenames.
func parseOutline(reply string) (*types.Outline, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in outline reply")
	}

	var parsed struct {
		Sections []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"sections"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parsing outline reply: %w", err)
	}
	if len(parsed.Sections) == 0 {
		return nil, fmt.Errorf("outline reply has no sections")
	}

	outline := &types.Outline{}
	for i, s := range parsed.Sections {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			return nil, fmt.Errorf("outline section %d has no title", i+1)
		}
		number := fmt.Sprintf("%02d", i+1)
		outline.Sections = append(outline.Sections, types.OutlineSection{
			Number:      number,
			Title:       title,
			File:        fmt.Sprintf("%s-%s.md", number, project.Slugify(title)),
			Description: strings.TrimSpace(s.Description),
			Status:      types.StatusOutline,
		})
	}
	return outline, nil
}
