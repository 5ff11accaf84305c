// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papergen/pkg/types"
)

func sampleOutline() *types.Outline {
	return &types.Outline{Sections: []types.OutlineSection{
		{Number: "01", Title: "Introduction", File: "01-introduction.md", Description: "Motivates the work."},
		{Number: "02", Title: "Method", File: "02-method.md", Description: "Describes the approach."},
	}}
}

func TestOutline_IncludesTopicAndSources(t *testing.T) {
	p, err := Outline(OutlineData{
		Topic:    "efficient attention",
		Guidance: "emphasize linear-time methods",
		Sources:  []string{"survey-attention", "flash-attention-notes"},
	})
	require.NoError(t, err)
	assert.Contains(t, p, "efficient attention")
	assert.Contains(t, p, "emphasize linear-time methods")
	assert.Contains(t, p, "- survey-attention")
	assert.Contains(t, p, `"sections"`)
}

func TestOutline_EmptySources(t *testing.T) {
	p, err := Outline(OutlineData{Topic: "t"})
	require.NoError(t, err)
	assert.Contains(t, p, "(none)")
}

func TestRefineOutline_ListsCurrentSections(t *testing.T) {
	p, err := RefineOutline("topic", sampleOutline(), "merge method into intro")
	require.NoError(t, err)
	assert.Contains(t, p, "01. Introduction")
	assert.Contains(t, p, "02. Method")
	assert.Contains(t, p, "merge method into intro")
}

func TestDraftSection_TruncatesLongSources(t *testing.T) {
	long := strings.Repeat("x", excerptLimit+500)
	p, err := DraftSection(DraftSectionData{
		Topic:       "topic",
		Outline:     sampleOutline(),
		Section:     sampleOutline().Sections[0],
		SourceTexts: []string{long},
		Focus:       "motivation",
	})
	require.NoError(t, err)
	assert.Contains(t, p, "[...truncated...]")
	assert.Contains(t, p, "Drafting focus: motivation")
	assert.Contains(t, p, "Section to draft: Introduction")
}

func TestRevisePolishReview(t *testing.T) {
	p, err := Revise("Method", "old text", "tighten the notation")
	require.NoError(t, err)
	assert.Contains(t, p, "tighten the notation")
	assert.Contains(t, p, "old text")

	p, err = Polish("Method", "draft text", "transitions")
	require.NoError(t, err)
	assert.Contains(t, p, "Polish focus: transitions")

	p, err = Review("Method", "draft text")
	require.NoError(t, err)
	assert.Contains(t, p, "constructive academic reviewer")
}

func TestBrainstorm_CountAndContext(t *testing.T) {
	p, err := Brainstorm(BrainstormData{
		Topic:      "multimodal grounding",
		Count:      7,
		Gaps:       []string{"no benchmark for X"},
		Directions: []string{"scale to video"},
	})
	require.NoError(t, err)
	assert.Contains(t, p, "Generate 7 novel research ideas")
	assert.Contains(t, p, "- no benchmark for X")
	assert.Contains(t, p, "- scale to video")
}

func TestSurveyAndPaperPrompts(t *testing.T) {
	p, err := Survey("NLP", "survey body")
	require.NoError(t, err)
	assert.Contains(t, p, `"key_papers_to_read"`)

	p, err = Paper("Attention Is All You Need", "paper body")
	require.NoError(t, err)
	assert.Contains(t, p, `"core_contribution"`)
	assert.Contains(t, p, "Attention Is All You Need")
}

func TestOrganizeSource(t *testing.T) {
	p, err := OrganizeSource("survey-attention", "text about transformers")
	require.NoError(t, err)
	assert.Contains(t, p, `"tags"`)
	assert.Contains(t, p, "survey-attention")
}
