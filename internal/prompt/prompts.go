// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"text/template"

	"github.com/pdiddy/papergen/pkg/types"
)

// outlineTmpl asks for a paper outline as a JSON object so the response can
// be parsed mechanically.
var outlineTmpl = template.Must(template.New("outline").Parse(`You are an academic writing assistant. Design the section outline for a research paper.

Research topic: {{.Topic}}
{{if .Guidance}}
Author guidance:
{{.Guidance}}
{{end}}
Available research sources:
{{.Sources}}

Produce between 5 and 9 sections covering the standard arc of a research paper (introduction through conclusion), adapted to the topic. For each section give a short title and one sentence describing what it covers.

Respond with a JSON object and nothing else:
{"sections": [{"title": "Introduction", "description": "Motivates the problem and states contributions."}]}
`))

// OutlineData parameterizes the outline generation prompt.
type OutlineData struct {
	Topic    string
	Guidance string
	Sources  []string
}

// Outline builds the outline generation prompt.
func Outline(d OutlineData) (string, error) {
	return render(outlineTmpl, struct {
		Topic, Guidance, Sources string
	}{d.Topic, d.Guidance, bulleted(d.Sources)})
}

var refineOutlineTmpl = template.Must(template.New("refine-outline").Parse(`You are an academic writing assistant. Revise the outline of a research paper according to the author's feedback.

Research topic: {{.Topic}}

Current outline:
{{.Current}}

Author feedback:
{{.Feedback}}

Keep sections that the feedback does not touch. Respond with the complete revised outline as a JSON object and nothing else:
{"sections": [{"title": "...", "description": "..."}]}
`))

// RefineOutline builds the outline refinement prompt from the current
// outline and the author's feedback.
func RefineOutline(topic string, current *types.Outline, feedback string) (string, error) {
	return render(refineOutlineTmpl, struct {
		Topic, Current, Feedback string
	}{topic, sectionList(current), feedback})
}

var draftSectionTmpl = template.Must(template.New("draft-section").Parse(`You are an academic writing assistant drafting one section of a research paper.

Research topic: {{.Topic}}

Full outline:
{{.Outline}}

Section to draft: {{.Title}}
Section scope: {{.Description}}
{{if .Focus}}
Drafting focus: {{.Focus}}
{{end}}
Research sources (excerpts):
{{.Sources}}

Write the section in Markdown. Do not include the section heading itself; start directly with prose. Ground claims in the sources where possible and keep an academic register. Aim for 400-800 words.
`))

// DraftSectionData parameterizes the section drafting prompt.
type DraftSectionData struct {
	Topic       string
	Outline     *types.Outline
	Section     types.OutlineSection
	SourceTexts []string
	Focus       string
}

// DraftSection builds the prompt that drafts one outline section.
func DraftSection(d DraftSectionData) (string, error) {
	excerpts := make([]string, 0, len(d.SourceTexts))
	for _, s := range d.SourceTexts {
		excerpts = append(excerpts, truncate(s, excerptLimit))
	}
	return render(draftSectionTmpl, struct {
		Topic, Outline, Title, Description, Focus, Sources string
	}{
		d.Topic, sectionList(d.Outline), d.Section.Title,
		d.Section.Description, d.Focus, bulleted(excerpts),
	})
}

var reviseTmpl = template.Must(template.New("revise").Parse(`You are an academic writing assistant revising one section of a research paper.

Section: {{.Title}}

Current text:
{{.Current}}

Revision feedback:
{{.Feedback}}

Rewrite the section applying the feedback. Preserve content the feedback does not touch. Respond with the revised Markdown text only, no commentary.
`))

// Revise builds the feedback-driven revision prompt.
func Revise(title, current, feedback string) (string, error) {
	return render(reviseTmpl, struct {
		Title, Current, Feedback string
	}{title, current, feedback})
}

var polishTmpl = template.Must(template.New("polish").Parse(`You are an academic copy editor polishing one section of a research paper.

Section: {{.Title}}
{{if .Focus}}Polish focus: {{.Focus}}
{{end}}
Current text:
{{.Current}}

Improve clarity, flow, and academic tone without changing the technical content or structure. Respond with the polished Markdown text only, no commentary.
`))

// Polish builds the polish prompt. Focus narrows the pass (e.g. "transitions").
func Polish(title, current, focus string) (string, error) {
	return render(polishTmpl, struct {
		Title, Focus, Current string
	}{title, focus, current})
}

var reviewTmpl = template.Must(template.New("review").Parse(`You are a critical but constructive academic reviewer. Review this draft section of a research paper.

Section: {{.Title}}

Text:
{{.Text}}

Give a short review: main strengths, concrete weaknesses, and three specific suggestions the author can act on. Plain text, no preamble.
`))

// Review builds the section review prompt.
func Review(title, text string) (string, error) {
	return render(reviewTmpl, struct{ Title, Text string }{title, text})
}

var organizeTmpl = template.Must(template.New("organize").Parse(`You are organizing a research source library. Assign topic tags to this source.

Source: {{.Title}}

Excerpt:
{{.Excerpt}}

Respond with a JSON object and nothing else:
{"tags": ["lowercase-hyphenated-topic", "..."]}

Use 3-6 tags drawn from the source's own vocabulary.
`))

// OrganizeSource builds the source tagging prompt used by research organize.
func OrganizeSource(title, text string) (string, error) {
	return render(organizeTmpl, struct{ Title, Excerpt string }{title, truncate(text, excerptLimit)})
}

// BrainstormSystem is the system prompt for idea brainstorming.
const BrainstormSystem = `You are a research advisor at a top university, helping a postgraduate student brainstorm novel research ideas for top-tier AI conferences (ACL, EMNLP, NeurIPS, ICML, AAAI, IJCAI).

Your ideas should be:
1. NOVEL - not just incremental improvements
2. FEASIBLE - achievable by a master's student in 6-12 months
3. IMPACTFUL - addressing real problems with clear contributions
4. PUBLISHABLE - suitable for top venues

Combine ideas from different areas, challenge assumptions, and look for overlooked problems.`

var brainstormTmpl = template.Must(template.New("brainstorm").Parse(`Research Topic: {{.Topic}}

Research gaps identified:
{{.Gaps}}

Weaknesses in current methods:
{{.Weaknesses}}

Promising future directions:
{{.Directions}}

Generate {{.Count}} novel research ideas. Respond with a JSON object and nothing else:
{
    "ideas": [
        {
            "title": "Working paper title",
            "one_sentence": "One sentence summary",
            "problem": "What problem does it solve?",
            "novelty": "What is new about this approach?",
            "method_sketch": "Brief method description",
            "expected_contribution": "What will this contribute?",
            "feasibility": "high/medium/low",
            "potential_venues": ["ACL", "NeurIPS"],
            "risks": ["risk1", "risk2"],
            "first_steps": ["step1", "step2", "step3"]
        }
    ]
}
`))

// BrainstormData parameterizes the brainstorming prompt.
type BrainstormData struct {
	Topic      string
	Count      int
	Gaps       []string
	Weaknesses []string
	Directions []string
}

// Brainstorm builds the idea generation prompt sent to every provider.
func Brainstorm(d BrainstormData) (string, error) {
	return render(brainstormTmpl, struct {
		Topic, Gaps, Weaknesses, Directions string
		Count                               int
	}{d.Topic, bulleted(d.Gaps), bulleted(d.Weaknesses), bulleted(d.Directions), d.Count})
}

var summarizeTmpl = template.Must(template.New("summarize-ideas").Parse(`Analyze these research ideas pooled from multiple AI models:

{{.Ideas}}

Tasks:
1. Identify unique ideas (remove duplicates and near-duplicates)
2. Rank by novelty and feasibility
3. Highlight consensus themes raised by multiple models
4. Pick the strongest recommendations

Respond with a JSON object and nothing else:
{
    "unique_ideas": [...],
    "consensus_themes": ["..."],
    "top_recommendations": ["..."],
    "summary": "Brief analysis"
}

Each entry of "unique_ideas" must use the same field names as the input ideas.
`))

// SummarizeIdeas builds the deduplication/summary prompt over the pooled
// ideas, rendered as a JSON array.
func SummarizeIdeas(ideasJSON string) (string, error) {
	return render(summarizeTmpl, struct{ Ideas string }{ideasJSON})
}

var surveyTmpl = template.Must(template.New("survey").Parse(`You are analyzing a survey paper to map the research landscape of a topic.

Topic: {{.Topic}}

Survey text:
{{.Text}}

Identify the research gaps the survey exposes, the key papers a newcomer should read (with a short reason each), and the future directions it points to.

Respond with a JSON object and nothing else:
{
    "research_gaps": ["..."],
    "key_papers_to_read": [{"title": "...", "reason": "..."}],
    "future_directions": ["..."]
}
`))

// Survey builds the research-landscape analysis prompt for a survey paper.
func Survey(topic, text string) (string, error) {
	return render(surveyTmpl, struct{ Topic, Text string }{topic, truncate(text, 60000)})
}

var paperTmpl = template.Must(template.New("paper-analysis").Parse(`You are performing a deep analysis of a single research paper.

Paper: {{.Title}}

Text:
{{.Text}}

Respond with a JSON object and nothing else:
{
    "title": "{{.Title}}",
    "core_contribution": "...",
    "strengths": ["..."],
    "weaknesses": ["..."],
    "inspiration_for_new_research": ["..."]
}
`))

// Paper builds the single-paper deep analysis prompt.
func Paper(title, text string) (string, error) {
	return render(paperTmpl, struct{ Title, Text string }{title, truncate(text, 60000)})
}
