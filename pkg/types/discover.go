// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Idea is a candidate research idea produced by brainstorming. Ideas are
// written to report files, never persisted as project state.
type Idea struct {
	// Title is a working paper title for the idea.
	Title string `json:"title" yaml:"title"`

	// OneSentence summarizes the idea in a single sentence.
	OneSentence string `json:"one_sentence,omitempty" yaml:"one_sentence,omitempty"`

	// Problem states the problem the idea addresses.
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`

	// Novelty explains what is new about the approach.
	Novelty string `json:"novelty,omitempty" yaml:"novelty,omitempty"`

	// MethodSketch briefly describes the method.
	MethodSketch string `json:"method_sketch,omitempty" yaml:"method_sketch,omitempty"`

	// Contribution states the expected contribution.
	Contribution string `json:"expected_contribution,omitempty" yaml:"expected_contribution,omitempty"`

	// Feasibility is a coarse rating: high, medium, or low.
	Feasibility string `json:"feasibility,omitempty" yaml:"feasibility,omitempty"`

	// Venues lists potential publication venues.
	Venues []string `json:"potential_venues,omitempty" yaml:"potential_venues,omitempty"`

	// Risks lists identified risks.
	Risks []string `json:"risks,omitempty" yaml:"risks,omitempty"`

	// FirstSteps lists concrete starting steps.
	FirstSteps []string `json:"first_steps,omitempty" yaml:"first_steps,omitempty"`
}

// ProviderReport holds one provider's raw brainstorming outcome: either its
// parsed ideas or its recorded failure.
type ProviderReport struct {
	// Provider is the provider identifier (e.g. "anthropic").
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model the provider used.
	Model string `json:"model" yaml:"model"`

	// Ideas holds the parsed ideas on success.
	Ideas []Idea `json:"ideas,omitempty" yaml:"ideas,omitempty"`

	// Error records the provider's failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BrainstormSummary is the consolidated report built by the summarizer
// provider from the pooled ideas.
type BrainstormSummary struct {
	// RunID identifies the brainstorming run the summary belongs to.
	RunID string `json:"run_id" yaml:"run_id"`

	// Topic is the research topic that was brainstormed.
	Topic string `json:"topic" yaml:"topic"`

	// UniqueIdeas lists the deduplicated ideas.
	UniqueIdeas []Idea `json:"unique_ideas" yaml:"unique_ideas"`

	// ConsensusThemes lists themes raised by multiple providers.
	ConsensusThemes []string `json:"consensus_themes,omitempty" yaml:"consensus_themes,omitempty"`

	// TopRecommendations lists the summarizer's ranked picks.
	TopRecommendations []string `json:"top_recommendations,omitempty" yaml:"top_recommendations,omitempty"`

	// Summary is the summarizer's brief analysis.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// KeyPaper identifies a paper the survey analysis recommends reading.
type KeyPaper struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Reason explains why the paper matters for the topic.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// SurveyLandscape is the research-landscape analysis of a survey paper.
type SurveyLandscape struct {
	// Topic is the research topic the analysis was scoped to.
	Topic string `json:"topic" yaml:"topic"`

	// ResearchGaps lists open problems identified in the survey.
	ResearchGaps []string `json:"research_gaps" yaml:"research_gaps"`

	// KeyPapers lists papers to read, each with at least a title.
	KeyPapers []KeyPaper `json:"key_papers_to_read" yaml:"key_papers_to_read"`

	// FutureDirections lists promising directions named by the survey.
	FutureDirections []string `json:"future_directions" yaml:"future_directions"`
}

// PaperAnalysis is the deep analysis of a single paper.
type PaperAnalysis struct {
	// Title is the analyzed paper's title.
	Title string `json:"title" yaml:"title"`

	// CoreContribution states the paper's central contribution.
	CoreContribution string `json:"core_contribution" yaml:"core_contribution"`

	// Strengths lists the paper's strengths.
	Strengths []string `json:"strengths,omitempty" yaml:"strengths,omitempty"`

	// Weaknesses lists the paper's weaknesses.
	Weaknesses []string `json:"weaknesses,omitempty" yaml:"weaknesses,omitempty"`

	// Inspirations lists research directions the paper suggests.
	Inspirations []string `json:"inspiration_for_new_research,omitempty" yaml:"inspiration_for_new_research,omitempty"`
}
