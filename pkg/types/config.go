// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "papergen/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig identifies one configured LLM backend.
type ProviderConfig struct {
	// Name is the provider identifier: anthropic, openai, gemini, or deepseek.
	Name string `json:"name" yaml:"name"`

	// Model is the model identifier sent to the provider.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider's API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider's default API endpoint. Supports
	// self-hosted and OpenAI-compatible third-party endpoints.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LLMConfig holds shared settings for commands that call a Generative AI API.
type LLMConfig struct {
	// MaxTokens is the generation budget per call (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// IngestConfig holds settings for source ingestion (research add).
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// Parallelism bounds concurrent ingestion of a batch (default 4).
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// LibraryConfig holds settings for the source library index.
type LibraryConfig struct {
	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// BrainstormConfig holds settings for idea brainstorming.
type BrainstormConfig struct {
	// IdeaCount is the number of ideas requested from each provider (default 5).
	IdeaCount int `json:"idea_count" yaml:"idea_count"`

	// Timeout bounds the multi-provider fan-out; provider calls still
	// outstanding when it elapses are abandoned (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Summarizer names the provider that deduplicates and summarizes the
	// pooled ideas. Empty selects the first configured provider.
	Summarizer string `json:"summarizer,omitempty" yaml:"summarizer,omitempty"`
}

// MarkdownFlavor selects the Markdown rendering convention.
type MarkdownFlavor string

const (
	FlavorArxiv  MarkdownFlavor = "arxiv"
	FlavorGithub MarkdownFlavor = "github"
)
