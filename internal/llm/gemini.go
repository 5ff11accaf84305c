// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pdiddy/papergen/pkg/types"
)

// geminiClient generates text through the Google Generative AI API.
type geminiClient struct {
	name string
	cfg  types.ProviderConfig
}

func newGeminiClient(cfg types.ProviderConfig) *geminiClient {
	return &geminiClient{name: cfg.Name, cfg: cfg}
}

func (c *geminiClient) Name() string  { return c.name }
func (c *geminiClient) Model() string { return c.cfg.Model }

func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	opts := []option.ClientOption{option.WithAPIKey(c.cfg.APIKey)}
	if c.cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", c.classify(err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.cfg.Model)
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", c.classify(err)
	}

	text := collectText(resp)
	if text == "" {
		return "", &ProviderError{Provider: c.name, Message: "empty response content"}
	}
	return text, nil
}

func (c *geminiClient) classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return classifyStatus(c.name, gerr.Code, gerr.Message)
	}
	return &NetworkError{Provider: c.name, Err: err}
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
