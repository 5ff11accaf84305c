// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/papergen/pkg/types"
)

// anthropicClient generates text through the Anthropic Messages API.
type anthropicClient struct {
	name   string
	model  string
	client anthropic.Client
}

func newAnthropicClient(cfg types.ProviderConfig) *anthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicClient{
		name:   cfg.Name,
		model:  cfg.Model,
		client: anthropic.NewClient(opts...),
	}
}

func (c *anthropicClient) Name() string  { return c.name }
func (c *anthropicClient) Model() string { return c.model }

func (c *anthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", classifyStatus(c.name, apierr.StatusCode, apierr.Error())
		}
		return "", &NetworkError{Provider: c.name, Err: err}
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", &ProviderError{Provider: c.name, Message: "empty response content"}
}
