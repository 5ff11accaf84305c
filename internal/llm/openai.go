// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/papergen/pkg/types"
)

// openaiClient generates text through the chat completions API. It serves
// OpenAI itself and any OpenAI-compatible endpoint (DeepSeek, Qwen, local
// gateways) selected via BaseURL.
type openaiClient struct {
	name   string
	model  string
	client openai.Client
}

func newOpenAIClient(cfg types.ProviderConfig) *openaiClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openaiClient{
		name:   cfg.Name,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

func (c *openaiClient) Name() string  { return c.name }
func (c *openaiClient) Model() string { return c.model }

func (c *openaiClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  msgs,
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", classifyStatus(c.name, apierr.StatusCode, apierr.Error())
		}
		return "", &NetworkError{Provider: c.name, Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ProviderError{Provider: c.name, Message: "empty choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}
