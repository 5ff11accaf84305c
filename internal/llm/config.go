// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/papergen/pkg/types"
)

// providerOrder fixes provider registration order. Pooled brainstorming
// results keep this order, so it must be deterministic.
var providerOrder = []string{"anthropic", "openai", "gemini", "deepseek"}

// defaultModels maps each provider to its built-in default model.
var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5-20250929",
	"openai":    "gpt-4o",
	"gemini":    "gemini-2.0-flash",
	"deepseek":  "deepseek-chat",
}

// defaultBaseURLs maps providers whose default endpoint is not baked into
// the SDK. Empty means the SDK default.
var defaultBaseURLs = map[string]string{
	"deepseek": "https://api.deepseek.com",
}

// keyEnvVars maps each provider to its API key environment variable.
var keyEnvVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
}

// baseURLEnvVars maps each provider to its base URL environment variable.
var baseURLEnvVars = map[string]string{
	"anthropic": "ANTHROPIC_BASE_URL",
	"openai":    "OPENAI_BASE_URL",
	"gemini":    "GEMINI_BASE_URL",
	"deepseek":  "DEEPSEEK_BASE_URL",
}

// Overrides carries explicit command-line values. Non-empty fields take
// precedence over environment variables, which take precedence over the
// config file, which takes precedence over built-in defaults.
type Overrides struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ProviderSettings resolves the configuration for one named provider from
// flags, environment, secrets files, and the config file, in that order.
func ProviderSettings(name string, v *viper.Viper, secrets map[string]string, o Overrides) types.ProviderConfig {
	key := firstOf(
		o.APIKey,
		os.Getenv(keyEnvVars[name]),
		secrets[name+"-api-key"],
		v.GetString("providers."+name+".api_key"),
	)
	model := firstOf(
		o.Model,
		v.GetString("providers."+name+".model"),
		v.GetString("api.model"),
		defaultModels[name],
	)
	baseURL := firstOf(
		o.BaseURL,
		os.Getenv(baseURLEnvVars[name]),
		v.GetString("providers."+name+".base_url"),
		v.GetString("api.base_url"),
		defaultBaseURLs[name],
	)
	return types.ProviderConfig{Name: name, Model: model, APIKey: key, BaseURL: baseURL}
}

// New creates a Client for one provider configuration. A missing API key is
// an AuthError up front; no request will succeed without it.
func New(cfg types.ProviderConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, &AuthError{Provider: cfg.Name}
	}
	switch cfg.Name {
	case "anthropic":
		return newAnthropicClient(cfg), nil
	case "gemini":
		return newGeminiClient(cfg), nil
	case "openai", "deepseek":
		return newOpenAIClient(cfg), nil
	default:
		// Unknown providers are assumed OpenAI-compatible when they carry
		// an explicit base URL.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("unknown provider %q: set a base_url for OpenAI-compatible endpoints", cfg.Name)
		}
		return newOpenAIClient(cfg), nil
	}
}

// Default resolves and constructs the designated single-call client. The
// provider is chosen by flag, then config key api.provider, then the first
// provider with a configured key, then anthropic.
func Default(v *viper.Viper, secrets map[string]string, o Overrides) (Client, error) {
	name := firstOf(o.Provider, v.GetString("api.provider"))
	if name == "" {
		for _, candidate := range providerOrder {
			if ProviderSettings(candidate, v, secrets, Overrides{}).APIKey != "" {
				name = candidate
				break
			}
		}
	}
	if name == "" {
		name = "anthropic"
	}
	return New(ProviderSettings(name, v, secrets, o))
}

// Configured builds clients for every provider with a usable key, in
// registration order. Used by multi-provider brainstorming.
func Configured(v *viper.Viper, secrets map[string]string) ([]Client, error) {
	var clients []Client
	for _, name := range providerOrder {
		cfg := ProviderSettings(name, v, secrets, Overrides{})
		if cfg.APIKey == "" {
			continue
		}
		c, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("configuring provider %s: %w", name, err)
		}
		clients = append(clients, c)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no providers configured: set at least one of %s, %s, %s, or %s",
			keyEnvVars["anthropic"], keyEnvVars["openai"], keyEnvVars["gemini"], keyEnvVars["deepseek"])
	}
	return clients, nil
}
