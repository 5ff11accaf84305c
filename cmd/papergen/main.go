// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the papergen CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/internal/secrets"
	"github.com/pdiddy/papergen/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the papergen CLI.
var rootCmd = &cobra.Command{
	Use:   "papergen",
	Short: "LLM-assisted academic paper writing",
	Long: `papergen manages an academic paper from idea to camera-ready PDF.
A project directory holds research sources, an outline, per-section drafts
with full revision history, and rendered LaTeX or Markdown output. Language
models draft and revise the text; every file stays plain Markdown and YAML,
editable by hand between commands.

Each writing stage is a subcommand: research, outline, draft, revise,
format, and discover.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", secrets.Keys(s))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./papergen.yaml or ~/.config/papergen/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: anthropic, openai, gemini, or deepseek")
	rootCmd.PersistentFlags().String("model", "", "model name (overrides the provider default)")
	rootCmd.PersistentFlags().String("api-key", "", "API key (overrides environment and secrets)")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL for OpenAI-compatible endpoints")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("papergen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "papergen"))
		}
	}

	viper.SetEnvPrefix("PAPERGEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openProject locates the project containing the working directory.
func openProject() (*project.Project, error) {
	return project.Find(".")
}

// clientOverrides collects the persistent provider flags.
func clientOverrides(cmd *cobra.Command) llm.Overrides {
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	baseURL, _ := cmd.Flags().GetString("base-url")
	return llm.Overrides{Provider: provider, Model: model, APIKey: apiKey, BaseURL: baseURL}
}

// singleClient constructs the designated single-call LLM client.
func singleClient(cmd *cobra.Command) (llm.Client, error) {
	return llm.Default(viper.GetViper(), loadedSecrets, clientOverrides(cmd))
}

// llmConfig resolves the api.* generation settings once per invocation.
func llmConfig() types.LLMConfig {
	cfg := types.LLMConfig{
		MaxTokens:   viper.GetInt("api.max_tokens"),
		Temperature: viper.GetFloat64("api.temperature"),
		MaxRetries:  viper.GetInt("api.max_retries"),
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return cfg
}

// httpClient returns the client used for URL source fetches.
func httpClient() *http.Client {
	timeout := viper.GetDuration("http.timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
