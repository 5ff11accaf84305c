// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/papergen/internal/discover"
	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/multillm"
	"github.com/pdiddy/papergen/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Explore research directions before writing",
	Long: `Discover works ahead of a paper project: survey maps the landscape of
a survey PDF, paper dissects a single paper, and brainstorm fans a topic
out to every configured provider and consolidates their ideas. None of
these commands need an initialized project.`,
}

// --- survey subcommand ---

var discoverSurveyCmd = &cobra.Command{
	Use:   "survey PDF",
	Short: "Map the research landscape of a survey paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscoverSurvey,
}

func runDiscoverSurvey(cmd *cobra.Command, args []string) error {
	client, err := singleClient(cmd)
	if err != nil {
		return err
	}

	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" {
		return fmt.Errorf("topic required: use --topic")
	}

	a := &discover.Analyzer{Client: client, MaxRetries: llmConfig().MaxRetries}
	landscape, err := a.Survey(context.Background(), args[0], topic)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	return writeJSON(landscape, out)
}

// --- paper subcommand ---

var discoverPaperCmd = &cobra.Command{
	Use:   "paper PDF",
	Short: "Dissect one paper's contribution, strengths, and gaps",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscoverPaper,
}

func runDiscoverPaper(cmd *cobra.Command, args []string) error {
	client, err := singleClient(cmd)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	a := &discover.Analyzer{Client: client, MaxRetries: llmConfig().MaxRetries}
	analysis, err := a.Paper(context.Background(), args[0], title)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	return writeJSON(analysis, out)
}

// --- brainstorm subcommand ---

var discoverBrainstormCmd = &cobra.Command{
	Use:   "brainstorm TOPIC",
	Short: "Generate research ideas, optionally across all providers",
	Long: `Brainstorm asks for research ideas on a topic. With --multi it fans
the prompt out to every provider with a configured key in parallel and a
summarizer pass deduplicates the pooled ideas. Provider failures are
recorded in the raw reports; the run fails outright only when every
provider fails.

A context file (--context) biases ideation toward known gaps and open
directions; survey output JSON works directly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscoverBrainstorm,
}

func runDiscoverBrainstorm(cmd *cobra.Command, args []string) error {
	pool, summarizer, err := brainstormPool(cmd)
	if err != nil {
		return err
	}

	var bctx *discover.BrainstormContext
	if ctxPath, _ := cmd.Flags().GetString("context"); ctxPath != "" {
		bctx, err = discover.LoadContext(ctxPath)
		if err != nil {
			return err
		}
	}

	bcfg := brainstormConfig()
	if count, _ := cmd.Flags().GetInt("count"); count > 0 {
		bcfg.IdeaCount = count
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		bcfg.Timeout = timeout
	}

	g := &discover.Generator{
		Pool:       pool,
		Summarizer: summarizer,
		MaxRetries: llmConfig().MaxRetries,
		Count:      bcfg.IdeaCount,
		Timeout:    bcfg.Timeout,
	}

	topic := strings.Join(args, " ")
	out, runErr := g.Brainstorm(context.Background(), topic, bctx)

	// Reports survive even when every provider failed; write what we have
	// before deciding the exit status.
	if out != nil {
		if dir, _ := cmd.Flags().GetString("output"); dir != "" {
			paths, err := out.WriteReports(dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Printf("wrote %s\n", p)
			}
		} else if err := printBrainstorm(out); err != nil {
			return err
		}
	}

	return runErr
}

// brainstormPool builds the provider pool and picks the summarizer client.
func brainstormPool(cmd *cobra.Command) (*multillm.Pool, llm.Client, error) {
	multi, _ := cmd.Flags().GetBool("multi")

	var clients []llm.Client
	if multi {
		var err error
		clients, err = llm.Configured(viper.GetViper(), loadedSecrets)
		if err != nil {
			return nil, nil, err
		}
	} else {
		client, err := singleClient(cmd)
		if err != nil {
			return nil, nil, err
		}
		clients = []llm.Client{client}
	}

	pool := multillm.NewPool(clients...)
	summarizer := pool.First()
	if name := brainstormConfig().Summarizer; name != "" {
		if c := pool.Client(name); c != nil {
			summarizer = c
		}
	}
	return pool, summarizer, nil
}

// brainstormConfig resolves the brainstorm.* settings once per invocation.
// Flags override the returned values at the call site.
func brainstormConfig() types.BrainstormConfig {
	return types.BrainstormConfig{
		IdeaCount:  viper.GetInt("brainstorm.idea_count"),
		Timeout:    viper.GetDuration("brainstorm.timeout"),
		Summarizer: viper.GetString("brainstorm.summarizer"),
	}
}

func printBrainstorm(out *discover.RunOutput) error {
	if out.SummaryErr != "" {
		fmt.Fprintf(os.Stderr, "warning: summarizer failed: %s\n", out.SummaryErr)
	}
	if out.Summary != nil {
		return writeJSON(out.Summary, "")
	}
	return writeJSON(out.Reports, "")
}

// writeJSON writes v as indented JSON to path, or stdout when path is empty.
func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func init() {
	discoverSurveyCmd.Flags().StringP("topic", "t", "", "research topic framing the survey analysis")
	discoverSurveyCmd.Flags().StringP("output", "o", "", "write JSON to this file instead of stdout")

	discoverPaperCmd.Flags().StringP("title", "t", "", "paper title (default: derived from the filename)")
	discoverPaperCmd.Flags().StringP("output", "o", "", "write JSON to this file instead of stdout")

	discoverBrainstormCmd.Flags().IntP("count", "n", 0, "ideas requested per provider (default 5)")
	discoverBrainstormCmd.Flags().BoolP("multi", "m", false, "fan out to every provider with a configured key")
	discoverBrainstormCmd.Flags().StringP("context", "c", "", "context JSON biasing ideation (survey output works)")
	discoverBrainstormCmd.Flags().StringP("output", "o", "", "write per-provider and summary reports to this directory")
	discoverBrainstormCmd.Flags().Duration("timeout", 0, "bound on the provider fan-out (default 2m)")

	discoverCmd.AddCommand(discoverSurveyCmd)
	discoverCmd.AddCommand(discoverPaperCmd)
	discoverCmd.AddCommand(discoverBrainstormCmd)

	rootCmd.AddCommand(discoverCmd)
}
