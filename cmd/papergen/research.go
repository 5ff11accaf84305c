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

	"github.com/pdiddy/papergen/internal/library"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Manage research sources (add, organize, list)",
	Long: `Research manages the project's source material: PDFs extracted with
pdftotext, web pages fetched over HTTP, and plain-text notes. Sources are
indexed into a local SQLite library with full-text search.`,
}

// --- add subcommand ---

var researchAddCmd = &cobra.Command{
	Use:   "add FILE|URL...",
	Short: "Ingest PDFs, URLs, or notes and index them",
	Long: `Add extracts text from each input, stores it under sources/ with a
metadata record, and reindexes the source library. Inputs already present
are skipped; a failed input is reported and does not abort the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearchAdd,
}

func runResearchAdd(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	ing := &project.Ingestor{
		Project: p,
		Cfg: types.IngestConfig{
			HTTPConfig: types.HTTPConfig{
				UserAgent: viper.GetString("http.user_agent"),
			},
			Parallelism: viper.GetInt("ingest.parallelism"),
		},
		HTTP: httpClient(),
	}

	summary := ing.AddAll(context.Background(), args, os.Stdout)
	fmt.Printf("\nadded: %d, skipped: %d, failed: %d\n",
		summary.Added, summary.Skipped, summary.Failed)

	if summary.Added > 0 {
		store, err := openLibrary(p)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Reindex(context.Background(), os.Stdout); err != nil {
			return err
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d input(s) failed", summary.Failed)
	}
	return nil
}

// --- organize subcommand ---

var researchOrganizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Tag sources by topic using the configured LLM",
	Long: `Organize asks the model for topic tags on each untagged source and
writes them to the metadata records and the library index. Already-tagged
sources are skipped unless --force is given.`,
	RunE: runResearchOrganize,
}

func runResearchOrganize(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	store, err := openLibrary(p)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Reindex(context.Background(), os.Stdout); err != nil {
		return err
	}

	client, err := singleClient(cmd)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	org := &library.Organizer{
		Store:      store,
		Client:     client,
		MaxRetries: llmConfig().MaxRetries,
		Force:      force,
	}

	summary, err := org.Organize(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d source(s) failed tagging", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var researchListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "Search and list indexed sources",
	Long: `List queries the source library. With a query argument it runs FTS5
full-text search ranked by relevance; --type and --tag filter structurally.
With no arguments it lists every indexed source.`,
	RunE: runResearchList,
}

func runResearchList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	store, err := openLibrary(p)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Reindex(context.Background(), os.Stderr); err != nil {
		return err
	}

	srcType, _ := cmd.Flags().GetString("type")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("max")

	opts := library.QueryOptions{
		Query:      strings.Join(args, " "),
		Type:       srcType,
		MaxResults: limit,
	}
	if tag != "" {
		opts.Tags = []string{tag}
	}

	hits, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatListOutput(hits, jsonOutput)
}

func formatListOutput(hits []library.Hit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No sources found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-25s  %-5s  %-25s  %s\n", "ID", "Type", "Tags", "Excerpt")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, h := range hits {
		excerpt := strings.ReplaceAll(h.Excerpt, "\n", " ")
		fmt.Fprintf(os.Stdout, "%-25s  %-5s  %-25s  %s\n",
			truncateCol(h.ID, 25), h.Type,
			truncateCol(strings.Join(h.Tags, ","), 25), truncateCol(excerpt, 40))
	}
	fmt.Fprintf(os.Stdout, "\n%d sources\n", len(hits))
	return nil
}

// openLibrary opens the project's source index.
func openLibrary(p *project.Project) (*library.Store, error) {
	cfg := types.LibraryConfig{MaxResults: viper.GetInt("library.max_results")}
	return library.NewStore(p, cfg)
}

func init() {
	researchListCmd.Flags().String("type", "", "filter by source type: pdf, url, or note")
	researchListCmd.Flags().String("tag", "", "filter by tag")
	researchListCmd.Flags().Int("max", 0, "maximum results (0 = use default)")
	researchListCmd.Flags().Bool("json", false, "output results as JSON")

	researchOrganizeCmd.Flags().Bool("force", false, "re-tag sources that already carry tags")

	researchCmd.AddCommand(researchAddCmd)
	researchCmd.AddCommand(researchOrganizeCmd)
	researchCmd.AddCommand(researchListCmd)

	rootCmd.AddCommand(researchCmd)
}
