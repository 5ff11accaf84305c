// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papergen/internal/draft"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft sections from the outline",
	Long: `Draft writes section text from the outline and the ingested sources.
Each successful draft lands in drafts/ and opens the section's revision
history; subsequent revisions append snapshots without ever overwriting
old ones.`,
}

// --- section subcommand ---

var draftSectionCmd = &cobra.Command{
	Use:     "section NAME",
	Aliases: []string{"draft-section"},
	Short:   "Draft one section by number, slug, or title",
	Args:    cobra.ExactArgs(1),
	RunE:    runDraftSection,
}

func runDraftSection(cmd *cobra.Command, args []string) error {
	w, err := projectWriter(cmd)
	if err != nil {
		return err
	}

	outline, err := draft.LoadOutline(w.Project)
	if err != nil {
		return err
	}
	section, err := draft.FindSection(outline, args[0])
	if err != nil {
		return err
	}

	focus, _ := cmd.Flags().GetString("focus")
	if err := w.DraftSection(context.Background(), outline, section, focus); err != nil {
		return err
	}
	fmt.Printf("drafted %s\n", section.File)
	return nil
}

// --- all subcommand ---

var draftAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Draft every undrafted section",
	Long: `All drafts each section still in outline status, in order. Sections
already drafted or revised are skipped; a failed section is reported and
does not abort the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := projectWriter(cmd)
		if err != nil {
			return err
		}
		return w.DraftAll(context.Background(), os.Stdout)
	},
}

// --- show subcommand ---

var draftShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a section's current draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject()
		if err != nil {
			return err
		}
		log, _, err := sectionLog(p, args[0])
		if err != nil {
			return err
		}
		text, err := log.Current()
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

// --- list subcommand ---

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List draft files on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject()
		if err != nil {
			return err
		}
		files, err := draft.SectionFiles(p)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No drafts yet.")
			return nil
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}

// --- stats subcommand ---

var draftStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show word counts and structure per section",
	RunE:  runDraftStats,
}

func runDraftStats(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	outline, err := draft.LoadOutline(p)
	if err != nil {
		return err
	}
	reports, err := draft.Report(p, outline)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-6s  %-5s  %-5s  %-5s  %s\n",
		"No.", "Section", "Words", "Heads", "Paras", "Code", "Revisions")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))

	var total draft.Stats
	for _, r := range reports {
		if !r.HasDraft {
			fmt.Fprintf(os.Stdout, "%-4s  %-30s  %s\n",
				r.Section.Number, truncateCol(r.Section.Title, 30), "(no draft)")
			continue
		}
		fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-6d  %-5d  %-5d  %-5d  %d\n",
			r.Section.Number, truncateCol(r.Section.Title, 30),
			r.Stats.Words, r.Stats.Headings, r.Stats.Paragraphs, r.Stats.CodeBlocks,
			r.Snapshots)
		total.Words += r.Stats.Words
		total.Headings += r.Stats.Headings
		total.Paragraphs += r.Stats.Paragraphs
		total.CodeBlocks += r.Stats.CodeBlocks
	}

	fmt.Fprintf(os.Stdout, "\ntotal: %d words across %d sections\n", total.Words, len(reports))
	return nil
}

// --- review subcommand ---

var draftReviewCmd = &cobra.Command{
	Use:   "review NAME",
	Short: "Ask the model to critique a section without changing it",
	RunE:  runDraftReview,
	Args:  cobra.ExactArgs(1),
}

func runDraftReview(cmd *cobra.Command, args []string) error {
	w, err := projectWriter(cmd)
	if err != nil {
		return err
	}

	outline, err := draft.LoadOutline(w.Project)
	if err != nil {
		return err
	}
	section, err := draft.FindSection(outline, args[0])
	if err != nil {
		return err
	}

	review, err := w.Review(context.Background(), section)
	if err != nil {
		return err
	}
	fmt.Println(review)
	return nil
}

func init() {
	draftSectionCmd.Flags().String("focus", "", "extra emphasis for the drafting prompt")

	draftCmd.AddCommand(draftSectionCmd)
	draftCmd.AddCommand(draftAllCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftStatsCmd)
	draftCmd.AddCommand(draftReviewCmd)

	rootCmd.AddCommand(draftCmd)
}
