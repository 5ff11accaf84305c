// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papergen/internal/draft"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init TOPIC",
	Short: "Create a new paper project in the current directory",
	Long: `Init creates the project layout: sources/, drafts/, output/, and the
.papergen state directory. The topic seeds outline generation and
brainstorming; the template picks the LaTeX venue style.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	template, _ := cmd.Flags().GetString("template")
	author, _ := cmd.Flags().GetString("author")

	meta := types.ProjectMeta{
		Topic:    strings.Join(args, " "),
		Template: types.TemplateID(template),
		Author:   author,
	}
	p, err := project.Init(".", meta)
	if err != nil {
		return err
	}

	fmt.Printf("Initialized paper project: %s\n", p.Meta.Topic)
	fmt.Printf("Template: %s\n", p.Meta.Template)
	fmt.Println("\nNext steps:")
	fmt.Println("  papergen research add <pdfs, urls, notes>")
	fmt.Println("  papergen outline generate")
	fmt.Println("  papergen draft all")
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's topic, sources, and section progress",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	fmt.Printf("Topic:    %s\n", p.Meta.Topic)
	fmt.Printf("Template: %s\n", p.Meta.Template)
	if p.Meta.Author != "" {
		fmt.Printf("Author:   %s\n", p.Meta.Author)
	}
	fmt.Printf("Created:  %s\n", p.Meta.Created)

	sources, err := p.Sources()
	if err != nil {
		return err
	}
	fmt.Printf("Sources:  %d\n", len(sources))

	outline, err := draft.LoadOutline(p)
	if errors.Is(err, draft.ErrNoOutline) {
		fmt.Println("Outline:  none (run 'papergen outline generate')")
		return nil
	}
	if err != nil {
		return err
	}

	reports, err := draft.Report(p, outline)
	if err != nil {
		return err
	}

	fmt.Printf("\n%-4s  %-30s  %-8s  %-6s  %s\n", "No.", "Section", "Status", "Words", "Revisions")
	fmt.Println(strings.Repeat("-", 64))
	for _, r := range reports {
		status := r.Section.Status
		if status == "" {
			status = types.StatusOutline
		}
		fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-8s  %-6d  %d\n",
			r.Section.Number, truncateCol(r.Section.Title, 30), status, r.Stats.Words, r.Snapshots)
	}
	return nil
}

func truncateCol(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func init() {
	initCmd.Flags().String("template", "ieee", "paper template: ieee, acl, acm, or neurips")
	initCmd.Flags().String("author", "", "author line for rendered output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
}
