// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papergen/internal/draft"
	"github.com/pdiddy/papergen/pkg/types"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Generate and refine the paper outline",
	Long: `Outline manages outline.yaml, the section plan that drafting works
from. Generate proposes sections from the project topic and ingested
sources; refine reworks the plan per author feedback while keeping the
drafts of surviving sections.`,
}

// --- generate subcommand ---

var outlineGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Propose a section outline from the topic and sources",
	RunE:  runOutlineGenerate,
}

func runOutlineGenerate(cmd *cobra.Command, args []string) error {
	w, err := projectWriter(cmd)
	if err != nil {
		return err
	}

	guidance, _ := cmd.Flags().GetString("guidance")
	outline, err := w.GenerateOutline(context.Background(), guidance)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote outline with %d sections:\n\n", len(outline.Sections))
	printOutline(outline)
	return nil
}

// --- show subcommand ---

var outlineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current outline",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject()
		if err != nil {
			return err
		}
		outline, err := draft.LoadOutline(p)
		if err != nil {
			return err
		}
		printOutline(outline)
		return nil
	},
}

// --- refine subcommand ---

var outlineRefineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Rework the outline per author feedback",
	Long: `Refine sends the current outline and your feedback to the model and
replaces outline.yaml with the result. Sections whose titles survive keep
their draft files and revision history.`,
	RunE: runOutlineRefine,
}

func runOutlineRefine(cmd *cobra.Command, args []string) error {
	w, err := projectWriter(cmd)
	if err != nil {
		return err
	}

	feedback, _ := cmd.Flags().GetString("feedback")
	if feedback == "" {
		return fmt.Errorf("feedback required: use --feedback")
	}

	outline, err := w.RefineOutline(context.Background(), feedback)
	if err != nil {
		return err
	}

	fmt.Printf("Refined outline, now %d sections:\n\n", len(outline.Sections))
	printOutline(outline)
	return nil
}

// --- shared helpers ---

func printOutline(outline *types.Outline) {
	for _, s := range outline.Sections {
		status := s.Status
		if status == "" {
			status = types.StatusOutline
		}
		fmt.Printf("%s. %s [%s]\n", s.Number, s.Title, status)
		if s.Description != "" {
			fmt.Printf("    %s\n", s.Description)
		}
	}
}

// projectWriter opens the project and pairs it with the configured client.
func projectWriter(cmd *cobra.Command) (*draft.Writer, error) {
	p, err := openProject()
	if err != nil {
		return nil, err
	}
	client, err := singleClient(cmd)
	if err != nil {
		return nil, err
	}
	return &draft.Writer{Project: p, Client: client, Cfg: llmConfig()}, nil
}

func init() {
	outlineGenerateCmd.Flags().String("guidance", "", "extra steering for the outline prompt")
	outlineRefineCmd.Flags().String("feedback", "", "author feedback on the current outline")

	outlineCmd.AddCommand(outlineGenerateCmd)
	outlineCmd.AddCommand(outlineShowCmd)
	outlineCmd.AddCommand(outlineRefineCmd)

	rootCmd.AddCommand(outlineCmd)
}
