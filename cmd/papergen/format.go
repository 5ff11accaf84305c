// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papergen/internal/render"
	"github.com/pdiddy/papergen/pkg/types"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Render the paper to LaTeX, Markdown, or PDF",
	Long: `Format assembles the drafted sections into a publishable document
under output/. LaTeX output follows the project's venue template; compile
runs the local TeX toolchain over it.`,
}

// --- latex subcommand ---

var formatLatexCmd = &cobra.Command{
	Use:   "latex",
	Short: "Render output/paper.tex and references.bib",
	RunE:  runFormatLatex,
}

func runFormatLatex(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	template, _ := cmd.Flags().GetString("template")
	result, err := render.LaTeX(p, types.TemplateID(template))
	if err != nil {
		return err
	}

	for _, key := range result.MissingCitations {
		fmt.Fprintf(os.Stderr, "warning: citation [%s] has no entry in references.yaml\n", key)
	}
	fmt.Printf("wrote %s\n", result.TexPath)
	fmt.Printf("wrote %s\n", result.BibPath)
	return nil
}

// --- markdown subcommand ---

var formatMarkdownCmd = &cobra.Command{
	Use:   "markdown",
	Short: "Render output/paper.md",
	RunE:  runFormatMarkdown,
}

func runFormatMarkdown(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	flavor, _ := cmd.Flags().GetString("flavor")
	path, err := render.Markdown(p, types.MarkdownFlavor(flavor))
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// --- compile subcommand ---

var formatCompileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile output/paper.tex to PDF",
	Long: `Compile runs the first available TeX engine (latexmk, pdflatex, or
tectonic) over the rendered LaTeX. Engine diagnostics are attached to the
error on failure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject()
		if err != nil {
			return err
		}
		path, err := render.Compile(p, nil)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	formatLatexCmd.Flags().String("template", "", "venue template: ieee, acl, acm, or neurips (default: project setting)")
	formatMarkdownCmd.Flags().String("flavor", "arxiv", "markdown flavor: arxiv or github")

	formatCmd.AddCommand(formatLatexCmd)
	formatCmd.AddCommand(formatMarkdownCmd)
	formatCmd.AddCommand(formatCompileCmd)

	rootCmd.AddCommand(formatCmd)
}
