// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papergen/internal/draft"
	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/internal/revision"
	"github.com/pdiddy/papergen/pkg/types"
)

var reviseCmd = &cobra.Command{
	Use:   "revise",
	Short: "Revise sections and manage their revision history",
	Long: `Revise rewrites drafted sections per author feedback. Every revision
is appended to the section's history as a numbered snapshot; compare and
revert work against those snapshots. Hand edits to the draft file are
captured as a snapshot before any rewrite, so nothing is ever lost.`,
}

// --- section subcommand ---

var reviseSectionCmd = &cobra.Command{
	Use:     "section NAME",
	Aliases: []string{"revise-section"},
	Short:   "Rewrite one section per feedback",
	Args:    cobra.ExactArgs(1),
	RunE:    runReviseSection,
}

func runReviseSection(cmd *cobra.Command, args []string) error {
	w, err := projectWriter(cmd)
	if err != nil {
		return err
	}

	feedback, _ := cmd.Flags().GetString("feedback")
	if feedback == "" {
		return fmt.Errorf("feedback required: use --feedback")
	}

	outline, err := draft.LoadOutline(w.Project)
	if err != nil {
		return err
	}
	section, err := draft.FindSection(outline, args[0])
	if err != nil {
		return err
	}

	if err := w.Revise(context.Background(), outline, section, feedback); err != nil {
		return err
	}
	fmt.Printf("revised %s\n", section.File)
	return nil
}

// --- polish subcommand ---

var revisePolishCmd = &cobra.Command{
	Use:   "polish NAME",
	Short: "Run a copy-editing pass over one section",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevisePolish,
}

func runRevisePolish(cmd *cobra.Command, args []string) error {
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
	if err := w.Polish(context.Background(), outline, section, focus); err != nil {
		return err
	}
	fmt.Printf("polished %s\n", section.File)
	return nil
}

// --- all subcommand ---

var reviseAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Revise every drafted section with the same feedback",
	RunE:  runReviseAll,
}

func runReviseAll(cmd *cobra.Command, args []string) error {
	w, err := projectWriter(cmd)
	if err != nil {
		return err
	}

	feedback, _ := cmd.Flags().GetString("feedback")
	if feedback == "" {
		return fmt.Errorf("feedback required: use --feedback")
	}

	outline, err := draft.LoadOutline(w.Project)
	if err != nil {
		return err
	}

	revised, failed := 0, 0
	for i := range outline.Sections {
		s := &outline.Sections[i]
		if s.Status == types.StatusOutline || s.Status == "" {
			fmt.Fprintf(os.Stdout, "skipped %s (not drafted)\n", s.File)
			continue
		}
		if err := w.Revise(context.Background(), outline, s, feedback); err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", s.File, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "revised %s\n", s.File)
		revised++
	}

	fmt.Fprintf(os.Stdout, "\nrevised: %d, failed: %d\n", revised, failed)
	if failed > 0 {
		return fmt.Errorf("%d section(s) failed", failed)
	}
	return nil
}

// --- history subcommand ---

var reviseHistoryCmd = &cobra.Command{
	Use:   "history NAME",
	Short: "List a section's snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviseHistory,
}

func runReviseHistory(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	log, section, err := sectionLog(p, args[0])
	if err != nil {
		return err
	}

	n, err := log.Len()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", revision.ErrNoSuchSection, section.File)
	}

	for k := 1; k <= n; k++ {
		text, err := log.Read(k)
		if err != nil {
			return err
		}
		words := len(strings.Fields(text))
		marker := " "
		if k == n {
			marker = "*"
		}
		fmt.Printf("%s %03d  %d words\n", marker, k, words)
	}
	fmt.Printf("\n%d snapshots (* = current draft)\n", n)
	return nil
}

// --- compare subcommand ---

var reviseCompareCmd = &cobra.Command{
	Use:   "compare NAME I J",
	Short: "Show a unified diff between two snapshots",
	Long: `Compare diffs snapshot I against snapshot J. Snapshot indices are
1-based; "latest" names the newest snapshot.`,
	Args: cobra.ExactArgs(3),
	RunE: runReviseCompare,
}

func runReviseCompare(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	log, _, err := sectionLog(p, args[0])
	if err != nil {
		return err
	}

	i, err := parseSnapshotRef(log, args[1])
	if err != nil {
		return err
	}
	j, err := parseSnapshotRef(log, args[2])
	if err != nil {
		return err
	}

	diff, err := log.Diff(i, j)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Printf("snapshots %d and %d are identical\n", i, j)
		return nil
	}
	fmt.Print(diff)
	return nil
}

// --- revert subcommand ---

var reviseRevertCmd = &cobra.Command{
	Use:   "revert NAME K",
	Short: "Restore a snapshot as the current draft",
	Long: `Revert copies snapshot K back as the newest snapshot and rewrites the
draft file to match. The history keeps growing; nothing is deleted.`,
	Args: cobra.ExactArgs(2),
	RunE: runReviseRevert,
}

func runReviseRevert(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	log, section, err := sectionLog(p, args[0])
	if err != nil {
		return err
	}

	k, err := parseSnapshotRef(log, args[1])
	if err != nil {
		return err
	}

	n, err := log.Revert(k)
	if err != nil {
		return err
	}
	fmt.Printf("reverted %s to snapshot %03d (now snapshot %03d)\n", section.File, k, n)
	return nil
}

// --- shared helpers ---

// sectionLog resolves a section by name and returns its revision log.
func sectionLog(p *project.Project, name string) (*revision.Log, *types.OutlineSection, error) {
	outline, err := draft.LoadOutline(p)
	if err != nil {
		return nil, nil, err
	}
	section, err := draft.FindSection(outline, name)
	if err != nil {
		return nil, nil, err
	}
	log := &revision.Log{
		HistoryDir: p.HistoryDir(draft.SectionSlug(section)),
		DraftPath:  filepath.Join(p.DraftsDir(), section.File),
	}
	return log, section, nil
}

// parseSnapshotRef resolves a 1-based snapshot index; "latest" names the
// newest snapshot.
func parseSnapshotRef(log *revision.Log, ref string) (int, error) {
	if ref == "latest" {
		n, err := log.Len()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("%w: %s", revision.ErrNoSuchSection, filepath.Base(log.DraftPath))
		}
		return n, nil
	}
	k, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad snapshot index %q: use a number or \"latest\"", ref)
	}
	return k, nil
}

func init() {
	reviseSectionCmd.Flags().String("feedback", "", "author feedback to apply")
	revisePolishCmd.Flags().String("focus", "", "narrow the polishing pass, e.g. \"tighten transitions\"")
	reviseAllCmd.Flags().String("feedback", "", "author feedback to apply to every section")

	reviseCmd.AddCommand(reviseSectionCmd)
	reviseCmd.AddCommand(revisePolishCmd)
	reviseCmd.AddCommand(reviseAllCmd)
	reviseCmd.AddCommand(reviseHistoryCmd)
	reviseCmd.AddCommand(reviseCompareCmd)
	reviseCmd.AddCommand(reviseRevertCmd)

	rootCmd.AddCommand(reviseCmd)
}
