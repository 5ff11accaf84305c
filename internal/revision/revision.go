// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package revision maintains the append-only snapshot history of draft
// sections. The draft file always equals the newest snapshot; going back to
// an older snapshot appends a copy of it, so history is a true log and past
// entries are never rewritten.
package revision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrNoSuchSection indicates a revision operation on a section that has no
// draft yet.
var ErrNoSuchSection = errors.New("section has no draft")

// RangeError indicates a snapshot index outside [1, Length].
type RangeError struct {
	Index  int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("snapshot %d out of range [1, %d]", e.Index, e.Length)
}

// snapshotPattern matches snapshot filenames: NNN.md, zero-padded to at
// least three digits but unbounded above.
var snapshotPattern = regexp.MustCompile(`^\d{3,}\.md$`)

// Log is the revision history of one section. HistoryDir holds the numbered
// snapshots; DraftPath is the current, human-editable draft file.
type Log struct {
	HistoryDir string
	DraftPath  string
}

// Len returns the number of snapshots. Zero means the section has never
// been drafted.
func (l *Log) Len() (int, error) {
	entries, err := os.ReadDir(l.HistoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading history %s: %w", l.HistoryDir, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && snapshotPattern.MatchString(e.Name()) {
			n++
		}
	}
	return n, nil
}

// Snapshots returns the ordered snapshot file paths.
func (l *Log) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(l.HistoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history %s: %w", l.HistoryDir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && snapshotPattern.MatchString(e.Name()) {
			paths = append(paths, filepath.Join(l.HistoryDir, e.Name()))
		}
	}
	// Numeric order, not lexicographic: past 999 the padding stops
	// aligning with string order.
	sort.Slice(paths, func(i, j int) bool {
		return snapshotIndex(paths[i]) < snapshotIndex(paths[j])
	})
	return paths, nil
}

// snapshotIndex parses the numeric index out of a snapshot path.
func snapshotIndex(path string) int {
	name := strings.TrimSuffix(filepath.Base(path), ".md")
	n, _ := strconv.Atoi(name)
	return n
}

// Read returns snapshot k (1-based). A section with no snapshots is
// ErrNoSuchSection; an index outside [1, Len] is a RangeError.
func (l *Log) Read(k int) (string, error) {
	n, err := l.Len()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("%s: %w", filepath.Base(l.HistoryDir), ErrNoSuchSection)
	}
	if k < 1 || k > n {
		return "", &RangeError{Index: k, Length: n}
	}
	data, err := os.ReadFile(l.snapshotPath(k))
	if err != nil {
		return "", fmt.Errorf("reading snapshot %d: %w", k, err)
	}
	return string(data), nil
}

// Append records content as the next snapshot and writes it to the draft
// file, keeping the draft equal to the newest history entry. It returns the
// new snapshot index.
func (l *Log) Append(content string) (int, error) {
	n, err := l.Len()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(l.HistoryDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating history %s: %w", l.HistoryDir, err)
	}

	next := n + 1
	if err := os.WriteFile(l.snapshotPath(next), []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("writing snapshot %d: %w", next, err)
	}
	if err := os.WriteFile(l.DraftPath, []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("writing draft %s: %w", l.DraftPath, err)
	}
	return next, nil
}

// Current reads the draft file verbatim. Drafts are editable outside the
// tool, so this may differ from the newest snapshot until Sync runs.
func (l *Log) Current() (string, error) {
	n, err := l.Len()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("%s: %w", filepath.Base(l.HistoryDir), ErrNoSuchSection)
	}
	data, err := os.ReadFile(l.DraftPath)
	if err != nil {
		return "", fmt.Errorf("reading draft %s: %w", l.DraftPath, err)
	}
	return string(data), nil
}

// Sync captures manual edits: when the draft file differs from the newest
// snapshot, the edited text is appended as a snapshot of its own. Returns
// the current text.
func (l *Log) Sync() (string, error) {
	current, err := l.Current()
	if err != nil {
		return "", err
	}
	n, _ := l.Len()
	latest, err := l.Read(n)
	if err != nil {
		return "", err
	}
	if current != latest {
		if _, err := l.Append(current); err != nil {
			return "", err
		}
	}
	return current, nil
}

// Revert makes snapshot k current by appending a copy of it. History is
// never truncated. Returns the new snapshot index.
func (l *Log) Revert(k int) (int, error) {
	content, err := l.Read(k)
	if err != nil {
		return 0, err
	}
	return l.Append(content)
}

// Diff returns a unified diff between snapshots i and j. Identical
// snapshots yield an empty string.
func (l *Log) Diff(i, j int) (string, error) {
	a, err := l.Read(i)
	if err != nil {
		return "", err
	}
	b, err := l.Read(j)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fmt.Sprintf("snapshot %d", i),
		ToFile:   fmt.Sprintf("snapshot %d", j),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("computing diff: %w", err)
	}
	return text, nil
}

func (l *Log) snapshotPath(k int) string {
	return filepath.Join(l.HistoryDir, fmt.Sprintf("%03d.md", k))
}
