// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft manages the paper outline, section drafts, and references
// of a project, and drives LLM-backed drafting and revision.
package draft

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

// ErrNoOutline indicates that outline.yaml has not been generated yet.
var ErrNoOutline = fmt.Errorf("no outline; run outline generate first")

// ErrSectionNotFound indicates that no outline section matches the given
// name.
var ErrSectionNotFound = fmt.Errorf("section not found")

// sectionFilePattern matches numbered section files: NN-slug.md.
var sectionFilePattern = regexp.MustCompile(`^\d{2}-.+\.md$`)

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// LoadOutline reads the project's outline.yaml.
func LoadOutline(p *project.Project) (*types.Outline, error) {
	data, err := os.ReadFile(p.OutlinePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoOutline
		}
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	var outline types.Outline
	if err := yaml.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	return &outline, nil
}

// SaveOutline writes the project's outline.yaml.
func SaveOutline(p *project.Project, outline *types.Outline) error {
	data, err := yaml.Marshal(outline)
	if err != nil {
		return fmt.Errorf("marshaling outline: %w", err)
	}
	if err := os.WriteFile(p.OutlinePath(), data, 0o644); err != nil {
		return fmt.Errorf("writing outline: %w", err)
	}
	return nil
}

// LoadReferences reads the project's references.yaml. A missing file is an
// empty reference list, not an error.
func LoadReferences(p *project.Project) (*types.ReferencesFile, error) {
	data, err := os.ReadFile(p.ReferencesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &types.ReferencesFile{}, nil
		}
		return nil, fmt.Errorf("reading references: %w", err)
	}
	var refs types.ReferencesFile
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	return &refs, nil
}

// SectionFiles returns the ordered list of numbered section files
// (NN-slug.md) in the drafts directory.
func SectionFiles(p *project.Project) ([]string, error) {
	entries, err := os.ReadDir(p.DraftsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading drafts directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sectionFilePattern.MatchString(e.Name()) {
			files = append(files, filepath.Join(p.DraftsDir(), e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FindSection resolves a section by number ("2" or "02"), file slug
// ("02-methods"), or title (case-insensitive). It returns a pointer into
// the outline so callers can update status in place.
func FindSection(outline *types.Outline, name string) (*types.OutlineSection, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i := range outline.Sections {
		s := &outline.Sections[i]
		slug := strings.TrimSuffix(s.File, ".md")
		switch needle {
		case s.Number, strings.TrimPrefix(s.Number, "0"),
			strings.ToLower(slug), strings.ToLower(s.File),
			strings.ToLower(s.Title), project.Slugify(s.Title):
			return s, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrSectionNotFound)
}

// SectionSlug returns the history key for a section, its filename without
// the extension.
func SectionSlug(s *types.OutlineSection) string {
	return strings.TrimSuffix(s.File, ".md")
}

// ValidateCitations scans section drafts for inline citation keys and
// returns any keys with no entry in references.yaml.
func ValidateCitations(p *project.Project) ([]string, error) {
	refs, err := LoadReferences(p)
	if err != nil {
		return nil, err
	}

	knownKeys := make(map[string]bool)
	for _, r := range refs.Papers {
		knownKeys[r.CitationKey] = true
	}

	files, err := SectionFiles(p)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(f), err)
		}
		for _, key := range extractCitationKeys(string(data)) {
			if !knownKeys[key] && !seen[key] {
				seen[key] = true
			}
		}
	}

	var missing []string
	for key := range seen {
		missing = append(missing, key)
	}
	sort.Strings(missing)
	return missing, nil
}

// extractCitationKeys finds all citation keys in text. It handles both
// single citations [Key] and multi-citations [Key1; Key2].
func extractCitationKeys(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	var keys []string
	for _, m := range matches {
		for _, p := range strings.Split(m[1], ";") {
			key := strings.TrimSpace(p)
			if key != "" && IsCitationKey(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// IsCitationKey checks whether a string looks like a citation key
// (AuthorYear format). It rejects Markdown links, footnotes, and other
// bracket content.
func IsCitationKey(s string) bool {
	hasLetter := false
	hasDigit := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '-', c == '_':
			// allowed
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

// GenerateBibTeX produces BibTeX content from a ReferencesFile.
func GenerateBibTeX(refs *types.ReferencesFile) string {
	var b strings.Builder
	for _, r := range refs.Papers {
		fmt.Fprintf(&b, "@article{%s,\n", r.CitationKey)
		fmt.Fprintf(&b, "  title = {%s},\n", r.Title)
		if len(r.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(r.Authors, " and "))
		}
		if r.Year > 0 {
			fmt.Fprintf(&b, "  year = {%d},\n", r.Year)
		}
		if r.Venue != "" {
			fmt.Fprintf(&b, "  journal = {%s},\n", r.Venue)
		}
		fmt.Fprintf(&b, "}\n\n")
	}
	return b.String()
}
