// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project reads and writes a paper project's on-disk state. A
// project root is any directory containing a .papergen marker directory;
// draft and source files under it are plain Markdown/YAML, editable outside
// the tool and re-read verbatim on the next command.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/papergen/pkg/types"
)

const (
	markerDir      = ".papergen"
	projectFile    = "project.yaml"
	sourcesDir     = "sources"
	metadataDir    = "metadata"
	draftsDir      = "drafts"
	historyDir     = "history"
	indexDir       = "index"
	outputDir      = "output"
	outlineFile    = "outline.yaml"
	referencesFile = "references.yaml"
)

// ErrNotFound indicates the working directory is not inside a papergen project.
var ErrNotFound = errors.New("not inside a papergen project (run 'papergen init' first)")

// Project is an open paper project.
type Project struct {
	// Root is the project root directory (the one containing .papergen/).
	Root string

	// Meta holds the settings from .papergen/project.yaml.
	Meta types.ProjectMeta
}

// Init creates a new project in dir: the marker directory, project.yaml,
// and the working directories. It fails if dir is already a project.
func Init(dir string, meta types.ProjectMeta) (*Project, error) {
	marker := filepath.Join(dir, markerDir)
	if _, err := os.Stat(marker); err == nil {
		return nil, fmt.Errorf("directory %s is already a papergen project", dir)
	}

	if meta.Created == "" {
		meta.Created = time.Now().Format("2006-01-02")
	}
	if meta.Template == "" {
		meta.Template = types.TemplateIEEE
	}
	if !types.ValidTemplate(meta.Template) {
		return nil, fmt.Errorf("unknown template %q (expected ieee, acl, acm, or neurips)", meta.Template)
	}

	for _, sub := range []string{
		marker,
		filepath.Join(marker, historyDir),
		filepath.Join(marker, indexDir),
		filepath.Join(dir, sourcesDir),
		filepath.Join(dir, sourcesDir, metadataDir),
		filepath.Join(dir, draftsDir),
		filepath.Join(dir, outputDir),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", sub, err)
		}
	}

	p := &Project{Root: dir, Meta: meta}
	if err := p.SaveMeta(); err != nil {
		return nil, err
	}
	return p, nil
}

// Find walks up from start looking for the .papergen marker and loads the
// project it finds. Returns ErrNotFound when no ancestor is a project root.
func Find(start string) (*Project, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, markerDir)); err == nil {
			return load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotFound
		}
		dir = parent
	}
}

func load(root string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(root, markerDir, projectFile))
	if err != nil {
		return nil, fmt.Errorf("reading project state: %w", err)
	}
	var meta types.ProjectMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("corrupt project state in %s: %w", root, err)
	}
	return &Project{Root: root, Meta: meta}, nil
}

// SaveMeta writes project.yaml under the marker directory.
func (p *Project) SaveMeta() error {
	data, err := yaml.Marshal(&p.Meta)
	if err != nil {
		return fmt.Errorf("marshaling project state: %w", err)
	}
	return os.WriteFile(filepath.Join(p.Root, markerDir, projectFile), data, 0o644)
}

// SourcesDir returns the directory holding extracted source text.
func (p *Project) SourcesDir() string { return filepath.Join(p.Root, sourcesDir) }

// SourceMetaDir returns the directory holding source metadata records.
func (p *Project) SourceMetaDir() string { return filepath.Join(p.Root, sourcesDir, metadataDir) }

// DraftsDir returns the directory holding current section drafts.
func (p *Project) DraftsDir() string { return filepath.Join(p.Root, draftsDir) }

// HistoryDir returns the revision history directory for one section slug.
func (p *Project) HistoryDir(slug string) string {
	return filepath.Join(p.Root, markerDir, historyDir, slug)
}

// HistoryRoot returns the directory holding all section histories.
func (p *Project) HistoryRoot() string { return filepath.Join(p.Root, markerDir, historyDir) }

// IndexDir returns the directory holding the source library database.
func (p *Project) IndexDir() string { return filepath.Join(p.Root, markerDir, indexDir) }

// OutputDir returns the directory for generated artifacts.
func (p *Project) OutputDir() string { return filepath.Join(p.Root, outputDir) }

// OutlinePath returns the path of outline.yaml.
func (p *Project) OutlinePath() string { return filepath.Join(p.Root, outlineFile) }

// ReferencesPath returns the path of references.yaml.
func (p *Project) ReferencesPath() string { return filepath.Join(p.Root, referencesFile) }

// SourceTextPath returns the path of one source's extracted text.
func (p *Project) SourceTextPath(id string) string {
	return filepath.Join(p.SourcesDir(), id+".md")
}

// sourceMetaPath returns the path of one source's metadata record.
func (p *Project) sourceMetaPath(id string) string {
	return filepath.Join(p.SourceMetaDir(), id+".yaml")
}

// Sources lists all source metadata records, ordered by ID.
func (p *Project) Sources() ([]types.Source, error) {
	entries, err := os.ReadDir(p.SourceMetaDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading source metadata: %w", err)
	}

	var sources []types.Source
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(p.SourceMetaDir(), e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading source metadata %s: %w", e.Name(), err)
		}
		var s types.Source
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing source metadata %s: %w", e.Name(), err)
		}
		sources = append(sources, s)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources, nil
}

// SourceText reads one source's extracted text verbatim.
func (p *Project) SourceText(id string) (string, error) {
	data, err := os.ReadFile(p.SourceTextPath(id))
	if err != nil {
		return "", fmt.Errorf("reading source %s: %w", id, err)
	}
	return string(data), nil
}

// SaveSource writes a source's text and metadata record.
func (p *Project) SaveSource(s types.Source, text string) error {
	if err := os.WriteFile(p.SourceTextPath(s.ID), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing source text %s: %w", s.ID, err)
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling source metadata %s: %w", s.ID, err)
	}
	return os.WriteFile(p.sourceMetaPath(s.ID), data, 0o644)
}

// SaveSourceMeta rewrites a source's metadata record, leaving its text
// untouched.
func (p *Project) SaveSourceMeta(s types.Source) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling source metadata %s: %w", s.ID, err)
	}
	return os.WriteFile(p.sourceMetaPath(s.ID), data, 0o644)
}

// HasSource reports whether a source with the given ID already exists.
func (p *Project) HasSource(id string) bool {
	_, err := os.Stat(p.sourceMetaPath(id))
	return err == nil
}
