// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library indexes ingested research sources in SQLite and serves
// full-text queries over their extracted text.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/pkg/types"
)

const dbFile = "library.db"

// Store manages the source index SQLite database.
type Store struct {
	db         *sql.DB
	project    *project.Project
	maxResults int
}

// NewStore opens or creates the index database under the project state
// directory. The schema is created on first use.
func NewStore(p *project.Project, cfg types.LibraryConfig) (*Store, error) {
	if err := os.MkdirAll(p.IndexDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(p.IndexDir(), dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, project: p, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			origin TEXT,
			title TEXT,
			added TEXT,
			tags TEXT,
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_type ON sources(type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sources_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE sources_fts USING fts5(title, body, content=sources, content_rowid=rowid)`,
			`CREATE TRIGGER sources_ai AFTER INSERT ON sources BEGIN
				INSERT INTO sources_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
			`CREATE TRIGGER sources_ad AFTER DELETE ON sources BEGIN
				INSERT INTO sources_fts(sources_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			END`,
			`CREATE TRIGGER sources_au AFTER UPDATE ON sources BEGIN
				INSERT INTO sources_fts(sources_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
				INSERT INTO sources_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IndexSummary holds counts from an indexing run.
type IndexSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of sources processed.
func (s IndexSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Reindex walks the project's sources and brings the database up to date.
// Unchanged text files are detected by modification time and skipped, so
// repeat runs are cheap.
func (s *Store) Reindex(ctx context.Context, w io.Writer) (IndexSummary, error) {
	sources, err := s.project.Sources()
	if err != nil {
		return IndexSummary{}, err
	}

	var summary IndexSummary

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		textPath := s.project.SourceTextPath(src.ID)
		info, err := os.Stat(textPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", src.ID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source_id = ?`, src.ID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", src.ID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		body, err := s.project.SourceText(src.ID)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", src.ID, err)
			summary.Failed++
			continue
		}

		if err := s.indexSource(ctx, src, body, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", src.ID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", src.ID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", src.ID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) indexSource(ctx context.Context, src types.Source, body, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	tagsJSON, _ := json.Marshal(src.Tags)
	added := ""
	if !src.Added.IsZero() {
		added = src.Added.Format(time.RFC3339)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (id, type, origin, title, added, tags, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type=excluded.type, origin=excluded.origin, title=excluded.title,
			added=excluded.added, tags=excluded.tags, body=excluded.body`,
		src.ID, string(src.Type), src.Origin, src.Title, added, string(tagsJSON), body,
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		src.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// UpdateTags rewrites a source's tag set in the index.
func (s *Store) UpdateTags(ctx context.Context, id string, tags []string) error {
	tagsJSON, _ := json.Marshal(tags)
	res, err := s.db.ExecContext(ctx,
		`UPDATE sources SET tags = ? WHERE id = ?`, string(tagsJSON), id)
	if err != nil {
		return fmt.Errorf("updating tags for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source %s not indexed", id)
	}
	return nil
}
