// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for source index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Type filters by source type (pdf, url, note).
	Type string

	// Tags filters by one or more tags with AND semantics.
	Tags []string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && len(q.Tags) == 0
}

// Hit is one indexed source matching a query, with a short excerpt of the
// matched text for full-text queries.
type Hit struct {
	ID      string   `json:"id" yaml:"id"`
	Type    string   `json:"type" yaml:"type"`
	Origin  string   `json:"origin" yaml:"origin"`
	Title   string   `json:"title" yaml:"title"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Excerpt string   `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

// Search queries the source index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries are sorted by source ID.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Hit, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT src.id, src.type, src.origin, src.title, src.tags,
				snippet(sources_fts, 1, '', '', ' [...] ', 24)
			FROM sources_fts
			JOIN sources src ON src.rowid = sources_fts.rowid
			WHERE sources_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT src.id, src.type, src.origin, src.title, src.tags, ''
			FROM sources src
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND src.type = ?`)
		args = append(args, opts.Type)
	}

	for _, tag := range opts.Tags {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(src.tags) WHERE value = ?)`)
		args = append(args, tag)
	}

	if useFTS {
		qb.WriteString(` ORDER BY sources_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY src.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying source index: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h        Hit
			origin   sql.NullString
			title    sql.NullString
			tagsJSON sql.NullString
			excerpt  sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.Type, &origin, &title, &tagsJSON, &excerpt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		h.Origin = origin.String
		h.Title = title.String
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &h.Tags); err != nil {
				return nil, fmt.Errorf("corrupt tags for source %s: %w", h.ID, err)
			}
		}
		h.Excerpt = strings.TrimSpace(excerpt.String)
		hits = append(hits, h)
	}

	return hits, rows.Err()
}
