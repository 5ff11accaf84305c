// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/papergen/internal/llm"
	"github.com/pdiddy/papergen/internal/prompt"
	"github.com/pdiddy/papergen/pkg/types"
)

// Organizer assigns topic tags to sources using a language model and keeps
// the metadata records and the index in sync.
type Organizer struct {
	Store      *Store
	Client     llm.Client
	MaxRetries int

	// Force re-tags sources that already carry tags.
	Force bool
}

// OrganizeSummary holds counts from a tagging run.
type OrganizeSummary struct {
	Tagged  int
	Skipped int
	Failed  int
}

// Total returns the number of sources processed.
func (s OrganizeSummary) Total() int {
	return s.Tagged + s.Skipped + s.Failed
}

// Organize tags every untagged source in the project. Sources that already
// have tags are skipped unless Force is set. Failures are reported per
// source and do not abort the run.
func (o *Organizer) Organize(ctx context.Context, w io.Writer) (OrganizeSummary, error) {
	sources, err := o.Store.project.Sources()
	if err != nil {
		return OrganizeSummary{}, err
	}

	var summary OrganizeSummary

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if len(src.Tags) > 0 && !o.Force {
			fmt.Fprintf(w, "skipped %s (already tagged)\n", src.ID)
			summary.Skipped++
			continue
		}

		tags, err := o.tagSource(ctx, src)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", src.ID, err)
			summary.Failed++
			continue
		}

		src.Tags = tags
		if err := o.Store.project.SaveSourceMeta(src); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", src.ID, err)
			summary.Failed++
			continue
		}
		if err := o.Store.UpdateTags(ctx, src.ID, tags); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", src.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "tagged  %s: %s\n", src.ID, strings.Join(tags, ", "))
		summary.Tagged++
	}

	fmt.Fprintf(w, "\ntagged: %d, skipped: %d, failed: %d\n",
		summary.Tagged, summary.Skipped, summary.Failed)

	return summary, nil
}

func (o *Organizer) tagSource(ctx context.Context, src types.Source) ([]string, error) {
	text, err := o.Store.project.SourceText(src.ID)
	if err != nil {
		return nil, err
	}

	p, err := prompt.OrganizeSource(src.Title, text)
	if err != nil {
		return nil, err
	}

	reply, err := llm.GenerateWithRetry(ctx, o.Client, llm.Request{Prompt: p}, o.MaxRetries)
	if err != nil {
		return nil, err
	}

	tags, err := parseTags(reply)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("model returned no tags")
	}
	return tags, nil
}

// parseTags pulls {"tags": [...]} out of a model reply, tolerating prose
// around the JSON object.
func parseTags(reply string) ([]string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var parsed struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, t := range parsed.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}
