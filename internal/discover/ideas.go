// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover explores the research landscape before any project
// exists: survey analysis, single-paper analysis, and multi-provider idea
// brainstorming.
package discover

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/papergen/pkg/types"
)

// ExtractJSONObject pulls the outermost JSON object out of a model reply,
// tolerating prose or code fences around it.
func ExtractJSONObject(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in reply")
	}
	return reply[start : end+1], nil
}

// ParseIdeas parses a brainstorming reply of the form {"ideas": [...]}. A
// reply that is JSON but not in that shape yields an error naming the
// problem, so callers can keep the raw text.
func ParseIdeas(reply string) ([]types.Idea, error) {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Ideas []types.Idea `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, fmt.Errorf("parsing ideas: %w", err)
	}
	if len(parsed.Ideas) == 0 {
		return nil, fmt.Errorf("reply contains no ideas")
	}

	for i, idea := range parsed.Ideas {
		if strings.TrimSpace(idea.Title) == "" {
			return nil, fmt.Errorf("idea %d has no title", i+1)
		}
	}
	return parsed.Ideas, nil
}
