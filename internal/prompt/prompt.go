// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles the text prompts sent to LLM providers. Every
// builder is a pure function of project state and command parameters.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/papergen/pkg/types"
)

// render executes tmpl with data into a string.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// bulleted formats items as a Markdown bullet list, or a placeholder when empty.
func bulleted(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

// sectionList formats an outline as a numbered list of titles.
func sectionList(outline *types.Outline) string {
	var b strings.Builder
	for _, sec := range outline.Sections {
		fmt.Fprintf(&b, "%s. %s - %s\n", sec.Number, sec.Title, sec.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate caps text at n runes, appending a marker when cut. Source
// excerpts in prompts are capped so a large PDF cannot blow the context.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "\n[...truncated...]"
}

// excerptLimit caps each source excerpt included in drafting prompts.
const excerptLimit = 8000
