// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TemplateID names a venue formatting convention controlling section
// structure and LaTeX document class.
type TemplateID string

const (
	TemplateIEEE    TemplateID = "ieee"
	TemplateACL     TemplateID = "acl"
	TemplateACM     TemplateID = "acm"
	TemplateNeurIPS TemplateID = "neurips"
)

// ValidTemplate reports whether t names a known venue template.
func ValidTemplate(t TemplateID) bool {
	switch t {
	case TemplateIEEE, TemplateACL, TemplateACM, TemplateNeurIPS:
		return true
	}
	return false
}

// ProjectMeta holds the per-project settings from .papergen/project.yaml.
type ProjectMeta struct {
	// Topic is the research topic the paper addresses.
	Topic string `json:"topic" yaml:"topic"`

	// Template is the venue formatting convention: ieee, acl, acm, or neurips.
	Template TemplateID `json:"template" yaml:"template"`

	// Author is the paper author's display name.
	Author string `json:"author" yaml:"author"`

	// Created is the project creation date in YYYY-MM-DD format.
	Created string `json:"created" yaml:"created"`
}

// SourceType categorizes an ingested research artifact.
type SourceType string

const (
	SourcePDF  SourceType = "pdf"
	SourceURL  SourceType = "url"
	SourceNote SourceType = "note"
)

// Source records an ingested research artifact. The extracted text lives in
// sources/<id>.md; this metadata record lives in sources/metadata/<id>.yaml.
type Source struct {
	// ID is a slug derived from the filename or URL.
	ID string `json:"id" yaml:"id"`

	// Type categorizes the artifact: pdf, url, or note.
	Type SourceType `json:"type" yaml:"type"`

	// Origin is the path or URL the artifact was ingested from.
	Origin string `json:"origin" yaml:"origin"`

	// Title is a human-readable label, defaulting to the slug.
	Title string `json:"title" yaml:"title"`

	// Added is the ingestion timestamp.
	Added time.Time `json:"added" yaml:"added"`

	// Tags are lowercase, hyphenated topic labels assigned by research organize.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}
