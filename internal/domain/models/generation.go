package models

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceTypeURL  SourceType = "url"
	SourceTypeText SourceType = "text"
)

// SourceDocument is the cleaned input to a generation run, produced either by
// the extractor or from directly pasted text. Immutable once built.
type SourceDocument struct {
	Text      string `json:"text"`
	Title     string `json:"title,omitempty"`
	OriginURL string `json:"origin_url,omitempty"`
}

// PlatformOutput is one normalized post. CharacterCount always equals the rune
// length of Content.
type PlatformOutput struct {
	Content        string   `json:"content"`
	Hashtags       []string `json:"hashtags"`
	CharacterCount int      `json:"characterCount"`
}

// GenerationOutputs maps platform id to its generated post. A requested
// platform missing from the map means its generation failed and was tolerated.
type GenerationOutputs map[Platform]PlatformOutput

type Generation struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	UserID           string            `json:"user_id" db:"user_id"`
	SourceType       SourceType        `json:"source_type" db:"source_type"`
	SourceURL        *string           `json:"source_url" db:"source_url"`
	SourceText       string            `json:"source_text" db:"source_text"`
	SourceTitle      *string           `json:"source_title" db:"source_title"`
	Outputs          GenerationOutputs `json:"outputs" db:"-"`
	Platforms        []Platform        `json:"platforms" db:"-"`
	TokensUsed       int               `json:"tokens_used" db:"tokens_used"`
	ProcessingTimeMs int64             `json:"processing_time_ms" db:"processing_time_ms"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}

// SourceSnapshotLimit caps the source text persisted with a generation row.
const SourceSnapshotLimit = 5000
