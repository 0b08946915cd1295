package articles

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status enumerates the lifecycle states an article moves through.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// Collection groups articles that share a shelf in the corpus, typically the
// top-level content directory (tutorials, design, language).
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	ID          uuid.UUID      `bun:",pk,type:uuid"        json:"id"`
	Code        string         `bun:"code,notnull"         json:"code"`
	Name        string         `bun:"name,notnull"         json:"name"`
	Description *string        `bun:"description"          json:"description,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb"  json:"metadata,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Article is the canonical record for a single prose document.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID              uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	CollectionID    uuid.UUID      `bun:"collection_id,notnull,type:uuid" json:"collection_id"`
	Slug            string         `bun:"slug,notnull" json:"slug"`
	Title           string         `bun:"title,notnull" json:"title"`
	Summary         *string        `bun:"summary" json:"summary,omitempty"`
	Status          Status         `bun:"status,notnull,default:'draft'" json:"status"`
	Template        *string        `bun:"template" json:"template,omitempty"`
	Category        *string        `bun:"category" json:"category,omitempty"`
	Series          *string        `bun:"series" json:"series,omitempty"`
	SeriesPart      int            `bun:"series_part,notnull,default:0" json:"series_part"`
	Author          *string        `bun:"author" json:"author,omitempty"`
	Tags            []string       `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Body            string         `bun:"body,notnull" json:"body"`
	BodyHTML        string         `bun:"body_html" json:"body_html,omitempty"`
	WordCount       int            `bun:"word_count,notnull,default:0" json:"word_count"`
	ReadingSeconds  int            `bun:"reading_seconds,notnull,default:0" json:"reading_seconds"`
	SourcePath      *string        `bun:"source_path" json:"source_path,omitempty"`
	SourceChecksum  *string        `bun:"source_checksum" json:"source_checksum,omitempty"`
	Metadata        map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CurrentRevision int            `bun:"current_revision,notnull,default:1" json:"current_revision"`
	PublishedAt     *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	WrittenAt       *time.Time     `bun:"written_at,nullzero" json:"written_at,omitempty"`
	UpdatedBy       *uuid.UUID     `bun:"updated_by,type:uuid" json:"updated_by,omitempty"`
	DeletedAt       *time.Time     `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Collection *Collection        `bun:"rel:belongs-to,join:collection_id=id" json:"collection,omitempty"`
	Revisions  []*ArticleRevision `bun:"rel:has-many,join:id=article_id"      json:"revisions,omitempty"`
}

// ReadingTime converts the stored reading estimate back into a duration.
func (a *Article) ReadingTime() time.Duration {
	if a == nil || a.ReadingSeconds <= 0 {
		return 0
	}
	return time.Duration(a.ReadingSeconds) * time.Second
}

// IsVisible reports whether the article should appear on the generated site.
func (a *Article) IsVisible() bool {
	if a == nil || a.DeletedAt != nil {
		return false
	}
	return a.Status == StatusPublished
}

// ArticleRevision captures an immutable snapshot of an article payload.
type ArticleRevision struct {
	bun.BaseModel `bun:"table:article_revisions,alias:ar"`

	ID        uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	ArticleID uuid.UUID        `bun:"article_id,notnull,type:uuid" json:"article_id"`
	Revision  int              `bun:"revision,notnull" json:"revision"`
	Snapshot  RevisionSnapshot `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	CreatedBy *uuid.UUID       `bun:"created_by,type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`

	Article *Article `bun:"rel:belongs-to,join:article_id=id" json:"article,omitempty"`
}

// RevisionSnapshot describes the persisted JSON snapshot for revision history.
type RevisionSnapshot struct {
	Title       string         `json:"title"`
	Summary     *string        `json:"summary,omitempty"`
	Status      Status         `json:"status"`
	Body        string         `json:"body"`
	Tags        []string       `json:"tags,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RevisionSnapshotSchema captures the JSON schema used to validate snapshots.
var RevisionSnapshotSchema = map[string]any{
	"type":     "object",
	"required": []string{"title", "status", "body"},
	"properties": map[string]any{
		"title":   map[string]any{"type": "string"},
		"summary": map[string]any{"type": []any{"string", "null"}},
		"status":  map[string]any{"type": "string"},
		"body":    map[string]any{"type": "string"},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"frontmatter": map[string]any{
			"type":                 "object",
			"additionalProperties": true,
		},
		"metadata": map[string]any{
			"type":                 "object",
			"additionalProperties": true,
		},
	},
}
