package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should be reusable across calls so hosts can share a
// single instance without additional locking.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService exposes the file-centric workflows the press engine is
// built around: loading Markdown documents, converting them into HTML, and
// synchronising them with the article store.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
	Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error)
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Document represents a Markdown file with parsed metadata and content. The
// struct is shared between the interfaces package and internal
// implementations so consumers can depend on a stable contract.
type Document struct {
	FilePath     string
	Collection   string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	Stats        DocumentStats
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so
	// sync workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// DocumentStats carries metrics derived from the Markdown body.
type DocumentStats struct {
	WordCount   int
	ReadingTime time.Duration
	Headings    []string
}

// FrontMatter models metadata extracted from article files. Known keys map
// to typed fields; everything else stays reachable through the Custom map so
// templates and domain extensions keep their values.
type FrontMatter struct {
	Title      string         `yaml:"title" json:"title"`
	Slug       string         `yaml:"slug" json:"slug"`
	Summary    string         `yaml:"summary" json:"summary"`
	Status     string         `yaml:"status" json:"status"`
	Template   string         `yaml:"template" json:"template"`
	Tags       []string       `yaml:"tags" json:"tags"`
	Category   string         `yaml:"category" json:"category"`
	Series     string         `yaml:"series" json:"series"`
	SeriesPart int            `yaml:"series_part" json:"series_part"`
	Author     string         `yaml:"author" json:"author"`
	Date       time.Time      `yaml:"date" json:"date"`
	Updated    time.Time      `yaml:"updated" json:"updated"`
	Draft      bool           `yaml:"draft" json:"draft"`
	Custom     map[string]any `yaml:",inline" json:"custom"`
	Raw        map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive          *bool
	Pattern            string
	CollectionPatterns map[string]string
	Parser             ParseOptions
}

// ImportOptions controls how Markdown documents are converted into article
// records.
type ImportOptions struct {
	CollectionID uuid.UUID
	AuthorID     uuid.UUID
	DryRun       bool
}

// SyncOptions extends ImportOptions to handle update/delete semantics for
// repeated synchronisation runs.
type SyncOptions struct {
	ImportOptions
	DeleteOrphaned bool
	UpdateExisting bool
}

// ImportResult reports the outcome of a single import operation, exposing
// counts and IDs so callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	CreatedArticleIDs []uuid.UUID
	UpdatedArticleIDs []uuid.UUID
	SkippedArticleIDs []uuid.UUID
	// WouldCreateSlugs lists documents a dry run would have created; they
	// have no IDs yet so they are reported by slug.
	WouldCreateSlugs []string
	Errors           []error
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Errors  []error
}
