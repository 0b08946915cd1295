package articles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service exposes article management use cases.
type Service interface {
	Create(ctx context.Context, req CreateArticleRequest) (*Article, error)
	Update(ctx context.Context, req UpdateArticleRequest) (*Article, error)
	Get(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context, opts ListOptions) ([]*Article, error)
	Delete(ctx context.Context, req DeleteArticleRequest) error
	Publish(ctx context.Context, req PublishArticleRequest) (*Article, error)
	Unpublish(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*Article, error)
	ListRevisions(ctx context.Context, articleID uuid.UUID) ([]*ArticleRevision, error)
	RestoreRevision(ctx context.Context, req RestoreRevisionRequest) (*Article, error)
}

// CollectionService provides CRUD operations for collections.
type CollectionService interface {
	Ensure(ctx context.Context, code, name string) (*Collection, error)
	Get(ctx context.Context, id uuid.UUID) (*Collection, error)
	GetByCode(ctx context.Context, code string) (*Collection, error)
	List(ctx context.Context) ([]*Collection, error)
}

// Order identifies a supported list ordering.
type Order string

const (
	OrderWrittenDesc Order = "written_desc"
	OrderWrittenAsc  Order = "written_asc"
	OrderTitleAsc    Order = "title_asc"
	OrderUpdatedDesc Order = "updated_desc"
)

// ListOptions narrow List results. Zero values mean "no filter".
type ListOptions struct {
	CollectionID   uuid.UUID
	CollectionCode string
	Status         Status
	Tag            string
	Category       string
	Series         string
	Author         string
	IncludeDeleted bool
	OrderBy        Order
	Limit          int
	Offset         int
}

// Normalize trims filter values and lowercases the tag so lookups stay
// case-insensitive regardless of how front matter spelled them.
func (o ListOptions) Normalize() ListOptions {
	o.CollectionCode = strings.TrimSpace(o.CollectionCode)
	o.Tag = strings.ToLower(strings.TrimSpace(o.Tag))
	o.Category = strings.TrimSpace(o.Category)
	o.Series = strings.TrimSpace(o.Series)
	o.Author = strings.TrimSpace(o.Author)
	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// CreateArticleRequest captures the information required to create an article.
type CreateArticleRequest struct {
	CollectionID   uuid.UUID
	Slug           string
	Title          string
	Summary        *string
	Status         Status
	Template       *string
	Category       *string
	Series         *string
	SeriesPart     int
	Author         *string
	Tags           []string
	Body           string
	BodyHTML       string
	WordCount      int
	ReadingSeconds int
	SourcePath     *string
	SourceChecksum *string
	WrittenAt      *time.Time
	Metadata       map[string]any
	CreatedBy      uuid.UUID
}

// UpdateArticleRequest captures mutable fields for an existing article.
type UpdateArticleRequest struct {
	ID             uuid.UUID
	Title          string
	Summary        *string
	Status         Status
	Template       *string
	Category       *string
	Series         *string
	SeriesPart     int
	Author         *string
	Tags           []string
	Body           string
	BodyHTML       string
	WordCount      int
	ReadingSeconds int
	SourcePath     *string
	SourceChecksum *string
	WrittenAt      *time.Time
	Metadata       map[string]any
	UpdatedBy      uuid.UUID
	// BaseRevision guards against concurrent writers when versioning is
	// enabled. Zero skips the check.
	BaseRevision int
}

// DeleteArticleRequest captures the information required to remove an article.
type DeleteArticleRequest struct {
	ID         uuid.UUID
	DeletedBy  uuid.UUID
	HardDelete bool
}

// PublishArticleRequest moves an article into the published state.
type PublishArticleRequest struct {
	ID          uuid.UUID
	PublishedBy uuid.UUID
	// PublishedAt overrides the publication timestamp; zero uses now.
	PublishedAt time.Time
}

// RestoreRevisionRequest rolls an article back to a stored revision.
type RestoreRevisionRequest struct {
	ArticleID  uuid.UUID
	Revision   int
	RestoredBy uuid.UUID
}
