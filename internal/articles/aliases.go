package articles

import "github.com/goliatone/go-press/articles"

// The root articles package owns the public contract; the aliases below keep
// the implementation in sync with it without duplicating declarations.

type (
	Collection       = articles.Collection
	Article          = articles.Article
	ArticleRevision  = articles.ArticleRevision
	RevisionSnapshot = articles.RevisionSnapshot
	Status           = articles.Status
	NotFoundError    = articles.NotFoundError

	Service                = articles.Service
	CollectionService      = articles.CollectionService
	ListOptions            = articles.ListOptions
	Order                  = articles.Order
	CreateArticleRequest   = articles.CreateArticleRequest
	UpdateArticleRequest   = articles.UpdateArticleRequest
	DeleteArticleRequest   = articles.DeleteArticleRequest
	PublishArticleRequest  = articles.PublishArticleRequest
	RestoreRevisionRequest = articles.RestoreRevisionRequest
)

const (
	StatusDraft     = articles.StatusDraft
	StatusPublished = articles.StatusPublished
	StatusArchived  = articles.StatusArchived

	OrderWrittenDesc = articles.OrderWrittenDesc
	OrderWrittenAsc  = articles.OrderWrittenAsc
	OrderTitleAsc    = articles.OrderTitleAsc
	OrderUpdatedDesc = articles.OrderUpdatedDesc
)

var (
	ErrCollectionRequired = articles.ErrCollectionRequired
	ErrSlugRequired       = articles.ErrSlugRequired
	ErrSlugInvalid        = articles.ErrSlugInvalid
	ErrSlugExists         = articles.ErrSlugExists
	ErrTitleRequired      = articles.ErrTitleRequired
	ErrBodyRequired       = articles.ErrBodyRequired
	ErrStatusInvalid      = articles.ErrStatusInvalid
	ErrArticleIDRequired  = articles.ErrArticleIDRequired
	ErrMetadataInvalid    = articles.ErrMetadataInvalid
	ErrVersioningDisabled = articles.ErrVersioningDisabled
	ErrRevisionRequired   = articles.ErrRevisionRequired
	ErrRevisionConflict   = articles.ErrRevisionConflict
	ErrAlreadyPublished   = articles.ErrAlreadyPublished
	ErrNotPublished       = articles.ErrNotPublished
	ErrSnapshotInvalid    = articles.ErrSnapshotInvalid

	RevisionSnapshotSchema = articles.RevisionSnapshotSchema
)
