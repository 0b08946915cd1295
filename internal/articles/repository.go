package articles

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewCollectionRepository(db *bun.DB) repository.Repository[*Collection] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Collection]{
		NewRecord: func() *Collection { return &Collection{} },
		GetID: func(c *Collection) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Collection, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(c *Collection) string {
			return c.Code
		},
	})
}

func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord: func() *Article { return &Article{} },
		GetID: func(a *Article) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Article, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(a *Article) string {
			return a.Slug
		},
	})
}

func NewArticleRevisionRepository(db *bun.DB) repository.Repository[*ArticleRevision] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ArticleRevision]{
		NewRecord: func() *ArticleRevision { return &ArticleRevision{} },
		GetID: func(r *ArticleRevision) uuid.UUID {
			return r.ID
		},
		SetID: func(r *ArticleRevision, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *ArticleRevision) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}
