package articles

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BunArticleRepository struct {
	db        *bun.DB
	repo      repository.Repository[*Article]
	revisions repository.Repository[*ArticleRevision]
}

func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return NewBunArticleRepositoryWithCache(db, nil, nil)
}

func NewBunArticleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunArticleRepository {
	base := NewArticleRepository(db)
	revisions := NewArticleRevisionRepository(db)
	return &BunArticleRepository{
		db:        db,
		repo:      wrapWithCache(base, cacheService, keySerializer),
		revisions: wrapWithCache(revisions, cacheService, keySerializer),
	}
}

func (r *BunArticleRepository) Create(ctx context.Context, record *Article) (*Article, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunArticleRepository) Update(ctx context.Context, record *Article) (*Article, error) {
	updated, err := r.repo.Update(ctx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return nil, mapRepositoryError(err, "article", record.ID.String())
	}
	return updated, nil
}

func (r *BunArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "article", id.String())
	}
	return result, nil
}

func (r *BunArticleRepository) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "article", slug)
	}
	return result, nil
}

func (r *BunArticleRepository) List(ctx context.Context, opts ListOptions) ([]*Article, error) {
	opts = opts.Normalize()

	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return applyListFilters(q, opts)
		}),
	}
	if opts.Limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(opts.Limit, opts.Offset))
	}

	records, _, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return nil, fmt.Errorf("article repository list: %w", err)
	}
	return records, nil
}

func (r *BunArticleRepository) Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error {
	if r.db == nil {
		return fmt.Errorf("article repository: database not configured")
	}

	if !hardDelete {
		now := time.Now().UTC()
		result, err := r.db.NewUpdate().
			Model((*Article)(nil)).
			Set("deleted_at = ?", now).
			Where("?TableAlias.id = ?", id).
			Where("?TableAlias.deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("soft delete article: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("article delete rows affected: %w", err)
		}
		if affected == 0 {
			return &NotFoundError{Resource: "article", Key: id.String()}
		}
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ArticleRevision)(nil)).
			Where("?TableAlias.article_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete article revisions: %w", err)
		}

		result, err := tx.NewDelete().
			Model((*Article)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("article delete rows affected: %w", err)
		}
		if affected == 0 {
			return &NotFoundError{Resource: "article", Key: id.String()}
		}
		return nil
	})
}

func (r *BunArticleRepository) CreateRevision(ctx context.Context, revision *ArticleRevision) (*ArticleRevision, error) {
	created, err := r.revisions.Create(ctx, revision)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunArticleRepository) ListRevisions(ctx context.Context, articleID uuid.UUID) ([]*ArticleRevision, error) {
	records, _, err := r.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.article_id = ?", articleID).
				OrderExpr("?TableAlias.revision ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("article revision list: %w", err)
	}
	return records, nil
}

func (r *BunArticleRepository) GetRevision(ctx context.Context, articleID uuid.UUID, number int) (*ArticleRevision, error) {
	records, _, err := r.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.article_id = ?", articleID).
				Where("?TableAlias.revision = ?", number)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "article_revision", Key: fmt.Sprintf("%s:%d", articleID, number)}
	}
	return records[0], nil
}

func applyListFilters(q *bun.SelectQuery, opts ListOptions) *bun.SelectQuery {
	if !opts.IncludeDeleted {
		q = q.Where("?TableAlias.deleted_at IS NULL")
	}
	if opts.CollectionID != uuid.Nil {
		q = q.Where("?TableAlias.collection_id = ?", opts.CollectionID)
	}
	if opts.Status != "" {
		q = q.Where("?TableAlias.status = ?", opts.Status)
	}
	if opts.Category != "" {
		q = q.Where("?TableAlias.category = ?", opts.Category)
	}
	if opts.Series != "" {
		q = q.Where("?TableAlias.series = ?", opts.Series)
	}
	if opts.Author != "" {
		q = q.Where("?TableAlias.author = ?", opts.Author)
	}
	if opts.Tag != "" {
		// Tags persist as a JSON array; the cast keeps the match portable
		// between SQLite and Postgres.
		q = q.Where("CAST(?TableAlias.tags AS TEXT) LIKE ?", "%\""+opts.Tag+"\"%")
	}
	return applyListOrder(q, opts.OrderBy)
}

func applyListOrder(q *bun.SelectQuery, order Order) *bun.SelectQuery {
	switch order {
	case OrderWrittenAsc:
		return q.OrderExpr("?TableAlias.written_at ASC NULLS LAST")
	case OrderTitleAsc:
		return q.OrderExpr("?TableAlias.title ASC")
	case OrderUpdatedDesc:
		return q.OrderExpr("?TableAlias.updated_at DESC")
	default:
		return q.OrderExpr("?TableAlias.written_at DESC NULLS LAST")
	}
}

type BunCollectionRepository struct {
	repo repository.Repository[*Collection]
}

func NewBunCollectionRepository(db *bun.DB) *BunCollectionRepository {
	return NewBunCollectionRepositoryWithCache(db, nil, nil)
}

func NewBunCollectionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunCollectionRepository {
	base := NewCollectionRepository(db)
	return &BunCollectionRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunCollectionRepository) Create(ctx context.Context, record *Collection) (*Collection, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunCollectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Collection, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "collection", id.String())
	}
	return result, nil
}

func (r *BunCollectionRepository) GetByCode(ctx context.Context, code string) (*Collection, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "collection", code)
	}
	return result, nil
}

func (r *BunCollectionRepository) List(ctx context.Context) ([]*Collection, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
