package articles

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryArticleRepository is an in-memory implementation for scaffolding and tests.
type MemoryArticleRepository struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*Article
	slugIndex map[string]uuid.UUID
	revisions map[uuid.UUID][]*ArticleRevision
}

// NewMemoryArticleRepository creates an empty in-memory article repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		records:   make(map[uuid.UUID]*Article),
		slugIndex: make(map[string]uuid.UUID),
		revisions: make(map[uuid.UUID][]*ArticleRevision),
	}
}

func (m *MemoryArticleRepository) Create(_ context.Context, record *Article) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneArticle(record)
	m.records[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return cloneArticle(copied), nil
}

func (m *MemoryArticleRepository) Update(_ context.Context, record *Article) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: record.ID.String()}
	}
	delete(m.slugIndex, existing.Slug)

	copied := cloneArticle(record)
	m.records[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return cloneArticle(copied), nil
}

func (m *MemoryArticleRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return cloneArticle(rec), nil
}

func (m *MemoryArticleRepository) GetBySlug(_ context.Context, slug string) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: slug}
	}
	return cloneArticle(m.records[id]), nil
}

func (m *MemoryArticleRepository) List(_ context.Context, opts ListOptions) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	opts = opts.Normalize()

	out := make([]*Article, 0, len(m.records))
	for _, rec := range m.records {
		if matchesListOptions(rec, opts) {
			out = append(out, cloneArticle(rec))
		}
	}

	sortArticles(out, opts.OrderBy)

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []*Article{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *MemoryArticleRepository) Delete(_ context.Context, id uuid.UUID, hardDelete bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}

	if hardDelete {
		delete(m.slugIndex, rec.Slug)
		delete(m.records, id)
		delete(m.revisions, id)
		return nil
	}

	now := time.Now().UTC()
	rec.DeletedAt = &now
	return nil
}

func (m *MemoryArticleRepository) CreateRevision(_ context.Context, revision *ArticleRevision) (*ArticleRevision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneRevision(revision)
	m.revisions[copied.ArticleID] = append(m.revisions[copied.ArticleID], copied)
	return cloneRevision(copied), nil
}

func (m *MemoryArticleRepository) ListRevisions(_ context.Context, articleID uuid.UUID) ([]*ArticleRevision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.revisions[articleID]
	out := make([]*ArticleRevision, 0, len(stored))
	for _, revision := range stored {
		out = append(out, cloneRevision(revision))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revision < out[j].Revision })
	return out, nil
}

func (m *MemoryArticleRepository) GetRevision(_ context.Context, articleID uuid.UUID, number int) (*ArticleRevision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, revision := range m.revisions[articleID] {
		if revision.Revision == number {
			return cloneRevision(revision), nil
		}
	}
	return nil, &NotFoundError{Resource: "article_revision", Key: articleID.String()}
}

func matchesListOptions(rec *Article, opts ListOptions) bool {
	if rec == nil {
		return false
	}
	if !opts.IncludeDeleted && rec.DeletedAt != nil {
		return false
	}
	if opts.CollectionID != uuid.Nil && rec.CollectionID != opts.CollectionID {
		return false
	}
	if opts.Status != "" && rec.Status != opts.Status {
		return false
	}
	if opts.Category != "" && (rec.Category == nil || *rec.Category != opts.Category) {
		return false
	}
	if opts.Series != "" && (rec.Series == nil || *rec.Series != opts.Series) {
		return false
	}
	if opts.Author != "" && (rec.Author == nil || *rec.Author != opts.Author) {
		return false
	}
	if opts.Tag != "" {
		found := false
		for _, tag := range rec.Tags {
			if strings.EqualFold(tag, opts.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortArticles(records []*Article, order Order) {
	switch order {
	case OrderWrittenAsc:
		sort.SliceStable(records, func(i, j int) bool {
			return timeOrZero(records[i].WrittenAt).Before(timeOrZero(records[j].WrittenAt))
		})
	case OrderTitleAsc:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Title < records[j].Title
		})
	case OrderUpdatedDesc:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return timeOrZero(records[i].WrittenAt).After(timeOrZero(records[j].WrittenAt))
		})
	}
}

func timeOrZero(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

func cloneArticle(src *Article) *Article {
	if src == nil {
		return nil
	}

	copied := *src
	copied.Tags = append([]string(nil), src.Tags...)
	copied.Metadata = cloneMap(src.Metadata)
	copied.Summary = cloneStringPtr(src.Summary)
	copied.Template = cloneStringPtr(src.Template)
	copied.Category = cloneStringPtr(src.Category)
	copied.Series = cloneStringPtr(src.Series)
	copied.Author = cloneStringPtr(src.Author)
	copied.SourcePath = cloneStringPtr(src.SourcePath)
	copied.SourceChecksum = cloneStringPtr(src.SourceChecksum)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	copied.WrittenAt = cloneTimePtr(src.WrittenAt)
	copied.DeletedAt = cloneTimePtr(src.DeletedAt)
	copied.UpdatedBy = cloneUUIDPtr(src.UpdatedBy)
	copied.Revisions = nil
	copied.Collection = nil
	return &copied
}

func cloneRevision(src *ArticleRevision) *ArticleRevision {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Snapshot.Tags = append([]string(nil), src.Snapshot.Tags...)
	copied.Snapshot.Frontmatter = cloneMap(src.Snapshot.Frontmatter)
	copied.Snapshot.Metadata = cloneMap(src.Snapshot.Metadata)
	copied.Article = nil
	return &copied
}

// MemoryCollectionRepository stores collections by code.
type MemoryCollectionRepository struct {
	mu          sync.RWMutex
	collections map[uuid.UUID]*Collection
	codeIndex   map[string]uuid.UUID
}

// NewMemoryCollectionRepository constructs the repository.
func NewMemoryCollectionRepository() *MemoryCollectionRepository {
	return &MemoryCollectionRepository{
		collections: make(map[uuid.UUID]*Collection),
		codeIndex:   make(map[string]uuid.UUID),
	}
}

func (m *MemoryCollectionRepository) Create(_ context.Context, record *Collection) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	copied.Metadata = cloneMap(record.Metadata)
	m.collections[copied.ID] = &copied
	m.codeIndex[strings.ToLower(copied.Code)] = copied.ID

	out := copied
	return &out, nil
}

func (m *MemoryCollectionRepository) GetByID(_ context.Context, id uuid.UUID) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.collections[id]
	if !ok {
		return nil, &NotFoundError{Resource: "collection", Key: id.String()}
	}
	copied := *record
	return &copied, nil
}

func (m *MemoryCollectionRepository) GetByCode(_ context.Context, code string) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.codeIndex[strings.ToLower(code)]
	if !ok {
		return nil, &NotFoundError{Resource: "collection", Key: code}
	}
	copied := *m.collections[id]
	return &copied, nil
}

func (m *MemoryCollectionRepository) List(_ context.Context) ([]*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Collection, 0, len(m.collections))
	for _, record := range m.collections {
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func cloneUUIDPtr(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
