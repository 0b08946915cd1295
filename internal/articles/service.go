package articles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/validation"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// ArticleRepository abstracts storage operations for article entities.
type ArticleRepository interface {
	Create(ctx context.Context, record *Article) (*Article, error)
	Update(ctx context.Context, record *Article) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context, opts ListOptions) ([]*Article, error)
	Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error
	CreateRevision(ctx context.Context, revision *ArticleRevision) (*ArticleRevision, error)
	ListRevisions(ctx context.Context, articleID uuid.UUID) ([]*ArticleRevision, error)
	GetRevision(ctx context.Context, articleID uuid.UUID, number int) (*ArticleRevision, error)
}

// CollectionRepository abstracts storage operations for collections.
type CollectionRepository interface {
	Create(ctx context.Context, record *Collection) (*Collection, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	GetByCode(ctx context.Context, code string) (*Collection, error)
	List(ctx context.Context) ([]*Collection, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithVersioningEnabled toggles the revision workflow for the service.
func WithVersioningEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.versioningEnabled = enabled
	}
}

// WithLogger supplies the logger used for lifecycle events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// service implements Service.
type service struct {
	repo              ArticleRepository
	collections       CollectionRepository
	now               func() time.Time
	id                IDGenerator
	versioningEnabled bool
	logger            interfaces.Logger
}

// NewService constructs an article service with the required dependencies.
func NewService(repo ArticleRepository, collections CollectionRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:        repo,
		collections: collections,
		now:         time.Now,
		id:          uuid.New,
		logger:      logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create orchestrates creation of a new article.
func (s *service) Create(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	if req.CollectionID == uuid.Nil {
		return nil, ErrCollectionRequired
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if !articles.IsValidSlug(slug) {
		return nil, ErrSlugInvalid
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrBodyRequired
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return nil, ErrStatusInvalid
	}

	if _, err := s.collections.GetByID(ctx, req.CollectionID); err != nil {
		return nil, ErrCollectionRequired
	}

	if existing, err := s.repo.GetBySlug(ctx, slug); err == nil && existing != nil {
		return nil, ErrSlugExists
	} else if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	now := s.now()
	record := &Article{
		ID:              s.id(),
		CollectionID:    req.CollectionID,
		Slug:            slug,
		Title:           req.Title,
		Summary:         req.Summary,
		Status:          status,
		Template:        req.Template,
		Category:        req.Category,
		Series:          req.Series,
		SeriesPart:      req.SeriesPart,
		Author:          req.Author,
		Tags:            append([]string(nil), req.Tags...),
		Body:            req.Body,
		BodyHTML:        req.BodyHTML,
		WordCount:       req.WordCount,
		ReadingSeconds:  req.ReadingSeconds,
		SourcePath:      req.SourcePath,
		SourceChecksum:  req.SourceChecksum,
		Metadata:        cloneMap(req.Metadata),
		CurrentRevision: 1,
		WrittenAt:       cloneTimePtr(req.WrittenAt),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == StatusPublished {
		published := now
		record.PublishedAt = &published
	}
	if req.CreatedBy != uuid.Nil {
		createdBy := req.CreatedBy
		record.UpdatedBy = &createdBy
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if s.versioningEnabled {
		if err := s.snapshotRevision(ctx, created, req.CreatedBy); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("articles.created", "slug", created.Slug, "article_id", created.ID)
	return created, nil
}

// Update applies mutable fields to an existing article, recording a revision
// when versioning is enabled.
func (s *service) Update(ctx context.Context, req UpdateArticleRequest) (*Article, error) {
	if req.ID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrBodyRequired
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return nil, ErrStatusInvalid
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if s.versioningEnabled && req.BaseRevision > 0 && req.BaseRevision != record.CurrentRevision {
		return nil, ErrRevisionConflict
	}

	now := s.now()

	wasPublished := record.Status == StatusPublished
	record.Title = req.Title
	record.Summary = req.Summary
	record.Status = status
	record.Template = req.Template
	record.Category = req.Category
	record.Series = req.Series
	record.SeriesPart = req.SeriesPart
	record.Author = req.Author
	record.Tags = append([]string(nil), req.Tags...)
	record.Body = req.Body
	record.BodyHTML = req.BodyHTML
	record.WordCount = req.WordCount
	record.ReadingSeconds = req.ReadingSeconds
	record.SourcePath = req.SourcePath
	record.SourceChecksum = req.SourceChecksum
	record.Metadata = cloneMap(req.Metadata)
	record.WrittenAt = cloneTimePtr(req.WrittenAt)
	record.UpdatedAt = now
	if req.UpdatedBy != uuid.Nil {
		updatedBy := req.UpdatedBy
		record.UpdatedBy = &updatedBy
	}

	switch {
	case status == StatusPublished && !wasPublished:
		published := now
		record.PublishedAt = &published
	case status != StatusPublished:
		record.PublishedAt = nil
	}

	if s.versioningEnabled {
		record.CurrentRevision++
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	if s.versioningEnabled {
		if err := s.snapshotRevision(ctx, updated, req.UpdatedBy); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("articles.updated", "slug", updated.Slug, "article_id", updated.ID, "revision", updated.CurrentRevision)
	return updated, nil
}

// Get fetches an article by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Article, error) {
	if id == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

// GetBySlug fetches an article by slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	return s.repo.GetBySlug(ctx, slug)
}

// List returns articles matching the supplied filters.
func (s *service) List(ctx context.Context, opts ListOptions) ([]*Article, error) {
	opts = opts.Normalize()

	if opts.CollectionCode != "" && opts.CollectionID == uuid.Nil {
		collection, err := s.collections.GetByCode(ctx, opts.CollectionCode)
		if err != nil {
			return nil, err
		}
		opts.CollectionID = collection.ID
	}

	return s.repo.List(ctx, opts)
}

// Delete removes an article, soft deleting unless a hard delete is requested.
func (s *service) Delete(ctx context.Context, req DeleteArticleRequest) error {
	if req.ID == uuid.Nil {
		return ErrArticleIDRequired
	}
	if err := s.repo.Delete(ctx, req.ID, req.HardDelete); err != nil {
		return err
	}
	s.logger.Debug("articles.deleted", "article_id", req.ID, "hard", req.HardDelete)
	return nil
}

// Publish transitions an article into the published state.
func (s *service) Publish(ctx context.Context, req PublishArticleRequest) (*Article, error) {
	if req.ID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusPublished {
		return nil, ErrAlreadyPublished
	}

	publishedAt := s.now()
	if !req.PublishedAt.IsZero() {
		publishedAt = req.PublishedAt
	}

	record.Status = StatusPublished
	record.PublishedAt = &publishedAt
	record.UpdatedAt = s.now()
	if req.PublishedBy != uuid.Nil {
		publishedBy := req.PublishedBy
		record.UpdatedBy = &publishedBy
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("articles.published", "slug", updated.Slug, "article_id", updated.ID)
	return updated, nil
}

// Unpublish moves a published article back to draft.
func (s *service) Unpublish(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*Article, error) {
	if id == uuid.Nil {
		return nil, ErrArticleIDRequired
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusPublished {
		return nil, ErrNotPublished
	}

	record.Status = StatusDraft
	record.PublishedAt = nil
	record.UpdatedAt = s.now()
	if updatedBy != uuid.Nil {
		actor := updatedBy
		record.UpdatedBy = &actor
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("articles.unpublished", "slug", updated.Slug, "article_id", updated.ID)
	return updated, nil
}

// ListRevisions returns the stored revisions for an article, oldest first.
func (s *service) ListRevisions(ctx context.Context, articleID uuid.UUID) ([]*ArticleRevision, error) {
	if !s.versioningEnabled {
		return nil, ErrVersioningDisabled
	}
	if articleID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	return s.repo.ListRevisions(ctx, articleID)
}

// RestoreRevision rolls an article back to a stored revision by applying its
// snapshot as a new update.
func (s *service) RestoreRevision(ctx context.Context, req RestoreRevisionRequest) (*Article, error) {
	if !s.versioningEnabled {
		return nil, ErrVersioningDisabled
	}
	if req.ArticleID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	if req.Revision <= 0 {
		return nil, ErrRevisionRequired
	}

	revision, err := s.repo.GetRevision(ctx, req.ArticleID, req.Revision)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, req.ArticleID)
	if err != nil {
		return nil, err
	}

	snapshot := revision.Snapshot
	return s.Update(ctx, UpdateArticleRequest{
		ID:             req.ArticleID,
		Title:          snapshot.Title,
		Summary:        snapshot.Summary,
		Status:         snapshot.Status,
		Template:       record.Template,
		Category:       record.Category,
		Series:         record.Series,
		SeriesPart:     record.SeriesPart,
		Author:         record.Author,
		Tags:           append([]string(nil), snapshot.Tags...),
		Body:           snapshot.Body,
		WordCount:      record.WordCount,
		ReadingSeconds: record.ReadingSeconds,
		SourcePath:     record.SourcePath,
		SourceChecksum: record.SourceChecksum,
		WrittenAt:      record.WrittenAt,
		Metadata:       cloneMap(snapshot.Metadata),
		UpdatedBy:      req.RestoredBy,
	})
}

func (s *service) snapshotRevision(ctx context.Context, record *Article, actor uuid.UUID) error {
	snapshot := RevisionSnapshot{
		Title:    record.Title,
		Summary:  record.Summary,
		Status:   record.Status,
		Body:     record.Body,
		Tags:     append([]string(nil), record.Tags...),
		Metadata: cloneMap(record.Metadata),
	}

	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	revision := &ArticleRevision{
		ID:        s.id(),
		ArticleID: record.ID,
		Revision:  record.CurrentRevision,
		Snapshot:  snapshot,
		CreatedAt: s.now(),
	}
	if actor != uuid.Nil {
		createdBy := actor
		revision.CreatedBy = &createdBy
	}

	if _, err := s.repo.CreateRevision(ctx, revision); err != nil {
		return fmt.Errorf("articles: store revision %d: %w", revision.Revision, err)
	}
	return nil
}

func validateSnapshot(snapshot RevisionSnapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := validation.ValidatePayload(RevisionSnapshotSchema, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return nil
}

// collectionService implements CollectionService.
type collectionService struct {
	repo CollectionRepository
	now  func() time.Time
	id   IDGenerator
}

// CollectionServiceOption configures the collection service.
type CollectionServiceOption func(*collectionService)

// WithCollectionClock overrides the clock used to stamp collections.
func WithCollectionClock(clock func() time.Time) CollectionServiceOption {
	return func(s *collectionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithCollectionIDGenerator overrides the identifier generator.
func WithCollectionIDGenerator(generator IDGenerator) CollectionServiceOption {
	return func(s *collectionService) {
		if generator != nil {
			s.id = generator
		}
	}
}

// NewCollectionService constructs a collection service.
func NewCollectionService(repo CollectionRepository, opts ...CollectionServiceOption) CollectionService {
	s := &collectionService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure returns the collection with the given code, creating it when missing.
func (s *collectionService) Ensure(ctx context.Context, code, name string) (*Collection, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCollectionRequired
	}

	existing, err := s.repo.GetByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = code
	}

	// Collection IDs are stable functions of the code so repeated imports of
	// the same corpus reference identical records across stores.
	id := identity.CollectionUUID(code)
	if s.id != nil {
		id = s.id()
	}

	now := s.now()
	return s.repo.Create(ctx, &Collection{
		ID:        id,
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *collectionService) Get(ctx context.Context, id uuid.UUID) (*Collection, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *collectionService) GetByCode(ctx context.Context, code string) (*Collection, error) {
	return s.repo.GetByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
}

func (s *collectionService) List(ctx context.Context) ([]*Collection, error) {
	return s.repo.List(ctx)
}
