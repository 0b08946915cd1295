package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestImportCreatesArticle(t *testing.T) {
	store := newStubArticleService()
	svc := newImportService(t, store)

	doc, err := svc.Load(context.Background(), "tutorials/getting-started.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	result, err := svc.Import(context.Background(), doc, interfaces.ImportOptions{AuthorID: uuid.New()})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(result.CreatedArticleIDs) != 1 {
		t.Fatalf("expected created article, got %#v", result)
	}

	record := store.bySlug["getting-started"]
	if record == nil {
		t.Fatalf("article not stored")
	}
	if record.Title != "Getting Started" {
		t.Fatalf("title mismatch: %q", record.Title)
	}
	if record.SourceChecksum == nil || *record.SourceChecksum == "" {
		t.Fatalf("expected source checksum stored")
	}
	if record.Series == nil || *record.Series != "fundamentals" || record.SeriesPart != 1 {
		t.Fatalf("series not carried over: %#v", record)
	}
	if record.Status != articles.StatusPublished {
		t.Fatalf("expected published status, got %s", record.Status)
	}
}

func TestImportSkipsUnchangedDocument(t *testing.T) {
	store := newStubArticleService()
	svc := newImportService(t, store)

	doc, err := svc.Load(context.Background(), "tutorials/getting-started.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := svc.Import(context.Background(), doc, interfaces.ImportOptions{}); err != nil {
		t.Fatalf("initial import: %v", err)
	}

	result, err := svc.Import(context.Background(), doc, interfaces.ImportOptions{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(result.SkippedArticleIDs) != 1 {
		t.Fatalf("expected skip on identical checksum, got %#v", result)
	}
	if store.updates != 0 {
		t.Fatalf("expected no updates, got %d", store.updates)
	}
}

func TestImportUpdatesModifiedDocument(t *testing.T) {
	store := newStubArticleService()
	svc := newImportService(t, store)

	doc, err := svc.Load(context.Background(), "tutorials/getting-started.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := svc.Import(context.Background(), doc, interfaces.ImportOptions{}); err != nil {
		t.Fatalf("initial import: %v", err)
	}

	clone := cloneDocument(doc)
	clone.Body = []byte("# Updated\n\nNew body")
	clone.BodyHTML = []byte("<h1>Updated</h1>\n<p>New body</p>\n")
	sum := sha256.Sum256(clone.Body)
	clone.Checksum = sum[:]

	result, err := svc.Import(context.Background(), clone, interfaces.ImportOptions{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(result.UpdatedArticleIDs) != 1 {
		t.Fatalf("expected updated article, got %#v", result)
	}

	record := store.bySlug["getting-started"]
	if record == nil {
		t.Fatalf("article missing after update")
	}
	if record.SourceChecksum == nil || *record.SourceChecksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("checksum not updated")
	}
	if record.Body != "# Updated\n\nNew body" {
		t.Fatalf("body not updated: %q", record.Body)
	}
}

func TestImportDryRun(t *testing.T) {
	store := newStubArticleService()
	svc := newImportService(t, store)

	doc, err := svc.Load(context.Background(), "design/principles.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	result, err := svc.Import(context.Background(), doc, interfaces.ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(store.bySlug) != 0 {
		t.Fatalf("dry run must not persist, got %#v", store.bySlug)
	}
	if len(result.WouldCreateSlugs) != 1 || result.WouldCreateSlugs[0] != "design-principles" {
		t.Fatalf("expected would-create report for new document, got %#v", result)
	}
	if len(result.CreatedArticleIDs) != 0 || len(result.SkippedArticleIDs) != 0 {
		t.Fatalf("dry run of a new document must not report creates or skips, got %#v", result)
	}
}

func TestSyncDeletesOrphans(t *testing.T) {
	store := newStubArticleService()
	svc := newImportService(t, store)

	if _, err := svc.ImportDirectory(context.Background(), ".", interfaces.ImportOptions{}); err != nil {
		t.Fatalf("initial import: %v", err)
	}

	orphanPath := "tutorials/removed.md"
	store.seed(&articles.Article{
		ID:         uuid.New(),
		Slug:       "removed-article",
		Title:      "Removed",
		Status:     articles.StatusPublished,
		SourcePath: &orphanPath,
	})

	manual := &articles.Article{
		ID:     uuid.New(),
		Slug:   "hand-authored",
		Title:  "Hand Authored",
		Status: articles.StatusDraft,
	}
	store.seed(manual)

	result, err := svc.Sync(context.Background(), ".", interfaces.SyncOptions{
		DeleteOrphaned: true,
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if result.Deleted != 1 {
		t.Fatalf("expected 1 orphan deleted, got %d", result.Deleted)
	}
	if _, ok := store.bySlug["removed-article"]; ok {
		t.Fatalf("orphan survived sync")
	}
	if _, ok := store.bySlug["hand-authored"]; !ok {
		t.Fatalf("article without source path must not be pruned")
	}
}

func TestDocumentSlugFallsBackToFileName(t *testing.T) {
	doc := &interfaces.Document{FilePath: "tutorials/My First Post.md"}

	slug, err := DocumentSlug(doc)
	if err != nil {
		t.Fatalf("DocumentSlug: %v", err)
	}
	if slug != "my-first-post" {
		t.Fatalf("expected my-first-post, got %q", slug)
	}
}

func newImportService(tb testing.TB, store *stubArticleService, opts ...ServiceOption) *Service {
	tb.Helper()

	importer := NewImporter(ImporterConfig{
		Articles:    store,
		Collections: newStubCollectionService(),
	})

	cfg := Config{
		BasePath:          filepath.Join("testdata", "corpus"),
		DefaultCollection: "tutorials",
		Collections:       []string{"tutorials", "design"},
		Recursive:         true,
	}

	svc, err := NewService(cfg, nil, append(opts, WithImporter(importer))...)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func cloneDocument(doc *interfaces.Document) *interfaces.Document {
	clone := *doc
	clone.Body = append([]byte(nil), doc.Body...)
	clone.BodyHTML = append([]byte(nil), doc.BodyHTML...)
	clone.Checksum = append([]byte(nil), doc.Checksum...)
	return &clone
}

type stubArticleService struct {
	bySlug  map[string]*articles.Article
	updates int
}

func newStubArticleService() *stubArticleService {
	return &stubArticleService{
		bySlug: map[string]*articles.Article{},
	}
}

func (s *stubArticleService) seed(record *articles.Article) {
	s.bySlug[record.Slug] = record
}

func (s *stubArticleService) Create(_ context.Context, req articles.CreateArticleRequest) (*articles.Article, error) {
	record := &articles.Article{
		ID:             uuid.New(),
		CollectionID:   req.CollectionID,
		Slug:           req.Slug,
		Title:          req.Title,
		Summary:        req.Summary,
		Status:         req.Status,
		Template:       req.Template,
		Category:       req.Category,
		Series:         req.Series,
		SeriesPart:     req.SeriesPart,
		Author:         req.Author,
		Tags:           req.Tags,
		Body:           req.Body,
		BodyHTML:       req.BodyHTML,
		WordCount:      req.WordCount,
		ReadingSeconds: req.ReadingSeconds,
		SourcePath:     req.SourcePath,
		SourceChecksum: req.SourceChecksum,
		WrittenAt:      req.WrittenAt,
		Metadata:       req.Metadata,
	}
	s.bySlug[record.Slug] = record
	return record, nil
}

func (s *stubArticleService) Update(_ context.Context, req articles.UpdateArticleRequest) (*articles.Article, error) {
	for _, record := range s.bySlug {
		if record.ID != req.ID {
			continue
		}
		record.Title = req.Title
		record.Summary = req.Summary
		record.Status = req.Status
		record.Template = req.Template
		record.Category = req.Category
		record.Series = req.Series
		record.SeriesPart = req.SeriesPart
		record.Author = req.Author
		record.Tags = req.Tags
		record.Body = req.Body
		record.BodyHTML = req.BodyHTML
		record.WordCount = req.WordCount
		record.ReadingSeconds = req.ReadingSeconds
		record.SourcePath = req.SourcePath
		record.SourceChecksum = req.SourceChecksum
		record.WrittenAt = req.WrittenAt
		record.Metadata = req.Metadata
		s.updates++
		return record, nil
	}
	return nil, &articles.NotFoundError{Resource: "article", Key: req.ID.String()}
}

func (s *stubArticleService) Get(_ context.Context, id uuid.UUID) (*articles.Article, error) {
	for _, record := range s.bySlug {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, &articles.NotFoundError{Resource: "article", Key: id.String()}
}

func (s *stubArticleService) GetBySlug(_ context.Context, slug string) (*articles.Article, error) {
	record, ok := s.bySlug[slug]
	if !ok {
		return nil, &articles.NotFoundError{Resource: "article", Key: slug}
	}
	return record, nil
}

func (s *stubArticleService) List(_ context.Context, _ articles.ListOptions) ([]*articles.Article, error) {
	out := make([]*articles.Article, 0, len(s.bySlug))
	for _, record := range s.bySlug {
		out = append(out, record)
	}
	return out, nil
}

func (s *stubArticleService) Delete(_ context.Context, req articles.DeleteArticleRequest) error {
	for slug, record := range s.bySlug {
		if record.ID == req.ID {
			delete(s.bySlug, slug)
			return nil
		}
	}
	return &articles.NotFoundError{Resource: "article", Key: req.ID.String()}
}

func (s *stubArticleService) Publish(_ context.Context, req articles.PublishArticleRequest) (*articles.Article, error) {
	return s.Get(context.Background(), req.ID)
}

func (s *stubArticleService) Unpublish(_ context.Context, id uuid.UUID, _ uuid.UUID) (*articles.Article, error) {
	return s.Get(context.Background(), id)
}

func (s *stubArticleService) ListRevisions(context.Context, uuid.UUID) ([]*articles.ArticleRevision, error) {
	return nil, nil
}

func (s *stubArticleService) RestoreRevision(_ context.Context, req articles.RestoreRevisionRequest) (*articles.Article, error) {
	return s.Get(context.Background(), req.ArticleID)
}

type stubCollectionService struct {
	byCode map[string]*articles.Collection
}

func newStubCollectionService() *stubCollectionService {
	return &stubCollectionService{byCode: map[string]*articles.Collection{}}
}

func (s *stubCollectionService) Ensure(_ context.Context, code, name string) (*articles.Collection, error) {
	if collection, ok := s.byCode[code]; ok {
		return collection, nil
	}
	collection := &articles.Collection{
		ID:   uuid.New(),
		Code: code,
		Name: name,
	}
	s.byCode[code] = collection
	return collection, nil
}

func (s *stubCollectionService) Get(_ context.Context, id uuid.UUID) (*articles.Collection, error) {
	for _, collection := range s.byCode {
		if collection.ID == id {
			return collection, nil
		}
	}
	return nil, &articles.NotFoundError{Resource: "collection", Key: id.String()}
}

func (s *stubCollectionService) GetByCode(_ context.Context, code string) (*articles.Collection, error) {
	if collection, ok := s.byCode[code]; ok {
		return collection, nil
	}
	return nil, &articles.NotFoundError{Resource: "collection", Key: code}
}

func (s *stubCollectionService) List(context.Context) ([]*articles.Collection, error) {
	out := make([]*articles.Collection, 0, len(s.byCode))
	for _, collection := range s.byCode {
		out = append(out, collection)
	}
	return out, nil
}
