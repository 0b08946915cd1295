package site

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	internalarticles "github.com/goliatone/go-press/internal/articles"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/pkg/interfaces"
)

type fixture struct {
	svc        Service
	storage    *memStorage
	renderer   *stubRenderer
	articles   *internalarticles.MemoryArticleRepository
	collection uuid.UUID
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	articleStore := internalarticles.NewMemoryArticleRepository()
	collectionStore := internalarticles.NewMemoryCollectionRepository()

	collection, err := collectionStore.Create(context.Background(), &internalarticles.Collection{
		ID:   uuid.New(),
		Code: "tutorials",
		Name: "Tutorials",
	})
	if err != nil {
		t.Fatalf("seed collection: %v", err)
	}

	idx := index.NewService(index.Config{}, index.Dependencies{
		Articles:    internalarticles.NewService(articleStore, collectionStore),
		Collections: internalarticles.NewCollectionService(collectionStore),
	})

	storage := newMemStorage()
	renderer := &stubRenderer{}
	svc := NewService(cfg, Dependencies{
		Index:    idx,
		Renderer: renderer,
		Storage:  storage,
	})

	return &fixture{
		svc:        svc,
		storage:    storage,
		renderer:   renderer,
		articles:   articleStore,
		collection: collection.ID,
	}
}

func (f *fixture) publish(t *testing.T, slug string, tags []string, written time.Time) {
	t.Helper()

	record := &internalarticles.Article{
		ID:           uuid.New(),
		CollectionID: f.collection,
		Slug:         slug,
		Title:        slug,
		Status:       internalarticles.StatusPublished,
		Tags:         tags,
		Body:         "body",
		BodyHTML:     "<p>body</p>",
		WrittenAt:    &written,
		UpdatedAt:    written,
	}
	if _, err := f.articles.Create(context.Background(), record); err != nil {
		t.Fatalf("seed article %s: %v", slug, err)
	}
}

func baseConfig() Config {
	return Config{
		OutputDir:       "public",
		BaseURL:         "https://example.test",
		SiteName:        "Field Notes",
		GenerateSitemap: true,
		GenerateRobots:  true,
		GenerateFeeds:   true,
		Workers:         2,
	}
}

func TestBuildRendersCorpus(t *testing.T) {
	f := newFixture(t, baseConfig())
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.publish(t, "intro", []string{"go"}, base)
	f.publish(t, "channels", []string{"go", "concurrency"}, base.AddDate(0, 1, 0))

	result, err := f.svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// home + 2 articles + collection + 2 tags + archive
	if result.PagesBuilt != 7 {
		t.Fatalf("expected 7 pages built, got %d", result.PagesBuilt)
	}
	for _, path := range []string{
		"public/index.html",
		"public/tutorials/index.html",
		"public/tutorials/intro/index.html",
		"public/tutorials/channels/index.html",
		"public/tags/go/index.html",
		"public/tags/concurrency/index.html",
		"public/archive/index.html",
		"public/sitemap.xml",
		"public/robots.txt",
		"public/feed.xml",
		"public/feed.atom.xml",
		"public/feeds/tutorials.rss.xml",
		"public/.site-manifest.json",
	} {
		if !f.storage.has(path) {
			t.Fatalf("expected output %s, have %v", path, f.storage.paths())
		}
	}
	if result.FeedsBuilt != 4 {
		t.Fatalf("expected 4 feeds, got %d", result.FeedsBuilt)
	}
}

func TestBuildIncrementalSkipsUnchangedPages(t *testing.T) {
	cfg := baseConfig()
	cfg.Incremental = true
	f := newFixture(t, cfg)
	f.publish(t, "intro", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	first, err := f.svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if first.PagesSkipped != 0 {
		t.Fatalf("first build skipped %d pages", first.PagesSkipped)
	}

	second, err := f.svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesBuilt != 0 {
		t.Fatalf("expected no pages rebuilt, got %d", second.PagesBuilt)
	}
	if second.PagesSkipped != first.PagesBuilt {
		t.Fatalf("expected %d skips, got %d", first.PagesBuilt, second.PagesSkipped)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.publish(t, "intro", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	result, err := f.svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatal("expected pages rendered during dry run")
	}
	if len(f.storage.paths()) != 0 {
		t.Fatalf("dry run wrote files: %v", f.storage.paths())
	}
}

func TestBuildSlugFilter(t *testing.T) {
	f := newFixture(t, baseConfig())
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.publish(t, "intro", nil, base)
	f.publish(t, "channels", nil, base.AddDate(0, 1, 0))

	result, err := f.svc.Build(context.Background(), BuildOptions{Slugs: []string{"intro"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Fatalf("expected 1 page, got %d", result.PagesBuilt)
	}
	if !f.storage.has("public/tutorials/intro/index.html") {
		t.Fatalf("expected filtered article output, have %v", f.storage.paths())
	}
	if f.storage.has("public/tutorials/channels/index.html") {
		t.Fatal("unexpected output for excluded slug")
	}
}

func TestBuildHonoursCancelledContext(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.publish(t, "intro", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.svc.Build(ctx, BuildOptions{}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestCleanRemovesOutput(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.publish(t, "intro", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if _, err := f.svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := f.svc.Clean(context.Background()); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(f.storage.paths()) != 0 {
		t.Fatalf("expected empty output, have %v", f.storage.paths())
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != ErrServiceDisabled {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); err != ErrServiceDisabled {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestBuildOutputPath(t *testing.T) {
	cases := map[string]string{
		"/":                    "index.html",
		"":                     "index.html",
		"/tutorials/":          "tutorials/index.html",
		"/tutorials/intro/":    "tutorials/intro/index.html",
		"tutorials/intro":      "tutorials/intro/index.html",
		"  /tags/go/  ":        "tags/go/index.html",
		"/series/fundamentals": "series/fundamentals/index.html",
	}
	for route, want := range cases {
		if got := buildOutputPath(route); got != want {
			t.Fatalf("buildOutputPath(%q) = %q, want %q", route, got, want)
		}
	}
}

func TestEffectiveWorkerCountClamps(t *testing.T) {
	svc := &service{cfg: Config{Workers: 8}}
	if got := svc.effectiveWorkerCount(3); got != 3 {
		t.Fatalf("expected clamp to page count, got %d", got)
	}
	svc.cfg.Workers = 0
	if got := svc.effectiveWorkerCount(100); got < 1 {
		t.Fatalf("expected at least one worker, got %d", got)
	}
}

func TestSitemapAndRobotsWellFormed(t *testing.T) {
	pages := []RenderedPage{
		{Route: "/tutorials/intro/", Metadata: DependencyMetadata{LastModified: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		{Route: "/"},
	}
	sitemap := buildSitemap("https://example.test", pages, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(sitemap, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Fatalf("missing urlset: %s", sitemap)
	}
	if !strings.Contains(sitemap, "<loc>https://example.test/tutorials/intro/</loc>") {
		t.Fatalf("missing article entry: %s", sitemap)
	}

	robots := buildRobots("https://example.test", true)
	if !strings.Contains(robots, "Sitemap: https://example.test/sitemap.xml") {
		t.Fatalf("missing sitemap reference: %s", robots)
	}
}

type stubRenderer struct {
	mu    sync.Mutex
	calls []string
}

func (r *stubRenderer) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()

	title := ""
	if ctx, ok := data.(map[string]any); ok {
		title, _ = ctx["title"].(string)
	}
	return fmt.Sprintf("<html>%s:%s</html>", name, title), nil
}

func (r *stubRenderer) RenderString(content string, _ any, _ ...io.Writer) (string, error) {
	return content, nil
}

func (r *stubRenderer) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (r *stubRenderer) GlobalContext(any) error { return nil }

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *memStorage) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for path := range m.files {
		out = append(out, path)
	}
	return out
}

func (m *memStorage) Query(_ context.Context, op string, args ...any) (interfaces.Rows, error) {
	if op != storageOpRead || len(args) == 0 {
		return nil, nil
	}
	target, _ := args[0].(string)
	m.mu.Lock()
	data, ok := m.files[target]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &fileRows{data: data}, nil
}

func (m *memStorage) Exec(_ context.Context, op string, args ...any) (interfaces.Result, error) {
	switch op {
	case storageOpEnsureDir:
		return emptyResult{}, nil
	case storageOpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("write requires path and reader")
		}
		target, _ := args[0].(string)
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("write expects io.Reader content")
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return emptyResult{}, err
		}
		m.mu.Lock()
		m.files[target] = data
		m.mu.Unlock()
		return emptyResult{}, nil
	case storageOpRemove:
		target, _ := args[0].(string)
		m.mu.Lock()
		for path := range m.files {
			if path == target || strings.HasPrefix(path, target+"/") {
				delete(m.files, path)
			}
		}
		m.mu.Unlock()
		return emptyResult{}, nil
	default:
		return emptyResult{}, nil
	}
}

func (m *memStorage) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&memTx{storage: m})
}

type memTx struct {
	storage *memStorage
}

func (tx *memTx) Query(ctx context.Context, op string, args ...any) (interfaces.Rows, error) {
	return tx.storage.Query(ctx, op, args...)
}

func (tx *memTx) Exec(ctx context.Context, op string, args ...any) (interfaces.Result, error) {
	return tx.storage.Exec(ctx, op, args...)
}

func (tx *memTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return fmt.Errorf("nested transactions not supported")
}

func (tx *memTx) Commit() error { return nil }

func (tx *memTx) Rollback() error { return nil }
