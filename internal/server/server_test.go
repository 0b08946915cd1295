package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-press/articles"
	articlestore "github.com/goliatone/go-press/internal/articles"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/server"
	"github.com/goliatone/go-press/internal/site"
)

func seedArticles(t *testing.T) (articles.Service, articles.CollectionService) {
	t.Helper()

	collectionRepo := articlestore.NewMemoryCollectionRepository()
	collections := articlestore.NewCollectionService(collectionRepo)
	service := articlestore.NewService(articlestore.NewMemoryArticleRepository(), collectionRepo)

	ctx := context.Background()
	collection, err := collections.Ensure(ctx, "tutorials", "Tutorials")
	if err != nil {
		t.Fatalf("ensure collection: %v", err)
	}

	written := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	series := "Go Basics"
	for _, req := range []articles.CreateArticleRequest{
		{
			CollectionID: collection.ID,
			Slug:         "getting-started",
			Title:        "Getting Started",
			Status:       articles.StatusPublished,
			Tags:         []string{"go"},
			Body:         "Install the toolchain.",
			BodyHTML:     "<p>Install the toolchain.</p>",
			WrittenAt:    &written,
		},
		{
			CollectionID: collection.ID,
			Slug:         "channels",
			Title:        "Channels",
			Status:       articles.StatusPublished,
			Tags:         []string{"go", "concurrency"},
			Series:       &series,
			SeriesPart:   1,
			Body:         "Channels synchronise.",
			WrittenAt:    &written,
		},
	} {
		if _, err := service.Create(ctx, req); err != nil {
			t.Fatalf("create article %s: %v", req.Slug, err)
		}
	}
	return service, collections
}

func newTestServer(t *testing.T, outputDir string, siteSvc site.Service) *server.Server {
	t.Helper()

	articleSvc, collectionSvc := seedArticles(t)
	indexSvc := index.NewService(index.Config{}, index.Dependencies{
		Articles:    articleSvc,
		Collections: collectionSvc,
	})

	srv, err := server.New(server.Config{OutputDir: outputDir}, server.Dependencies{
		Index: indexSvc,
		Site:  siteSvc,
	})
	if err != nil {
		t.Fatalf("server.New returned error: %v", err)
	}
	return srv
}

func TestServerRequiresOutputDirAndIndex(t *testing.T) {
	if _, err := server.New(server.Config{}, server.Dependencies{}); !errors.Is(err, server.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
	if _, err := server.New(server.Config{OutputDir: t.TempDir()}, server.Dependencies{}); !errors.Is(err, server.ErrIndexRequired) {
		t.Fatalf("expected ErrIndexRequired, got %v", err)
	}
}

func TestServerServesIndexSummary(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/index.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Articles    int              `json:"articles"`
		Collections []map[string]any `json:"collections"`
		Tags        []map[string]any `json:"tags"`
		Series      []map[string]any `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Articles != 2 {
		t.Fatalf("expected 2 articles, got %d", payload.Articles)
	}
	if len(payload.Collections) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(payload.Collections))
	}
	if payload.Collections[0]["code"] != "tutorials" || payload.Collections[0]["name"] != "Tutorials" {
		t.Fatalf("unexpected collection summary %v", payload.Collections[0])
	}
	if len(payload.Series) != 1 || payload.Series[0]["name"] != "Go Basics" {
		t.Fatalf("unexpected series summary %v", payload.Series)
	}
	if payload.Series[0]["parts"] != float64(1) {
		t.Fatalf("unexpected series parts %v", payload.Series[0]["parts"])
	}
}

func TestServerServesArticleDetail(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/getting-started", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["title"] != "Getting Started" {
		t.Fatalf("unexpected title %v", payload["title"])
	}
	if payload["body_html"] == "" {
		t.Fatal("expected body_html in detail payload")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug, got %d", rec.Code)
	}
}

func TestServerFiltersArticlesByTag(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?tag=concurrency", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Articles []map[string]any `json:"articles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Articles) != 1 {
		t.Fatalf("expected 1 tagged article, got %d", len(payload.Articles))
	}
	if payload.Articles[0]["slug"] != "channels" {
		t.Fatalf("unexpected slug %v", payload.Articles[0]["slug"])
	}
}

func TestServerServesStaticArtifacts(t *testing.T) {
	outputDir := t.TempDir()
	pageDir := filepath.Join(outputDir, "tutorials", "getting-started")
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pageDir, "index.html"), []byte("<html>ok</html>"), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}

	srv := newTestServer(t, outputDir, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tutorials/getting-started/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/page/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServerBuildEndpointWithoutSite(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), site.NewDisabledService())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/build", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when site generation is disabled, got %d", rec.Code)
	}
}
