// Package server exposes a preview HTTP server over a built site: static
// artifacts from the output directory plus a small JSON API over the content
// index. It backs the press serve CLI and local authoring loops.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrOutputDirRequired = errors.New("server: output directory is required")
	ErrIndexRequired     = errors.New("server: index service is required")
)

const defaultAddr = "127.0.0.1:8080"

// Config controls the preview server behaviour.
type Config struct {
	// Addr is the listen address, defaulting to 127.0.0.1:8080.
	Addr string
	// OutputDir holds the built site artifacts served as static files.
	OutputDir string
	// RelatedLimit caps related article results in the JSON API.
	RelatedLimit int
}

// Dependencies lists the collaborators the server reads from.
type Dependencies struct {
	Index  index.Service
	Site   site.Service
	Logger interfaces.Logger
}

// Server serves built pages and the content index API.
type Server struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	router chi.Router
}

// New validates the configuration and assembles the router.
func New(cfg Config, deps Dependencies) (*Server, error) {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return nil, ErrOutputDirRequired
	}
	if deps.Index == nil {
		return nil, ErrIndexRequired
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.RelatedLimit <= 0 {
		cfg.RelatedLimit = 5
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler exposes the assembled router, primarily for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.logger.Info("server.started", "addr", listener.Addr().String(), "output_dir", s.cfg.OutputDir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/index.json", s.handleIndex)
		r.Get("/articles", s.handleArticles)
		r.Get("/articles/{slug}", s.handleArticle)
		r.Get("/articles/{slug}/related", s.handleRelated)
		r.Post("/build", s.handleBuild)
	})

	r.NotFound(s.handleStatic)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleIndex summarises the current snapshot: collections, tags, series,
// and archive groupings without full article bodies.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	collections := make([]map[string]any, 0, len(snapshot.Collections))
	for _, entry := range snapshot.Collections {
		collections = append(collections, map[string]any{
			"code":  entry.Collection.Code,
			"name":  entry.Collection.Name,
			"count": len(entry.Articles),
		})
	}
	tags := make([]map[string]any, 0, len(snapshot.Tags))
	for _, entry := range snapshot.Tags {
		tags = append(tags, map[string]any{
			"tag":   entry.Tag,
			"count": entry.Count,
		})
	}
	series := make([]map[string]any, 0, len(snapshot.Series))
	for _, entry := range snapshot.Series {
		series = append(series, map[string]any{
			"name":  entry.Series,
			"parts": len(entry.Parts),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"generated_at": snapshot.GeneratedAt,
		"articles":     len(snapshot.Articles),
		"collections":  collections,
		"tags":         tags,
		"series":       series,
	})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	records := snapshot.Articles
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		if entry := snapshot.Tag(tag); entry != nil {
			records = entry.Articles
		} else {
			records = nil
		}
	}
	if code := strings.TrimSpace(r.URL.Query().Get("collection")); code != "" {
		if entry := snapshot.CollectionByCode(code); entry != nil {
			records = entry.Articles
		} else {
			records = nil
		}
	}

	payload := make([]map[string]any, 0, len(records))
	for _, record := range records {
		payload = append(payload, articleSummary(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": payload})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	slug := chi.URLParam(r, "slug")
	record := snapshot.Lookup(slug)
	if record == nil {
		writeError(w, http.StatusNotFound, errors.New("article not found"))
		return
	}

	payload := articleSummary(record)
	payload["body_html"] = record.BodyHTML
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	related, err := s.deps.Index.Related(r.Context(), slug, s.cfg.RelatedLimit)
	if err != nil {
		if errors.Is(err, index.ErrNotBuilt) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusNotFound, err)
		return
	}

	payload := make([]map[string]any, 0, len(related))
	for _, record := range related {
		payload = append(payload, articleSummary(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": payload})
}

// handleBuild triggers a site rebuild. The site service refuses the call when
// generation is disabled, which maps to a conflict here.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if s.deps.Site == nil {
		writeError(w, http.StatusConflict, site.ErrServiceDisabled)
		return
	}

	result, err := s.deps.Site.Build(r.Context(), site.BuildOptions{})
	if err != nil {
		if errors.Is(err, site.ErrServiceDisabled) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pages_built":   result.PagesBuilt,
		"pages_skipped": result.PagesSkipped,
		"assets_built":  result.AssetsBuilt,
		"feeds_built":   result.FeedsBuilt,
		"duration_ms":   result.Duration.Milliseconds(),
	})
}

// handleStatic serves built artifacts, falling back to directory index pages
// the way the generator lays them out.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" {
		rel = "index.html"
	}
	target := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(rel))

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, target)
}

func (s *Server) snapshot(ctx context.Context) (*index.Snapshot, error) {
	snapshot, err := s.deps.Index.Current()
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, index.ErrNotBuilt) {
		return nil, err
	}
	return s.deps.Index.Rebuild(ctx)
}

func articleSummary(record *articles.Article) map[string]any {
	payload := map[string]any{
		"id":     record.ID,
		"slug":   record.Slug,
		"title":  record.Title,
		"status": record.Status,
		"tags":   record.Tags,
	}
	if record.Summary != nil {
		payload["summary"] = *record.Summary
	}
	if record.WrittenAt != nil {
		payload["written_at"] = *record.WrittenAt
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
