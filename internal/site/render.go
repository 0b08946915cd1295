package site

import (
	"strings"
	"time"

	"github.com/goliatone/go-press/articles"
)

// SiteMetadata exposes site-wide information to templates.
type SiteMetadata struct {
	BaseURL     string
	Name        string
	Description string
	Metadata    map[string]any
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	Kind     PageKind
	Route    string
	Output   string
	Template string
	HTML     string
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Kind     PageKind
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

func (s *service) templateContext(siteMeta SiteMetadata, buildCtx *BuildContext, page *PageData) map[string]any {
	ctx := map[string]any{
		"site_name":    siteMeta.Name,
		"base_url":     siteMeta.BaseURL,
		"title":        page.Title,
		"route":        page.Route,
		"kind":         string(page.Kind),
		"generated_at": buildCtx.GeneratedAt,
	}
	for key, value := range siteMeta.Metadata {
		if _, ok := ctx[key]; !ok {
			ctx[key] = value
		}
	}

	switch page.Kind {
	case KindArticle:
		ctx["article"] = articleContext(page.Article, page.Collection)
		related := buildCtx.Snapshot.Related(page.Article.Slug, s.cfg.RelatedLimit)
		if len(related) > 0 {
			ctx["related"] = itemContexts(related, buildCtx)
		}
		if page.Article.Summary != nil {
			ctx["description"] = strings.TrimSpace(*page.Article.Summary)
		}
		ctx["canonical"] = absoluteURL(siteMeta.BaseURL, page.Route)
	case KindCollection:
		if entry := buildCtx.Snapshot.CollectionByCode(page.Collection); entry != nil {
			if entry.Collection.Description != nil {
				ctx["description"] = *entry.Collection.Description
			}
			ctx["items"] = itemContexts(entry.Articles, buildCtx)
		}
	case KindTag:
		if entry := buildCtx.Snapshot.Tag(strings.ToLower(page.Title)); entry != nil {
			ctx["items"] = itemContexts(entry.Articles, buildCtx)
			ctx["count"] = entry.Count
		}
	case KindSeries:
		if entry := buildCtx.Snapshot.SeriesByName(page.Title); entry != nil {
			ctx["items"] = itemContexts(entry.Parts, buildCtx)
		}
	case KindArchive:
		ctx["years"] = archiveContext(buildCtx)
	case KindHome:
		items := buildCtx.Snapshot.Articles
		if s.cfg.HomePageSize > 0 && len(items) > s.cfg.HomePageSize {
			items = items[:s.cfg.HomePageSize]
		}
		ctx["items"] = itemContexts(items, buildCtx)
		if siteMeta.Description != "" {
			ctx["description"] = siteMeta.Description
		}
	}
	return ctx
}

func articleContext(record *articles.Article, collectionCode string) map[string]any {
	ctx := map[string]any{
		"slug":       record.Slug,
		"title":      record.Title,
		"body_html":  record.BodyHTML,
		"url":        articleRoute(collectionCode, record.Slug),
		"collection": collectionCode,
		"tags":       append([]string(nil), record.Tags...),
		"word_count": record.WordCount,
	}
	if record.Summary != nil {
		ctx["summary"] = *record.Summary
	}
	if record.Category != nil {
		ctx["category"] = *record.Category
	}
	if record.Series != nil {
		ctx["series"] = *record.Series
		ctx["series_part"] = record.SeriesPart
	}
	if record.Author != nil {
		ctx["author"] = *record.Author
	}
	if record.WrittenAt != nil {
		ctx["written_at"] = *record.WrittenAt
	}
	if record.PublishedAt != nil {
		ctx["published_at"] = *record.PublishedAt
	}
	if record.ReadingSeconds > 0 {
		ctx["reading_time"] = (record.ReadingSeconds + 59) / 60
	}
	return ctx
}

func itemContexts(records []*articles.Article, buildCtx *BuildContext) []map[string]any {
	items := make([]map[string]any, 0, len(records))
	for _, record := range records {
		item := map[string]any{
			"slug":  record.Slug,
			"title": record.Title,
			"url":   articleRoute(buildCtx.codes[record.CollectionID], record.Slug),
		}
		if record.Summary != nil {
			item["summary"] = *record.Summary
		}
		if record.WrittenAt != nil {
			item["written_at"] = *record.WrittenAt
		}
		items = append(items, item)
	}
	return items
}

func archiveContext(buildCtx *BuildContext) []map[string]any {
	years := make([]map[string]any, 0, len(buildCtx.Snapshot.Archive))
	for _, year := range buildCtx.Snapshot.Archive {
		months := make([]map[string]any, 0, len(year.Months))
		for _, month := range year.Months {
			months = append(months, map[string]any{
				"label": month.Month.String(),
				"items": itemContexts(month.Articles, buildCtx),
			})
		}
		years = append(years, map[string]any{
			"year":   year.Year,
			"months": months,
		})
	}
	return years
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}
