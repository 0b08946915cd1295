package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/internal/index"
)

// PageKind identifies the flavour of a generated page.
type PageKind string

const (
	KindHome       PageKind = "home"
	KindArticle    PageKind = "article"
	KindCollection PageKind = "collection"
	KindTag        PageKind = "tag"
	KindSeries     PageKind = "series"
	KindArchive    PageKind = "archive"
)

// BuildContext aggregates everything a build run renders from.
type BuildContext struct {
	GeneratedAt time.Time
	Options     BuildOptions
	Snapshot    *index.Snapshot
	Pages       []*PageData

	codes map[uuid.UUID]string
}

// PageData describes a single page scheduled for rendering.
type PageData struct {
	Kind       PageKind
	Route      string
	Template   string
	Title      string
	Collection string
	Article    *articles.Article
	Metadata   DependencyMetadata
}

// DependencyMetadata fingerprints the inputs of a page so incremental builds
// can skip unchanged outputs.
type DependencyMetadata struct {
	Hash         string
	LastModified time.Time
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	snapshot, err := s.deps.Index.Rebuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("site: rebuild index: %w", err)
	}

	buildCtx := &BuildContext{
		GeneratedAt: s.now().UTC(),
		Options:     opts,
		Snapshot:    snapshot,
	}

	codes := collectionCodes(snapshot)
	buildCtx.codes = codes

	buildCtx.Pages = append(buildCtx.Pages, homePage(snapshot))
	for _, record := range snapshot.Articles {
		buildCtx.Pages = append(buildCtx.Pages, articlePage(record, codes[record.CollectionID]))
	}
	for i := range snapshot.Collections {
		entry := snapshot.Collections[i]
		if entry.Collection == nil {
			continue
		}
		buildCtx.Pages = append(buildCtx.Pages, collectionPage(entry))
	}
	for i := range snapshot.Tags {
		buildCtx.Pages = append(buildCtx.Pages, tagPage(snapshot.Tags[i]))
	}
	for i := range snapshot.Series {
		buildCtx.Pages = append(buildCtx.Pages, seriesPage(snapshot.Series[i]))
	}
	if len(snapshot.Archive) > 0 {
		buildCtx.Pages = append(buildCtx.Pages, archivePage(snapshot))
	}

	buildCtx.Pages = filterPages(buildCtx.Pages, opts)
	sort.SliceStable(buildCtx.Pages, func(i, j int) bool {
		return buildCtx.Pages[i].Route < buildCtx.Pages[j].Route
	})
	return buildCtx, nil
}

func collectionCodes(snapshot *index.Snapshot) map[uuid.UUID]string {
	codes := make(map[uuid.UUID]string, len(snapshot.Collections))
	for _, entry := range snapshot.Collections {
		if entry.Collection == nil {
			continue
		}
		codes[entry.Collection.ID] = entry.Collection.Code
	}
	return codes
}

func filterPages(pages []*PageData, opts BuildOptions) []*PageData {
	if len(opts.Slugs) == 0 && len(opts.Routes) == 0 {
		return pages
	}
	slugs := make(map[string]struct{}, len(opts.Slugs))
	for _, slug := range opts.Slugs {
		slugs[strings.ToLower(strings.TrimSpace(slug))] = struct{}{}
	}
	routes := make(map[string]struct{}, len(opts.Routes))
	for _, route := range opts.Routes {
		routes[normalizeRoute(route)] = struct{}{}
	}

	filtered := make([]*PageData, 0, len(pages))
	for _, page := range pages {
		if len(slugs) > 0 && page.Article != nil {
			if _, ok := slugs[strings.ToLower(page.Article.Slug)]; ok {
				filtered = append(filtered, page)
				continue
			}
		}
		if len(routes) > 0 {
			if _, ok := routes[normalizeRoute(page.Route)]; ok {
				filtered = append(filtered, page)
			}
		}
	}
	return filtered
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if !strings.HasSuffix(route, "/") {
		route += "/"
	}
	return strings.ToLower(route)
}

func homePage(snapshot *index.Snapshot) *PageData {
	return &PageData{
		Kind:     KindHome,
		Route:    "/",
		Template: "home.html",
		Title:    "Home",
		Metadata: listMetadata(string(KindHome), "/", snapshot.Articles),
	}
}

func articlePage(record *articles.Article, collectionCode string) *PageData {
	return &PageData{
		Kind:       KindArticle,
		Route:      articleRoute(collectionCode, record.Slug),
		Template:   templateForArticle(record),
		Title:      record.Title,
		Collection: collectionCode,
		Article:    record,
		Metadata:   articleMetadata(record),
	}
}

func collectionPage(entry index.CollectionEntry) *PageData {
	route := "/" + strings.Trim(entry.Collection.Code, "/") + "/"
	return &PageData{
		Kind:       KindCollection,
		Route:      route,
		Template:   "list.html",
		Title:      entry.Collection.Name,
		Collection: entry.Collection.Code,
		Metadata:   listMetadata(string(KindCollection), route, entry.Articles),
	}
}

func tagPage(entry index.TagEntry) *PageData {
	route := "/tags/" + routeSlug(entry.Tag) + "/"
	return &PageData{
		Kind:     KindTag,
		Route:    route,
		Template: "list.html",
		Title:    entry.Tag,
		Metadata: listMetadata(string(KindTag), route, entry.Articles),
	}
}

func seriesPage(entry index.SeriesEntry) *PageData {
	route := "/series/" + routeSlug(entry.Series) + "/"
	return &PageData{
		Kind:     KindSeries,
		Route:    route,
		Template: "list.html",
		Title:    entry.Series,
		Metadata: listMetadata(string(KindSeries), route, entry.Parts),
	}
}

func archivePage(snapshot *index.Snapshot) *PageData {
	return &PageData{
		Kind:     KindArchive,
		Route:    "/archive/",
		Template: "archive.html",
		Title:    "Archive",
		Metadata: listMetadata(string(KindArchive), "/archive/", snapshot.Articles),
	}
}

func routeSlug(value string) string {
	if normalized, err := articles.NormalizeSlug(value); err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(strings.Join(strings.Fields(value), "-"))
}

func articleRoute(collectionCode, slug string) string {
	slug = strings.Trim(slug, "/")
	code := strings.Trim(collectionCode, "/")
	if code == "" {
		return "/" + slug + "/"
	}
	return "/" + code + "/" + slug + "/"
}

func templateForArticle(record *articles.Article) string {
	if record.Template != nil {
		if name := strings.TrimSpace(*record.Template); name != "" {
			return name
		}
	}
	return "article.html"
}

func articleMetadata(record *articles.Article) DependencyMetadata {
	checksum := ""
	if record.SourceChecksum != nil {
		checksum = *record.SourceChecksum
	}
	return DependencyMetadata{
		Hash: hashStrings(
			record.Slug,
			record.Title,
			strconv.Itoa(record.CurrentRevision),
			record.UpdatedAt.UTC().Format(time.RFC3339Nano),
			checksum,
			templateForArticle(record),
		),
		LastModified: record.UpdatedAt,
	}
}

func listMetadata(kind, route string, members []*articles.Article) DependencyMetadata {
	parts := make([]string, 0, len(members)+2)
	parts = append(parts, kind, route)
	var lastModified time.Time
	for _, member := range members {
		parts = append(parts, member.Slug, member.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if member.UpdatedAt.After(lastModified) {
			lastModified = member.UpdatedAt
		}
	}
	return DependencyMetadata{
		Hash:         hashStrings(parts...),
		LastModified: lastModified,
	}
}

func hashStrings(values ...string) string {
	digest := sha256.New()
	for _, value := range values {
		digest.Write([]byte(value))
		digest.Write([]byte{0})
	}
	return hex.EncodeToString(digest.Sum(nil))
}
