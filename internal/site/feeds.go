package site

import (
	"context"
	"fmt"
	"html"
	"path"
	"sort"
	"strings"
	"time"
)

const defaultFeedLimit = 100

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

type feedDocument struct {
	Collection string
	IsDefault  bool
	Items      []feedItem
}

// buildFeedDocuments produces one feed per collection plus a site-wide feed
// aggregating everything.
func (s *service) buildFeedDocuments(buildCtx *BuildContext) []feedDocument {
	if buildCtx == nil || buildCtx.Snapshot == nil {
		return nil
	}

	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	all := feedDocument{IsDefault: true}
	for _, record := range buildCtx.Snapshot.Articles {
		all.Items = append(all.Items, s.feedItemFor(buildCtx, record.Slug))
	}

	docs := make([]feedDocument, 0, len(buildCtx.Snapshot.Collections)+1)
	if len(all.Items) > 0 {
		docs = append(docs, all)
	}
	for _, entry := range buildCtx.Snapshot.Collections {
		if entry.Collection == nil || len(entry.Articles) == 0 {
			continue
		}
		doc := feedDocument{Collection: entry.Collection.Code}
		for _, record := range entry.Articles {
			doc.Items = append(doc.Items, s.feedItemFor(buildCtx, record.Slug))
		}
		docs = append(docs, doc)
	}

	for i := range docs {
		sort.Slice(docs[i].Items, func(a, b int) bool {
			left, right := docs[i].Items[a], docs[i].Items[b]
			if left.PublishedAt.Equal(right.PublishedAt) {
				return left.GUID < right.GUID
			}
			return left.PublishedAt.After(right.PublishedAt)
		})
		if len(docs[i].Items) > limit {
			docs[i].Items = append([]feedItem(nil), docs[i].Items[:limit]...)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].IsDefault != docs[j].IsDefault {
			return docs[i].IsDefault
		}
		return docs[i].Collection < docs[j].Collection
	})
	return docs
}

func (s *service) feedItemFor(buildCtx *BuildContext, slug string) feedItem {
	record := buildCtx.Snapshot.Lookup(slug)
	item := feedItem{
		Title: record.Title,
		GUID:  record.ID.String(),
		Link:  absoluteURL(s.cfg.BaseURL, articleRoute(buildCtx.codes[record.CollectionID], record.Slug)),
	}
	if record.Summary != nil {
		item.Summary = normalizeWhitespace(*record.Summary)
	}
	published := record.CreatedAt
	if record.PublishedAt != nil {
		published = *record.PublishedAt
	} else if record.WrittenAt != nil {
		published = *record.WrittenAt
	}
	item.PublishedAt = published
	item.UpdatedAt = record.UpdatedAt
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = published
	}
	return item
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	docs []feedDocument,
) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return 0, err
		}
	}

	total := 0
	for _, doc := range docs {
		if len(doc.Items) == 0 {
			continue
		}
		rssContent := buildRSSFeed(siteMeta, doc, buildCtx.GeneratedAt)
		atomContent := buildAtomFeed(siteMeta, doc, buildCtx.GeneratedAt)

		rssPath := joinOutputPath(baseDir, "feed.xml")
		atomPath := joinOutputPath(baseDir, "feed.atom.xml")
		if !doc.IsDefault {
			rssPath = joinOutputPath(baseDir, path.Join("feeds", doc.Collection+".rss.xml"))
			atomPath = joinOutputPath(baseDir, path.Join("feeds", doc.Collection+".atom.xml"))
		}

		for _, target := range []struct {
			path        string
			content     string
			contentType string
			feedType    string
		}{
			{rssPath, rssContent, "application/rss+xml", "rss"},
			{atomPath, atomContent, "application/atom+xml", "atom"},
		} {
			if err := ensureDir(ctx, writer, dirCache, path.Dir(target.path)); err != nil {
				return total, err
			}
			if err := writer.WriteFile(ctx, writeFileRequest{
				Path:        target.path,
				Content:     strings.NewReader(target.content),
				Size:        int64(len(target.content)),
				Collection:  doc.Collection,
				Category:    categoryFeed,
				ContentType: target.contentType,
				Checksum:    computeHashFromString(target.content),
				Metadata:    feedMetadata(doc.Collection, target.feedType, buildCtx.GeneratedAt),
			}); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func buildRSSFeed(site SiteMetadata, doc feedDocument, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	title := feedTitle(site, doc)
	description := feedDescription(site, doc)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(description)))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range doc.Items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, doc feedDocument, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	feedID := baseLink + "/feed.atom.xml"
	if !doc.IsDefault {
		feedID = fmt.Sprintf("%s/feeds/%s.atom.xml", baseLink, doc.Collection)
	}
	title := feedTitle(site, doc)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))
	for _, item := range doc.Items {
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if updated.IsZero() {
			updated = generatedAt
		}
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedMetadata(collection, feedType string, generatedAt time.Time) map[string]string {
	meta := map[string]string{
		"generated_at": generatedAt.UTC().Format(time.RFC3339),
		"feed_type":    feedType,
	}
	if strings.TrimSpace(collection) != "" {
		meta["collection"] = collection
	}
	return meta
}

func feedTitle(site SiteMetadata, doc feedDocument) string {
	base := strings.TrimSpace(site.Name)
	if base == "" {
		base = baseURLWithFallback(site.BaseURL)
	}
	if doc.IsDefault || doc.Collection == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, doc.Collection)
}

func feedDescription(site SiteMetadata, doc feedDocument) string {
	if desc := strings.TrimSpace(site.Description); desc != "" {
		return desc
	}
	if doc.IsDefault || doc.Collection == "" {
		return "Latest articles"
	}
	return "Latest articles in " + doc.Collection
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
