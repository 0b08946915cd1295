package index

import (
	"time"

	"github.com/goliatone/go-press/articles"
)

// Snapshot is an immutable view over the published corpus. Builds produce a
// fresh snapshot and swap it in atomically, so readers never observe a
// half-updated index.
type Snapshot struct {
	GeneratedAt time.Time

	// Articles holds every visible article, newest first.
	Articles []*articles.Article

	Collections []CollectionEntry
	Tags        []TagEntry
	Series      []SeriesEntry
	Archive     []ArchiveYear

	bySlug  map[string]*articles.Article
	related map[string][]*articles.Article
}

// CollectionEntry groups the visible articles of one collection.
type CollectionEntry struct {
	Collection *articles.Collection
	Articles   []*articles.Article
}

// TagEntry aggregates articles sharing a tag.
type TagEntry struct {
	Tag      string
	Count    int
	Articles []*articles.Article
}

// SeriesEntry lists the parts of a series in reading order.
type SeriesEntry struct {
	Series string
	Parts  []*articles.Article
}

// ArchiveYear groups articles by publication year for the archive page.
type ArchiveYear struct {
	Year   int
	Months []ArchiveMonth
}

// ArchiveMonth groups one month of a year.
type ArchiveMonth struct {
	Month    time.Month
	Articles []*articles.Article
}

// Lookup returns the indexed article with the given slug, or nil.
func (s *Snapshot) Lookup(slug string) *articles.Article {
	if s == nil {
		return nil
	}
	return s.bySlug[slug]
}

// Related returns up to limit articles related to the given slug, ranked by
// shared tags with series and category affinity breaking ties.
func (s *Snapshot) Related(slug string, limit int) []*articles.Article {
	if s == nil || limit <= 0 {
		return nil
	}
	candidates := s.related[slug]
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return append([]*articles.Article(nil), candidates...)
}

// Tag returns the entry for the supplied tag, or nil when the tag is unused.
func (s *Snapshot) Tag(tag string) *TagEntry {
	if s == nil {
		return nil
	}
	for i := range s.Tags {
		if s.Tags[i].Tag == tag {
			return &s.Tags[i]
		}
	}
	return nil
}

// CollectionByCode returns the entry whose collection carries the given code.
func (s *Snapshot) CollectionByCode(code string) *CollectionEntry {
	if s == nil {
		return nil
	}
	for i := range s.Collections {
		if s.Collections[i].Collection != nil && s.Collections[i].Collection.Code == code {
			return &s.Collections[i]
		}
	}
	return nil
}

// SeriesByName returns the entry for the named series, or nil.
func (s *Snapshot) SeriesByName(name string) *SeriesEntry {
	if s == nil {
		return nil
	}
	for i := range s.Series {
		if s.Series[i].Series == name {
			return &s.Series[i]
		}
	}
	return nil
}
