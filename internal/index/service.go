package index

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrArticlesRequired = errors.New("index: article service is required")
	ErrNotBuilt         = errors.New("index: snapshot has not been built")
)

// Service maintains the navigable index over published articles.
type Service interface {
	Rebuild(ctx context.Context) (*Snapshot, error)
	Current() (*Snapshot, error)
	Related(ctx context.Context, slug string, limit int) ([]*articles.Article, error)
}

// Config captures index behaviour toggles.
type Config struct {
	// RelatedLimit caps how many related articles are precomputed per entry.
	RelatedLimit int
	// IncludeDrafts adds draft articles to the snapshot, used by previews.
	IncludeDrafts bool
}

// Dependencies lists the collaborators required by the index.
type Dependencies struct {
	Articles    articles.Service
	Collections articles.CollectionService
	Logger      interfaces.Logger
}

const defaultRelatedLimit = 5

// NewService constructs the index service.
func NewService(cfg Config, deps Dependencies) Service {
	if cfg.RelatedLimit <= 0 {
		cfg.RelatedLimit = defaultRelatedLimit
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

type service struct {
	cfg     Config
	deps    Dependencies
	logger  interfaces.Logger
	now     func() time.Time
	current atomic.Pointer[Snapshot]
}

// Rebuild loads the corpus and swaps in a freshly computed snapshot.
func (s *service) Rebuild(ctx context.Context) (*Snapshot, error) {
	if s.deps.Articles == nil {
		return nil, ErrArticlesRequired
	}

	opts := articles.ListOptions{OrderBy: articles.OrderWrittenDesc}
	if !s.cfg.IncludeDrafts {
		opts.Status = articles.StatusPublished
	}

	records, err := s.deps.Articles.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	var collections []*articles.Collection
	if s.deps.Collections != nil {
		collections, err = s.deps.Collections.List(ctx)
		if err != nil {
			return nil, err
		}
	}

	snapshot := buildSnapshot(records, collections, s.cfg.RelatedLimit, s.now())
	s.current.Store(snapshot)

	s.logger.Debug("index.rebuilt",
		"articles", len(snapshot.Articles),
		"tags", len(snapshot.Tags),
		"series", len(snapshot.Series),
		"collections", len(snapshot.Collections),
	)
	return snapshot, nil
}

// Current returns the last built snapshot.
func (s *service) Current() (*Snapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, ErrNotBuilt
	}
	return snapshot, nil
}

// Related resolves related articles from the current snapshot, rebuilding it
// on first use.
func (s *service) Related(ctx context.Context, slug string, limit int) ([]*articles.Article, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		rebuilt, err := s.Rebuild(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = rebuilt
	}
	if limit <= 0 {
		limit = s.cfg.RelatedLimit
	}
	return snapshot.Related(slug, limit), nil
}

func buildSnapshot(records []*articles.Article, collections []*articles.Collection, relatedLimit int, now time.Time) *Snapshot {
	visible := make([]*articles.Article, 0, len(records))
	for _, record := range records {
		if record == nil || record.DeletedAt != nil {
			continue
		}
		visible = append(visible, record)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return effectiveDate(visible[i]).After(effectiveDate(visible[j]))
	})

	snapshot := &Snapshot{
		GeneratedAt: now,
		Articles:    visible,
		bySlug:      make(map[string]*articles.Article, len(visible)),
		related:     make(map[string][]*articles.Article, len(visible)),
	}
	for _, record := range visible {
		snapshot.bySlug[record.Slug] = record
	}

	snapshot.Collections = buildCollections(visible, collections)
	snapshot.Tags = buildTags(visible)
	snapshot.Series = buildSeries(visible)
	snapshot.Archive = buildArchive(visible)
	buildRelated(snapshot, relatedLimit)

	return snapshot
}

func buildCollections(records []*articles.Article, collections []*articles.Collection) []CollectionEntry {
	grouped := map[string][]*articles.Article{}
	for _, record := range records {
		key := record.CollectionID.String()
		grouped[key] = append(grouped[key], record)
	}

	entries := make([]CollectionEntry, 0, len(collections))
	for _, collection := range collections {
		if collection == nil {
			continue
		}
		entries = append(entries, CollectionEntry{
			Collection: collection,
			Articles:   grouped[collection.ID.String()],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Collection.Code < entries[j].Collection.Code
	})
	return entries
}

func buildTags(records []*articles.Article) []TagEntry {
	grouped := map[string][]*articles.Article{}
	for _, record := range records {
		seen := map[string]struct{}{}
		for _, tag := range record.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			grouped[tag] = append(grouped[tag], record)
		}
	}

	entries := make([]TagEntry, 0, len(grouped))
	for tag, tagged := range grouped {
		entries = append(entries, TagEntry{Tag: tag, Count: len(tagged), Articles: tagged})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Tag < entries[j].Tag
	})
	return entries
}

func buildSeries(records []*articles.Article) []SeriesEntry {
	grouped := map[string][]*articles.Article{}
	for _, record := range records {
		if record.Series == nil || strings.TrimSpace(*record.Series) == "" {
			continue
		}
		name := strings.TrimSpace(*record.Series)
		grouped[name] = append(grouped[name], record)
	}

	entries := make([]SeriesEntry, 0, len(grouped))
	for name, parts := range grouped {
		sort.SliceStable(parts, func(i, j int) bool {
			if parts[i].SeriesPart != parts[j].SeriesPart {
				return parts[i].SeriesPart < parts[j].SeriesPart
			}
			return effectiveDate(parts[i]).Before(effectiveDate(parts[j]))
		})
		entries = append(entries, SeriesEntry{Series: name, Parts: parts})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Series < entries[j].Series
	})
	return entries
}

func buildArchive(records []*articles.Article) []ArchiveYear {
	type monthKey struct {
		year  int
		month time.Month
	}
	grouped := map[monthKey][]*articles.Article{}

	for _, record := range records {
		date := effectiveDate(record)
		if date.IsZero() {
			continue
		}
		key := monthKey{year: date.Year(), month: date.Month()}
		grouped[key] = append(grouped[key], record)
	}

	byYear := map[int]map[time.Month][]*articles.Article{}
	for key, bucket := range grouped {
		if byYear[key.year] == nil {
			byYear[key.year] = map[time.Month][]*articles.Article{}
		}
		byYear[key.year][key.month] = bucket
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]ArchiveYear, 0, len(years))
	for _, year := range years {
		months := make([]time.Month, 0, len(byYear[year]))
		for month := range byYear[year] {
			months = append(months, month)
		}
		sort.Slice(months, func(i, j int) bool { return months[i] > months[j] })

		entry := ArchiveYear{Year: year}
		for _, month := range months {
			entry.Months = append(entry.Months, ArchiveMonth{
				Month:    month,
				Articles: byYear[year][month],
			})
		}
		out = append(out, entry)
	}
	return out
}

func buildRelated(snapshot *Snapshot, limit int) {
	type scored struct {
		article *articles.Article
		score   int
	}

	for _, record := range snapshot.Articles {
		tags := map[string]struct{}{}
		for _, tag := range record.Tags {
			tags[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
		}

		candidates := make([]scored, 0)
		for _, other := range snapshot.Articles {
			if other.ID == record.ID {
				continue
			}
			score := 0
			for _, tag := range other.Tags {
				if _, ok := tags[strings.ToLower(strings.TrimSpace(tag))]; ok {
					score++
				}
			}
			if sameString(record.Series, other.Series) {
				score += 2
			}
			if sameString(record.Category, other.Category) {
				score++
			}
			if score > 0 {
				candidates = append(candidates, scored{article: other, score: score})
			}
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return effectiveDate(candidates[i].article).After(effectiveDate(candidates[j].article))
		})

		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		related := make([]*articles.Article, 0, len(candidates))
		for _, candidate := range candidates {
			related = append(related, candidate.article)
		}
		snapshot.related[record.Slug] = related
	}
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.TrimSpace(*a) != "" && strings.EqualFold(strings.TrimSpace(*a), strings.TrimSpace(*b))
}

func effectiveDate(record *articles.Article) time.Time {
	if record == nil {
		return time.Time{}
	}
	if record.WrittenAt != nil {
		return *record.WrittenAt
	}
	if record.PublishedAt != nil {
		return *record.PublishedAt
	}
	return record.CreatedAt
}
