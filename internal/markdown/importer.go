package markdown

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrImporterRequired       = errors.New("markdown importer: importer is not configured")
	ErrArticleServiceRequired = errors.New("markdown importer: article service is required")
	ErrCollectionsRequired    = errors.New("markdown importer: collection service is required")
	ErrSlugMissing            = errors.New("markdown importer: document slug could not be determined")
)

// ImporterConfig encapsulates dependencies required to persist markdown documents.
type ImporterConfig struct {
	Articles    articles.Service
	Collections articles.CollectionService
	Logger      interfaces.Logger
}

// Importer orchestrates conversion of markdown documents into article records.
type Importer struct {
	articles    articles.Service
	collections articles.CollectionService
	logger      interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Importer{
		articles:    cfg.Articles,
		collections: cfg.Collections,
		logger:      logger,
	}
}

// ImportDocument imports a single markdown document.
func (i *Importer) ImportDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	return i.ImportDocuments(ctx, []*interfaces.Document{doc}, opts)
}

// ImportDocuments imports an arbitrary slice of documents. Later documents
// with a duplicate slug override earlier ones, matching filesystem walk order.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.articles == nil {
		return nil, ErrArticleServiceRequired
	}

	acc := newImportAccumulator()
	for _, doc := range sortDocuments(dedupeBySlug(docs)) {
		if err := i.applyDocument(ctx, doc, opts, acc); err != nil {
			acc.addError(fmt.Errorf("markdown importer: %s: %w", doc.FilePath, err))
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncDocuments imports all provided documents and optionally deletes orphaned articles.
func (i *Importer) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.articles == nil {
		return nil, ErrArticleServiceRequired
	}

	deduped := sortDocuments(dedupeBySlug(docs))

	acc := newSyncAccumulator()
	imported := newImportAccumulator()
	for _, doc := range deduped {
		if err := i.applyDocument(ctx, doc, opts.ImportOptions, imported); err != nil {
			imported.addError(fmt.Errorf("markdown importer: %s: %w", doc.FilePath, err))
		}
	}
	acc.merge(imported.result())

	if opts.DeleteOrphaned {
		if err := i.deleteOrphaned(ctx, deduped, opts, acc); err != nil {
			acc.addError(err)
		}
	}

	return acc.result(), firstError(acc.errors)
}

func (i *Importer) applyDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions, acc *importAccumulator) error {
	if doc == nil {
		return errors.New("nil document")
	}

	slug, err := DocumentSlug(doc)
	if err != nil {
		return err
	}

	collectionID, err := i.resolveCollection(ctx, doc, opts)
	if err != nil {
		return err
	}

	checksum := hex.EncodeToString(doc.Checksum)
	logger := logging.WithDocumentContext(i.logger, doc.FilePath, doc.Collection, "import")

	existing, err := i.articles.GetBySlug(ctx, slug)
	if err != nil && !articles.IsNotFound(err) {
		return fmt.Errorf("lookup %s: %w", slug, err)
	}

	if existing == nil {
		if opts.DryRun {
			acc.wouldCreate(slug)
			return nil
		}
		record, createErr := i.articles.Create(ctx, buildCreateRequest(doc, slug, collectionID, checksum, opts))
		if createErr != nil {
			return fmt.Errorf("create %s: %w", slug, createErr)
		}
		logger.Debug("markdown.import.created", "slug", slug, "article_id", record.ID)
		acc.created(record.ID)
		return nil
	}

	if existing.SourceChecksum != nil && *existing.SourceChecksum == checksum {
		acc.skip(existing.ID)
		return nil
	}

	if opts.DryRun {
		acc.skip(existing.ID)
		return nil
	}

	updated, updateErr := i.articles.Update(ctx, buildUpdateRequest(doc, existing, checksum, opts))
	if updateErr != nil {
		return fmt.Errorf("update %s: %w", slug, updateErr)
	}
	logger.Debug("markdown.import.updated", "slug", slug, "article_id", updated.ID)
	acc.updated(updated.ID)
	return nil
}

func (i *Importer) resolveCollection(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (uuid.UUID, error) {
	if opts.CollectionID != uuid.Nil {
		return opts.CollectionID, nil
	}
	code := strings.TrimSpace(doc.Collection)
	if code == "" {
		return uuid.Nil, articles.ErrCollectionRequired
	}
	if i.collections == nil {
		return uuid.Nil, ErrCollectionsRequired
	}
	collection, err := i.collections.Ensure(ctx, code, fallbackTitle(code))
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure collection %s: %w", code, err)
	}
	return collection.ID, nil
}

func (i *Importer) deleteOrphaned(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions, acc *syncAccumulator) error {
	existing, err := i.articles.List(ctx, articles.ListOptions{})
	if err != nil {
		return fmt.Errorf("markdown importer: list articles: %w", err)
	}

	docSlugs := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if slug, err := DocumentSlug(doc); err == nil {
			docSlugs[slug] = struct{}{}
		}
	}

	for _, record := range existing {
		if record.SourcePath == nil {
			// Records created outside the markdown pipeline are never pruned.
			continue
		}
		if _, ok := docSlugs[record.Slug]; ok {
			continue
		}
		if opts.DryRun {
			acc.deleted++
			continue
		}
		deleteReq := articles.DeleteArticleRequest{
			ID:         record.ID,
			DeletedBy:  opts.AuthorID,
			HardDelete: true,
		}
		if err := i.articles.Delete(ctx, deleteReq); err != nil {
			return fmt.Errorf("markdown importer: delete %s: %w", record.Slug, err)
		}
		acc.deleted++
	}

	return nil
}

// DocumentSlug resolves the canonical slug for a document: explicit front
// matter first, then the file name without extension.
func DocumentSlug(doc *interfaces.Document) (string, error) {
	if doc == nil {
		return "", ErrSlugMissing
	}
	candidate := strings.TrimSpace(doc.FrontMatter.Slug)
	if candidate == "" {
		base := filepath.Base(doc.FilePath)
		candidate = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if candidate == "" || candidate == "." {
		return "", ErrSlugMissing
	}
	normalized, err := articles.NormalizeSlug(candidate)
	if err != nil {
		return "", fmt.Errorf("normalize slug %q: %w", candidate, err)
	}
	return normalized, nil
}

func buildCreateRequest(doc *interfaces.Document, slug string, collectionID uuid.UUID, checksum string, opts interfaces.ImportOptions) articles.CreateArticleRequest {
	req := articles.CreateArticleRequest{
		CollectionID:   collectionID,
		Slug:           slug,
		Title:          documentTitle(doc, slug),
		Summary:        optionalString(documentSummary(doc)),
		Status:         documentStatus(doc),
		Template:       optionalString(doc.FrontMatter.Template),
		Category:       optionalString(doc.FrontMatter.Category),
		Series:         optionalString(doc.FrontMatter.Series),
		SeriesPart:     doc.FrontMatter.SeriesPart,
		Author:         optionalString(doc.FrontMatter.Author),
		Tags:           normalizeTags(doc.FrontMatter.Tags),
		Body:           string(doc.Body),
		BodyHTML:       string(doc.BodyHTML),
		WordCount:      doc.Stats.WordCount,
		ReadingSeconds: int(doc.Stats.ReadingTime.Seconds()),
		SourcePath:     optionalString(doc.FilePath),
		SourceChecksum: optionalString(checksum),
		WrittenAt:      writtenAt(doc),
		Metadata:       documentMetadata(doc),
		CreatedBy:      opts.AuthorID,
	}
	return req
}

func buildUpdateRequest(doc *interfaces.Document, existing *articles.Article, checksum string, opts interfaces.ImportOptions) articles.UpdateArticleRequest {
	return articles.UpdateArticleRequest{
		ID:             existing.ID,
		Title:          documentTitle(doc, existing.Slug),
		Summary:        optionalString(documentSummary(doc)),
		Status:         documentStatus(doc),
		Template:       optionalString(doc.FrontMatter.Template),
		Category:       optionalString(doc.FrontMatter.Category),
		Series:         optionalString(doc.FrontMatter.Series),
		SeriesPart:     doc.FrontMatter.SeriesPart,
		Author:         optionalString(doc.FrontMatter.Author),
		Tags:           normalizeTags(doc.FrontMatter.Tags),
		Body:           string(doc.Body),
		BodyHTML:       string(doc.BodyHTML),
		WordCount:      doc.Stats.WordCount,
		ReadingSeconds: int(doc.Stats.ReadingTime.Seconds()),
		SourcePath:     optionalString(doc.FilePath),
		SourceChecksum: optionalString(checksum),
		WrittenAt:      writtenAt(doc),
		Metadata:       documentMetadata(doc),
		UpdatedBy:      opts.AuthorID,
	}
}

func documentTitle(doc *interfaces.Document, slug string) string {
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	if title := TitleFallback(doc.Stats); title != "" {
		return title
	}
	return fallbackTitle(slug)
}

func documentSummary(doc *interfaces.Document) string {
	if summary := strings.TrimSpace(doc.FrontMatter.Summary); summary != "" {
		return summary
	}
	return Excerpt(doc.Body, 0)
}

func documentStatus(doc *interfaces.Document) articles.Status {
	if doc.FrontMatter.Draft {
		return articles.StatusDraft
	}
	status := articles.Status(strings.ToLower(strings.TrimSpace(doc.FrontMatter.Status)))
	if status.IsValid() {
		return status
	}
	return articles.StatusDraft
}

func documentMetadata(doc *interfaces.Document) map[string]any {
	return map[string]any{
		"source":      "markdown",
		"path":        doc.FilePath,
		"collection":  doc.Collection,
		"checksum":    hex.EncodeToString(doc.Checksum),
		"frontmatter": doc.FrontMatter.Raw,
		"custom":      doc.FrontMatter.Custom,
		"headings":    append([]string(nil), doc.Stats.Headings...),
		"modified_at": doc.LastModified,
	}
}

func writtenAt(doc *interfaces.Document) *time.Time {
	if !doc.FrontMatter.Date.IsZero() {
		date := doc.FrontMatter.Date
		return &date
	}
	if doc.LastModified.IsZero() {
		return nil
	}
	modified := doc.LastModified
	return &modified
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func fallbackTitle(slug string) string {
	if slug == "" {
		return "Untitled"
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(slug, "-", " "), "_", " ")
	words := strings.Fields(cleaned)
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func dedupeBySlug(docs []*interfaces.Document) []*interfaces.Document {
	bySlug := map[string]*interfaces.Document{}
	var order []string
	for _, doc := range docs {
		slug, err := DocumentSlug(doc)
		if err != nil {
			continue
		}
		if _, ok := bySlug[slug]; !ok {
			order = append(order, slug)
		}
		bySlug[slug] = doc
	}
	out := make([]*interfaces.Document, 0, len(order))
	for _, slug := range order {
		out = append(out, bySlug[slug])
	}
	return out
}

func sortDocuments(docs []*interfaces.Document) []*interfaces.Document {
	slices.SortFunc(docs, func(a, b *interfaces.Document) int {
		if a == nil || b == nil {
			return 0
		}
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return docs
}

type importAccumulator struct {
	createdIDs []uuid.UUID
	updatedIDs []uuid.UUID
	skippedIDs []uuid.UUID
	wouldSlugs []string
	errors     []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdIDs: []uuid.UUID{},
		updatedIDs: []uuid.UUID{},
		skippedIDs: []uuid.UUID{},
		wouldSlugs: []string{},
		errors:     []error{},
	}
}

func (a *importAccumulator) created(id uuid.UUID) {
	if id != uuid.Nil {
		a.createdIDs = append(a.createdIDs, id)
	}
}

func (a *importAccumulator) updated(id uuid.UUID) {
	if id != uuid.Nil {
		a.updatedIDs = append(a.updatedIDs, id)
	}
}

func (a *importAccumulator) skip(id uuid.UUID) {
	if id != uuid.Nil {
		a.skippedIDs = append(a.skippedIDs, id)
	}
}

func (a *importAccumulator) wouldCreate(slug string) {
	if slug != "" {
		a.wouldSlugs = append(a.wouldSlugs, slug)
	}
}

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		CreatedArticleIDs: a.createdIDs,
		UpdatedArticleIDs: a.updatedIDs,
		SkippedArticleIDs: a.skippedIDs,
		WouldCreateSlugs:  a.wouldSlugs,
		Errors:            a.errors,
	}
}

type syncAccumulator struct {
	created int
	updated int
	deleted int
	skipped int
	errors  []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.CreatedArticleIDs) + len(res.WouldCreateSlugs)
	s.updated += len(res.UpdatedArticleIDs)
	s.skipped += len(res.SkippedArticleIDs)
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created: s.created,
		Updated: s.updated,
		Deleted: s.deleted,
		Skipped: s.skipped,
		Errors:  s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
