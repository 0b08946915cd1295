package articles_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/articles"
)

func seedCollection(tb testing.TB, store *articles.MemoryCollectionRepository) *articles.Collection {
	tb.Helper()
	collection, err := store.Create(context.Background(), &articles.Collection{
		ID:   uuid.New(),
		Code: "tutorials",
		Name: "Tutorials",
	})
	if err != nil {
		tb.Fatalf("seed collection: %v", err)
	}
	return collection
}

func newTestService(tb testing.TB, opts ...articles.ServiceOption) (articles.Service, *articles.MemoryArticleRepository, *articles.Collection) {
	tb.Helper()

	store := articles.NewMemoryArticleRepository()
	collections := articles.NewMemoryCollectionRepository()
	collection := seedCollection(tb, collections)

	base := []articles.ServiceOption{
		articles.WithClock(func() time.Time { return time.Unix(1700000000, 0).UTC() }),
	}
	svc := articles.NewService(store, collections, append(base, opts...)...)
	return svc, store, collection
}

func createRequest(collectionID uuid.UUID) articles.CreateArticleRequest {
	return articles.CreateArticleRequest{
		CollectionID: collectionID,
		Slug:         "getting-started",
		Title:        "Getting Started",
		Status:       articles.StatusDraft,
		Tags:         []string{"go", "basics"},
		Body:         "# Getting Started\n\nHello.",
		WordCount:    3,
	}
}

func TestServiceCreateSuccess(t *testing.T) {
	svc, _, collection := newTestService(t)

	record, err := svc.Create(context.Background(), createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if record.Slug != "getting-started" {
		t.Fatalf("expected slug getting-started, got %q", record.Slug)
	}
	if record.Status != articles.StatusDraft {
		t.Fatalf("expected draft status, got %s", record.Status)
	}
	if record.CurrentRevision != 1 {
		t.Fatalf("expected revision 1, got %d", record.CurrentRevision)
	}
	if record.PublishedAt != nil {
		t.Fatalf("draft must not carry published_at")
	}
}

func TestServiceCreateValidations(t *testing.T) {
	svc, _, collection := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*articles.CreateArticleRequest)
		wantErr error
	}{
		{"missing collection", func(r *articles.CreateArticleRequest) { r.CollectionID = uuid.Nil }, articles.ErrCollectionRequired},
		{"missing slug", func(r *articles.CreateArticleRequest) { r.Slug = " " }, articles.ErrSlugRequired},
		{"invalid slug", func(r *articles.CreateArticleRequest) { r.Slug = "Not A Slug!" }, articles.ErrSlugInvalid},
		{"missing title", func(r *articles.CreateArticleRequest) { r.Title = "" }, articles.ErrTitleRequired},
		{"missing body", func(r *articles.CreateArticleRequest) { r.Body = "" }, articles.ErrBodyRequired},
		{"bad status", func(r *articles.CreateArticleRequest) { r.Status = "live" }, articles.ErrStatusInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := createRequest(collection.ID)
			tc.mutate(&req)
			if _, err := svc.Create(ctx, req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestServiceCreateDuplicateSlug(t *testing.T) {
	svc, _, collection := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, createRequest(collection.ID)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest(collection.ID)); !errors.Is(err, articles.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestServiceUpdateRecordsRevision(t *testing.T) {
	svc, store, collection := newTestService(t, articles.WithVersioningEnabled(true))
	ctx := context.Background()

	record, err := svc.Create(ctx, createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, articles.UpdateArticleRequest{
		ID:     record.ID,
		Title:  "Getting Started v2",
		Status: articles.StatusDraft,
		Body:   "# Getting Started\n\nRevised.",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CurrentRevision != 2 {
		t.Fatalf("expected revision 2, got %d", updated.CurrentRevision)
	}

	revisions, err := store.ListRevisions(ctx, record.ID)
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	if revisions[1].Snapshot.Title != "Getting Started v2" {
		t.Fatalf("snapshot title mismatch: %q", revisions[1].Snapshot.Title)
	}
}

func TestServiceUpdateBaseRevisionConflict(t *testing.T) {
	svc, _, collection := newTestService(t, articles.WithVersioningEnabled(true))
	ctx := context.Background()

	record, err := svc.Create(ctx, createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(ctx, articles.UpdateArticleRequest{
		ID:           record.ID,
		Title:        "Stale",
		Status:       articles.StatusDraft,
		Body:         "stale",
		BaseRevision: 7,
	})
	if !errors.Is(err, articles.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}
}

func TestServicePublishAndUnpublish(t *testing.T) {
	svc, _, collection := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published, err := svc.Publish(ctx, articles.PublishArticleRequest{ID: record.ID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != articles.StatusPublished {
		t.Fatalf("expected published, got %s", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatalf("expected published_at to be stamped")
	}

	if _, err := svc.Publish(ctx, articles.PublishArticleRequest{ID: record.ID}); !errors.Is(err, articles.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}

	draft, err := svc.Unpublish(ctx, record.ID, uuid.Nil)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if draft.Status != articles.StatusDraft || draft.PublishedAt != nil {
		t.Fatalf("expected draft without published_at, got %#v", draft)
	}

	if _, err := svc.Unpublish(ctx, record.ID, uuid.Nil); !errors.Is(err, articles.ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}
}

func TestServiceDeleteSoftThenList(t *testing.T) {
	svc, _, collection := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, articles.DeleteArticleRequest{ID: record.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	visible, err := svc.List(ctx, articles.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("soft deleted article still listed")
	}

	all, err := svc.List(ctx, articles.ListOptions{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("list deleted: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected deleted article in unfiltered list, got %d", len(all))
	}
}

func TestServiceListFilters(t *testing.T) {
	svc, _, collection := newTestService(t)
	ctx := context.Background()

	first := createRequest(collection.ID)
	firstWritten := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first.WrittenAt = &firstWritten
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := createRequest(collection.ID)
	second.Slug = "channels-in-depth"
	second.Title = "Channels in Depth"
	second.Tags = []string{"go", "concurrency"}
	secondWritten := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	second.WrittenAt = &secondWritten
	if _, err := svc.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	tagged, err := svc.List(ctx, articles.ListOptions{Tag: "Concurrency"})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(tagged) != 1 || tagged[0].Slug != "channels-in-depth" {
		t.Fatalf("tag filter mismatch: %#v", tagged)
	}

	ordered, err := svc.List(ctx, articles.ListOptions{OrderBy: articles.OrderWrittenDesc})
	if err != nil {
		t.Fatalf("list ordered: %v", err)
	}
	if len(ordered) != 2 || ordered[0].Slug != "channels-in-depth" {
		t.Fatalf("expected newest first, got %#v", ordered)
	}

	byCode, err := svc.List(ctx, articles.ListOptions{CollectionCode: "tutorials"})
	if err != nil {
		t.Fatalf("list by collection code: %v", err)
	}
	if len(byCode) != 2 {
		t.Fatalf("collection code filter mismatch: %d", len(byCode))
	}
}

func TestServiceRestoreRevision(t *testing.T) {
	svc, _, collection := newTestService(t, articles.WithVersioningEnabled(true))
	ctx := context.Background()

	record, err := svc.Create(ctx, createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, articles.UpdateArticleRequest{
		ID:     record.ID,
		Title:  "Rewritten",
		Status: articles.StatusDraft,
		Body:   "rewritten body",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	restored, err := svc.RestoreRevision(ctx, articles.RestoreRevisionRequest{
		ArticleID: record.ID,
		Revision:  1,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Title != "Getting Started" {
		t.Fatalf("expected original title restored, got %q", restored.Title)
	}
	if restored.CurrentRevision != 3 {
		t.Fatalf("restore must create a new revision, got %d", restored.CurrentRevision)
	}
}

func TestServiceRevisionsDisabled(t *testing.T) {
	svc, _, collection := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, createRequest(collection.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ListRevisions(ctx, record.ID); !errors.Is(err, articles.ErrVersioningDisabled) {
		t.Fatalf("expected ErrVersioningDisabled, got %v", err)
	}
}

func TestCollectionServiceEnsure(t *testing.T) {
	store := articles.NewMemoryCollectionRepository()
	svc := articles.NewCollectionService(store)
	ctx := context.Background()

	created, err := svc.Ensure(ctx, "Tutorials", "Tutorials")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if created.Code != "tutorials" {
		t.Fatalf("expected lowercased code, got %q", created.Code)
	}

	again, err := svc.Ensure(ctx, "tutorials", "Something Else")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("ensure must be idempotent")
	}

	listed, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected single collection, got %d", len(listed))
	}
}

func TestCollectionServiceEnsureStableIDsAcrossStores(t *testing.T) {
	ctx := context.Background()

	first, err := articles.NewCollectionService(articles.NewMemoryCollectionRepository()).Ensure(ctx, "tutorials", "Tutorials")
	if err != nil {
		t.Fatalf("ensure first: %v", err)
	}
	second, err := articles.NewCollectionService(articles.NewMemoryCollectionRepository()).Ensure(ctx, "tutorials", "Tutorials")
	if err != nil {
		t.Fatalf("ensure second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected deterministic collection IDs, got %s and %s", first.ID, second.ID)
	}
}
