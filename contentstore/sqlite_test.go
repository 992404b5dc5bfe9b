package contentstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "content.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetArticle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := Article{
		Slug:          "flood-cover",
		Title:         "Flood Cover Explained",
		Excerpt:       "What your policy does and doesn't include.",
		FeaturedImage: "https://cdn.example.com/flood.jpg",
		Author:        "Jane Broker",
		PublishedAt:   "2024-03-01T09:00:00Z",
		Published:     true,
	}
	if err := s.SaveArticle(ctx, a); err != nil {
		t.Fatalf("SaveArticle failed: %v", err)
	}

	got, err := s.GetArticle(ctx, "flood-cover")
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if got != a {
		t.Errorf("GetArticle = %+v, want %+v", got, a)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetArticle(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetArticleUnpublished(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveArticle(ctx, Article{Slug: "draft", Title: "Draft"}); err != nil {
		t.Fatalf("SaveArticle failed: %v", err)
	}
	if _, err := s.GetArticle(ctx, "draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unpublished article should not be found, got %v", err)
	}
}

func TestListPublishedOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, a := range []Article{
		{Slug: "old", PublishedAt: "2023-01-01T00:00:00Z", Published: true},
		{Slug: "draft", PublishedAt: "2025-01-01T00:00:00Z"},
		{Slug: "new", PublishedAt: "2024-06-01T00:00:00Z", Published: true},
	} {
		if err := s.SaveArticle(ctx, a); err != nil {
			t.Fatalf("SaveArticle(%s) failed: %v", a.Slug, err)
		}
	}

	got, err := s.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 published articles, got %d", len(got))
	}
	if got[0].Slug != "new" || got[1].Slug != "old" {
		t.Errorf("order = [%s %s], want [new old]", got[0].Slug, got[1].Slug)
	}
}

func TestSaveArticleUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := Article{Slug: "s", Title: "Original", Published: true}
	if err := s.SaveArticle(ctx, a); err != nil {
		t.Fatalf("SaveArticle failed: %v", err)
	}
	a.Title = "Updated"
	if err := s.SaveArticle(ctx, a); err != nil {
		t.Fatalf("SaveArticle update failed: %v", err)
	}
	got, err := s.GetArticle(ctx, "s")
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("Title = %q, want Updated", got.Title)
	}
}

func TestDeleteArticle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveArticle(ctx, Article{Slug: "gone", Published: true}); err != nil {
		t.Fatalf("SaveArticle failed: %v", err)
	}
	if err := s.DeleteArticle(ctx, "gone"); err != nil {
		t.Fatalf("DeleteArticle failed: %v", err)
	}
	if _, err := s.GetArticle(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	n, err := s.Seed(ctx, strings.NewReader(`[
		{"slug":"a","title":"A","featured_image":"https://x/a.jpg","published":true,"published_at":"2024-01-01T00:00:00Z"},
		{"slug":"b","title":"B","published":false}
	]`))
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Seed wrote %d, want 2", n)
	}
	got, err := s.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "a" {
		t.Errorf("ListPublished = %+v", got)
	}
}

func TestSeedRejectsMissingSlug(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Seed(context.Background(), strings.NewReader(`[{"title":"no slug"}]`))
	if err == nil {
		t.Fatal("expected error for entry without slug")
	}
}
