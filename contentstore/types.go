// Package contentstore reads published Insights articles from the hosted
// backend (a PostgREST-style endpoint) or from a local SQLite mirror.
//
// Nothing in this package mutates the hosted store. The SQLite mirror is
// writable so it can be seeded for local development.
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Article is a single Insights record as returned by the content store.
type Article struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Excerpt       string `json:"excerpt,omitempty"`
	FeaturedImage string `json:"featured_image,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedAt   string `json:"published_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	Published     bool   `json:"published"`
}

// LastModified returns updated_at when set, else published_at, else "".
func (a Article) LastModified() string {
	if strings.TrimSpace(a.UpdatedAt) != "" {
		return a.UpdatedAt
	}
	return a.PublishedAt
}

// Source is the read side of a content store.
type Source interface {
	// GetArticle returns the published article with the given slug, or
	// ErrNotFound.
	GetArticle(ctx context.Context, slug string) (Article, error)
	// ListPublished returns every published article ordered by
	// published_at descending.
	ListPublished(ctx context.Context) ([]Article, error)
}

var (
	// ErrNotFound is returned when no published article matches a slug.
	ErrNotFound = errors.New("contentstore: article not found")
	// ErrNotConfigured is returned when the content store credentials are
	// missing. Callers disable dynamic behavior instead of failing per request.
	ErrNotConfigured = errors.New("contentstore: not configured")
)

// UpstreamError reports a failed request to the hosted content store.
// Status is zero for transport errors.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("contentstore: %s: upstream status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("contentstore: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// DateOnly reduces an ISO timestamp to its YYYY-MM-DD date. Values that do
// not parse are cut to their first ten characters when long enough.
func DateOnly(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
