package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a local mirror of the articles table. It serves the same
// reads as the hosted store and can be seeded from a JSON export.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while the seed command writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    featured_image TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    published_at TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles (published, published_at DESC);
`)
	return err
}

const articleColumns = `slug, title, excerpt, featured_image, author, published_at, updated_at, published`

// GetArticle returns a single published article by slug.
func (s *SQLiteStore) GetArticle(ctx context.Context, slug string) (Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ? AND published = 1`, slug)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	return a, err
}

// ListPublished returns all published articles ordered by published_at descending.
func (s *SQLiteStore) ListPublished(ctx context.Context) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE published = 1 ORDER BY published_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

// SaveArticle upserts an article.
func (s *SQLiteStore) SaveArticle(ctx context.Context, a Article) error {
	published := 0
	if a.Published {
		published = 1
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Slug, a.Title, a.Excerpt, a.FeaturedImage, a.Author, a.PublishedAt, a.UpdatedAt, published)
	return err
}

// Seed imports a JSON array of articles, in the shape the REST endpoint
// returns, and upserts each one. It returns the number of articles written.
func (s *SQLiteStore) Seed(ctx context.Context, r io.Reader) (int, error) {
	var articles []Article
	if err := json.NewDecoder(r).Decode(&articles); err != nil {
		return 0, fmt.Errorf("decode seed: %w", err)
	}
	for i, a := range articles {
		if a.Slug == "" {
			return i, fmt.Errorf("seed entry %d: missing slug", i)
		}
		if err := s.SaveArticle(ctx, a); err != nil {
			return i, fmt.Errorf("seed %q: %w", a.Slug, err)
		}
	}
	return len(articles), nil
}

// DeleteArticle removes an article by slug.
func (s *SQLiteStore) DeleteArticle(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE slug = ?`, slug)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(r rowScanner) (Article, error) {
	var a Article
	var published int
	if err := r.Scan(&a.Slug, &a.Title, &a.Excerpt, &a.FeaturedImage, &a.Author, &a.PublishedAt, &a.UpdatedAt, &published); err != nil {
		return Article{}, err
	}
	a.Published = published == 1
	return a, nil
}
