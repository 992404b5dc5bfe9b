// Package prerender writes metadata-decorated copies of the built SPA shell
// so static hosts serve correct link previews without the edge middleware.
package prerender

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/logging"
	"github.com/parxgroup/parxsite/metatags"
	"github.com/parxgroup/parxsite/sitemap"
)

// IndexFile is the SPA entry document inside the dist directory.
const IndexFile = "index.html"

// Renderer prerenders pages into a dist directory.
type Renderer struct {
	dist     string
	resolver *metatags.Resolver
	logger   *zap.Logger
}

// New returns a Renderer writing into dist.
func New(dist string, resolver *metatags.Resolver, logger *zap.Logger) *Renderer {
	return &Renderer{dist: dist, resolver: resolver, logger: logging.OrNop(logger)}
}

// outputPath maps a route to its file: / is the entry document itself and
// /about becomes about/index.html.
func (r *Renderer) outputPath(route string) string {
	rel := strings.Trim(route, "/")
	if rel == "" {
		return filepath.Join(r.dist, IndexFile)
	}
	return filepath.Join(r.dist, filepath.FromSlash(rel), IndexFile)
}

func (r *Renderer) readBase() (string, error) {
	b, err := os.ReadFile(filepath.Join(r.dist, IndexFile))
	if err != nil {
		return "", fmt.Errorf("prerender: read shell: %w", err)
	}
	return string(b), nil
}

func (r *Renderer) write(route, base string, block metatags.TagBlock) (string, error) {
	doc, err := metatags.Inject(base, block)
	if err != nil {
		return "", fmt.Errorf("prerender %s: %w", route, err)
	}
	out := r.outputPath(route)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
		return "", err
	}
	r.logger.Debug("prerendered", zap.String("route", route), zap.String("file", out))
	return out, nil
}

// Pages writes one decorated shell per static page and returns the files
// written. The root page is written last because it replaces the shell the
// others are built from. Running it again yields the same files.
func (r *Renderer) Pages(ctx context.Context) ([]string, error) {
	base, err := r.readBase()
	if err != nil {
		return nil, err
	}

	site := r.resolver.Site()
	var root *metatags.Page
	written := make([]string, 0, len(site.Pages))
	for i, page := range site.Pages {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if page.Path == "/" {
			root = &site.Pages[i]
			continue
		}
		out, err := r.write(page.Path, base, metatags.StaticTags(site, page, page.Path))
		if err != nil {
			return written, err
		}
		written = append(written, out)
	}
	if root != nil {
		out, err := r.write(root.Path, base, metatags.StaticTags(site, *root, root.Path))
		if err != nil {
			return written, err
		}
		written = append(written, out)
	}
	r.logger.Info("prerendered static pages", zap.Int("count", len(written)))
	return written, nil
}

// Articles writes a decorated shell for every published article in src.
// Articles missing a title or featured image are skipped.
func (r *Renderer) Articles(ctx context.Context, src contentstore.Source) ([]string, error) {
	if src == nil {
		return nil, contentstore.ErrNotConfigured
	}
	base, err := r.readBase()
	if err != nil {
		return nil, err
	}
	articles, err := src.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("prerender: list articles: %w", err)
	}

	site := r.resolver.Site()
	var written []string
	for _, a := range articles {
		if err := metatags.ValidateArticle(a); err != nil {
			r.logger.Info("skipping article", zap.String("slug", a.Slug), zap.Error(err))
			continue
		}
		path := metatags.ArticlePath(a.Slug)
		if _, ok := metatags.ArticleSlug(path); !ok || strings.Trim(a.Slug, ".") == "" {
			r.logger.Warn("skipping article with unusable slug", zap.String("slug", a.Slug))
			continue
		}
		out, err := r.write(path, base, metatags.ArticleTags(site, a, path))
		if err != nil {
			return written, err
		}
		written = append(written, out)
	}
	r.logger.Info("prerendered articles", zap.Int("count", len(written)))
	return written, nil
}

// SitemapFile is the sitemap's name inside the dist directory.
const SitemapFile = "sitemap.xml"

// Sitemap writes sitemap.xml into dist. A nil source produces the static
// routes only.
func (r *Renderer) Sitemap(ctx context.Context, routes []sitemap.Route, src contentstore.Source, today time.Time) (string, error) {
	var articles []contentstore.Article
	if src != nil {
		list, err := src.ListPublished(ctx)
		if err != nil {
			return "", fmt.Errorf("sitemap: list articles: %w", err)
		}
		articles = list
	}
	body := sitemap.Build(r.resolver.Site().URL, routes, articles, today)
	out := filepath.Join(r.dist, SitemapFile)
	if err := os.MkdirAll(r.dist, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return "", err
	}
	r.logger.Info("wrote sitemap", zap.String("file", out), zap.Int("articles", len(articles)))
	return out, nil
}
