package metatags

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
)

// ErrInvalidRecord is returned for an article missing its title or featured
// image. Callers treat it exactly like a missing article.
var ErrInvalidRecord = errors.New("metatags: article missing title or featured_image")

// Kind classifies a request path.
type Kind int

const (
	NoMatch Kind = iota
	StaticMatch
	ArticleMatch
)

func (k Kind) String() string {
	switch k {
	case StaticMatch:
		return "static"
	case ArticleMatch:
		return "article"
	default:
		return "none"
	}
}

// Resolution is the outcome of resolving one request path.
type Resolution struct {
	Kind  Kind
	Path  string
	Slug  string
	Block TagBlock
}

var articlePath = regexp.MustCompile(`^/insights/([^/]+)/?$`)

// ArticleSlug extracts the slug from an /insights/{slug} path.
func ArticleSlug(path string) (string, bool) {
	m := articlePath.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ArticlePath is the canonical path of the article with the given slug.
func ArticlePath(slug string) string {
	return "/insights/" + slug
}

// ValidateArticle checks the fields required to build a tag block.
func ValidateArticle(a contentstore.Article) error {
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.FeaturedImage) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRecord, a.Slug)
	}
	return nil
}

// Resolver maps request paths to tag blocks. It holds no per-request state.
type Resolver struct {
	site   Site
	source contentstore.Source
	logger *zap.Logger
}

// NewResolver returns a Resolver for site. A nil source disables article
// resolution; article paths then fail with contentstore.ErrNotConfigured.
func NewResolver(site Site, source contentstore.Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{site: site.Normalize(), source: source, logger: logger}
}

// Site returns the resolver's site configuration.
func (r *Resolver) Site() Site {
	return r.site
}

// Resolve classifies path and builds its tag block. A NoMatch resolution is
// not an error. For article paths the returned Resolution carries the slug
// even when err is non-nil.
func (r *Resolver) Resolve(ctx context.Context, path string) (Resolution, error) {
	if page, ok := r.site.Page(path); ok {
		return Resolution{
			Kind:  StaticMatch,
			Path:  path,
			Block: StaticTags(r.site, page, path),
		}, nil
	}

	slug, ok := ArticleSlug(path)
	if !ok {
		return Resolution{Kind: NoMatch, Path: path}, nil
	}
	return r.ResolveArticle(ctx, slug)
}

// ResolveArticle fetches and validates the article with the given slug.
func (r *Resolver) ResolveArticle(ctx context.Context, slug string) (Resolution, error) {
	res := Resolution{Kind: ArticleMatch, Path: ArticlePath(slug), Slug: slug}
	if r.source == nil {
		return res, contentstore.ErrNotConfigured
	}

	a, err := r.source.GetArticle(ctx, slug)
	if err != nil {
		return res, err
	}
	if err := ValidateArticle(a); err != nil {
		r.logger.Info("article not eligible for metadata", zap.String("slug", slug), zap.Error(err))
		return res, err
	}
	res.Block = ArticleTags(r.site, a, res.Path)
	return res, nil
}

// Outcome names the result of a resolve/inject cycle for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "injected"
	case errors.Is(err, contentstore.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, contentstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid_record"
	case errors.Is(err, ErrNoHeadClose):
		return "injection_error"
	case contentstore.IsUpstream(err):
		return "upstream_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// FailurePolicy decides how a surface presents a request it could not
// decorate: pass the origin response through, or redirect elsewhere.
type FailurePolicy struct {
	redirect string
}

// Passthrough serves the origin response unmodified.
var Passthrough = FailurePolicy{}

// RedirectTo redirects the client to path.
func RedirectTo(path string) FailurePolicy {
	return FailurePolicy{redirect: path}
}

// Redirect returns the redirect target, if the policy redirects.
func (p FailurePolicy) Redirect() (string, bool) {
	return p.redirect, p.redirect != ""
}

func (p FailurePolicy) String() string {
	if p.redirect == "" {
		return "passthrough"
	}
	return "redirect:" + p.redirect
}
