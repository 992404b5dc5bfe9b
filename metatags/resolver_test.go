package metatags

import (
	"context"
	"errors"
	"testing"

	"github.com/parxgroup/parxsite/contentstore"
)

type fakeSource struct {
	articles map[string]contentstore.Article
	err      error
	calls    int
}

func (f *fakeSource) GetArticle(ctx context.Context, slug string) (contentstore.Article, error) {
	f.calls++
	if f.err != nil {
		return contentstore.Article{}, f.err
	}
	a, ok := f.articles[slug]
	if !ok {
		return contentstore.Article{}, contentstore.ErrNotFound
	}
	return a, nil
}

func (f *fakeSource) ListPublished(ctx context.Context) ([]contentstore.Article, error) {
	return nil, nil
}

func TestResolveStatic(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(DefaultSite(), src, nil)

	res, err := r.Resolve(context.Background(), "/business-insurance")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Kind != StaticMatch {
		t.Fatalf("Kind = %v, want static", res.Kind)
	}
	if got, _ := res.Block.Get("title"); got != "Business Insurance - Parx Group" {
		t.Errorf("title = %q", got)
	}
	if src.calls != 0 {
		t.Error("static pages must not hit the content store")
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(DefaultSite(), &fakeSource{}, nil)
	for _, p := range []string{"/unknown", "/about/team", "/insights/a/b", "/insights/", "/assets/index.js"} {
		res, err := r.Resolve(context.Background(), p)
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", p, err)
		}
		if res.Kind != NoMatch {
			t.Errorf("Resolve(%q) kind = %v, want none", p, res.Kind)
		}
	}
}

func TestResolveArticle(t *testing.T) {
	src := &fakeSource{articles: map[string]contentstore.Article{
		"example-slug": {Slug: "example-slug", Title: "Example", FeaturedImage: "https://cdn.example.com/e.jpg", Published: true},
	}}
	r := NewResolver(DefaultSite(), src, nil)

	for _, p := range []string{"/insights/example-slug", "/insights/example-slug/"} {
		res, err := r.Resolve(context.Background(), p)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", p, err)
		}
		if res.Kind != ArticleMatch || res.Slug != "example-slug" {
			t.Fatalf("Resolve(%q) = %+v", p, res)
		}
		if got, _ := res.Block.Get("og:url"); got != "https://parxgroup.com/insights/example-slug" {
			t.Errorf("og:url = %q", got)
		}
	}
}

func TestResolveArticleFailures(t *testing.T) {
	upstream := &contentstore.UpstreamError{Op: "get article", Status: 502}
	cases := []struct {
		name    string
		src     contentstore.Source
		want    error
		outcome string
	}{
		{"missing", &fakeSource{}, contentstore.ErrNotFound, "not_found"},
		{"no image", &fakeSource{articles: map[string]contentstore.Article{
			"test": {Slug: "test", Title: "T", FeaturedImage: "", Excerpt: "E"},
		}}, ErrInvalidRecord, "invalid_record"},
		{"no title", &fakeSource{articles: map[string]contentstore.Article{
			"test": {Slug: "test", Title: "  ", FeaturedImage: "https://x/y.jpg"},
		}}, ErrInvalidRecord, "invalid_record"},
		{"upstream", &fakeSource{err: upstream}, upstream, "upstream_error"},
		{"not configured", nil, contentstore.ErrNotConfigured, "not_configured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(DefaultSite(), tc.src, nil)
			res, err := r.Resolve(context.Background(), "/insights/test")
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if res.Kind != ArticleMatch || res.Slug != "test" {
				t.Errorf("resolution = %+v, want article match carrying the slug", res)
			}
			if len(res.Block.Tags) != 0 {
				t.Error("no tags may be built for a failed article")
			}
			if got := Outcome(err); got != tc.outcome {
				t.Errorf("Outcome = %q, want %q", got, tc.outcome)
			}
		})
	}
}

func TestFailurePolicy(t *testing.T) {
	if _, ok := Passthrough.Redirect(); ok {
		t.Error("Passthrough must not redirect")
	}
	target, ok := RedirectTo("/").Redirect()
	if !ok || target != "/" {
		t.Errorf("RedirectTo(/) = %q, %v", target, ok)
	}
	if Passthrough.String() != "passthrough" || RedirectTo("/").String() != "redirect:/" {
		t.Error("unexpected policy names")
	}
}

func TestArticleSlug(t *testing.T) {
	if s, ok := ArticleSlug("/insights/flood-cover"); !ok || s != "flood-cover" {
		t.Errorf("ArticleSlug = %q, %v", s, ok)
	}
	if _, ok := ArticleSlug("/insights"); ok {
		t.Error("/insights is the listing page, not an article")
	}
	if ArticlePath("x") != "/insights/x" {
		t.Error("ArticlePath mismatch")
	}
}
