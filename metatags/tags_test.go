package metatags

import (
	"strings"
	"testing"

	"github.com/parxgroup/parxsite/contentstore"
)

func testSite() Site {
	return DefaultSite().Normalize()
}

func TestStaticTags(t *testing.T) {
	site := testSite()
	page, ok := site.Page("/about")
	if !ok {
		t.Fatal("expected /about in the static table")
	}
	b := StaticTags(site, page, "/about")

	want := map[string]string{
		"title":               "About Us - Parx Group",
		"description":         page.Description,
		"canonical":           "https://parxgroup.com/about",
		"og:type":             "website",
		"og:url":              "https://parxgroup.com/about",
		"og:image":            site.DefaultImage,
		"og:image:secure_url": site.DefaultImage,
		"og:image:type":       "image/png",
		"og:image:width":      "2000",
		"og:image:height":     "2000",
		"og:site_name":        "Parx Group",
		"og:locale":           "en_US",
		"twitter:card":        "summary_large_image",
		"twitter:title":       "About Us - Parx Group",
	}
	for key, v := range want {
		got, ok := b.Get(key)
		if !ok {
			t.Errorf("missing %s", key)
			continue
		}
		if got != v {
			t.Errorf("%s = %q, want %q", key, got, v)
		}
	}
	if _, ok := b.Get("article:published_time"); ok {
		t.Error("static pages must not carry article:published_time")
	}
	if _, ok := b.Get("article:author"); ok {
		t.Error("static pages must not carry article:author")
	}
}

func TestArticleTags(t *testing.T) {
	site := testSite()
	a := contentstore.Article{
		Slug:          "cyber-cover",
		Title:         "Cyber Cover",
		Excerpt:       "Why small firms need it.",
		FeaturedImage: "https://cdn.example.com/cyber.webp?v=2",
		Author:        "Sam Lee",
		PublishedAt:   "2024-05-01T10:00:00+00:00",
		Published:     true,
	}
	b := ArticleTags(site, a, "/insights/cyber-cover")

	want := map[string]string{
		"title":                  "Cyber Cover | Parx Group Insights",
		"og:type":                "article",
		"og:title":               "Cyber Cover | Parx Group Insights",
		"og:description":         "Why small firms need it.",
		"og:image":               a.FeaturedImage,
		"og:image:type":          "image/webp",
		"og:image:width":         "1200",
		"og:image:height":        "630",
		"og:image:alt":           "Cyber Cover",
		"og:url":                 "https://parxgroup.com/insights/cyber-cover",
		"article:published_time": "2024-05-01T10:00:00+00:00",
		"article:author":         "Sam Lee",
		"twitter:image:alt":      "Cyber Cover",
	}
	for key, v := range want {
		if got, _ := b.Get(key); got != v {
			t.Errorf("%s = %q, want %q", key, got, v)
		}
	}
}

func TestArticleTagsDefaults(t *testing.T) {
	site := testSite()
	b := ArticleTags(site, contentstore.Article{
		Slug:          "x",
		Title:         "X",
		FeaturedImage: "https://cdn.example.com/x.jpg",
	}, "/insights/x")

	if got, _ := b.Get("og:description"); got != site.DefaultExcerpt {
		t.Errorf("og:description = %q, want default excerpt", got)
	}
	if got, _ := b.Get("article:author"); got != "Parx Group" {
		t.Errorf("article:author = %q, want organization name", got)
	}
	if _, ok := b.Get("article:published_time"); ok {
		t.Error("article:published_time must be omitted when published_at is absent")
	}
	if strings.Contains(b.String(), "article:published_time") {
		t.Error("rendered block must not contain an empty published_time tag")
	}
}

func TestTagBlockEscapesEveryValue(t *testing.T) {
	site := testSite()
	b := ArticleTags(site, contentstore.Article{
		Slug:          "evil",
		Title:         `"><script>alert('x')</script>`,
		Excerpt:       `a & b`,
		FeaturedImage: `https://cdn.example.com/i.jpg?a=1&b="2"`,
		Author:        `O'Brien`,
	}, "/insights/evil")

	out := b.String()
	for _, bad := range []string{"<script>", `"><`, "'x'", `b="2"`, "O'Brien"} {
		if strings.Contains(out, bad) {
			t.Errorf("rendered block contains unescaped %q", bad)
		}
	}
	for _, good := range []string{"&lt;script&gt;", "a &amp; b", "O&#039;Brien", "&amp;b=&quot;2&quot;"} {
		if !strings.Contains(out, good) {
			t.Errorf("rendered block missing escaped %q", good)
		}
	}
}

func TestTagBlockOrder(t *testing.T) {
	site := testSite()
	page, _ := site.Page("/")
	lines := strings.Split(strings.TrimSpace(StaticTags(site, page, "/").String()), "\n")

	if !strings.HasPrefix(lines[0], "<title>") {
		t.Errorf("first tag = %q, want <title>", lines[0])
	}
	if !strings.Contains(lines[1], `name="description"`) {
		t.Errorf("second tag = %q, want description", lines[1])
	}
	if !strings.HasPrefix(lines[2], `<link rel="canonical"`) {
		t.Errorf("third tag = %q, want canonical link", lines[2])
	}
	if !strings.Contains(lines[3], `property="og:type"`) {
		t.Errorf("fourth tag = %q, want og:type", lines[3])
	}
}

func TestSiteAbsURL(t *testing.T) {
	site := Site{URL: "https://parxgroup.com/"}.Normalize()
	cases := map[string]string{
		"":                "https://parxgroup.com/",
		"/":               "https://parxgroup.com/",
		"/about":          "https://parxgroup.com/about",
		"insights/a-slug": "https://parxgroup.com/insights/a-slug",
	}
	for in, want := range cases {
		if got := site.AbsURL(in); got != want {
			t.Errorf("AbsURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSiteNormalizeCopiesPages(t *testing.T) {
	pages := []Page{{Path: "/a", Title: "A"}}
	site := Site{Pages: pages}.Normalize()
	pages[0].Title = "mutated"

	got, ok := site.Page("/a")
	if !ok || got.Title != "A" {
		t.Errorf("Page(/a) = %+v, %v; site must not share the caller's table", got, ok)
	}
	if _, ok := site.Page("/about"); ok {
		t.Error("custom table must replace the default table")
	}
}
