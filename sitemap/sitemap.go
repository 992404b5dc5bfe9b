// Package sitemap renders sitemap.xml for the fixed marketing routes and the
// published Insights articles.
package sitemap

import (
	"fmt"
	"strings"
	"time"

	"github.com/parxgroup/parxsite/contentstore"
)

// ChangeFreq is the sitemap changefreq value.
type ChangeFreq string

const (
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
	Yearly  ChangeFreq = "yearly"
)

// Valid reports whether f is one of the supported values.
func (f ChangeFreq) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Route is a fixed site route listed in the sitemap.
type Route struct {
	Path       string     `mapstructure:"path"`
	Priority   float64    `mapstructure:"priority"`
	ChangeFreq ChangeFreq `mapstructure:"changefreq"`
}

// Article entries share one priority and change frequency.
const (
	ArticlePriority   = 0.60
	ArticleChangeFreq = Monthly
)

// Namespace is the sitemaps.org urlset namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// DefaultRoutes returns the fixed route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Priority: 1.00, ChangeFreq: Weekly},
		{Path: "/about", Priority: 0.80, ChangeFreq: Monthly},
		{Path: "/services", Priority: 0.90, ChangeFreq: Monthly},
		{Path: "/personal-insurance", Priority: 0.80, ChangeFreq: Monthly},
		{Path: "/business-insurance", Priority: 0.80, ChangeFreq: Monthly},
		{Path: "/insights", Priority: 0.90, ChangeFreq: Weekly},
		{Path: "/get-a-quote", Priority: 0.70, ChangeFreq: Monthly},
		{Path: "/contact", Priority: 0.70, ChangeFreq: Yearly},
		{Path: "/privacy-policy", Priority: 0.30, ChangeFreq: Yearly},
	}
}

// Validate checks priorities and change frequencies.
func Validate(routes []Route) error {
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("sitemap: route %q must start with /", r.Path)
		}
		if r.Priority < 0 || r.Priority > 1 {
			return fmt.Errorf("sitemap: route %q priority %.2f out of range", r.Path, r.Priority)
		}
		if !r.ChangeFreq.Valid() {
			return fmt.Errorf("sitemap: route %q has invalid changefreq %q", r.Path, r.ChangeFreq)
		}
	}
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes &, <, >, " and ' with the five predefined XML entities.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

type entry struct {
	loc        string
	lastmod    string
	changefreq ChangeFreq
	priority   float64
}

// Build renders the sitemap. Static routes carry today's date as lastmod;
// articles carry updated_at, else published_at, else no lastmod. Articles keep
// the order they are given in, which is published_at descending from the
// content store. Unpublished articles are skipped.
func Build(baseURL string, routes []Route, articles []contentstore.Article, today time.Time) []byte {
	base := strings.TrimRight(baseURL, "/")
	stamp := today.Format("2006-01-02")

	entries := make([]entry, 0, len(routes)+len(articles))
	for _, r := range routes {
		entries = append(entries, entry{
			loc:        base + r.Path,
			lastmod:    stamp,
			changefreq: r.ChangeFreq,
			priority:   r.Priority,
		})
	}
	for _, a := range articles {
		if !a.Published || a.Slug == "" {
			continue
		}
		entries = append(entries, entry{
			loc:        base + "/insights/" + a.Slug,
			lastmod:    contentstore.DateOnly(a.LastModified()),
			changefreq: ArticleChangeFreq,
			priority:   ArticlePriority,
		})
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="` + Namespace + `">` + "\n")
	for _, e := range entries {
		sb.WriteString("  <url>\n")
		sb.WriteString("    <loc>" + EscapeXML(e.loc) + "</loc>\n")
		if e.lastmod != "" {
			sb.WriteString("    <lastmod>" + EscapeXML(e.lastmod) + "</lastmod>\n")
		}
		sb.WriteString("    <changefreq>" + string(e.changefreq) + "</changefreq>\n")
		fmt.Fprintf(&sb, "    <priority>%.2f</priority>\n", e.priority)
		sb.WriteString("  </url>\n")
	}
	sb.WriteString("</urlset>\n")
	return []byte(sb.String())
}
