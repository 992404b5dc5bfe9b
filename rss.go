package parxsite

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/metatags"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Image         *rssImage `xml:"image,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

// rssDate converts a content-store timestamp to RFC 1123 with numeric zone.
func rssDate(ts string) string {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.Format(time.RFC1123Z)
	}
	if t, err := time.Parse("2006-01-02", contentstore.DateOnly(ts)); err == nil {
		return t.Format(time.RFC1123Z)
	}
	return ""
}

// languageTag turns a locale such as en_US into an RSS language code.
func languageTag(locale string) string {
	return strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
}

func (a *App) renderRSS(c echo.Context, articles []contentstore.Article) error {
	site := a.Config.Site
	items := make([]rssItem, 0, len(articles))
	lastBuild := ""
	for _, p := range articles {
		if !p.Published || p.Slug == "" {
			continue
		}
		link := site.AbsURL(metatags.ArticlePath(p.Slug))
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			PubDate:     rssDate(p.PublishedAt),
			GUID:        link,
		}
		if p.FeaturedImage != "" {
			item.Enclosure = &rssEnclosure{URL: p.FeaturedImage, Type: metatags.ImageType(p.FeaturedImage)}
		}
		if lastBuild == "" {
			lastBuild = rssDate(p.LastModified())
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         site.Name + " Insights",
			Link:          site.AbsURL("/insights"),
			Description:   site.DefaultExcerpt,
			Language:      languageTag(site.Locale),
			LastBuildDate: lastBuild,
			Image: &rssImage{
				URL:   site.DefaultImage,
				Title: site.Name + " Insights",
				Link:  site.AbsURL("/insights"),
			},
			Items: items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
