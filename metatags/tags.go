// Package metatags builds Open Graph, Twitter Card and canonical metadata
// for the marketing site and injects it into HTML documents served to link
// preview crawlers.
package metatags

import (
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/parxgroup/parxsite/contentstore"
)

// Tag element kinds.
const (
	ElementTitle = "title"
	ElementMeta  = "meta"
	ElementLink  = "link"
)

// Tag is one metadata element. Attr names the identifying attribute
// ("property", "name" or "rel") and Key its value. Content holds the
// unescaped text; escaping happens in String.
type Tag struct {
	Element string
	Attr    string
	Key     string
	Content string
}

// String renders the tag with every dynamic value escaped.
func (t Tag) String() string {
	switch t.Element {
	case ElementTitle:
		return "<title>" + EscapeHTML(t.Content) + "</title>"
	case ElementLink:
		return `<link rel="` + EscapeHTML(t.Key) + `" href="` + EscapeHTML(t.Content) + `">`
	default:
		return `<meta ` + t.Attr + `="` + EscapeHTML(t.Key) + `" content="` + EscapeHTML(t.Content) + `">`
	}
}

// TagBlock is the ordered set of tags decorating a single response.
type TagBlock struct {
	Tags []Tag
}

// String renders the block one tag per line.
func (b TagBlock) String() string {
	var sb strings.Builder
	for _, t := range b.Tags {
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Get returns the content of the first tag with the given key. The title
// element is addressed as "title".
func (b TagBlock) Get(key string) (string, bool) {
	for _, t := range b.Tags {
		if t.Element == ElementTitle {
			if key == ElementTitle {
				return t.Content, true
			}
			continue
		}
		if t.Key == key {
			return t.Content, true
		}
	}
	return "", false
}

func (b *TagBlock) title(s string) {
	b.Tags = append(b.Tags, Tag{Element: ElementTitle, Content: s})
}

func (b *TagBlock) property(key, content string) {
	b.Tags = append(b.Tags, Tag{Element: ElementMeta, Attr: "property", Key: key, Content: content})
}

func (b *TagBlock) name(key, content string) {
	b.Tags = append(b.Tags, Tag{Element: ElementMeta, Attr: "name", Key: key, Content: content})
}

func (b *TagBlock) link(rel, href string) {
	b.Tags = append(b.Tags, Tag{Element: ElementLink, Attr: "rel", Key: rel, Content: href})
}

// Preview images: the organization image is square, article images are
// landscape. Social renderers crop differently for each.
const (
	staticImageWidth   = 2000
	staticImageHeight  = 2000
	articleImageWidth  = 1200
	articleImageHeight = 630
)

type image struct {
	url, alt      string
	width, height int
}

type shared struct {
	ogType      string
	title       string
	description string
	url         string
	image       image
}

func (b *TagBlock) common(site Site, s shared) {
	b.title(s.title)
	b.name("description", s.description)
	b.link("canonical", s.url)

	b.property("og:type", s.ogType)
	b.property("og:url", s.url)
	b.property("og:title", s.title)
	b.property("og:description", s.description)
	b.property("og:image", s.image.url)
	b.property("og:image:secure_url", s.image.url)
	b.property("og:image:type", ImageType(s.image.url))
	b.property("og:image:width", strconv.Itoa(s.image.width))
	b.property("og:image:height", strconv.Itoa(s.image.height))
	b.property("og:image:alt", s.image.alt)
	b.property("og:site_name", site.Name)
	b.property("og:locale", site.Locale)

	b.name("twitter:card", "summary_large_image")
	b.name("twitter:url", s.url)
	b.name("twitter:title", s.title)
	b.name("twitter:description", s.description)
	b.name("twitter:image", s.image.url)
	b.name("twitter:image:alt", s.image.alt)
}

// StaticTags builds the block for a static marketing page.
func StaticTags(site Site, page Page, requestPath string) TagBlock {
	var b TagBlock
	b.common(site, shared{
		ogType:      "website",
		title:       page.Title + " - " + site.Name,
		description: page.Description,
		url:         site.AbsURL(requestPath),
		image: image{
			url:    site.DefaultImage,
			alt:    site.DefaultImageAlt,
			width:  staticImageWidth,
			height: staticImageHeight,
		},
	})
	return b
}

// ArticleTags builds the block for an Insights article. The article must
// already have passed ValidateArticle.
func ArticleTags(site Site, a contentstore.Article, requestPath string) TagBlock {
	excerpt := strings.TrimSpace(a.Excerpt)
	if excerpt == "" {
		excerpt = site.DefaultExcerpt
	}
	author := strings.TrimSpace(a.Author)
	if author == "" {
		author = site.Name
	}

	var b TagBlock
	b.common(site, shared{
		ogType:      "article",
		title:       a.Title + " | " + site.Name + " Insights",
		description: excerpt,
		url:         site.AbsURL(requestPath),
		image: image{
			url:    a.FeaturedImage,
			alt:    a.Title,
			width:  articleImageWidth,
			height: articleImageHeight,
		},
	})
	if a.PublishedAt != "" {
		b.property("article:published_time", a.PublishedAt)
	}
	b.property("article:author", author)
	return b
}

// ImageType guesses the MIME type of an image from its URL extension,
// defaulting to image/jpeg.
func ImageType(imageURL string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(imageURL, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
