package metatags

import (
	"net/url"
	"strings"
)

// Page is a static marketing route with compile-time metadata.
type Page struct {
	Path        string `mapstructure:"path"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
}

// Site is the immutable metadata configuration shared by every request. It
// is built once at startup and passed to the Resolver.
type Site struct {
	Name            string `mapstructure:"name"`
	URL             string `mapstructure:"url"`
	Locale          string `mapstructure:"locale"`
	DefaultImage    string `mapstructure:"default_image"`
	DefaultImageAlt string `mapstructure:"default_image_alt"`
	DefaultExcerpt  string `mapstructure:"default_excerpt"`
	Pages           []Page `mapstructure:"pages"`

	byPath map[string]Page
}

// DefaultSite returns the built-in Parx Group configuration.
func DefaultSite() Site {
	return Site{
		Name:            "Parx Group",
		URL:             "https://parxgroup.com",
		Locale:          "en_US",
		DefaultImage:    "https://parxgroup.com/parx-group-logo.png",
		DefaultImageAlt: "Parx Group logo",
		DefaultExcerpt:  "Insurance insights and risk management guidance from the Parx Group team.",
		Pages:           DefaultPages(),
	}
}

// DefaultPages returns the static page table.
func DefaultPages() []Page {
	return []Page{
		{Path: "/", Title: "Insurance Brokerage & Risk Advisory", Description: "Parx Group is an independent insurance brokerage helping individuals and businesses find the right cover at the right price."},
		{Path: "/about", Title: "About Us", Description: "Meet the Parx Group team and learn how we advocate for our clients across every line of insurance."},
		{Path: "/services", Title: "Our Services", Description: "Personal, commercial and specialty insurance placement, claims advocacy and risk reviews from Parx Group."},
		{Path: "/personal-insurance", Title: "Personal Insurance", Description: "Home, motor, life and health cover tailored to you and your family, compared across leading insurers."},
		{Path: "/business-insurance", Title: "Business Insurance", Description: "Liability, property, cyber and fleet insurance for businesses of every size, placed by experienced brokers."},
		{Path: "/insights", Title: "Insights", Description: "News, guides and analysis on insurance and risk management from the Parx Group team."},
		{Path: "/get-a-quote", Title: "Get a Quote", Description: "Tell us what you need covered and a Parx Group broker will come back with tailored quotes."},
		{Path: "/contact", Title: "Contact Us", Description: "Get in touch with Parx Group by phone, email or in person. We are here to help."},
		{Path: "/privacy-policy", Title: "Privacy Policy", Description: "How Parx Group collects, uses and protects your personal information."},
	}
}

// Normalize fills empty fields from DefaultSite and indexes the page table.
// The returned Site owns a private copy of the table.
func (s Site) Normalize() Site {
	def := DefaultSite()
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.URL == "" {
		s.URL = def.URL
	}
	s.URL = strings.TrimRight(s.URL, "/")
	if s.Locale == "" {
		s.Locale = def.Locale
	}
	if s.DefaultImage == "" {
		s.DefaultImage = def.DefaultImage
	}
	if s.DefaultImageAlt == "" {
		s.DefaultImageAlt = s.Name + " logo"
	}
	if s.DefaultExcerpt == "" {
		s.DefaultExcerpt = def.DefaultExcerpt
	}
	if len(s.Pages) == 0 {
		s.Pages = def.Pages
	}
	pages := make([]Page, len(s.Pages))
	copy(pages, s.Pages)
	s.Pages = pages
	s.byPath = make(map[string]Page, len(pages))
	for _, p := range pages {
		s.byPath[p.Path] = p
	}
	return s
}

// Page looks up a static page by exact path.
func (s Site) Page(path string) (Page, bool) {
	p, ok := s.byPath[path]
	return p, ok
}

// AbsURL joins the site URL with a request path. Query strings are dropped.
func (s Site) AbsURL(path string) string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return s.URL + path
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
