package parxsite

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/metatags"
	"github.com/parxgroup/parxsite/sitemap"
)

// SiteConfig holds all configuration for the Parx Group site.
type SiteConfig struct {
	Site   metatags.Site   `mapstructure:"site"`   // Metadata and static page table
	Routes []sitemap.Route `mapstructure:"routes"` // Sitemap route table

	Addr    string `mapstructure:"addr"`     // Listen address (default ":3000")
	DistDir string `mapstructure:"dist_dir"` // Built SPA directory (default "dist")

	Content ContentConfig `mapstructure:"content"`

	CrawlerOnly bool `mapstructure:"crawler_only"` // Decorate crawler requests only
	Development bool `mapstructure:"development"`  // Development logging
}

// ContentConfig describes where Insights articles come from.
type ContentConfig struct {
	URL          string        `mapstructure:"url"`           // REST base URL
	APIKey       string        `mapstructure:"api_key"`       // Public key, sent as apikey and bearer token
	Table        string        `mapstructure:"table"`         // Article table (default "articles")
	Timeout      time.Duration `mapstructure:"timeout"`       // Per-fetch timeout (default 10s)
	DatabasePath string        `mapstructure:"database_path"` // SQLite mirror; overrides the REST store when set
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`     // Read cache TTL (0 disables)
}

// Configured reports whether any article source is configured.
func (c ContentConfig) Configured() bool {
	return c.DatabasePath != "" || (c.URL != "" && c.APIKey != "")
}

func (c *SiteConfig) setDefaults() {
	c.Site = c.Site.Normalize()
	if len(c.Routes) == 0 {
		c.Routes = sitemap.DefaultRoutes()
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DistDir == "" {
		c.DistDir = "dist"
	}
	if c.Content.Table == "" {
		c.Content.Table = "articles"
	}
	if c.Content.Timeout == 0 {
		c.Content.Timeout = 10 * time.Second
	}
}

// Validate enforces values the site cannot run without.
func (c SiteConfig) Validate() error {
	u, err := url.Parse(c.Site.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.url must be an absolute URL, got %q", c.Site.URL)
	}
	if err := sitemap.Validate(c.Routes); err != nil {
		return err
	}
	for _, p := range c.Site.Pages {
		if !strings.HasPrefix(p.Path, "/") {
			return fmt.Errorf("site.pages: path %q must start with /", p.Path)
		}
		if p.Title == "" {
			return fmt.Errorf("site.pages: %s has no title", p.Path)
		}
	}
	if c.Content.Timeout < 0 {
		return fmt.Errorf("content.timeout must be >= 0")
	}
	return nil
}

// LoadConfig builds a SiteConfig from an optional YAML file and the
// environment. Keys map to PARX_-prefixed variables (site.url becomes
// PARX_SITE_URL). Content-store credentials also honor SUPABASE_URL and
// SUPABASE_ANON_KEY, with or without the VITE_ prefix.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PARX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setConfigDefaults(v)
	if err := bindContentEnv(v); err != nil {
		return SiteConfig{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	def := metatags.DefaultSite()
	v.SetDefault("addr", ":3000")
	v.SetDefault("dist_dir", "dist")
	v.SetDefault("site.name", def.Name)
	v.SetDefault("site.url", def.URL)
	v.SetDefault("site.locale", def.Locale)
	v.SetDefault("site.default_image", def.DefaultImage)
	v.SetDefault("site.default_excerpt", def.DefaultExcerpt)
	v.SetDefault("content.table", "articles")
	v.SetDefault("content.timeout", "10s")
	v.SetDefault("content.database_path", "")
	v.SetDefault("content.cache_ttl", "0s")
	v.SetDefault("crawler_only", false)
	v.SetDefault("development", false)
}

func bindContentEnv(v *viper.Viper) error {
	if err := v.BindEnv("content.url", "PARX_CONTENT_URL", "SUPABASE_URL", "VITE_SUPABASE_URL"); err != nil {
		return fmt.Errorf("bind content.url: %w", err)
	}
	if err := v.BindEnv("content.api_key", "PARX_CONTENT_API_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"); err != nil {
		return fmt.Errorf("bind content.api_key: %w", err)
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithSource replaces the content store built from ContentConfig. A nil
// source leaves article resolution disabled.
func WithSource(src contentstore.Source) Option {
	return func(a *App) {
		a.Source = src
		a.sourceSet = true
	}
}

// WithLogger sets the application logger (default no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.Registry = reg
	}
}
