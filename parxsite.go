// Package parxsite serves the Parx Group marketing site: the built
// single-page app, link-preview metadata for static pages and Insights
// articles, the sitemap and the Insights feed.
//
// Two surfaces share one metadata pipeline. The edge middleware decorates the
// HTML the app would have served and falls back to that HTML untouched on any
// failure. The preview endpoint renders a standalone shell for one article and
// redirects on failure, because humans can land on it directly.
package parxsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/metatags"
)

// App is the central application. It wires together the article source,
// the metadata resolver, middleware, handlers and metrics.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Logger   *zap.Logger
	Source   contentstore.Source
	Resolver *metatags.Resolver
	Registry *prometheus.Registry

	metrics      *metrics
	customRoutes []func(*App)
	closers      []io.Closer
	sourceSet    bool
	ready        bool
	now          func() time.Time
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		now:    time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}
	return a
}

// Setup opens the article source and registers metrics, middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("parxsite: %w", err)
	}

	if !a.sourceSet {
		src, closer, err := openSourceOrDisable(a.Config.Content, a.Logger)
		if err != nil {
			return fmt.Errorf("parxsite: init content store: %w", err)
		}
		a.Source = src
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}
	a.Resolver = metatags.NewResolver(a.Config.Site, a.Source, a.Logger)

	m, err := newMetrics(a.Registry)
	if err != nil {
		return fmt.Errorf("parxsite: %w", err)
	}
	a.metrics = m

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.String("dist", a.Config.DistDir),
		zap.Bool("content_store", a.Source != nil),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", a.metricsHandler())
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/api/social-meta", a.handlePreview)
	e.GET("/api/social-meta/insights/:slug", a.handlePreview)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
