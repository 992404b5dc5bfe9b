package parxsite

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "parxsite"

// metrics owns the collectors for the metadata pipeline. HTTP request
// metrics come from echoprometheus on the same registry.
type metrics struct {
	decorated     *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		decorated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "social_meta_total",
			Help:      "Metadata pipeline results partitioned by surface, match kind and outcome.",
		}, []string{"surface", "kind", "outcome", "crawler"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "article_resolve_duration_seconds",
			Help:      "Time spent fetching and validating an article, by outcome.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{m.decorated, m.fetchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metadata collector: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) observe(surface, kind, outcome string, crawler bool) {
	crawlerLabel := "false"
	if crawler {
		crawlerLabel = "true"
	}
	m.decorated.WithLabelValues(surface, kind, outcome, crawlerLabel).Inc()
}

func (m *metrics) observeResolve(outcome string, d time.Duration) {
	m.fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (a *App) metricsMiddleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: a.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
	})
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.Registry,
	})
}
