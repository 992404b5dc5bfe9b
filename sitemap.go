package parxsite

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parxgroup/parxsite/sitemap"
)

// handleSitemap serves the live sitemap. Without a content store it lists
// the static routes only.
func (a *App) handleSitemap(c echo.Context) error {
	articles := a.publishedArticles(c.Request().Context())
	body := sitemap.Build(a.Config.Site.URL, a.Config.Routes, articles, a.now())
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, "application/xml; charset=UTF-8", body)
}
