package parxsite

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
)

func (a *App) handleHealth(c echo.Context) error {
	store := "disabled"
	if a.Source != nil {
		store = "configured"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":        "ok",
		"content_store": store,
	})
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.publishedArticles(c.Request().Context()))
}

// publishedArticles lists published articles, newest first. A missing or
// failing content store yields no articles so the static routes still serve.
func (a *App) publishedArticles(ctx context.Context) []contentstore.Article {
	if a.Source == nil {
		return nil
	}
	articles, err := a.Source.ListPublished(ctx)
	if err != nil {
		a.Logger.Warn("list published articles", zap.Error(err))
		return nil
	}
	return articles
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = c.String(http.StatusNotFound, "Not Found")
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		_ = c.String(code, http.StatusText(code))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
