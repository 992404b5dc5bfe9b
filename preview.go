package parxsite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/metatags"
)

type previewError struct {
	Error string     `json:"error"`
	Path  string     `json:"path"`
	Query url.Values `json:"query"`
}

// handlePreview serves a standalone link-preview document for one Insights
// article, addressed as /api/social-meta?slug=X or
// /api/social-meta/insights/X. Lookup failures redirect home; injection
// failures and panics redirect to the article itself.
func (a *App) handlePreview(c echo.Context) (err error) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		slug = strings.TrimSpace(c.QueryParam("slug"))
	}
	if _, ok := metatags.ArticleSlug(metatags.ArticlePath(slug)); !ok {
		return c.JSON(http.StatusBadRequest, previewError{
			Error: "Missing or invalid slug",
			Path:  c.Request().URL.Path,
			Query: c.QueryParams(),
		})
	}

	crawler := metatags.IsCrawler(c.Request().UserAgent())
	articlePath := metatags.ArticlePath(slug)
	res := metatags.Resolution{Kind: metatags.ArticleMatch, Path: articlePath, Slug: slug}

	defer func() {
		if r := recover(); r != nil {
			a.report(c, surfacePreview, res, outcomePanic, fmt.Errorf("panic: %v", r), crawler)
			err = a.fail(c, metatags.RedirectTo(articlePath), nil)
		}
	}()

	res, err = a.resolve(c.Request().Context(), func(ctx context.Context) (metatags.Resolution, error) {
		return a.Resolver.ResolveArticle(ctx, slug)
	})
	if err != nil {
		a.report(c, surfacePreview, res, metatags.Outcome(err), err, crawler)
		return a.fail(c, metatags.RedirectTo("/"), nil)
	}

	base, err := renderString(c.Request().Context(), previewShell(a.Config.Site.Name, articlePath))
	if err != nil {
		a.Logger.Error("render preview shell", zap.String("slug", slug), zap.Error(err))
		return a.fail(c, metatags.RedirectTo(articlePath), nil)
	}

	doc, err := a.decorate(base, res)
	a.report(c, surfacePreview, res, metatags.Outcome(err), err, crawler)
	if err != nil {
		return a.fail(c, metatags.RedirectTo(articlePath), nil)
	}
	return Render(c, templ.Raw(doc))
}

// previewShell is the minimal document crawlers read tags from. Browsers
// are sent on to the article right away.
func previewShell(siteName, target string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		js, err := templ.JSONString(target)
		if err != nil {
			return err
		}
		href := templ.EscapeString(target)
		_, err = io.WriteString(w, `<!doctype html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>`+templ.EscapeString(siteName)+`</title>
<noscript><meta http-equiv="refresh" content="0; url=`+href+`" /></noscript>
</head>
<body>
<p>Redirecting to <a href="`+href+`">`+href+`</a></p>
<script>window.location.replace(`+js+`);</script>
</body>
</html>
`)
		return err
	})
}
