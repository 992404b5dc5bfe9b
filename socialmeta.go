package parxsite

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/metatags"
)

const (
	surfaceEdge    = "edge"
	surfacePreview = "preview"
)

const (
	outcomeNotHTML = "origin_not_html"
	outcomePanic   = "panic"
)

// resolve runs one resolver lookup and times article fetches.
func (a *App) resolve(ctx context.Context, lookup func(context.Context) (metatags.Resolution, error)) (metatags.Resolution, error) {
	start := a.now()
	res, err := lookup(ctx)
	if res.Kind == metatags.ArticleMatch {
		a.metrics.observeResolve(metatags.Outcome(err), a.now().Sub(start))
	}
	return res, err
}

// decorate injects the resolved block into base. On failure it returns base
// unchanged together with the error.
func (a *App) decorate(base string, res metatags.Resolution) (string, error) {
	out, err := metatags.Inject(base, res.Block)
	if err != nil {
		return base, err
	}
	return out, nil
}

// fail presents a request that could not be decorated according to policy.
// origin may be nil for policies that redirect.
func (a *App) fail(c echo.Context, policy metatags.FailurePolicy, origin echo.HandlerFunc) error {
	if target, ok := policy.Redirect(); ok {
		return c.Redirect(http.StatusFound, target)
	}
	if origin == nil {
		return echo.ErrNotFound
	}
	return origin(c)
}

// report logs and counts one pipeline result.
func (a *App) report(c echo.Context, surface string, res metatags.Resolution, outcome string, err error, crawler bool) {
	a.metrics.observe(surface, res.Kind.String(), outcome, crawler)

	fields := []zap.Field{
		zap.String("surface", surface),
		zap.String("path", res.Path),
		zap.String("kind", res.Kind.String()),
		zap.String("outcome", outcome),
		zap.Bool("crawler", crawler),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
	}
	if res.Slug != "" {
		fields = append(fields, zap.String("slug", res.Slug))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	switch {
	case err == nil && outcome == metatags.Outcome(nil):
		a.Logger.Debug("metadata injected", fields...)
	case errors.Is(err, metatags.ErrNoHeadClose), outcome == outcomePanic:
		a.Logger.Error("metadata injection failed", fields...)
	case contentstore.IsUpstream(err):
		a.Logger.Warn("content store unavailable", fields...)
	case errors.Is(err, contentstore.ErrNotConfigured):
		a.Logger.Debug("metadata skipped", fields...)
	default:
		a.Logger.Info("metadata skipped", fields...)
	}
}

// socialMetaMiddleware decorates the HTML served for static pages and
// Insights articles with the matching metadata. Anything it cannot decorate
// is served exactly as the app would have served it.
func (a *App) socialMetaMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			return next(c)
		}
		crawler := metatags.IsCrawler(req.UserAgent())
		if a.Config.CrawlerOnly && !crawler {
			return next(c)
		}

		path := req.URL.Path
		res, err := a.resolve(req.Context(), func(ctx context.Context) (metatags.Resolution, error) {
			return a.Resolver.Resolve(ctx, path)
		})
		if res.Kind == metatags.NoMatch {
			return next(c)
		}
		if err != nil {
			a.report(c, surfaceEdge, res, metatags.Outcome(err), err, crawler)
			return a.fail(c, metatags.Passthrough, next)
		}

		origin, err := captureOrigin(c, next)
		if err != nil {
			return err
		}
		if !origin.isHTML() {
			a.report(c, surfaceEdge, res, outcomeNotHTML, nil, crawler)
			return origin.replay(c)
		}

		doc, err := a.decorate(origin.body.String(), res)
		a.report(c, surfaceEdge, res, metatags.Outcome(err), err, crawler)
		if err != nil {
			return a.fail(c, metatags.Passthrough, origin.replay)
		}
		return writeDecorated(c, doc)
	}
}

// originResponse buffers what the next handler wrote. Headers go straight to
// the real response so they survive a replay.
type originResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (o *originResponse) Header() http.Header {
	return o.header
}

func (o *originResponse) WriteHeader(code int) {
	if o.status == 0 {
		o.status = code
	}
}

func (o *originResponse) Write(b []byte) (int, error) {
	if o.status == 0 {
		o.status = http.StatusOK
	}
	return o.body.Write(b)
}

func (o *originResponse) isHTML() bool {
	if o.status != http.StatusOK {
		return false
	}
	mt, _, err := mime.ParseMediaType(o.header.Get(echo.HeaderContentType))
	return err == nil && mt == "text/html"
}

// replay writes the buffered response unmodified.
func (o *originResponse) replay(c echo.Context) error {
	resp := c.Response()
	resp.WriteHeader(o.status)
	if c.Request().Method == http.MethodHead {
		return nil
	}
	_, err := resp.Write(o.body.Bytes())
	return err
}

// captureOrigin runs next against a buffer. HEAD requests are served as GET
// so there is a document to decorate; conditional and range headers are
// dropped for the same reason.
func captureOrigin(c echo.Context, next echo.HandlerFunc) (*originResponse, error) {
	req := c.Request()
	resp := c.Response()

	method := req.Method
	req.Method = http.MethodGet
	for _, h := range []string{"If-Modified-Since", "If-None-Match", "If-Range", "Range"} {
		req.Header.Del(h)
	}

	w := resp.Writer
	origin := &originResponse{header: w.Header()}
	resp.Writer = origin

	err := next(c)

	req.Method = method
	resp.Writer = w
	resp.Committed = false
	resp.Status = http.StatusOK
	resp.Size = 0

	if err != nil {
		return nil, err
	}
	if origin.status == 0 {
		origin.status = http.StatusOK
	}
	return origin, nil
}

// writeDecorated emits an injected document.
func writeDecorated(c echo.Context, doc string) error {
	h := c.Response().Header()
	for _, k := range []string{echo.HeaderContentLength, echo.HeaderLastModified, "Etag", "Accept-Ranges"} {
		h.Del(k)
	}
	h.Set("Cache-Control", "public, max-age=0, must-revalidate")
	if c.Request().Method == http.MethodHead {
		h.Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		return nil
	}
	return Render(c, templ.Raw(doc))
}
