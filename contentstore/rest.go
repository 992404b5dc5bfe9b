package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTable   = "articles"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// RESTClient reads articles from the hosted backend's REST interface.
// The anon key is sent both as the apikey header and as the bearer token.
type RESTClient struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
	logger  *zap.Logger
}

// RESTOption configures a RESTClient.
type RESTOption func(*RESTClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *RESTClient) { r.client = c }
}

// WithTable sets the table queried for articles (default "articles").
func WithTable(table string) RESTOption {
	return func(r *RESTClient) {
		if table != "" {
			r.table = table
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) RESTOption {
	return func(r *RESTClient) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l *zap.Logger) RESTOption {
	return func(r *RESTClient) { r.logger = l }
}

// NewRESTClient returns a client for the content store at baseURL. It returns
// ErrNotConfigured when either the URL or the key is empty.
func NewRESTClient(baseURL, apiKey string, opts ...RESTOption) (*RESTClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("contentstore: invalid base url: %w", err)
	}
	r := &RESTClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		table:   defaultTable,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// GetArticle fetches one published article by slug.
func (r *RESTClient) GetArticle(ctx context.Context, slug string) (Article, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("slug", "eq."+slug)
	q.Set("published", "eq.true")
	q.Set("limit", "1")

	var articles []Article
	if err := r.get(ctx, "get article", q, &articles); err != nil {
		return Article{}, err
	}
	if len(articles) == 0 {
		return Article{}, ErrNotFound
	}
	return articles[0], nil
}

// ListPublished fetches every published article, newest first.
func (r *RESTClient) ListPublished(ctx context.Context) ([]Article, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("published", "eq.true")
	q.Set("order", "published_at.desc")

	var articles []Article
	if err := r.get(ctx, "list published", q, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *RESTClient) get(ctx context.Context, op string, q url.Values, out any) error {
	endpoint := r.baseURL + "/rest/v1/" + url.PathEscape(r.table) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("content store request failed", zap.String("op", op), zap.Error(err))
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck // drain for keep-alive
		r.logger.Warn("content store returned non-2xx",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
