package parxsite

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/logging"
)

// OpenSource builds the article source described by cfg. The SQLite mirror
// wins over the REST store when both are configured. When neither is, it
// returns a nil source and contentstore.ErrNotConfigured; callers log that
// once and run with article resolution disabled.
//
// The returned closer is non-nil only when the source owns resources.
func OpenSource(cfg ContentConfig, logger *zap.Logger) (contentstore.Source, io.Closer, error) {
	logger = logging.OrNop(logger)
	var (
		src    contentstore.Source
		closer io.Closer
	)
	switch {
	case cfg.DatabasePath != "":
		store, err := contentstore.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open article mirror: %w", err)
		}
		src, closer = store, store
	default:
		client, err := contentstore.NewRESTClient(cfg.URL, cfg.APIKey,
			contentstore.WithTable(cfg.Table),
			contentstore.WithTimeout(cfg.Timeout),
			contentstore.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		src = client
	}
	if cfg.CacheTTL > 0 {
		src = contentstore.NewCache(src, cfg.CacheTTL)
	}
	return src, closer, nil
}

// openSourceOrDisable is OpenSource with ErrNotConfigured downgraded to a
// single warning.
func openSourceOrDisable(cfg ContentConfig, logger *zap.Logger) (contentstore.Source, io.Closer, error) {
	src, closer, err := OpenSource(cfg, logger)
	if errors.Is(err, contentstore.ErrNotConfigured) {
		logger.Warn("content store not configured; article metadata, feed and dynamic sitemap entries disabled")
		return nil, nil, nil
	}
	return src, closer, err
}
