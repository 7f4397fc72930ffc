package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"idanlev/carwatch/helpers"
	apperrors "idanlev/carwatch/pkg/errors"
	"idanlev/carwatch/services/cache"
	"idanlev/carwatch/services/snapshot"
)

// HTTPFetcher fetches pages over plain HTTP with browser-like headers.
// When a cache service is configured, sources that rate limit us get a block
// key with a TTL, and later runs skip them until it expires. The monitor is
// cron-driven, so the block has to outlive the process.
type HTTPFetcher struct {
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// NewHTTPFetcher creates an HTTP fetcher. cacheSvc may be nil, which
// disables the cross-run rate-limit guard.
func NewHTTPFetcher(cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	if blockTime <= 0 {
		blockTime = 10 * time.Minute
	}
	return &HTTPFetcher{
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
	}
}

// Fetch retrieves url and parses it into a document.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blockKey := "fetch_block_" + snapshot.Key(url)

	// Check whether a previous run was rate limited on this endpoint
	if f.CacheSvc != nil {
		if _, err := f.CacheSvc.Get(blockKey); err == nil {
			return nil, apperrors.NewRateLimit(url, f.BlockTime)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			if f.CacheSvc != nil {
				f.CacheSvc.Set(blockKey, []byte(fmt.Sprintf("%d", f.BlockTime/time.Second)), f.BlockTime)
			}
			return nil, apperrors.NewRateLimit(url, f.BlockTime)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Close implements Fetcher; the underlying client needs no teardown.
func (f *HTTPFetcher) Close() error {
	return nil
}
