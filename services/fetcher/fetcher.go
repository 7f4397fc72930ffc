package fetcher

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a listing page and exposes it as a traversable document.
// Implementations own transport concerns (timeouts, headers, browser
// lifecycle); the monitor core only sees the parsed tree or an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)

	// Close releases any transport resources held by the fetcher.
	Close() error
}
