package fetcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"idanlev/carwatch/logger"
)

// blockedResourceTypes are resources a listing check never needs. Skipping
// them keeps page loads fast on image-heavy classifieds pages.
var blockedResourceTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeFont,
	proto.NetworkResourceTypeMedia,
}

// BrowserFetcher renders pages in headless Chrome via rod, for sources that
// assemble their listings client-side and return an empty shell over plain
// HTTP. The browser is launched lazily on the first fetch and reused for the
// rest of the run.
type BrowserFetcher struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// NavTimeout bounds navigation plus load wait per page.
	NavTimeout time.Duration

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewBrowserFetcher creates a browser-backed fetcher.
func NewBrowserFetcher(remoteURL string, navTimeout time.Duration) *BrowserFetcher {
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	return &BrowserFetcher{
		RemoteURL:  remoteURL,
		NavTimeout: navTimeout,
	}
}

// connect launches or attaches to Chrome on first use.
func (f *BrowserFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	var wsURL string
	if f.RemoteURL != "" {
		wsURL = f.RemoteURL
	} else {
		l := launcher.New().Headless(true).NoSandbox(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		f.lnch = l
		wsURL = u
	}

	browser := rod.New().ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	f.browser = browser
	logger.ForComponent("browser").Info().Str("control_url", wsURL).Msg("Browser connected")
	return browser, nil
}

// Fetch renders url and returns the resulting DOM as a document.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	browser, err := f.connect()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := f.blockResources(page); err != nil {
		logger.ForComponent("browser").Warn().Err(err).Msg("Resource blocking failed")
	}

	navCtx, cancel := context.WithTimeout(ctx, f.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		// Slow third-party widgets should not fail the whole check; the
		// listing markup is usually present already.
		logger.ForComponent("browser").Warn().Err(err).Str("url", url).Msg("Load wait timed out")
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("failed to read DOM: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Value.Str()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	return doc, nil
}

// blockResources aborts requests for resource types the monitor never reads.
func (f *BrowserFetcher) blockResources(page *rod.Page) error {
	router := page.HijackRequests()
	router.MustAdd("*", func(hijack *rod.Hijack) {
		for _, rt := range blockedResourceTypes {
			if hijack.Request.Type() == rt {
				hijack.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		hijack.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	return nil
}

// Close shuts the browser down and kills a locally launched Chrome.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			return err
		}
		f.browser = nil
	}
	if f.lnch != nil {
		f.lnch.Cleanup()
		f.lnch = nil
	}
	return nil
}
