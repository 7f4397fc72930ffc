package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"idanlev/carwatch/internal/monitor"
	"idanlev/carwatch/services/fetcher"
	"idanlev/carwatch/services/notifier"
	"idanlev/carwatch/services/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Search results page with two listings, in a layout the container rules
// recognize directly.
const baselineHTML = `
<!DOCTYPE html>
<html>
<head><title>Cars For Sale</title></head>
<body>
    <div class="feed">
        <div class="listing-item">
            <h3>Mazda 3</h3>
            <div class="price">₪ 62,000</div>
            <span>2019 · 78,000 km</span>
            <a href="/item/1001">details</a>
        </div>
        <div class="listing-item">
            <h3>Toyota Corolla</h3>
            <div class="price">₪ 71,500</div>
            <span>2020 · 45,000 km</span>
            <a href="/item/1002">details</a>
        </div>
    </div>
</body>
</html>
`

// Same page a day later with one additional listing.
const updatedHTML = `
<!DOCTYPE html>
<html>
<head><title>Cars For Sale</title></head>
<body>
    <div class="feed">
        <div class="listing-item">
            <h3>Mazda 3</h3>
            <div class="price">₪ 62,000</div>
            <span>2019 · 78,000 km</span>
            <a href="/item/1001">details</a>
        </div>
        <div class="listing-item">
            <h3>Toyota Corolla</h3>
            <div class="price">₪ 71,500</div>
            <span>2020 · 45,000 km</span>
            <a href="/item/1002">details</a>
        </div>
        <div class="listing-item">
            <h3>Hyundai i20</h3>
            <div class="price">₪ 48,900</div>
            <span>2021 · 31,000 km</span>
            <a href="/item/1003">details</a>
        </div>
    </div>
</body>
</html>
`

// telegramRecorder fakes the Telegram sendMessage endpoint and records every
// message text it receives.
type telegramRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *telegramRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)

		var payload struct {
			Text string `json:"text"`
		}
		json.Unmarshal(body, &payload)

		r.mu.Lock()
		r.messages = append(r.messages, payload.Text)
		r.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}
}

func (r *telegramRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// TestIntegration exercises the full pipeline twice against a local server:
// the first run initializes the baseline silently (one init digest, no
// per-listing messages), the second run detects exactly the one listing that
// appeared in between.
func TestIntegration(t *testing.T) {
	var mu sync.Mutex
	page := baselineHTML

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		body := page
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, body)
	}))
	defer site.Close()

	recorder := &telegramRecorder{}
	telegram := httptest.NewServer(recorder.handler())
	defer telegram.Close()

	notify := notifier.NewTelegramNotifier("test-token", "test-chat")
	notify.APIBase = telegram.URL

	storePath := filepath.Join(t.TempDir(), "carwatch_data.json")
	targets := []monitor.Target{
		{Name: "test-search", URL: site.URL + "/cars", Mode: monitor.ModeListings},
	}

	ctx := context.Background()

	// First run: everything is new, so nothing should be announced as new.
	store := snapshot.NewFileStore(storePath)
	driver := monitor.NewDriver(fetcher.NewHTTPFetcher(nil, time.Minute), store, notify, 0)
	summary := driver.Run(ctx, targets)
	require.NoError(t, store.Close())

	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.InitializedCount)
	assert.Equal(t, 0, summary.NewCount)
	assert.Equal(t, 0, summary.ErrorCount)

	firstMessages := recorder.all()
	require.Len(t, firstMessages, 1)
	assert.Contains(t, firstMessages[0], "test-search")
	assert.Contains(t, firstMessages[0], "2 listings")

	// Second run against the updated page, with a fresh store reading the
	// file the first run wrote, the way consecutive cron invocations do.
	mu.Lock()
	page = updatedHTML
	mu.Unlock()

	store = snapshot.NewFileStore(storePath)
	driver = monitor.NewDriver(fetcher.NewHTTPFetcher(nil, time.Minute), store, notify, 0)
	summary = driver.Run(ctx, targets)
	require.NoError(t, store.Close())

	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 0, summary.InitializedCount)
	assert.Equal(t, 1, summary.NewCount)
	assert.Equal(t, 0, summary.ErrorCount)

	secondMessages := recorder.all()[len(firstMessages):]
	require.Len(t, secondMessages, 1)
	assert.Contains(t, secondMessages[0], "Hyundai i20")
	assert.Contains(t, secondMessages[0], "48,900")
	assert.Contains(t, secondMessages[0], site.URL+"/item/1003")

	// A third run with no change must stay silent.
	store = snapshot.NewFileStore(storePath)
	driver = monitor.NewDriver(fetcher.NewHTTPFetcher(nil, time.Minute), store, notify, 0)
	summary = driver.Run(ctx, targets)
	require.NoError(t, store.Close())

	assert.Equal(t, 0, summary.NewCount)
	assert.Len(t, recorder.all(), len(firstMessages)+len(secondMessages))
}

// TestIntegrationCounterMode runs a counter target end to end: a total that
// moves between runs produces a change digest, an unchanged total stays quiet.
func TestIntegrationCounterMode(t *testing.T) {
	var mu sync.Mutex
	total := "120"

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		n := total
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, strings.ReplaceAll(`
<!DOCTYPE html>
<html>
<body>
    <span class="total">NNN results</span>
    <div class="listing-item"><h3>Placeholder</h3></div>
</body>
</html>`, "NNN", n))
	}))
	defer site.Close()

	recorder := &telegramRecorder{}
	telegram := httptest.NewServer(recorder.handler())
	defer telegram.Close()

	notify := notifier.NewTelegramNotifier("test-token", "test-chat")
	notify.APIBase = telegram.URL

	storePath := filepath.Join(t.TempDir(), "carwatch_data.json")
	targets := []monitor.Target{
		{Name: "count-search", URL: site.URL + "/cars", Mode: monitor.ModeCount},
	}

	ctx := context.Background()

	run := func() monitor.RunSummary {
		store := snapshot.NewFileStore(storePath)
		driver := monitor.NewDriver(fetcher.NewHTTPFetcher(nil, time.Minute), store, notify, 0)
		summary := driver.Run(ctx, targets)
		require.NoError(t, store.Close())
		return summary
	}

	summary := run()
	assert.Equal(t, 1, summary.InitializedCount)

	mu.Lock()
	total = "125"
	mu.Unlock()

	before := len(recorder.all())
	summary = run()
	assert.Equal(t, 1, summary.NewCount)

	changed := recorder.all()[before:]
	require.Len(t, changed, 1)
	assert.Contains(t, changed[0], "count-search")
	assert.Contains(t, changed[0], "+5")

	before = len(recorder.all())
	summary = run()
	assert.Equal(t, 0, summary.NewCount)
	assert.Len(t, recorder.all(), before)
}
