package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "idanlev/carwatch/pkg/errors"
	"idanlev/carwatch/services/cache"
)

// memoryCache is a simple in-memory CacheService for tests.
type memoryCache struct {
	entries map[string][]byte
}

var _ cache.CacheService = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	if val, ok := m.entries[key]; ok {
		return val, nil
	}
	return nil, errors.New("cache miss")
}

func (m *memoryCache) Set(key string, value []byte, expiration time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Delete(key string) error {
	delete(m.entries, key)
	return nil
}

func TestHTTPFetcher_ParsesDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><div class="listing-item"><h3>Mazda 3</h3></div></body></html>`)
	}))
	defer server.Close()

	f := NewHTTPFetcher(nil, time.Minute)
	doc, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Mazda 3", doc.Find("h3").Text())
}

func TestHTTPFetcher_RateLimitSetsBlockAndTypedError(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mem := newMemoryCache()
	f := NewHTTPFetcher(mem, time.Minute)

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var merr *apperrors.MonitorError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, merr.Type)
	assert.True(t, merr.IsTargetLocal())
	assert.Equal(t, int32(1), requests.Load())

	// The block persists in the cache, so the next fetch is refused without
	// touching the source at all.
	_, err = f.Fetch(context.Background(), server.URL)
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, merr.Type)
	assert.Equal(t, int32(1), requests.Load())
}

func TestHTTPFetcher_RateLimitWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewHTTPFetcher(nil, time.Minute)

	_, err := f.Fetch(context.Background(), server.URL)
	var merr *apperrors.MonitorError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, merr.Type)
}

func TestHTTPFetcher_PlainFailureNotRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mem := newMemoryCache()
	f := NewHTTPFetcher(mem, time.Minute)

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var merr *apperrors.MonitorError
	assert.False(t, errors.As(err, &merr))
	assert.Empty(t, mem.entries)
}
