package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idanlev/carwatch/internal/scraper"
	"idanlev/carwatch/services/snapshot"
)

func listingsWithIDs(ids ...string) []scraper.Listing {
	listings := make([]scraper.Listing, 0, len(ids))
	for _, id := range ids {
		listings = append(listings, scraper.Listing{Id: id})
	}
	return listings
}

func TestDiffSet_FirstRun(t *testing.T) {
	var snap snapshot.Snapshot

	delta := DiffSet(&snap, listingsWithIDs("A", "B", "C"))

	assert.True(t, delta.FirstRun)
	assert.Empty(t, delta.New, "initial inventory must not be classified as new")
	assert.True(t, snap.HasRun)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, snap.SeenIDs)
}

func TestDiffSet_FirstRunWithZeroListings(t *testing.T) {
	// An empty first extraction still counts as initialization; the next run
	// must diff normally instead of re-initializing.
	var snap snapshot.Snapshot

	delta := DiffSet(&snap, nil)
	assert.True(t, delta.FirstRun)
	assert.True(t, snap.HasRun)

	delta = DiffSet(&snap, listingsWithIDs("A"))
	assert.False(t, delta.FirstRun)
	require.Len(t, delta.New, 1)
	assert.Equal(t, "A", delta.New[0].Id)
}

func TestDiffSet_NewListingDetected(t *testing.T) {
	snap := snapshot.Snapshot{HasRun: true, SeenIDs: []string{"A", "B"}}

	delta := DiffSet(&snap, listingsWithIDs("A", "B", "C"))

	assert.False(t, delta.FirstRun)
	require.Len(t, delta.New, 1)
	assert.Equal(t, "C", delta.New[0].Id)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, snap.SeenIDs)
}

func TestDiffSet_DisappearedListingKept(t *testing.T) {
	// C vanished from the page. The seen set grows monotonically, so C stays
	// recorded and is not re-reported if it reappears later.
	snap := snapshot.Snapshot{HasRun: true, SeenIDs: []string{"A", "B", "C"}}

	delta := DiffSet(&snap, listingsWithIDs("A", "B"))
	assert.False(t, delta.FirstRun)
	assert.Empty(t, delta.New)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, snap.SeenIDs)

	// C reappears: still not new.
	delta = DiffSet(&snap, listingsWithIDs("A", "B", "C"))
	assert.Empty(t, delta.New)
}

func TestDiffSet_MonotonicGrowth(t *testing.T) {
	snap := snapshot.Snapshot{HasRun: true, SeenIDs: []string{"A"}}

	before := append([]string(nil), snap.SeenIDs...)
	DiffSet(&snap, listingsWithIDs("B"))

	for _, id := range before {
		assert.True(t, snap.HasSeen(id), "identity %s was forgotten", id)
	}
}

func TestDiffCount_FirstRun(t *testing.T) {
	var snap snapshot.Snapshot

	delta := DiffCount(&snap, 120, time.Now())

	assert.True(t, delta.FirstRun)
	assert.Equal(t, 120, delta.Current)
	assert.True(t, snap.HasRun)
	assert.Equal(t, 120, snap.LastTotal)
	assert.Empty(t, snap.History, "initialization is not a change")
}

func TestDiffCount_Change(t *testing.T) {
	snap := snapshot.Snapshot{HasRun: true, LastTotal: 120}
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	delta := DiffCount(&snap, 125, now)

	assert.False(t, delta.FirstRun)
	assert.Equal(t, 120, delta.Previous)
	assert.Equal(t, 125, delta.Current)
	assert.Equal(t, 5, delta.Change)
	assert.Equal(t, 125, snap.LastTotal)

	require.Len(t, snap.History, 1)
	assert.Equal(t, snapshot.HistoryEntry{Time: now, Total: 125, Change: 5}, snap.History[0])
}

func TestDiffCount_NoChange(t *testing.T) {
	snap := snapshot.Snapshot{HasRun: true, LastTotal: 120}

	delta := DiffCount(&snap, 120, time.Now())

	assert.Equal(t, 0, delta.Change)
	assert.Empty(t, snap.History, "a zero delta must not pollute history")
}

func TestDiffCount_NegativeChange(t *testing.T) {
	snap := snapshot.Snapshot{HasRun: true, LastTotal: 120}

	delta := DiffCount(&snap, 113, time.Now())

	assert.Equal(t, -7, delta.Change)
	assert.Equal(t, 113, snap.LastTotal)
	require.Len(t, snap.History, 1)
	assert.Equal(t, -7, snap.History[0].Change)
}
