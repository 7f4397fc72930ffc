package monitor

import (
	"time"

	"idanlev/carwatch/internal/scraper"
	"idanlev/carwatch/services/snapshot"
)

// DiffSet classifies the current extraction against the snapshot's seen set
// and folds the new identities into it.
//
// First-run detection keys off HasRun, never off the set being empty: a
// target can legitimately have zero listings on any later run, and that must
// not re-trigger initialization. On a first run everything is reported as
// initial inventory, not as new.
//
// The seen set only grows. An item that disappears and is re-listed later is
// deliberately not re-reported.
func DiffSet(snap *snapshot.Snapshot, current []scraper.Listing) SetDelta {
	if !snap.HasRun {
		snap.HasRun = true
		for _, l := range current {
			snap.AddSeen(l.Id)
		}
		return SetDelta{FirstRun: true}
	}

	var fresh []scraper.Listing
	for _, l := range current {
		if snap.HasSeen(l.Id) {
			continue
		}
		snap.AddSeen(l.Id)
		fresh = append(fresh, l)
	}

	return SetDelta{New: fresh}
}

// DiffCount compares the announced result total against the stored one.
// A zero delta leaves the snapshot's history untouched; a non-zero delta
// updates the total and appends a bounded history entry. Callers must handle
// "no total found" before calling (that is a fetch problem, not a zero).
func DiffCount(snap *snapshot.Snapshot, total int, now time.Time) CountDelta {
	if !snap.HasRun {
		snap.HasRun = true
		snap.LastTotal = total
		return CountDelta{FirstRun: true, Current: total}
	}

	previous := snap.LastTotal
	change := total - previous

	if change != 0 {
		snap.LastTotal = total
		snap.AppendHistory(snapshot.HistoryEntry{
			Time:   now,
			Total:  total,
			Change: change,
		})
	}

	return CountDelta{
		Previous: previous,
		Current:  total,
		Change:   change,
	}
}
