package snapshot

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// historyLimit bounds the per-target history; the oldest entries are evicted
// first when a new one is appended.
const historyLimit = 50

// HistoryEntry records one observed change of a counter-mode target.
type HistoryEntry struct {
	Time   time.Time `json:"time"`
	Total  int       `json:"total"`
	Change int       `json:"change"`
}

// Snapshot is the persisted cross-run state for one monitored target. It is
// the only memory the monitor has between invocations.
type Snapshot struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`

	// HasRun distinguishes "never checked" from "checked and found nothing".
	// First-run handling keys off this flag, never off SeenIDs being empty
	// or count comparisons.
	HasRun bool `json:"has_run"`

	// SeenIDs holds every listing identity ever observed for this target.
	// Set-mode diffing grows it monotonically and never forgets, so a
	// re-listed item is not re-reported.
	SeenIDs []string `json:"seen_ids,omitempty"`

	// LastTotal is the most recent result count, for counter-mode targets.
	LastTotal int `json:"last_total,omitempty"`

	History []HistoryEntry `json:"history,omitempty"`

	LastCheckedAt time.Time `json:"last_checked_at,omitempty"`
}

// Store persists snapshots between runs. Load for an unknown key returns a
// zero-value snapshot with HasRun=false, never an error. Save may stage in
// memory; Flush makes all staged snapshots durable and is called exactly
// once per run, after every target has been processed.
type Store interface {
	Load(key string) (Snapshot, error)
	Save(key string, snap Snapshot) error
	Flush() error
	Close() error
}

// Key derives the snapshot slot key for an endpoint URL. A fixed-length hash
// prefix, so the same endpoint always maps to the same slot regardless of
// URL length.
func Key(endpoint string) string {
	sum := sha1.Sum([]byte(endpoint))
	return hex.EncodeToString(sum[:])[:12]
}

// HasSeen reports whether id is already recorded in the snapshot.
func (s *Snapshot) HasSeen(id string) bool {
	for _, seen := range s.SeenIDs {
		if seen == id {
			return true
		}
	}
	return false
}

// AddSeen records an identity. Identities are never removed afterwards.
func (s *Snapshot) AddSeen(id string) {
	if !s.HasSeen(id) {
		s.SeenIDs = append(s.SeenIDs, id)
	}
}

// AppendHistory adds an entry and evicts the oldest entries beyond the bound.
func (s *Snapshot) AppendHistory(entry HistoryEntry) {
	s.History = append(s.History, entry)
	if len(s.History) > historyLimit {
		s.History = s.History[len(s.History)-historyLimit:]
	}
}
