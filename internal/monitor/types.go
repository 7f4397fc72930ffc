package monitor

import (
	"idanlev/carwatch/internal/scraper"
	"idanlev/carwatch/services/snapshot"
)

// Mode selects how a target is diffed between runs.
type Mode string

const (
	// ModeListings tracks individual listing identities (precise, needs
	// extractable per-item structure).
	ModeListings Mode = "listings"

	// ModeCount tracks only the announced result total (cheap, works when
	// the page exposes nothing but an aggregate count).
	ModeCount Mode = "count"
)

// Target is one monitored search/page configuration.
type Target struct {
	Name string
	URL  string
	Mode Mode
}

// SetDelta is the outcome of a set-based diff for one target.
type SetDelta struct {
	FirstRun bool
	New      []scraper.Listing
}

// CountDelta is the outcome of a counter-based diff for one target.
type CountDelta struct {
	FirstRun bool
	Previous int
	Current  int
	Change   int
}

// TargetOutcome collects everything the run summary and the notification
// formatting need about one processed target.
type TargetOutcome struct {
	Target Target

	// Err is set when the target could not be checked (fetch failure or,
	// in count mode, no total on the page). The snapshot is untouched.
	Err error

	// ExtractionEmpty marks a successful fetch that yielded zero listings.
	// Valid, but worth telling apart from fetch failures in logs.
	ExtractionEmpty bool

	FirstRun     bool
	New          []scraper.Listing
	ListingCount int

	CountChange *CountDelta

	// Snapshot is the post-diff state, used for the periodic status digest.
	Snapshot snapshot.Snapshot
}

// RunSummary aggregates one full run across all targets.
type RunSummary struct {
	Checked          int
	NewCount         int
	InitializedCount int
	ErrorCount       int
}
