package monitor

import (
	"context"
	"errors"
	"time"

	"idanlev/carwatch/internal/scraper"
	"idanlev/carwatch/logger"
	apperrors "idanlev/carwatch/pkg/errors"
	"idanlev/carwatch/services/fetcher"
	"idanlev/carwatch/services/notifier"
	"idanlev/carwatch/services/snapshot"
)

// statusEvery controls how often the periodic liveness digest fires, counted
// in recorded history entries across all targets.
const statusEvery = 50

// Driver runs one complete monitoring cycle: fetch, extract, diff, persist
// and notify for an ordered sequence of targets. Targets are checked
// sequentially with a fixed delay between fetches so the source site never
// sees a burst; this also keeps snapshot mutation single-threaded.
type Driver struct {
	fetcher   fetcher.Fetcher
	store     snapshot.Store
	notifier  notifier.Notifier
	extractor *scraper.Extractor

	// targetDelay is inserted between consecutive target fetches.
	targetDelay time.Duration

	// notifyDelay spaces per-listing messages to stay under the
	// notification transport's rate limits.
	notifyDelay time.Duration

	now func() time.Time
}

// NewDriver creates a monitor driver.
func NewDriver(f fetcher.Fetcher, store snapshot.Store, n notifier.Notifier, targetDelay time.Duration) *Driver {
	return &Driver{
		fetcher:     f,
		store:       store,
		notifier:    n,
		extractor:   scraper.NewExtractor(),
		targetDelay: targetDelay,
		notifyDelay: time.Second,
		now:         time.Now,
	}
}

// Run processes every target once, persists the snapshot store exactly once
// after the loop, sends notifications and returns the aggregated summary.
//
// Failures are contained: a bad target never aborts the run, and a persist
// failure is logged but does not block notifications (the next run will
// recompute against the old baseline, which may re-report - accepted,
// at-least-once semantics).
func (d *Driver) Run(ctx context.Context, targets []Target) RunSummary {
	log := logger.ForComponent("driver")
	log.Info().Int("targets", len(targets)).Msg("Starting monitoring run")

	outcomes := make([]TargetOutcome, 0, len(targets))
	for i, target := range targets {
		if i > 0 && d.targetDelay > 0 {
			if !sleepCtx(ctx, d.targetDelay) {
				log.Warn().Msg("Run cancelled between targets")
				break
			}
		}
		outcome := d.checkTarget(ctx, target)
		outcomes = append(outcomes, outcome)

		// Target-local failures only cost this target's check; anything else
		// (e.g. the snapshot store) likely affects the rest of the run.
		var merr *apperrors.MonitorError
		if errors.As(outcome.Err, &merr) && !merr.IsTargetLocal() {
			log.Error().Str("target", target.Name).Err(outcome.Err).Msg("Failure extends beyond this target")
		}
	}

	// Persist once, after all targets. Notifications below fire regardless
	// of the outcome here.
	if err := d.store.Flush(); err != nil {
		perr := apperrors.NewPersist("failed to persist snapshot store", err)
		log.Error().Err(perr).Msg("Snapshot persistence failed; next run will diff against the previous baseline")
	}

	d.sendNotifications(ctx, outcomes)

	summary := summarize(outcomes)
	log.Info().
		Int("checked", summary.Checked).
		Int("new", summary.NewCount).
		Int("initialized", summary.InitializedCount).
		Int("errors", summary.ErrorCount).
		Msg("Monitoring run completed")

	return summary
}

// checkTarget performs fetch → extract → diff for a single target. Any
// failure is captured in the outcome; the target's snapshot is only touched
// on a successful check.
func (d *Driver) checkTarget(ctx context.Context, target Target) TargetOutcome {
	log := logger.ForTarget(target.Name)
	outcome := TargetOutcome{Target: target}

	doc, err := d.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		// Fetchers already classify their failures (rate limit vs plain
		// fetch), keep that classification when present.
		var merr *apperrors.MonitorError
		if errors.As(err, &merr) {
			outcome.Err = merr
		} else {
			outcome.Err = apperrors.NewFetch(target.Name, "failed to fetch listing page", err)
		}
		log.Error().Err(outcome.Err).Msg("Fetch failed")
		return outcome
	}

	key := snapshot.Key(target.URL)
	snap, err := d.store.Load(key)
	if err != nil {
		// Do not fall back to an empty snapshot here: diffing against a
		// wrongly-empty baseline would re-announce the entire inventory.
		outcome.Err = apperrors.NewPersist("failed to load snapshot for "+target.Name, err)
		log.Error().Err(outcome.Err).Msg("Snapshot load failed")
		return outcome
	}
	snap.Name = target.Name
	snap.URL = target.URL

	now := d.now()

	switch target.Mode {
	case ModeCount:
		total, ok := scraper.ExtractTotal(doc)
		if !ok {
			outcome.Err = apperrors.NewFetch(target.Name, "page exposes no result total", nil)
			log.Error().Err(outcome.Err).Msg("Count extraction failed")
			return outcome
		}

		delta := DiffCount(&snap, total, now)
		outcome.CountChange = &delta
		outcome.FirstRun = delta.FirstRun

		if delta.FirstRun {
			log.Info().Int("total", total).Msg("Initialized counter target")
		} else if delta.Change != 0 {
			log.Info().Int("total", total).Int("change", delta.Change).Msg("Total changed")
		} else {
			log.Debug().Int("total", total).Msg("No change")
		}

	default:
		listings := d.extractor.Extract(doc, target.URL)
		outcome.ListingCount = len(listings)
		if len(listings) == 0 {
			outcome.ExtractionEmpty = true
			log.Warn().Err(apperrors.NewExtractionEmpty(target.Name)).Msg("Extraction yielded no candidates")
		}

		delta := DiffSet(&snap, listings)
		outcome.FirstRun = delta.FirstRun
		outcome.New = delta.New

		if delta.FirstRun {
			log.Info().Int("listings", len(listings)).Msg("Initialized listing target")
		} else {
			log.Info().Int("listings", len(listings)).Int("new", len(delta.New)).Msg("Checked listings")
		}
	}

	snap.LastCheckedAt = now
	if err := d.store.Save(key, snap); err != nil {
		log.Error().Err(apperrors.NewPersist("failed to stage snapshot for "+target.Name, err)).Msg("Snapshot save failed")
	}
	outcome.Snapshot = snap

	return outcome
}

// sendNotifications formats and delivers all messages produced by a run.
// Each message gets one delivery attempt; failures are logged and skipped.
func (d *Driver) sendNotifications(ctx context.Context, outcomes []TargetOutcome) {
	var inits, countChanges, errored []TargetOutcome
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			errored = append(errored, o)
		case o.FirstRun:
			inits = append(inits, o)
		case o.CountChange != nil && o.CountChange.Change != 0:
			countChanges = append(countChanges, o)
		}
	}

	now := d.now()

	if len(inits) > 0 {
		d.notify(ctx, FormatInitializationMessage(inits))
	}

	for _, o := range outcomes {
		if o.Err != nil || o.FirstRun || len(o.New) == 0 {
			continue
		}

		sent := 0
		for _, l := range o.New {
			if sent >= maxListingMessages {
				break
			}
			d.notify(ctx, FormatListingMessage(o.Target, l, now))
			sent++
			if d.notifyDelay > 0 && !sleepCtx(ctx, d.notifyDelay) {
				return
			}
		}
		if len(o.New) > maxListingMessages {
			d.notify(ctx, FormatOverflowMessage(o.Target, len(o.New)))
		}
	}

	if len(countChanges) > 0 {
		d.notify(ctx, FormatCountChangesMessage(countChanges, now))
	}

	if len(errored) > 0 {
		d.notify(ctx, FormatErrorsMessage(errored))
	}

	// Periodic liveness digest keyed off recorded changes, so a quiet
	// monitor still proves it is alive every so often.
	totalChecks := 0
	for _, o := range outcomes {
		totalChecks += len(o.Snapshot.History)
	}
	if totalChecks > 0 && totalChecks%statusEvery == 0 {
		d.notify(ctx, FormatStatusMessage(len(outcomes), totalChecks))
	}
}

// notify delivers one message, logging instead of escalating on failure.
func (d *Driver) notify(ctx context.Context, message string) {
	if err := d.notifier.Notify(ctx, message); err != nil {
		nerr := apperrors.NewNotify("failed to deliver notification", err)
		logger.ForComponent("notifier").Error().Err(nerr).Msg("Notification failed")
	}
}

func summarize(outcomes []TargetOutcome) RunSummary {
	summary := RunSummary{Checked: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			summary.ErrorCount++
		case o.FirstRun:
			summary.InitializedCount++
		case o.CountChange != nil && o.CountChange.Change != 0:
			summary.NewCount++
		default:
			summary.NewCount += len(o.New)
		}
	}
	return summary
}

// sleepCtx sleeps for the given duration unless the context ends first; it
// reports whether the full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
