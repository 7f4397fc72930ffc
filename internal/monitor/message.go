package monitor

import (
	"fmt"
	"strings"
	"time"

	"idanlev/carwatch/helpers"
	"idanlev/carwatch/internal/scraper"
)

// maxListingMessages caps the number of per-listing notifications per run so
// a first backfill on a busy search does not flood the chat.
const maxListingMessages = 5

// FormatListingMessage renders one new listing as a Telegram HTML message.
// Only the fields the extractor actually found are included.
func FormatListingMessage(target Target, l scraper.Listing, now time.Time) string {
	parts := []string{"🚗 <b>New Car Listed!</b>\n"}

	if l.Title != "" {
		parts = append(parts, fmt.Sprintf("📋 <b>%s</b>", l.Title))
	}
	if l.Price != "" {
		parts = append(parts, fmt.Sprintf("💰 Price: %s", l.Price))
	}
	if l.Year != "" {
		parts = append(parts, fmt.Sprintf("📅 Year: %s", l.Year))
	}
	if l.Mileage != "" {
		parts = append(parts, fmt.Sprintf("🛣 Mileage: %s km", l.Mileage))
	}
	parts = append(parts, fmt.Sprintf("🔍 Search: %s", target.Name))
	if l.Link != "" {
		parts = append(parts, fmt.Sprintf("\n🔗 <a href=\"%s\">View Listing</a>", l.Link))
	}

	parts = append(parts, fmt.Sprintf("\n⏰ Found at: %s", now.Format("2006-01-02 15:04:05")))

	return strings.Join(parts, "\n")
}

// FormatOverflowMessage summarizes new listings beyond the per-run cap.
func FormatOverflowMessage(target Target, total int) string {
	return fmt.Sprintf(
		"📊 Found %d new cars in <b>%s</b>! Check the website for all listings.\n🔗 %s",
		total, target.Name, target.URL,
	)
}

// FormatInitializationMessage announces targets checked for the first time.
// Initial inventory is reported as such, never as "new listings".
func FormatInitializationMessage(outcomes []TargetOutcome) string {
	var b strings.Builder
	b.WriteString("✅ <b>Car monitor initialized!</b>\n\n")
	b.WriteString(fmt.Sprintf("📊 Now tracking %d search(es):\n\n", len(outcomes)))

	for _, o := range outcomes {
		b.WriteString(fmt.Sprintf("• <b>%s</b>\n", o.Target.Name))
		if o.Target.Mode == ModeCount {
			b.WriteString(fmt.Sprintf("  Current total: %d listings\n", o.CountChange.Current))
		} else {
			b.WriteString(fmt.Sprintf("  Current inventory: %d listings\n", o.ListingCount))
		}
		b.WriteString(fmt.Sprintf("  <a href=\"%s\">Link</a>\n\n", o.Target.URL))
	}

	b.WriteString("🔔 You will be notified about changes")
	return b.String()
}

// FormatCountChangesMessage renders a digest of all counter-mode changes in
// one run.
func FormatCountChangesMessage(outcomes []TargetOutcome, now time.Time) string {
	totalNew := 0
	totalRemoved := 0
	for _, o := range outcomes {
		if o.CountChange.Change > 0 {
			totalNew += o.CountChange.Change
		} else {
			totalRemoved += o.CountChange.Change
		}
	}

	var b strings.Builder
	b.WriteString("🚗 <b>Listing totals changed</b>\n\n")
	if totalNew > 0 {
		b.WriteString(fmt.Sprintf("✅ Total new: +%d\n", totalNew))
	}
	if totalRemoved < 0 {
		b.WriteString(fmt.Sprintf("📉 Total removed: %d\n", totalRemoved))
	}

	b.WriteString("\n<b>Per search:</b>\n")
	for _, o := range outcomes {
		b.WriteString(fmt.Sprintf("\n📍 <b>%s</b>\n", o.Target.Name))
		b.WriteString(fmt.Sprintf("   Now: %d (%+d)\n", o.CountChange.Current, o.CountChange.Change))
		b.WriteString(fmt.Sprintf("   <a href=\"%s\">View →</a>\n", o.Target.URL))
	}

	b.WriteString(fmt.Sprintf("\n⏰ %s", now.Format("15:04 - 02/01")))
	return b.String()
}

// FormatErrorsMessage lists targets that could not be checked this run.
func FormatErrorsMessage(outcomes []TargetOutcome) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>Some searches could not be checked</b>\n\n")
	for _, o := range outcomes {
		b.WriteString(fmt.Sprintf("• %s\n", o.Target.Name))
	}
	b.WriteString("\nWill retry on the next check.")
	return b.String()
}

// FormatStatusMessage is the periodic liveness digest.
func FormatStatusMessage(targetCount, totalChecks int) string {
	var b strings.Builder
	b.WriteString("📊 <b>Monitor status</b>\n\n")
	b.WriteString("✅ The monitor is running\n")
	b.WriteString(fmt.Sprintf("🔍 %d search(es) tracked\n", targetCount))
	b.WriteString(fmt.Sprintf("🔄 %d changes recorded\n", totalChecks))
	return b.String()
}

// FormatFailureMessage is the best-effort diagnostic sent when the whole run
// failed, e.g. when no fetch mechanism could be acquired.
func FormatFailureMessage(err error) string {
	return fmt.Sprintf("❌ <b>Monitor run failed</b>\n\n%s", helpers.Truncate(err.Error(), 200))
}
