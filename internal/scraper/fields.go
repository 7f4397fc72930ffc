package scraper

import (
	"regexp"
)

// Pattern extractors for fields scraped out of a container's raw text.
// Each is total: no match means an empty result, never an error.
var (
	// Model years come in two plausible windows. Modern first, so a listing
	// text like "2019 ... built 1998" reads the sale year, not trim codes.
	yearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b20[0-2][0-9]\b`),
		regexp.MustCompile(`\b19[5-9][0-9]\b`),
	}

	// Mileage: grouped digits followed by a km unit, Latin or Hebrew.
	mileageRe = regexp.MustCompile(`(\d{1,3}(?:[,.\s]?\d{3})*)\s*(?:[kK][mM]|ק["״]מ)`)

	// Price: currency symbol followed by grouped digits.
	priceTokenRe = regexp.MustCompile(`[₪$€]\s*([\d,]+)`)
)

// ExtractYear returns the first 4-digit token that looks like a model year,
// or "" when none is present.
func ExtractYear(text string) string {
	for _, re := range yearPatterns {
		if match := re.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// ExtractMileage returns the first number-plus-unit mileage token, or "".
func ExtractMileage(text string) string {
	match := mileageRe.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

// ExtractPriceToken returns the digits of the first currency-marked amount
// in text, or "". Used when no price element could be selected directly.
func ExtractPriceToken(text string) string {
	match := priceTokenRe.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}
