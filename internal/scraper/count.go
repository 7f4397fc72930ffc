package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"idanlev/carwatch/helpers"
)

// countSelectors locate the element announcing the total result count.
// Tried in order; sites rename these classes on every redeploy, so the chain
// ends with plain headings.
var countSelectors = []string{
	`span[class*="sortAndTotalBox"]`,
	`span[class*="totalResults"]`,
	`span[class*="total"]`,
	`div[class*="results-count"]`,
	"h1",
}

// countMarkers are substrings that mark a heading as a result-count line
// rather than an unrelated number.
var countMarkers = []string{
	"נמצאו", "מודעות", "תוצאות",
	"results", "listings", "found",
}

// ExtractTotal returns the total result count announced on the page, for
// counter-based monitoring. The second return is false when no count could
// be located, which callers must treat as a fetch problem rather than zero.
func ExtractTotal(doc *goquery.Document) (int, bool) {
	for _, selector := range countSelectors {
		total, ok := totalFromSelection(doc.Find(selector), selector == "h1")
		if ok {
			return total, true
		}
	}
	return 0, false
}

// totalFromSelection scans matched elements for the first integer token.
// Headings require a count marker so "2024 Mazda 3" is not read as a total.
func totalFromSelection(sel *goquery.Selection, requireMarker bool) (int, bool) {
	var total int
	found := false

	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := helpers.NormalizeSpace(s.Text())
		if text == "" {
			return true
		}
		if requireMarker && !containsAny(text, countMarkers) {
			return true
		}
		if n, ok := helpers.FirstInteger(text); ok {
			total = n
			found = true
			return false
		}
		return true
	})

	return total, found
}

func containsAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, marker := range markers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
