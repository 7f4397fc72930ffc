package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"idanlev/carwatch/helpers"
	"idanlev/carwatch/logger"
)

// Extractor turns a parsed results page into listing records using a
// prioritized chain of structural heuristics. It holds no per-page state, so
// one Extractor can serve every target in a run.
type Extractor struct {
	Rules []SelectorRule
}

// NewExtractor creates an extractor with the default container rule chain.
func NewExtractor() *Extractor {
	return &Extractor{Rules: DefaultContainerRules}
}

// Extract returns all listing records found in doc. baseURL is the fetched
// endpoint, used to resolve relative links. Re-running Extract on the same
// document yields the same records.
//
// A container that has no usable text content is dropped; a container whose
// only extractable field is its identity is kept.
func (e *Extractor) Extract(doc *goquery.Document, baseURL string) []Listing {
	containers := e.findContainers(doc)
	if containers == nil {
		return nil
	}

	var listings []Listing
	containers.Each(func(i int, s *goquery.Selection) {
		if listing := e.extractListing(s, baseURL); listing != nil {
			listings = append(listings, *listing)
		}
	})

	return listings
}

// findContainers applies the rule chain. The first rule that matches at
// least one element wins and its matches are used exclusively for this pass,
// so overlapping rules never double-process a container.
func (e *Extractor) findContainers(doc *goquery.Document) *goquery.Selection {
	for _, rule := range e.Rules {
		sel := doc.Find(rule.Selector)
		if sel.Length() > 0 {
			logger.Debug("Matched %d containers with rule %s", sel.Length(), rule.Name)
			return sel
		}
	}

	logger.Debug("No container rule matched, falling back to generic scan")
	return e.genericScan(doc)
}

// genericScan inspects every element carrying a class or style attribute and
// keeps those whose text contains a domain marker (currency, mileage unit,
// price word). Markers bubble up through the DOM, so without further guards
// the feed wrapper around the listings would qualify too and produce one
// record spanning the whole page. Two guards prevent that: elements whose
// text exceeds maxGenericTextLength are skipped outright, and a kept element
// is dropped when another kept element sits below it (the innermost marked
// element is the listing, its ancestors are layout). Yield is capped at
// maxFallbackContainers.
func (e *Extractor) genericScan(doc *goquery.Document) *goquery.Selection {
	var kept []*goquery.Selection
	keptNodes := make(map[*html.Node]bool)

	doc.Find("[class],[style]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		style, _ := s.Attr("style")
		if strings.TrimSpace(class) == "" && strings.TrimSpace(style) == "" {
			return true
		}
		text := helpers.NormalizeSpace(s.Text())
		if text == "" || len(text) > maxGenericTextLength {
			return true
		}
		for _, marker := range contentMarkers {
			if strings.Contains(text, marker) {
				kept = append(kept, s)
				keptNodes[s.Nodes[0]] = true
				break
			}
		}
		return len(kept) < maxFallbackContainers
	})

	drop := make(map[*html.Node]bool)
	for n := range keptNodes {
		for p := n.Parent; p != nil; p = p.Parent {
			if keptNodes[p] {
				drop[p] = true
			}
		}
	}

	var merged *goquery.Selection
	for _, s := range kept {
		if drop[s.Nodes[0]] {
			continue
		}
		if merged == nil {
			merged = s
			continue
		}
		merged = merged.AddSelection(s)
	}
	return merged
}

// extractListing builds one Listing from a container. Field extractors are
// independent and tolerate absence; only a missing identity drops the record.
func (e *Extractor) extractListing(s *goquery.Selection, baseURL string) *Listing {
	text := helpers.NormalizeSpace(s.Text())
	if text == "" {
		return nil
	}

	listing := &Listing{
		Id:      TextIdentity(text),
		Snippet: helpers.Truncate(text, maxSnippetLength),
	}

	listing.Title = firstText(s, titleSelectors)
	listing.Price = firstText(s, priceSelectors)
	if listing.Price == "" {
		listing.Price = ExtractPriceToken(text)
	}
	listing.Link = extractLink(s, baseURL)
	listing.Year = ExtractYear(text)
	listing.Mileage = ExtractMileage(text)

	// Field-rich records get the composite identity, so cosmetic text changes
	// (promo ribbons, relative timestamps) do not re-announce the same car.
	if listing.Title != "" && listing.Year != "" && listing.Price != "" {
		listing.Id = CompositeIdentity(listing.Title, listing.Year, listing.Price)
	}

	return listing
}

// firstText returns the trimmed text of the first selector in the chain that
// matches a non-empty element.
func firstText(s *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		sel := s.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := helpers.NormalizeSpace(sel.Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractLink returns the first non-empty anchor target inside s, resolved
// against baseURL when relative.
func extractLink(s *goquery.Selection, baseURL string) string {
	var link string
	s.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return true
		}
		link = href
		return false
	})

	if link == "" {
		return ""
	}
	return resolveURL(baseURL, link)
}

// resolveURL makes href absolute relative to base. Unparseable inputs fall
// back to the raw href.
func resolveURL(base, href string) string {
	baseParsed, err := url.Parse(base)
	if err != nil {
		return href
	}
	hrefParsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseParsed.ResolveReference(hrefParsed).String()
}
