package scraper

// Listing represents one vehicle listing extracted from a results page.
// ID is the only required field; an empty string in any other field means the
// extractor could not find it, which is a valid state.
type Listing struct {
	Id      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Price   string `json:"price,omitempty"`
	Year    string `json:"year,omitempty"`
	Mileage string `json:"mileage,omitempty"`
	Link    string `json:"link,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// SelectorRule is one structural heuristic for locating listing containers.
// Rules are tried in order and the first rule that matches at least one
// element wins the pass outright.
type SelectorRule struct {
	Name     string
	Selector string
}

// DefaultContainerRules is the prioritized fallback chain for listing
// containers. Classifieds sites never agree on markup, so the chain goes
// from "obviously a listing" down to loose class-substring matches.
var DefaultContainerRules = []SelectorRule{
	{Name: "testid-listing", Selector: `article[data-testid*="listing"]`},
	{Name: "listing-item", Selector: `div[class*="listing-item"]`},
	{Name: "car-item", Selector: `div[class*="car-item"]`},
	{Name: "vehicle-card", Selector: `div[class*="vehicle-card"]`},
	{Name: "result-item", Selector: `div[class*="result-item"]`},
	{Name: "ad-listing", Selector: `div[class*="ad-listing"]`},
	{Name: "li-listing", Selector: `li[class*="listing"]`},
	{Name: "offer-item", Selector: `div[class*="offer-item"]`},
	{Name: "article-car", Selector: `article[class*="car"]`},
	{Name: "qa-listing", Selector: `div[data-qa*="listing"]`},
	{Name: "product-card", Selector: `div[class*="product-card"]`},
}

// titleSelectors are tried in order when extracting a listing title.
var titleSelectors = []string{
	"h2", "h3", "h4",
	`a[class*="title"]`, `a[class*="name"]`,
	".title", ".name",
}

// priceSelectors are tried in order when extracting a price.
var priceSelectors = []string{
	`[class*="price"]`, `[class*="cost"]`, `[class*="amount"]`,
	`span[data-testid*="price"]`,
}

// contentMarkers are substrings whose presence suggests an element holds
// vehicle-listing content. Used only by the generic fallback scan.
var contentMarkers = []string{
	"₪", "$", "€",
	"km", "KM", "Km",
	"ק\"מ", "ק״מ",
	"price", "מחיר",
}

// maxFallbackContainers caps the generic scan's yield so a pathological page
// cannot blow up extraction cost.
const maxFallbackContainers = 50

// maxSnippetLength bounds the stored raw-text snippet per listing.
const maxSnippetLength = 500

// maxGenericTextLength is the longest normalized text a fallback-scan
// candidate may have. A marker-bearing element running longer than this is a
// results feed or page shell, not a single listing.
const maxGenericTextLength = 500
