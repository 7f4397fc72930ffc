package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"idanlev/carwatch/helpers"
)

// Identity derivation for listings. Both strategies are heuristic, not
// authoritative: identities are derived from visible content, so two distinct
// items with identical visible text (or identical model/year/price) collide.
// That is an accepted limitation of scraping sites that expose no stable IDs.

// TextIdentity derives a stable identity from the full visible text of a
// listing container. The text is whitespace-normalized before hashing, so the
// same item re-extracted across runs and restarts yields the same identity.
func TextIdentity(text string) string {
	normalized := helpers.NormalizeSpace(text)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CompositeIdentity builds an identity from the most distinguishing extracted
// fields. Cheaper to eyeball in stored state than a hash; missing fields
// degrade uniqueness but never fail.
func CompositeIdentity(model, year, price string) string {
	return strings.Join([]string{model, year, price}, "_")
}
