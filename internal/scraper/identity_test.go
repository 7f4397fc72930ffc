package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextIdentity_Deterministic(t *testing.T) {
	text := "Mazda 3 2019 45,000 km ₪75,000"

	assert.Equal(t, TextIdentity(text), TextIdentity(text))
	assert.Len(t, TextIdentity(text), 64)
}

func TestTextIdentity_NormalizesWhitespace(t *testing.T) {
	// The same listing rendered with different whitespace must not look new.
	a := TextIdentity("Mazda 3  2019\n45,000 km")
	b := TextIdentity("  Mazda 3 2019 45,000 km ")
	assert.Equal(t, a, b)
}

func TestTextIdentity_DistinctInputs(t *testing.T) {
	a := TextIdentity("Mazda 3 2019 ₪75,000")
	b := TextIdentity("Mazda 3 2019 ₪74,000")
	assert.NotEqual(t, a, b)
}

func TestCompositeIdentity(t *testing.T) {
	assert.Equal(t, "Fabia_2022_82,000", CompositeIdentity("Fabia", "2022", "82,000"))

	// Missing fields degrade uniqueness but still produce a usable key
	assert.Equal(t, "Fabia__", CompositeIdentity("Fabia", "", ""))
}
