package helpers

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	integerRe = regexp.MustCompile(`\d+`)
)

// NormalizeSpace trims a string and collapses all internal whitespace runs
// into single spaces.
func NormalizeSpace(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Truncate shortens a string to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FirstInteger returns the first run of digits in s as an integer.
func FirstInteger(s string) (int, bool) {
	match := integerRe.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
