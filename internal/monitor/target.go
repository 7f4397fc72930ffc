package monitor

import (
	"fmt"
	"net/url"
	"strings"
)

// nameParams are query parameters worth surfacing when a target name has to
// be derived from its URL.
var nameParams = []string{"manufacturer", "model", "price", "year", "km"}

// ParseTargets parses the monitored-targets specification from its
// environment form. Entries are separated by semicolons or newlines; each
// entry is one of:
//
//	URL
//	NAME|URL
//	NAME|URL|MODE
//
// where MODE is "listings" or "count". Entries without a name get one
// derived from the URL. defaultMode applies to entries without a mode.
func ParseTargets(spec string, defaultMode Mode) ([]Target, error) {
	entries := strings.Split(strings.ReplaceAll(spec, "\n", ";"), ";")

	var targets []Target
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		target := Target{Mode: defaultMode}

		parts := strings.SplitN(entry, "|", 3)
		switch len(parts) {
		case 1:
			target.URL = strings.TrimSpace(parts[0])
		case 2:
			target.Name = strings.TrimSpace(parts[0])
			target.URL = strings.TrimSpace(parts[1])
		case 3:
			target.Name = strings.TrimSpace(parts[0])
			target.URL = strings.TrimSpace(parts[1])
			mode, err := parseMode(parts[2])
			if err != nil {
				return nil, fmt.Errorf("target %q: %w", entry, err)
			}
			target.Mode = mode
		}

		if !strings.HasPrefix(target.URL, "http://") && !strings.HasPrefix(target.URL, "https://") {
			return nil, fmt.Errorf("target %q: URL must start with http:// or https://", entry)
		}
		if target.Name == "" {
			target.Name = nameFromURL(target.URL)
		}

		targets = append(targets, target)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	return targets, nil
}

func parseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeListings:
		return ModeListings, nil
	case ModeCount:
		return ModeCount, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// nameFromURL builds a readable label from the URL host and its most
// descriptive query parameters.
func nameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	parts := []string{parsed.Host}
	query := parsed.Query()
	for _, param := range nameParams {
		if v := query.Get(param); v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", param, v))
		}
	}

	return strings.Join(parts, " ")
}
