// Package sanitizer normalizes free-text input before validation and
// storage. All functions are idempotent and never return errors; invalid
// input degrades to the empty value.
package sanitizer

import (
	"strings"
	"unicode"
)

// CollapseWhitespace trims the string and folds internal whitespace runs
// into single spaces.
func CollapseWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// NormalizeName cleans facility, event and user-facing names.
func NormalizeName(name string) string {
	return CollapseWhitespace(name)
}

// NormalizeDescription cleans multi-line descriptive text but keeps it
// otherwise untouched.
func NormalizeDescription(text string) string {
	return strings.TrimSpace(text)
}

// NormalizeFeatures drops empty entries and duplicates after cleaning each
// feature label.
func NormalizeFeatures(features []string) []string {
	if len(features) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		cleaned := CollapseWhitespace(f)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
