// Package sanitize turns untrusted request input into safe query values.
// Nothing here returns an error: bad input degrades to a default.
package sanitize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPage  = 1
	MaxPage      = 1000
	DefaultLimit = 12
	MaxLimit     = 100

	// DefaultSort is the listing order when none is requested.
	DefaultSort = "-createdAt"

	maxSortLen  = 50
	maxCSVTerms = 20
	maxTermLen  = 100

	// MaxTextLen bounds free text such as cover letters.
	MaxTextLen = 1000
)

var (
	sortChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	htmlTags  = regexp.MustCompile(`<[^>]*>`)
)

// SortKey is a sanitized sort instruction.
type SortKey struct {
	Field string
	Desc  bool
}

// Page parses a page number; anything outside [1, MaxPage] is DefaultPage.
func Page(raw string) int {
	return boundedInt(raw, MaxPage, DefaultPage)
}

// Limit parses a page size; anything outside [1, MaxLimit] is DefaultLimit.
func Limit(raw string) int {
	return boundedInt(raw, MaxLimit, DefaultLimit)
}

func boundedInt(raw string, max, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > max {
		return fallback
	}
	return n
}

// SortBy keeps only letters, digits, dots and dashes and truncates the result.
func SortBy(raw string) string {
	s := sortChars.ReplaceAllString(raw, "")
	if len(s) > maxSortLen {
		s = s[:maxSortLen]
	}
	return s
}

// Sort converts a raw sort expression like "-salary.min" into a SortKey. A
// leading dash means descending. Empty path segments are dropped; when
// nothing usable remains the fallback expression is used.
func Sort(raw, fallback string) SortKey {
	if key, ok := parseSort(SortBy(raw)); ok {
		return key
	}
	if key, ok := parseSort(SortBy(fallback)); ok {
		return key
	}
	return SortKey{Field: "createdAt", Desc: true}
}

func parseSort(s string) (SortKey, bool) {
	key := SortKey{}
	if strings.HasPrefix(s, "-") {
		key.Desc = true
	}
	s = strings.TrimLeft(s, "-")

	parts := strings.Split(s, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return SortKey{}, false
	}
	key.Field = strings.Join(kept, ".")
	return key, true
}

// EscapeRegex escapes every regular-expression metacharacter so the input
// matches literally.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}

// Text strips HTML tags, trims surrounding space and bounds the length to max
// runes (MaxTextLen when max <= 0).
func Text(s string, max int) string {
	if max <= 0 {
		max = MaxTextLen
	}
	s = strings.TrimSpace(htmlTags.ReplaceAllString(s, ""))
	if utf8.RuneCountInString(s) > max {
		s = strings.TrimSpace(string([]rune(s)[:max]))
	}
	return s
}

// Term trims a single free-text query value and bounds its length.
func Term(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxTermLen {
		s = string([]rune(s)[:maxTermLen])
	}
	return s
}

// CSV splits a comma separated list, trimming terms and dropping empty ones.
func CSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := Term(part); t != "" {
			out = append(out, t)
			if len(out) == maxCSVTerms {
				break
			}
		}
	}
	return out
}

// Float parses a finite float.
func Float(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
