package core

// mapping.go matches spreadsheet headers against declared semantic fields.
//
// Matching runs per field in three tiers: exact, substring, fuzzy. The first
// tier that produces any match wins, and within a tier the first matching
// header in original header order wins. Fields with no acceptable match are
// omitted from the result and left for manual mapping; a forced low-quality
// guess is worse than no guess.

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Confidence scores by match tier. Fuzzy matches score their normalized
// similarity, which is always below the substring tier's fixed score for
// the headers that tier would have accepted.
const (
	ConfidenceExact     = 1.0
	ConfidenceSubstring = 0.8

	// fuzzyThreshold is the minimum normalized Levenshtein similarity for a
	// fuzzy match to be suggested at all.
	fuzzyThreshold = 0.5
)

// ResolveMappings suggests a mapping from dataset headers to semantic fields.
// The result is transient and recomputed per request; it is never persisted.
func ResolveMappings(fields []SemanticField, headers []string) []FieldMapping {
	mappings := make([]FieldMapping, 0, len(fields))
	for _, f := range fields {
		if m, ok := resolveField(f, headers); ok {
			mappings = append(mappings, m)
		}
	}
	return mappings
}

// resolveField finds the best header for one field, tier by tier.
func resolveField(f SemanticField, headers []string) (FieldMapping, bool) {
	display := strings.ToLower(strings.TrimSpace(f.DisplayName))
	key := strings.ToLower(strings.TrimSpace(f.Key))

	// Tier 1: exact match on display name or field key.
	for _, h := range headers {
		lh := strings.ToLower(strings.TrimSpace(h))
		if lh == display || lh == key {
			return FieldMapping{SourceColumn: h, FieldKey: f.Key, Confidence: ConfidenceExact}, true
		}
	}

	// Tier 2: substring containment in either direction. Individual tokens
	// of the display name and key participate too, so "Employee Email"
	// still claims an EMP_EMAIL header across the separator mismatch.
	for _, h := range headers {
		lh := strings.ToLower(strings.TrimSpace(h))
		if lh == "" {
			continue
		}
		if substringMatch(lh, display) || substringMatch(lh, key) {
			return FieldMapping{SourceColumn: h, FieldKey: f.Key, Confidence: ConfidenceSubstring}, true
		}
	}

	// Tier 3: fuzzy similarity against the display name.
	for _, h := range headers {
		sim := similarity(display, strings.ToLower(strings.TrimSpace(h)))
		if sim > fuzzyThreshold {
			return FieldMapping{SourceColumn: h, FieldKey: f.Key, Confidence: sim}, true
		}
	}

	return FieldMapping{}, false
}

// substringMatch reports whether the header and needle overlap as
// substrings, either whole or through one of the needle's tokens.
func substringMatch(header, needle string) bool {
	if containsEither(header, needle) {
		return true
	}
	for _, tok := range tokenize(needle) {
		if containsEither(header, tok) {
			return true
		}
	}
	return false
}

// tokenize splits on any non-alphanumeric separator.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsEither reports whether a contains b or b contains a.
// Empty needles never match.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// similarity is the normalized Levenshtein similarity between two strings:
// (maxLen - editDistance) / maxLen, in [0,1]. Lengths are counted in runes
// to line up with the rune-based edit distance.
func similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}
