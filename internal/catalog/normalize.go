package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// invalidMarkers are the no-data sentinels sources use in place of an
// identifier. Matching is done after trimming and upper-casing.
var invalidMarkers = map[string]bool{
	"":     true,
	"NAN":  true,
	"NONE": true,
	"-1":   true,
	"NA":   true,
	"NULL": true,
	"...":  true,
}

// IsInvalidMarker reports whether raw is a no-data sentinel rather
// than an identifier.
func IsInvalidMarker(raw string) bool {
	return invalidMarkers[strings.ToUpper(strings.TrimSpace(raw))]
}

// diacriticStripper removes combining marks after NFD decomposition,
// so "Türkiye" folds to "Turkiye" and "Côte" to "Cote".
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldCase upper-cases and trims an identifier for exact-name lookup.
func foldCase(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeName reduces a free-form entity name to its canonical
// lookup form: diacritics stripped, upper-cased, punctuation replaced
// by spaces, whitespace collapsed. Two names that differ only in
// accents, case, or punctuation normalize identically.
func NormalizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
