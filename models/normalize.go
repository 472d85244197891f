package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveAccents strips diacritics ("Béton armé" -> "Beton arme"). Slip
// designations come back from the extraction service with inconsistent
// accenting, so every comparison goes through this first.
func RemoveAccents(input string) string {
	out, _, err := transform.String(accentStripper, input)
	if err != nil {
		return input
	}
	return out
}

// NormalizeLabel is the matching key form: accents stripped, lowercased,
// trimmed. Idempotent.
func NormalizeLabel(input string) string {
	return strings.TrimSpace(strings.ToLower(RemoveAccents(input)))
}

// Singularize drops a single trailing "s". Deliberately crude: it covers the
// voile/voiles, semelle/semelles kind of plural the slips contain without
// any linguistic awareness.
func Singularize(input string) string {
	if strings.HasSuffix(input, "s") {
		return input[:len(input)-1]
	}
	return input
}
