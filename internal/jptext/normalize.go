// Package jptext provides the text normalization and classification
// heuristics the mining pipeline applies to Japanese subtitle lines.
package jptext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Punctuation stripped for identity: quotes, brackets and sentence
// terminators. Display text is never normalized with this set.
const identityPunct = "「」『』（）()【】［］[]〈〉《》〔〕{}｢｣“”‘’\"'、，,。．.！!？?・：:；;…‥"

// Decorative long-vowel and repetition marks, ignored when estimating how
// much substantive content a line carries.
const decorativeMarks = "ー〜～ゝゞヽヾ々"

// Normalize strips all whitespace, including the full-width space, and
// trims the result. Idempotent.
func Normalize(text string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))
}

// NormalizeForIdentity folds half-width katakana and full-width ASCII to
// their canonical forms, then strips whitespace and sentence-boundary
// punctuation. Used only for identity hashing and length heuristics.
func NormalizeForIdentity(text string) string {
	folded := width.Fold.String(Normalize(text))
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(identityPunct, r) {
			return -1
		}
		return r
	}, folded)
}

// StripForLength additionally removes decorative long-vowel and repetition
// marks, so stretched interjections ("えーーー") do not look substantial.
func StripForLength(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(decorativeMarks, r) {
			return -1
		}
		return r
	}, NormalizeForIdentity(text))
}

// SubstantiveLength is the rune count of the line once whitespace,
// punctuation and decorative marks are stripped.
func SubstantiveLength(text string) int {
	return utf8.RuneCountInString(StripForLength(text))
}

// HasKanji reports whether text contains at least one CJK unified ideograph
// (main block or Extension A).
func HasKanji(text string) bool {
	for _, r := range text {
		if (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF) {
			return true
		}
	}
	return false
}
