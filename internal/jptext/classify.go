package jptext

import "strings"

// Marks that leave a line syntactically open: connectives and ellipses.
const connectiveMarks = "、，…‥・〜～ー"

// Marks that close a sentence.
const terminalMarks = "。．.！!？?‼⁉"

// Case particles and conjunctive markers whose presence suggests a short
// line is still a complete clause.
var grammaticalMarkers = []string{
	"は", "が", "を", "に", "で", "へ", "と", "も", "の",
	"から", "まで", "より", "って", "けど", "のに", "ので",
}

// Clause-final inflections and sentence-final particles. Checked as a
// suffix after trailing terminal punctuation is removed.
var finalForms = []string{
	"です", "ます", "ました", "ません", "でした", "ない", "なかった",
	"ちゃった", "ちゃう", "じゃん", "だろう", "でしょう", "かな",
	"もん", "んだ", "たい", "てる", "た", "だ", "ね", "よ", "わ",
	"ぞ", "ぜ", "さ", "か", "の",
}

// Bare reactive interjections that carry no mining value on their own.
var interjections = map[string]struct{}{
	"え": {}, "ええ": {}, "えっ": {}, "あ": {}, "ああ": {}, "あっ": {},
	"うん": {}, "ううん": {}, "うわ": {}, "わあ": {}, "はい": {}, "いや": {},
	"おい": {}, "ねえ": {}, "なあ": {}, "まあ": {}, "ほら": {}, "よし": {},
	"へえ": {}, "ふん": {}, "はあ": {}, "お": {}, "おお": {}, "ん": {},
}

// EndsWithConnective reports whether the line's last rune is a connective
// or ellipsis mark, i.e. the sentence visibly continues.
func EndsWithConnective(text string) bool {
	return endsWithAny(Normalize(text), connectiveMarks)
}

// EndsWithTerminal reports whether the line's last rune closes a sentence.
func EndsWithTerminal(text string) bool {
	return endsWithAny(Normalize(text), terminalMarks)
}

// ContainsGrammaticalMarker reports whether text contains any case particle
// or conjunctive marker.
func ContainsGrammaticalMarker(text string) bool {
	for _, m := range grammaticalMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// LooksSyntacticallyComplete reports whether text ends, possibly followed
// by terminal punctuation, in a clause-final inflection or sentence-final
// particle.
func LooksSyntacticallyComplete(text string) bool {
	trimmed := trimTrailing(Normalize(text), terminalMarks+connectiveMarks)
	if trimmed == "" {
		return false
	}
	for _, f := range finalForms {
		if strings.HasSuffix(trimmed, f) {
			return true
		}
	}
	return false
}

// IsLowValueFragment classifies very short reactive lines as noise to keep
// out of the mining queue. Lines with ten or more substantive runes are
// never low value.
func IsLowValueFragment(text string) bool {
	n := SubstantiveLength(text)
	if n >= 10 {
		return false
	}
	bare := trimTrailing(strings.TrimSpace(text), terminalMarks)
	if _, ok := interjections[bare]; ok {
		return true
	}
	if n < 8 && !ContainsGrammaticalMarker(text) && !LooksSyntacticallyComplete(text) {
		return true
	}
	return false
}

// HasSubstance is the bar a merged line must clear to become a candidate:
// enough substantive content, or a grammatical marker, or a syntactically
// complete shape.
func HasSubstance(text string) bool {
	return SubstantiveLength(text) >= 10 ||
		ContainsGrammaticalMarker(text) ||
		LooksSyntacticallyComplete(text)
}

func endsWithAny(s, set string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	return strings.ContainsRune(set, runes[len(runes)-1])
}

func trimTrailing(s, set string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return strings.ContainsRune(set, r)
	})
}
