package quiz

import "strings"

// Letter variants that are orthographically interchangeable in Arabic answers.
var letterFolds = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ة': 'ه',
	'ى': 'ي',
}

const strippedPunctuation = ".,/#!$%^&*;:{}=-_`~()"

// Normalize canonicalizes a free-text answer: trim, lowercase, fold letter
// variants, strip punctuation, collapse internal whitespace to single spaces.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := letterFolds[r]; ok {
			r = folded
		}
		if strings.ContainsRune(strippedPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Match reports whether a typed answer equals the accepted one after
// normalization of both sides.
func Match(given, accepted string) bool {
	return Normalize(given) == Normalize(accepted)
}
