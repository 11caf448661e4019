package textproc

import (
	"strings"

	"github.com/blevesearch/go-porterstemmer"
)

// irregularStems maps words whose stems are fixed regardless of the suffix rules
var irregularStems = map[string]string{
	"sky":      "sky",
	"skies":    "sky",
	"dying":    "die",
	"lying":    "lie",
	"tying":    "tie",
	"news":     "news",
	"innings":  "inning",
	"inning":   "inning",
	"outings":  "outing",
	"outing":   "outing",
	"cannings": "canning",
	"canning":  "canning",
	"howe":     "howe",
	"proceed":  "proceed",
	"exceed":   "exceed",
	"succeed":  "succeed",
}

// Stem reduces a lowercase word with the Porter algorithm, using the
// common extensions for terminal y, short -ies/-ied words and irregular forms.
// Words of one or two characters are returned unchanged.
func Stem(word string) string {
	if len([]rune(word)) <= 2 {
		return word
	}
	if s, ok := irregularStems[word]; ok {
		return s
	}
	if len(word) == 4 && (strings.HasSuffix(word, "ies") || strings.HasSuffix(word, "ied")) {
		return word[:3]
	}

	stem := porterstemmer.StemString(word)
	n := len(stem)
	if n < 2 {
		return stem
	}

	switch stem[n-1] {
	case 'i':
		// y after a vowel is kept: day, enjoy, buying
		if isVowel(stem[n-2]) && strings.HasPrefix(word, stem[:n-1]+"y") {
			return stem[:n-1] + "y"
		}
	case 'y':
		// y after a consonant becomes i even when no other vowel precedes it: try, fly
		if n > 2 && !isVowel(stem[n-2]) && stem[n-2] != 'y' && inflectionOf(word, stem) {
			return stem[:n-1] + "i"
		}
	}
	return stem
}

// inflectionOf reports whether word is stem with at most a plural or verb ending
func inflectionOf(word, stem string) bool {
	if !strings.HasPrefix(word, stem) {
		return false
	}
	switch word[len(stem):] {
	case "", "s", "ed", "ing":
		return true
	}
	return false
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}
