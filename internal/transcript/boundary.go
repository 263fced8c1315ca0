package transcript

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence in encyclopedia prose.
var abbreviations = map[string]struct{}{
	"approx": {}, "ca": {}, "cf": {}, "dr": {},
	"e.g": {}, "est": {}, "fig": {}, "gen": {}, "i.e": {}, "jr": {}, "lt": {},
	"mr": {}, "mrs": {}, "ms": {}, "mt": {}, "pp": {}, "prof": {},
	"rev": {}, "sgt": {}, "sr": {}, "st": {}, "vol": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {},
	"aug": {}, "sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
}

// ambiguous abbreviations end a sentence only when a capitalized word follows.
var ambiguous = map[string]struct{}{
	"co": {}, "corp": {}, "etc": {}, "inc": {}, "ltd": {}, "vs": {},
}

// numbered abbreviations only continue a sentence before a number, as in
// "b. 1917", "c. 1450" or "No. 5"; "vitamin d." and "no." still end one.
var numbered = map[string]struct{}{
	"b": {}, "c": {}, "d": {}, "no": {},
}

// isSentenceBoundaryPeriod reports whether the period at idx ends a sentence.
func isSentenceBoundaryPeriod(runes []rune, idx int) bool {
	if idx < 0 || idx >= len(runes) || runes[idx] != '.' {
		return false
	}
	if idx+1 < len(runes) {
		next := runes[idx+1]
		if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '.' {
			return false
		}
	}

	token := tokenBeforePeriod(runes, idx)
	if token == "" {
		return true
	}
	lower := strings.ToLower(token)
	if _, ok := abbreviations[lower]; ok {
		return false
	}

	letters := []rune(token)
	if len(letters) == 1 && unicode.IsUpper(letters[0]) {
		// middle initial, as in "John F. Kennedy"
		return false
	}

	if isInitialism(lower) {
		// "the U.S. Navy" keeps going; only end of text closes an initialism
		return textEndsAfter(runes, idx+1)
	}
	if _, ok := numbered[lower]; ok {
		return !digitFollows(runes, idx+1)
	}
	if _, ok := ambiguous[lower]; ok {
		return capitalizedWordFollows(runes, idx+1)
	}
	return true
}

func tokenBeforePeriod(runes []rune, idx int) string {
	start := idx
	for start > 0 {
		if r := runes[start-1]; unicode.IsLetter(r) || r == '.' {
			start--
			continue
		}
		break
	}
	return strings.Trim(string(runes[start:idx]), ".")
}

// isInitialism matches dotted single letters such as "u.s" or "u.k".
func isInitialism(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		r := []rune(part)
		if len(r) != 1 || !unicode.IsLetter(r[0]) {
			return false
		}
	}
	return true
}

// capitalizedWordFollows is true at end of text too.
func capitalizedWordFollows(runes []rune, start int) bool {
	for i := start; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r), isClosingRune(r):
			continue
		case unicode.IsLetter(r):
			return unicode.IsUpper(r)
		default:
			return false
		}
	}
	return true
}

func digitFollows(runes []rune, start int) bool {
	for i := start; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			continue
		}
		return unicode.IsDigit(runes[i])
	}
	return false
}

func textEndsAfter(runes []rune, start int) bool {
	for i := start; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) && !isClosingRune(runes[i]) {
			return false
		}
	}
	return true
}

func isClosingRune(r rune) bool {
	switch r {
	case ')', ']', '}', '\'', '"', '’', '”':
		return true
	default:
		return false
	}
}
