package transcript

import (
	"strings"
	"unicode"
)

// SplitSentences breaks prose into sentences, keeping abbreviations,
// decimals, and initialisms inside the sentence they belong to.
func SplitSentences(text string) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && !isSentenceBoundaryPeriod(runes, i) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isClosingRune(runes[end]) || runes[end] == '.' || runes[end] == '!' || runes[end] == '?') {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}

		if sentence := strings.TrimSpace(string(runes[start:end])); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
		i = end - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// FirstSentences returns at most n leading sentences joined by single spaces.
func FirstSentences(text string, n int) string {
	if n <= 0 {
		return ""
	}
	sentences := SplitSentences(text)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}
