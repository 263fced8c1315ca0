// Package transcript cleans recognized speech for display, matching, and summaries.
package transcript

import (
	"regexp"
	"strings"
)

// recognizer annotations such as [BLANK_AUDIO], (music) or *coughs*.
var annotationPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)

// Assemble joins recognized segments into display text without annotations.
func Assemble(segments []string) string {
	if len(segments) == 0 {
		return ""
	}

	joined := annotationPattern.ReplaceAllString(strings.Join(segments, " "), " ")
	return strings.Join(strings.Fields(joined), " ")
}

// Normalize prepares a transcript for trigger matching.
//
// The result is lowercase, free of recognizer annotations, single-spaced,
// and has no trailing sentence punctuation.
func Normalize(text string) string {
	text = annotationPattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return strings.TrimSpace(strings.TrimRight(text, ".!?,;: "))
}
