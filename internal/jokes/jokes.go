// Package jokes supplies short programmer jokes.
package jokes

import (
	_ "embed"
	"math/rand/v2"
	"strings"
)

//go:embed jokes.txt
var raw string

// Supply hands out jokes at random.
type Supply struct {
	jokes []string
	intn  func(n int) int
}

// New returns a supply over the embedded collection.
func New() *Supply {
	return &Supply{jokes: parse(raw), intn: rand.IntN}
}

// newFrom returns a supply over jokes with a custom index picker.
func newFrom(jokes []string, intn func(n int) int) *Supply {
	if intn == nil {
		intn = rand.IntN
	}
	return &Supply{jokes: jokes, intn: intn}
}

// size reports how many jokes are available.
func (s *Supply) size() int {
	return len(s.jokes)
}

// Random returns one joke, or an empty string when none are loaded.
func (s *Supply) Random() string {
	if len(s.jokes) == 0 {
		return ""
	}
	return s.jokes[s.intn(len(s.jokes))]
}

func parse(content string) []string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
