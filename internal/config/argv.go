package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// argvScanner splits a command string the way a POSIX shell would for
// plain words, single and double quotes, and backslash escapes. No
// variable or glob expansion happens beyond a leading "~/" on an unquoted word.
type argvScanner struct {
	argv    []string
	word    strings.Builder
	inWord  bool
	quoted  bool
	quote   rune
	escaped bool
}

func (s *argvScanner) endWord() {
	if !s.inWord {
		return
	}
	word := s.word.String()
	if !s.quoted && strings.HasPrefix(word, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			word = home + word[1:]
		}
	}
	s.argv = append(s.argv, word)
	s.word.Reset()
	s.inWord, s.quoted = false, false
}

func (s *argvScanner) add(r rune) {
	s.word.WriteRune(r)
	s.inWord = true
}

func (s *argvScanner) scan(r rune) {
	switch {
	case s.escaped:
		s.add(r)
		s.escaped = false
	case s.quote != 0 && r == s.quote:
		s.quote = 0
	case s.quote != 0:
		s.add(r)
	case r == '\\':
		s.escaped = true
	case r == '\'' || r == '"':
		s.quote = r
		s.inWord, s.quoted = true, true
	case unicode.IsSpace(r):
		s.endWord()
	default:
		s.add(r)
	}
}

// parseArgv splits a configured command. Blank and "#"-commented strings
// yield no command.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var s argvScanner
	for _, r := range input {
		s.scan(r)
	}
	switch {
	case s.escaped:
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	case s.quote != 0:
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	s.endWord()
	return s.argv, nil
}

// mustParseArgv is for compile-time default commands only.
func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
