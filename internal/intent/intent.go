// Package intent maps normalized transcripts to assistant intents using an
// ordered table of substring triggers. The first rule whose trigger occurs
// anywhere in the transcript wins, so rule order is part of the contract:
// "what is the date and time" resolves to Time because "time" is listed first.
package intent

import "strings"

// Intent names one assistant capability.
type Intent string

const (
	Unrecognized Intent = "unrecognized"
	Time         Intent = "time"
	Date         Intent = "date"
	Lookup       Intent = "lookup"
	PlayMusic    Intent = "play_music"
	OpenYouTube  Intent = "open_youtube"
	OpenGoogle   Intent = "open_google"
	Rename       Intent = "rename"
	Screenshot   Intent = "screenshot"
	Joke         Intent = "joke"
	Shutdown     Intent = "shutdown"
	Restart      Intent = "restart"
	Exit         Intent = "exit"
)

// Rule pairs a lowercase trigger phrase with the intent it selects.
type Rule struct {
	Trigger string
	Intent  Intent
}

// Match is the classification result for one transcript.
type Match struct {
	Intent  Intent
	Trigger string
	// Argument is the transcript with the trigger removed, used as the
	// lookup query or music filter.
	Argument string
}

// Matched reports whether a rule fired.
func (m Match) Matched() bool {
	return m.Intent != Unrecognized
}

// Rules returns the committed trigger table in evaluation order.
func Rules() []Rule {
	return []Rule{
		{Trigger: "time", Intent: Time},
		{Trigger: "date", Intent: Date},
		{Trigger: "wikipedia", Intent: Lookup},
		{Trigger: "play music", Intent: PlayMusic},
		{Trigger: "open youtube", Intent: OpenYouTube},
		{Trigger: "open google", Intent: OpenGoogle},
		{Trigger: "change your name", Intent: Rename},
		{Trigger: "screenshot", Intent: Screenshot},
		{Trigger: "tell me a joke", Intent: Joke},
		{Trigger: "shutdown", Intent: Shutdown},
		{Trigger: "restart", Intent: Restart},
		{Trigger: "exit", Intent: Exit},
		{Trigger: "offline", Intent: Exit},
	}
}

// Classifier evaluates a rule table against transcripts.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over rules; nil selects Rules().
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = Rules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the first rule matching text, which must already be
// normalized to lowercase.
func (c *Classifier) Classify(text string) Match {
	text = strings.TrimSpace(text)
	if text == "" {
		return Match{Intent: Unrecognized}
	}

	for _, rule := range c.rules {
		if !strings.Contains(text, rule.Trigger) {
			continue
		}
		return Match{
			Intent:   rule.Intent,
			Trigger:  rule.Trigger,
			Argument: argument(text, rule.Trigger),
		}
	}

	return Match{Intent: Unrecognized}
}

// Classify evaluates the default rule table.
func Classify(text string) Match {
	return NewClassifier(nil).Classify(text)
}

// Terminates reports whether handling the intent ends the session.
func (i Intent) Terminates() bool {
	switch i {
	case Exit, Shutdown, Restart:
		return true
	default:
		return false
	}
}

func argument(text string, trigger string) string {
	rest := strings.ReplaceAll(text, trigger, " ")
	rest = strings.Join(strings.Fields(rest), " ")
	return strings.Trim(rest, " ,.;:!?")
}
