package skills

import (
	"context"
	"time"
)

// Greeting returns the startup lines for the hour of now.
func Greeting(now time.Time, name string) []string {
	var daypart string
	switch hour := now.Hour(); {
	case hour >= 4 && hour < 12:
		daypart = "Good morning!"
	case hour >= 12 && hour < 16:
		daypart = "Good afternoon!"
	case hour >= 16:
		daypart = "Good evening!"
	default:
		daypart = "Good night, see you tomorrow."
	}
	return []string{
		"Welcome back!",
		daypart,
		name + " at your service. Please tell me how may I help you.",
	}
}

// Greet speaks the greeting using the stored assistant name.
func (h *Handlers) Greet(ctx context.Context) {
	for _, line := range Greeting(h.now(), h.Identity.Load()) {
		h.Voice.Say(ctx, line)
	}
}
