package indicator

import (
	"strings"

	"github.com/rbright/jarvis/internal/config"
)

const (
	defaultListeningText   = "Listening…"
	defaultRecognizingText = "Recognizing…"
	defaultErrorText       = "Didn't catch that"
)

type messages struct {
	listening   string
	recognizing string
	errorText   string
}

// messagesFor returns the indicator texts with non-blank config overrides applied.
func messagesFor(cfg config.IndicatorConfig) messages {
	return messages{
		listening:   firstNonBlank(cfg.TextListening, defaultListeningText),
		recognizing: defaultRecognizingText,
		errorText:   firstNonBlank(cfg.TextError, defaultErrorText),
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
