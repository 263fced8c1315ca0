//go:build !(cgo && espeak)

package tts

import (
	"errors"

	"github.com/rbright/jarvis/internal/config"
)

// ErrEspeakUnavailable is returned when the binary was built without the espeak tag.
var ErrEspeakUnavailable = errors.New("espeak support not compiled in (build with -tags espeak)")

func newEspeak(config.TTSConfig) (Engine, error) {
	return nil, ErrEspeakUnavailable
}
