// Package pipeline turns one spoken (or typed) command into a Transcript.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rbright/jarvis/internal/audio"
	"github.com/rbright/jarvis/internal/stt"
)

// ErrInputClosed reports that a typed input source reached end of file.
var ErrInputClosed = errors.New("input closed")

// Failure classifies why a listen cycle produced no usable text.
type Failure int

const (
	FailureNone Failure = iota
	FailureTimeout
	FailureUnrecognized
	FailureUnavailable
	FailureError
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureUnrecognized:
		return "unrecognized"
	case FailureUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}

// Transcript is the outcome of one listen cycle.
type Transcript struct {
	Text          string
	Failure       Failure
	Err           error
	Device        string
	BytesCaptured int64
	Latency       time.Duration
}

// Failed reports whether the cycle produced no text.
func (t Transcript) Failed() bool {
	return t.Failure != FailureNone
}

// Source produces transcripts for the dispatch loop.
type Source interface {
	Listen(ctx context.Context) Transcript
}

// Classify maps capture and recognition errors onto a Failure kind.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, audio.ErrListenTimeout):
		return FailureTimeout
	case errors.Is(err, stt.ErrNoSpeech):
		return FailureUnrecognized
	case errors.Is(err, stt.ErrUnavailable):
		return FailureUnavailable
	default:
		return FailureError
	}
}

func failed(err error) Transcript {
	return Transcript{Failure: Classify(err), Err: err}
}
