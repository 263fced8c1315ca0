//go:build !whisper

package stt

import (
	"context"
	"fmt"

	"github.com/rbright/jarvis/internal/config"
)

// WhisperCompiled reports whether this binary links whisper.cpp.
const WhisperCompiled = false

// Whisper is unavailable in builds without the whisper tag.
type Whisper struct{}

// NewWhisper always fails in builds without the whisper tag.
func NewWhisper(config.STTConfig) (*Whisper, error) {
	return nil, fmt.Errorf("%w: whisper support not compiled in (build with -tags whisper)", ErrUnavailable)
}

func (*Whisper) Transcribe(context.Context, []byte) (string, error) { return "", ErrUnavailable }
func (*Whisper) Close() error                                      { return nil }
