// Package stt turns captured utterances into text.
package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/jarvis/internal/config"
)

var (
	// ErrNoSpeech means the engine heard audio but produced no words.
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrUnavailable means the engine could not be reached or loaded.
	ErrUnavailable = errors.New("speech service unavailable")
)

// Engine recognizes one utterance of 16kHz mono s16le PCM.
type Engine interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
	Close() error
}

// New builds the engine named by cfg.Engine.
func New(cfg config.STTConfig) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "whisper", "":
		engine, err := NewWhisper(cfg)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case "openai":
		engine, err := NewOpenAI(cfg, nil)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unsupported stt engine %q", cfg.Engine)
	}
}

func requestTimeout(cfg config.STTConfig) time.Duration {
	if cfg.TimeoutMS <= 0 {
		return 20 * time.Second
	}
	return time.Duration(cfg.TimeoutMS) * time.Millisecond
}
