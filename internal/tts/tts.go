// Package tts turns assistant replies into speech and mirrors them to the console.
package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/launch"
)

// Engine synthesizes text and blocks until playback finishes.
type Engine interface {
	Speak(ctx context.Context, text string) error
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, text string) error

// Speak calls f.
func (f EngineFunc) Speak(ctx context.Context, text string) error {
	return f(ctx, text)
}

// NewEngine builds the engine selected by cfg.Engine.
func NewEngine(cfg config.TTSConfig) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "espeak":
		return newEspeak(cfg)
	case "command":
		if len(cfg.Command.Argv) == 0 {
			return nil, fmt.Errorf("tts.command is empty")
		}
		return commandEngine{argv: cfg.Command.Argv}, nil
	case "none", "":
		return Silent{}, nil
	default:
		return nil, fmt.Errorf("unsupported tts engine %q", cfg.Engine)
	}
}

// Open builds cfg's engine and steps down when it cannot start: first to the
// configured command if its program is on PATH, then to Silent. The returned
// error describes the step down; the engine is always usable.
func Open(cfg config.TTSConfig) (Engine, error) {
	engine, err := NewEngine(cfg)
	if err == nil {
		return engine, nil
	}

	requested := strings.ToLower(strings.TrimSpace(cfg.Engine))
	if argv := cfg.Command.Argv; requested != "command" && len(argv) > 0 {
		if _, lookErr := exec.LookPath(argv[0]); lookErr == nil {
			return commandEngine{argv: argv}, fmt.Errorf("tts engine %q unavailable, speaking through %s: %w", cfg.Engine, argv[0], err)
		}
	}
	return Silent{}, fmt.Errorf("tts engine %q unavailable, printing replies only: %w", cfg.Engine, err)
}

// Silent discards speech; replies still reach the console.
type Silent struct{}

// Speak does nothing.
func (Silent) Speak(context.Context, string) error { return nil }

// commandEngine pipes text to an external synthesizer on stdin.
type commandEngine struct {
	argv []string
}

func (e commandEngine) Speak(ctx context.Context, text string) error {
	return launch.RunWithInput(ctx, e.argv, text)
}

// Voice serializes speech and echoes every utterance to out.
// Engine failures are logged and never surface to callers.
type Voice struct {
	engine Engine
	out    io.Writer
	logger *slog.Logger

	mu sync.Mutex
}

// NewVoice wraps engine; a nil engine speaks nothing.
func NewVoice(engine Engine, out io.Writer, logger *slog.Logger) *Voice {
	if engine == nil {
		engine = Silent{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Voice{engine: engine, out: out, logger: logger}
}

// Say prints text and speaks it.
func (v *Voice) Say(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	v.Print(text)
	v.Speak(ctx, text)
}

// Announce speaks one phrase and prints another, for values whose spoken
// and written forms differ.
func (v *Voice) Announce(ctx context.Context, spoken string, printed string) {
	if printed = strings.TrimSpace(printed); printed != "" {
		v.Print(printed)
	}
	v.Speak(ctx, spoken)
}

// Speak voices text without printing it.
func (v *Voice) Speak(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.engine.Speak(ctx, text); err != nil && v.logger != nil {
		v.logger.Warn("speech output failed", "error", err.Error(), "text_length", len(text))
	}
}

// Print writes text to the console only.
func (v *Voice) Print(text string) {
	fmt.Fprintln(v.out, text)
}
