package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rbright/jarvis/internal/cli"
	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/dispatch"
	"github.com/rbright/jarvis/internal/identity"
	"github.com/rbright/jarvis/internal/indicator"
	"github.com/rbright/jarvis/internal/intent"
	"github.com/rbright/jarvis/internal/ipc"
	"github.com/rbright/jarvis/internal/jokes"
	"github.com/rbright/jarvis/internal/launch"
	"github.com/rbright/jarvis/internal/lookup"
	"github.com/rbright/jarvis/internal/music"
	"github.com/rbright/jarvis/internal/pipeline"
	"github.com/rbright/jarvis/internal/screenshot"
	"github.com/rbright/jarvis/internal/skills"
	"github.com/rbright/jarvis/internal/stt"
	"github.com/rbright/jarvis/internal/tts"
)

func (r Runner) commandRun(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, ipc.AcquireOptions{
		ProbeTimeout: 180 * time.Millisecond,
		Retries:      8,
		OnStale: func(path string) {
			logger.Warn("removed stale control socket", "socket", path)
		},
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("acquire socket failed", "socket", socketPath, "error", err.Error())
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	source, closeSource, err := r.buildSource(parsed.Input, cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("speech input unavailable", "input", parsed.Input, "error", err.Error())
		return 1
	}
	defer closeSource()

	handlers, err := r.buildSkills(cfg, source, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("assistant setup failed", "error", err.Error())
		return 1
	}

	loop := dispatch.New(dispatch.Options{
		Logger:     logger,
		Listener:   source,
		Voice:      handlers.Voice,
		Skills:     handlers,
		Indicator:  buildIndicator(cfg.Indicator, logger),
		Classifier: intent.NewClassifier(nil),
		Name:       handlers.Identity.Load,
	})

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, loop)
	}()

	result := loop.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logRunResult(logger, result)

	if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	return 0
}

// buildSource returns the transcript source for the selected input and its cleanup.
func (r Runner) buildSource(input string, cfg config.Config, logger *slog.Logger) (pipeline.Source, func(), error) {
	if input == cli.InputKeyboard {
		stdin := r.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		keyboard := pipeline.NewKeyboardListener(stdin, r.Stdout)
		return keyboard, keyboard.Close, nil
	}

	engine, err := stt.New(cfg.STT)
	if errors.Is(err, stt.ErrUnavailable) && cfg.STT.Engine != "openai" {
		alt := cfg.STT
		alt.Engine = "openai"
		if fallback, altErr := stt.New(alt); altErr == nil {
			fmt.Fprintf(r.Stderr, "warning: stt engine %q unavailable, using openai: %v\n", cfg.STT.Engine, err)
			logger.Warn("speech recognition degraded", "engine", cfg.STT.Engine, "fallback", "openai", "error", err.Error())
			engine, err = fallback, nil
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("speech recognition: %w (type commands with --input keyboard)", err)
	}
	cleanup := func() {
		if closeErr := engine.Close(); closeErr != nil {
			logger.Warn("close speech engine failed", "error", closeErr.Error())
		}
	}
	return pipeline.NewListener(cfg, engine, r.Stdout, logger), cleanup, nil
}

func (r Runner) buildSkills(cfg config.Config, source pipeline.Source, logger *slog.Logger) (*skills.Handlers, error) {
	engine, err := tts.Open(cfg.TTS)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: %v\n", err)
		logger.Warn("speech output degraded", "engine", cfg.TTS.Engine, "error", err.Error())
	}
	voice := tts.NewVoice(engine, r.Stdout, logger)

	store, err := identity.NewStore(cfg.Assistant.IdentityPath, cfg.Assistant.DefaultName)
	if err != nil {
		return nil, err
	}

	launcher := launch.New(cfg, logger)
	return &skills.Handlers{
		Voice:          voice,
		Listener:       source,
		Identity:       store,
		Lookup:         lookup.New(cfg.Lookup, nil),
		Music:          music.NewLibrary(cfg.Music.Dir),
		Opener:         launcher,
		Power:          launcher,
		Screenshot:     screenshot.New(cfg.Screenshot.Backend),
		ScreenshotPath: cfg.Screenshot.Path,
		Jokes:          jokes.New(),
		YouTubeURL:     cfg.Browser.YouTubeURL,
		GoogleURL:      cfg.Browser.GoogleURL,
		Now:            time.Now,
		Logger:         logger,
	}, nil
}

func buildIndicator(cfg config.IndicatorConfig, logger *slog.Logger) indicator.Controller {
	if !cfg.Enable && !cfg.SoundEnable {
		return indicator.Noop{}
	}
	return indicator.New(cfg, logger)
}

func logRunResult(logger *slog.Logger, result dispatch.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"handled", result.Handled,
		"missed", result.Missed,
		"unmatched", result.Unmatched,
		"last_intent", result.LastIntent,
		"terminated", result.Terminated,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	}

	if result.Err != nil {
		logger.Error("assistant stopped with error", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("assistant stopped", fields...)
}

