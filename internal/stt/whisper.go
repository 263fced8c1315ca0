//go:build whisper

package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rbright/jarvis/internal/audio"
	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/transcript"
)

// WhisperCompiled reports whether this binary links whisper.cpp.
const WhisperCompiled = true

// Whisper runs whisper.cpp locally against a ggml model file.
type Whisper struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	threads  int
}

// NewWhisper loads the model at cfg.WhisperModel.
func NewWhisper(cfg config.STTConfig) (*Whisper, error) {
	path, err := config.ExpandHome(cfg.WhisperModel)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: whisper model path is empty", ErrUnavailable)
	}
	model, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load whisper model %q: %v", ErrUnavailable, path, err)
	}

	threads := cfg.WhisperThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &Whisper{model: model, language: cfg.Language, threads: threads}, nil
}

// Transcribe decodes pcm in a fresh context on the shared model.
func (w *Whisper) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", fmt.Errorf("%w: whisper model closed", ErrUnavailable)
	}
	if len(pcm) == 0 {
		return "", ErrNoSpeech
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("%w: new whisper context: %v", ErrUnavailable, err)
	}
	language := w.language
	if language == "" {
		language = "auto"
	}
	if err := wctx.SetLanguage(language); err != nil {
		return "", fmt.Errorf("set whisper language %q: %w", language, err)
	}
	wctx.SetThreads(uint(w.threads))

	if err := wctx.Process(audio.Float32(pcm), nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var segments []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper segment: %w", err)
		}
		segments = append(segments, segment.Text)
	}

	text := transcript.Assemble(segments)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// Close releases the model.
func (w *Whisper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}
