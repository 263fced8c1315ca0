package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/jarvis/internal/audio"
	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/stt"
)

// OpenFunc starts a capture stream; audio.Open in production.
type OpenFunc func(context.Context, config.AudioConfig) (audio.Stream, audio.Selection, error)

// Listener records one utterance from the microphone and transcribes it.
type Listener struct {
	cfg    config.Config
	engine stt.Engine
	out    io.Writer
	logger *slog.Logger
	open   OpenFunc
}

// NewListener constructs a microphone listener from runtime config.
func NewListener(cfg config.Config, engine stt.Engine, out io.Writer, logger *slog.Logger) *Listener {
	if out == nil {
		out = io.Discard
	}
	return &Listener{cfg: cfg, engine: engine, out: out, logger: logger, open: audio.Open}
}

// Listen captures until the speaker pauses, then runs speech recognition.
func (l *Listener) Listen(ctx context.Context) Transcript {
	fmt.Fprintln(l.out, "Listening...")

	stream, selection, err := l.open(ctx, l.cfg.Audio)
	if err != nil {
		return failed(fmt.Errorf("open audio input: %w", err))
	}
	if selection.Warning != "" {
		l.logWarn(selection.Warning)
	}

	pcm, recErr := audio.RecordUtterance(ctx, stream.Chunks(), audio.UtteranceOptionsFrom(l.cfg.Audio))
	_ = stream.Stop()

	result := Transcript{
		Device:        describeDevice(stream.Device()),
		BytesCaptured: stream.BytesCaptured(),
	}
	l.writeDebugAudio(pcm)

	if recErr != nil {
		result.Failure = Classify(recErr)
		result.Err = recErr
		return result
	}

	fmt.Fprintln(l.out, "Recognizing...")
	started := time.Now()
	text, err := l.engine.Transcribe(ctx, pcm)
	result.Latency = time.Since(started)
	if err != nil {
		result.Failure = Classify(err)
		result.Err = err
		return result
	}

	result.Text = text
	fmt.Fprintf(l.out, "User said: %s\n", text)
	return result
}

// describeDevice formats device metadata for logs and loop results.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" || id == description {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func (l *Listener) logWarn(message string) {
	if l.logger == nil {
		return
	}
	l.logger.Warn(message)
}

// debugPath returns a timestamped artifact path under state/jarvis/debug.
func debugPath(prefix string, extension string) (string, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return "", err
	}
	timestamp := time.Now().Format("20060102-150405.000")
	return filepath.Join(stateDir, "jarvis", "debug", fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension)), nil
}

// resolveStateDir returns XDG_STATE_HOME fallback path for debug artifacts.
func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}

// writeDebugAudio writes the utterance to WAV when debug.audio_dump is enabled.
func (l *Listener) writeDebugAudio(pcm []byte) {
	if !l.cfg.Debug.EnableAudioDump || len(pcm) == 0 {
		return
	}

	path, err := debugPath("audio", "wav")
	if err != nil {
		l.logWarn(fmt.Sprintf("unable to create debug audio dump: %v", err))
		return
	}
	if err := audio.WriteWAVFile(path, pcm); err != nil {
		l.logWarn(fmt.Sprintf("unable to write debug audio dump: %v", err))
	}
}
