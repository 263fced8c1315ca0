package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/jarvis/internal/config"
)

const (
	// SampleRate is the capture rate shared by every backend and STT engine.
	SampleRate = 16000

	chunkSizeBytes = 640 // 20ms @ 16kHz mono s16
)

// Stream is a running microphone capture delivering s16le mono chunks.
type Stream interface {
	Chunks() <-chan []byte
	Stop() error
	BytesCaptured() int64
	Device() Device
}

// Open starts capture on the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.AudioConfig) (Stream, Selection, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "portaudio":
		stream, err := StartPortAudio(ctx)
		if err != nil {
			return nil, Selection{}, err
		}
		return stream, Selection{Device: stream.Device()}, nil
	case "pulse", "":
		selection, err := SelectDevice(ctx, cfg.Input, cfg.Fallback)
		if err != nil {
			return nil, Selection{}, err
		}
		capture, err := StartCapture(ctx, selection.Device)
		if err != nil {
			return nil, selection, err
		}
		return capture, selection, nil
	default:
		return nil, Selection{}, fmt.Errorf("unsupported audio backend %q", cfg.Backend)
	}
}
