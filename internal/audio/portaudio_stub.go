//go:build !portaudio

package audio

import (
	"context"
	"errors"
)

// ErrPortAudioUnavailable is returned when the binary was built without the portaudio tag.
var ErrPortAudioUnavailable = errors.New("portaudio support not compiled in (build with -tags portaudio)")

// PortAudioCapture is unavailable in this build.
type PortAudioCapture struct{}

// StartPortAudio always fails in builds without the portaudio tag.
func StartPortAudio(context.Context) (*PortAudioCapture, error) {
	return nil, ErrPortAudioUnavailable
}

func (*PortAudioCapture) Chunks() <-chan []byte { return nil }
func (*PortAudioCapture) Stop() error           { return nil }
func (*PortAudioCapture) BytesCaptured() int64  { return 0 }
func (*PortAudioCapture) Device() Device        { return Device{} }
