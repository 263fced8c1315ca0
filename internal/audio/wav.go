package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes s16le mono PCM as a 16kHz WAV stream.
func WriteWAV(w io.WriteSeeker, pcm []byte) error {
	enc := wav.NewEncoder(w, SampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           Ints(pcm),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// WriteWAVFile writes pcm to path as WAV with 0600 permissions.
func WriteWAVFile(path string, pcm []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create wav dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open wav %q: %w", path, err)
	}
	if err := WriteWAV(file, pcm); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
