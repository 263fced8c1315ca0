package indicator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/jfreymuth/pulse"
	"github.com/rbright/jarvis/internal/config"
)

type cueKind int

const (
	cueListen cueKind = iota + 1
	cueHeard
	cueError
)

const (
	speakerRate  = beep.SampleRate(44100)
	cueFileLimit = 4 * time.Second
)

var speakerInit struct {
	once sync.Once
	err  error
}

func emitCue(kind cueKind, cfg config.IndicatorConfig) error {
	if path := cuePath(kind, cfg); path != "" {
		if err := playCueFile(path); err == nil {
			return nil
		}
	}

	samples := cueSamples(kind)
	if len(samples) == 0 {
		return nil
	}
	return playPCM(samples)
}

// cuePath returns the configured file for kind; heard has no file slot.
func cuePath(kind cueKind, cfg config.IndicatorConfig) string {
	var raw string
	switch kind {
	case cueListen:
		raw = cfg.SoundListenFile
	case cueError:
		raw = cfg.SoundErrorFile
	default:
		return ""
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	expanded, err := config.ExpandHome(raw)
	if err != nil {
		return raw
	}
	return expanded
}

// decodeCue opens an mp3 or wav cue file by extension.
func decodeCue(path string) (beep.StreamSeekCloser, beep.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open cue file %q: %w", path, err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(file)
	case ".wav":
		stream, format, err = wav.Decode(file)
	default:
		_ = file.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported cue file format %q", filepath.Ext(path))
	}
	if err != nil {
		_ = file.Close()
		return nil, beep.Format{}, fmt.Errorf("decode cue file %q: %w", path, err)
	}
	return stream, format, nil
}

func playCueFile(path string) error {
	stream, format, err := decodeCue(path)
	if err != nil {
		return err
	}
	defer stream.Close()

	speakerInit.once.Do(func() {
		speakerInit.err = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if speakerInit.err != nil {
		return fmt.Errorf("initialize speaker: %w", speakerInit.err)
	}

	done := make(chan struct{})
	var source beep.Streamer = stream
	if format.SampleRate != speakerRate {
		source = beep.Resample(4, format.SampleRate, speakerRate, stream)
	}
	speaker.Play(beep.Seq(source, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-time.After(cueFileLimit):
		speaker.Clear()
		return fmt.Errorf("cue file %q exceeded %s", path, cueFileLimit)
	}
}

// playPCM streams mono cue samples to the default pulse sink and waits for drain.
func playPCM(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("jarvis"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	src := &pcmSource{samples: samples}
	stream, err := client.NewPlayback(
		pulse.Int16Reader(src.read),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("jarvis indicator cue"),
	)
	if err != nil {
		return fmt.Errorf("open cue playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue: %w", err)
	}
	return nil
}

// pcmSource feeds a fixed sample slice to pulse and reports EndOfData with the last chunk.
type pcmSource struct {
	samples []int16
	pos     int
}

func (s *pcmSource) read(buf []int16) (int, error) {
	n := copy(buf, s.samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.samples) {
		return n, pulse.EndOfData
	}
	return n, nil
}
