package audio

import (
	"context"
	"errors"
	"time"

	"github.com/rbright/jarvis/internal/config"
)

var (
	// ErrListenTimeout means no speech began within the listen window.
	ErrListenTimeout = errors.New("listening timed out while waiting for phrase to start")
	// ErrNoAudio means the stream closed before any speech was heard.
	ErrNoAudio = errors.New("audio stream ended before speech")
)

const (
	prerollChunks = 10 // 200ms kept ahead of speech onset
	stallGrace    = 2 * time.Second
)

// UtteranceOptions bounds a single phrase capture.
type UtteranceOptions struct {
	ListenTimeout  time.Duration
	PauseThreshold time.Duration
	MaxLength      time.Duration
	SilenceRMS     float64
}

// UtteranceOptionsFrom maps audio config into capture bounds.
func UtteranceOptionsFrom(cfg config.AudioConfig) UtteranceOptions {
	return UtteranceOptions{
		ListenTimeout:  time.Duration(cfg.ListenTimeoutMS) * time.Millisecond,
		PauseThreshold: time.Duration(cfg.PauseThresholdMS) * time.Millisecond,
		MaxLength:      time.Duration(cfg.MaxUtteranceMS) * time.Millisecond,
		SilenceRMS:     cfg.SilenceRMS,
	}
}

// RecordUtterance reads chunks until one phrase has been spoken and followed
// by PauseThreshold of silence. Speech must begin within ListenTimeout of
// captured audio. A stalled device is caught on wall-clock time.
func RecordUtterance(ctx context.Context, chunks <-chan []byte, opts UtteranceOptions) ([]byte, error) {
	stall := time.NewTimer(opts.ListenTimeout + stallGrace)
	defer stall.Stop()

	var (
		preroll  [][]byte
		pcm      []byte
		waited   time.Duration
		silence  time.Duration
		speaking bool
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stall.C:
			if speaking {
				return pcm, nil
			}
			return nil, ErrListenTimeout
		case chunk, ok := <-chunks:
			if !ok {
				if speaking {
					return pcm, nil
				}
				return nil, ErrNoAudio
			}

			span := Duration(len(chunk))
			loud := RMS(chunk) >= opts.SilenceRMS

			if !speaking {
				if !loud {
					waited += span
					if opts.ListenTimeout > 0 && waited >= opts.ListenTimeout {
						return nil, ErrListenTimeout
					}
					preroll = append(preroll, chunk)
					if len(preroll) > prerollChunks {
						preroll = preroll[1:]
					}
					continue
				}
				speaking = true
				for _, p := range preroll {
					pcm = append(pcm, p...)
				}
				preroll = nil
			}

			pcm = append(pcm, chunk...)
			stall.Reset(opts.PauseThreshold + stallGrace)
			if loud {
				silence = 0
			} else {
				silence += span
			}

			if opts.PauseThreshold > 0 && silence >= opts.PauseThreshold {
				return pcm, nil
			}
			if opts.MaxLength > 0 && Duration(len(pcm)) >= opts.MaxLength {
				return pcm, nil
			}
		}
	}
}
