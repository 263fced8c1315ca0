//go:build portaudio

package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapture streams the default PortAudio input device.
type PortAudioCapture struct {
	device Device
	stream *portaudio.Stream
	frame  []int16

	chunks chan []byte
	stopCh chan struct{}
	done   chan struct{}

	once  sync.Once
	bytes atomic.Int64
}

// StartPortAudio opens the default input device at 16kHz mono.
func StartPortAudio(ctx context.Context) (*PortAudioCapture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("resolve default input: %w", err)
	}

	c := &PortAudioCapture{
		device: Device{ID: info.Name, Description: info.Name, Available: true, Default: true},
		frame:  make([]int16, chunkSizeBytes/2),
		chunks: make(chan []byte, 128),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(c.frame), c.frame)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start portaudio stream: %w", err)
	}
	c.stream = stream

	go c.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop()
		case <-c.done:
		}
	}()

	return c, nil
}

func (c *PortAudioCapture) readLoop() {
	defer close(c.done)
	defer close(c.chunks)

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			return
		}

		chunk := make([]byte, len(c.frame)*2)
		for i, sample := range c.frame {
			binary.LittleEndian.PutUint16(chunk[2*i:], uint16(sample))
		}
		c.bytes.Add(int64(len(chunk)))

		select {
		case <-c.stopCh:
			return
		case c.chunks <- chunk:
		}
	}
}

// Device returns the input device metadata.
func (c *PortAudioCapture) Device() Device {
	return c.device
}

// Chunks returns the PCM stream as fixed-size byte slices.
func (c *PortAudioCapture) Chunks() <-chan []byte {
	return c.chunks
}

// BytesCaptured reports total bytes read from the device.
func (c *PortAudioCapture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// Stop halts reading and releases PortAudio exactly once.
func (c *PortAudioCapture) Stop() error {
	var err error
	c.once.Do(func() {
		close(c.stopCh)
		<-c.done
		if stopErr := c.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		_ = c.stream.Close()
		_ = portaudio.Terminate()
	})
	return err
}
