// Package audio handles device discovery, selection, PCM capture streams,
// and utterance segmentation.
package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Capture records one Pulse source as 16kHz mono s16 frames.
type Capture struct {
	device Device
	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan []byte
	stopCh chan struct{}

	mu       sync.Mutex
	frames   framer
	stopped  bool
	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// StartCapture opens a record stream on selected and stops it when ctx ends.
func StartCapture(ctx context.Context, selected Device) (*Capture, error) {
	client, err := dialPulse()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	c := &Capture{
		device: selected,
		client: client,
		chunks: make(chan []byte, 128),
		stopCh: make(chan struct{}),
	}

	stream, err := client.NewRecord(
		pulse.NewWriter(pcmSink{c}, pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(chunkSizeBytes),
		pulse.RecordMediaName("jarvis voice command"),
	)
	if err != nil {
		_ = c.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}
	c.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop()
		case <-c.stopCh:
		}
	}()

	return c, nil
}

func (c *Capture) Device() Device {
	return c.device
}

func (c *Capture) Chunks() <-chan []byte {
	return c.chunks
}

func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// Stop closes the stream, delivers any partial frame, then closes Chunks.
// Repeated calls are no-ops.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}
	c.inflight.Wait()

	c.mu.Lock()
	tail := c.frames.flush()
	c.mu.Unlock()
	if tail != nil {
		select {
		case c.chunks <- tail:
		default:
		}
	}

	close(c.chunks)
	return nil
}

// record is called from the Pulse read loop with raw s16le samples.
func (c *Capture) record(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Add under mu so Stop cannot reach Wait before it.
	c.inflight.Add(1)
	frames := c.frames.push(buffer)
	c.mu.Unlock()
	defer c.inflight.Done()

	c.bytes.Add(int64(len(buffer)))
	for _, frame := range frames {
		select {
		case <-c.stopCh:
			return 0, io.EOF
		case c.chunks <- frame:
		}
	}
	return len(buffer), nil
}

// pcmSink is the io.Writer handed to pulse.NewWriter.
type pcmSink struct {
	c *Capture
}

func (s pcmSink) Write(p []byte) (int, error) {
	return s.c.record(p)
}
