package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// maxLineBytes bounds one typed command; longer lines end input.
const maxLineBytes = 1 << 20

// KeyboardListener reads one typed command per line.
type KeyboardListener struct {
	in  io.Reader
	out io.Writer

	once      sync.Once
	closeOnce sync.Once
	lines     chan string
	done      chan struct{}
	err       error
}

// NewKeyboardListener reads commands from in and prompts on out.
func NewKeyboardListener(in io.Reader, out io.Writer) *KeyboardListener {
	if out == nil {
		out = io.Discard
	}
	return &KeyboardListener{in: in, out: out, lines: make(chan string), done: make(chan struct{})}
}

// Listen blocks for the next line. End of input, or a read error, yields
// ErrInputClosed.
func (k *KeyboardListener) Listen(ctx context.Context) Transcript {
	k.once.Do(func() { go k.scan() })

	fmt.Fprint(k.out, "> ")
	select {
	case <-ctx.Done():
		return failed(ctx.Err())
	case line, ok := <-k.lines:
		if !ok {
			if k.err != nil {
				return failed(fmt.Errorf("read input: %w: %w", ErrInputClosed, k.err))
			}
			return failed(ErrInputClosed)
		}
		text := strings.TrimSpace(line)
		if text == "" {
			return Transcript{Failure: FailureUnrecognized}
		}
		return Transcript{Text: text, Device: "keyboard", BytesCaptured: int64(len(line))}
	}
}

// Close releases the reader goroutine once nobody listens anymore.
func (k *KeyboardListener) Close() {
	k.closeOnce.Do(func() { close(k.done) })
}

func (k *KeyboardListener) scan() {
	defer close(k.lines)
	scanner := bufio.NewScanner(k.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		select {
		case k.lines <- scanner.Text():
		case <-k.done:
			return
		}
	}
	k.err = scanner.Err()
}
