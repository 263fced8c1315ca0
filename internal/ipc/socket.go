package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning means another assistant owns the control socket.
var ErrAlreadyRunning = errors.New("jarvis assistant already running")

const socketName = "jarvis.sock"

// RuntimeSocketPath returns the control socket under XDG_RUNTIME_DIR.
func RuntimeSocketPath() (string, error) {
	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(dir, socketName), nil
}

// AcquireOptions tunes how Acquire treats an existing socket file.
type AcquireOptions struct {
	// ProbeTimeout bounds the status round-trip used to detect a live owner.
	ProbeTimeout time.Duration
	// Retries is how many more binds are attempted after clearing a stale socket.
	Retries int
	// OnStale runs after a dead owner's socket file is removed.
	OnStale func(path string)
}

// Acquire binds path. A socket answering status means another assistant is
// live; one that refuses connections is stale and gets replaced.
func Acquire(ctx context.Context, path string, opts AcquireOptions) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}

	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		if err == nil {
			_ = os.Chmod(path, 0o600)
			return listener, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}
		if err := clearStale(ctx, path, opts); err != nil {
			return nil, err
		}
		if attempt >= opts.Retries {
			return nil, fmt.Errorf("socket %s still busy after %d retries", path, opts.Retries)
		}

		backoff := time.Duration(attempt+1) * 25 * time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// clearStale removes path only when the probe shows nobody is serving it.
func clearStale(ctx context.Context, path string, opts AcquireOptions) error {
	alive, err := Probe(ctx, path, opts.ProbeTimeout)
	switch {
	case alive:
		return ErrAlreadyRunning
	case err != nil:
		return fmt.Errorf("probe existing socket %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	if opts.OnStale != nil {
		opts.OnStale(path)
	}
	return nil
}
