// Package screenshot captures the screen to a PNG through grim (Wayland)
// or scrot (X11).
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/jarvis/internal/hypr"
)

// ErrUnavailable is returned when no capture tool fits the session.
var ErrUnavailable = errors.New("screenshot capture unavailable")

const captureTimeout = 10 * time.Second

// Capturer is a capability-queryable screen grabber.
type Capturer interface {
	Available() bool
	Capture(ctx context.Context, path string) error
}

// Tool captures through one external program.
type Tool struct {
	Name string
	// Args builds the argument list for writing a capture to path.
	Args func(ctx context.Context, path string) []string
	// Session reports whether the tool's display server is running.
	Session func() bool
}

// Available reports whether the tool is on PATH and its session is active.
func (t Tool) Available() bool {
	if t.Name == "" {
		return false
	}
	if t.Session != nil && !t.Session() {
		return false
	}
	_, err := exec.LookPath(t.Name)
	return err == nil
}

// Capture writes a PNG to path, creating the parent directory.
func (t Tool) Capture(ctx context.Context, path string) error {
	if !t.Available() {
		return ErrUnavailable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}

	captureCtx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	args := []string{path}
	if t.Args != nil {
		args = t.Args(captureCtx, path)
	}
	out, err := exec.CommandContext(captureCtx, t.Name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s failed: %w (%s)", t.Name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", t.Name, err)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s produced no file: %w", t.Name, err)
	}
	return nil
}

// Grim captures Wayland outputs, limited to the focused monitor on Hyprland.
func Grim() Tool {
	return Tool{
		Name:    "grim",
		Session: func() bool { return os.Getenv("WAYLAND_DISPLAY") != "" },
		Args: func(ctx context.Context, path string) []string {
			if hypr.Available() {
				if monitor, err := hypr.FocusedMonitor(ctx); err == nil && monitor != "" {
					return []string{"-o", monitor, path}
				}
			}
			return []string{path}
		},
	}
}

// Scrot captures X11 displays.
func Scrot() Tool {
	return Tool{
		Name:    "scrot",
		Session: func() bool { return os.Getenv("DISPLAY") != "" },
		Args: func(_ context.Context, path string) []string {
			return []string{"--overwrite", path}
		},
	}
}

// unavailable never captures.
type unavailable struct{}

func (unavailable) Available() bool                        { return false }
func (unavailable) Capture(context.Context, string) error { return ErrUnavailable }

// New selects a capturer for backend: auto, grim or scrot.
func New(backend string) Capturer {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "grim":
		return Grim()
	case "scrot":
		return Scrot()
	}

	for _, tool := range []Tool{Grim(), Scrot()} {
		if tool.Available() {
			return tool
		}
	}
	return unavailable{}
}
