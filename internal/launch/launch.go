// Package launch hands work to external programs: the desktop opener for
// files and URLs, and the system power commands.
package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/jarvis/internal/config"
)

// ErrNoCommand is returned when a power action has no configured command.
var ErrNoCommand = errors.New("no command configured")

const (
	openTimeout  = 5 * time.Second
	powerTimeout = 10 * time.Second
)

// Launcher runs configured external commands.
type Launcher struct {
	opener   []string
	shutdown []string
	restart  []string
	logger   *slog.Logger
}

// New constructs a launcher from runtime config.
func New(cfg config.Config, logger *slog.Logger) *Launcher {
	return &Launcher{
		opener:   cfg.OpenCmd.Argv,
		shutdown: cfg.Power.Shutdown.Argv,
		restart:  cfg.Power.Restart.Argv,
		logger:   logger,
	}
}

// Open asks the desktop opener to show target, a file path or URL.
func (l *Launcher) Open(ctx context.Context, target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("open target cannot be empty")
	}
	argv := append(append([]string(nil), l.opener...), target)

	openCtx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()
	if err := RunWithInput(openCtx, argv, ""); err != nil {
		return fmt.Errorf("open %q: %w", target, err)
	}
	l.log("opened target", "target", target)
	return nil
}

// Shutdown runs the configured power-off command.
func (l *Launcher) Shutdown(ctx context.Context) error {
	return l.power(ctx, "shutdown", l.shutdown)
}

// Restart runs the configured reboot command.
func (l *Launcher) Restart(ctx context.Context) error {
	return l.power(ctx, "restart", l.restart)
}

func (l *Launcher) power(ctx context.Context, action string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%s: %w", action, ErrNoCommand)
	}
	powerCtx, cancel := context.WithTimeout(ctx, powerTimeout)
	defer cancel()
	if err := RunWithInput(powerCtx, argv, ""); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	l.log("power command dispatched", "action", action, "argv", strings.Join(argv, " "))
	return nil
}

func (l *Launcher) log(msg string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Info(msg, args...)
}

// RunWithInput executes argv and optionally writes input to stdin.
// Stderr output is folded into the returned error.
func RunWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("wait for %s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
