// Package hypr wraps the hyprctl calls jarvis makes on Hyprland sessions:
// on-screen notifications and focused monitor lookup.
package hypr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Icon is a hyprctl notify icon id.
type Icon int

const (
	IconNone     Icon = -1
	IconWarning  Icon = 0
	IconInfo     Icon = 1
	IconHint     Icon = 2
	IconError    Icon = 3
	IconConfused Icon = 4
	IconOK       Icon = 5
)

const defaultColor = "rgb(89b4fa)"

// Notification is one on-screen message.
type Notification struct {
	Icon    Icon
	Timeout time.Duration
	Color   string
	Text    string
}

// Monitor is one output reported by hyprctl.
type Monitor struct {
	Name    string
	Focused bool
}

// ErrNoMonitors is returned when hyprctl lists no outputs.
var ErrNoMonitors = errors.New("hyprctl monitors returned no outputs")

// Available reports whether the process runs inside a Hyprland session.
func Available() bool {
	return strings.TrimSpace(os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")) != ""
}

// Monitors lists the outputs of the current session.
func Monitors(ctx context.Context) ([]Monitor, error) {
	out, err := hyprctl(ctx, "-j", "monitors")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("decode hyprctl monitors: invalid json %q", strings.TrimSpace(string(out)))
	}

	var monitors []Monitor
	gjson.ParseBytes(out).ForEach(func(_, item gjson.Result) bool {
		monitors = append(monitors, Monitor{
			Name:    strings.TrimSpace(item.Get("name").String()),
			Focused: item.Get("focused").Bool(),
		})
		return true
	})
	return monitors, nil
}

// FocusedMonitor returns the focused output name, or the first output when
// none reports focus.
func FocusedMonitor(ctx context.Context) (string, error) {
	monitors, err := Monitors(ctx)
	if err != nil {
		return "", err
	}
	if len(monitors) == 0 {
		return "", ErrNoMonitors
	}
	for _, mon := range monitors {
		if mon.Focused {
			return mon.Name, nil
		}
	}
	return monitors[0].Name, nil
}

// Notify shows n through `hyprctl dispatch notify`.
func Notify(ctx context.Context, n Notification) error {
	color := strings.TrimSpace(n.Color)
	if color == "" {
		color = defaultColor
	}
	_, err := hyprctl(ctx,
		"--quiet", "dispatch", "notify",
		strconv.Itoa(int(n.Icon)),
		strconv.FormatInt(n.Timeout.Milliseconds(), 10),
		color,
		n.Text,
	)
	return err
}

// DismissNotify clears every visible Hyprland notification.
func DismissNotify(ctx context.Context) error {
	_, err := hyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
	return err
}

func hyprctl(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err == nil {
		return out, nil
	}
	if detail := strings.TrimSpace(string(out)); detail != "" {
		return nil, fmt.Errorf("hyprctl %s: %w (%s)", strings.Join(args, " "), err, detail)
	}
	return nil, fmt.Errorf("hyprctl %s: %w", strings.Join(args, " "), err)
}
