// Package indicator shows listening state on the desktop and plays audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/hypr"
)

// Controller is the loop-facing indicator contract.
type Controller interface {
	ShowListening(context.Context)
	ShowRecognizing(context.Context)
	ShowError(context.Context, string)
	Hide(context.Context)
}

// Noop satisfies Controller without side effects.
type Noop struct{}

func (Noop) ShowListening(context.Context)     {}
func (Noop) ShowRecognizing(context.Context)   {}
func (Noop) ShowError(context.Context, string) {}
func (Noop) Hide(context.Context)              {}

const (
	// stickyTimeout keeps state notifications up until Hide replaces them.
	stickyTimeout       = 5 * time.Minute
	defaultErrorTimeout = 1200 * time.Millisecond
	dispatchTimeout     = 400 * time.Millisecond
)

// surface is how one loop state looks and sounds.
type surface struct {
	cue   cueKind
	icon  hypr.Icon
	color string
}

var (
	listeningSurface   = surface{cue: cueListen, icon: hypr.IconInfo, color: "rgb(89b4fa)"}
	recognizingSurface = surface{cue: cueHeard, icon: hypr.IconInfo, color: "rgb(cba6f7)"}
	errorSurface       = surface{cue: cueError, icon: hypr.IconError, color: "rgb(f38ba8)"}
)

// backend draws notifications: Hyprland's notify overlay or freedesktop DBus.
type backend interface {
	show(ctx context.Context, n hypr.Notification) error
	dismiss(ctx context.Context) error
}

// Notifier drives the configured backend and audio cues.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages
	backend  backend

	soundMu sync.Mutex
	play    func(cueKind) error
}

// New builds a Notifier for cfg.Backend ("hypr" or "desktop").
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	n := &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: messagesFor(cfg),
		backend:  hyprBackend{},
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Backend), "desktop") {
		appName := strings.TrimSpace(cfg.DesktopAppName)
		if appName == "" {
			appName = "jarvis-indicator"
		}
		n.backend = &desktopBackend{appName: appName}
	}
	n.play = func(kind cueKind) error { return emitCue(kind, n.cfg) }
	return n
}

func (n *Notifier) ShowListening(ctx context.Context) {
	n.show(ctx, listeningSurface, n.messages.listening, stickyTimeout)
}

func (n *Notifier) ShowRecognizing(ctx context.Context) {
	n.show(ctx, recognizingSurface, n.messages.recognizing, stickyTimeout)
}

// ShowError flashes text, or the configured error text when empty.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if text == "" {
		text = n.messages.errorText
	}
	timeout := time.Duration(n.cfg.ErrorTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultErrorTimeout
	}
	n.show(ctx, errorSurface, text, timeout)
}

func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.dispatch(ctx, n.backend.dismiss)
}

func (n *Notifier) show(ctx context.Context, s surface, text string, timeout time.Duration) {
	n.playCue(s.cue)
	if !n.cfg.Enable {
		return
	}
	note := hypr.Notification{Icon: s.icon, Timeout: timeout, Color: s.color, Text: text}
	n.dispatch(ctx, func(ctx context.Context) error {
		return n.backend.show(ctx, note)
	})
}

func (n *Notifier) dispatch(ctx context.Context, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		n.debug("indicator dispatch failed", err)
	}
}

// playCue plays asynchronously; cues never overlap.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := n.play(kind); err != nil {
			n.debug("indicator audio cue failed", err)
		}
	}()
}

func (n *Notifier) debug(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

type hyprBackend struct{}

func (hyprBackend) show(ctx context.Context, n hypr.Notification) error {
	return hypr.Notify(ctx, n)
}

func (hyprBackend) dismiss(ctx context.Context) error {
	return hypr.DismissNotify(ctx)
}

// desktopBackend replaces its own notification in place and closes it by id.
type desktopBackend struct {
	appName string

	mu sync.Mutex
	id uint32
}

func (d *desktopBackend) show(ctx context.Context, n hypr.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := desktopNotify(ctx, d.appName, d.id, n.Text, int(n.Timeout.Milliseconds()))
	if err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *desktopBackend) dismiss(ctx context.Context) error {
	d.mu.Lock()
	id := d.id
	d.id = 0
	d.mu.Unlock()
	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}
