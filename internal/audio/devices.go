package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the source jarvis will listen on. Warning explains a fallback.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// problem names why a device cannot be used, or "" when it can.
func (d Device) problem() string {
	switch {
	case d.Muted:
		return "muted"
	case !d.Available:
		return "unavailable"
	default:
		return ""
	}
}

func (d Device) matches(term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(d.ID), term) ||
		strings.Contains(strings.ToLower(d.Description), term)
}

func dialPulse() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("jarvis"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListDevices returns the Pulse input sources, marking the server default.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := dialPulse()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			State:       sourceStateString(info.State),
			Available:   sourceAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultSource.ID(),
		})
	}
	return devices, nil
}

// SelectDevice resolves audio.input and audio.fallback against the live sources.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return chooseSource(devices, input, fallback)
}

// chooseSource picks the configured input, or the server default for
// "default". A muted or unavailable pick falls back to audio.fallback.
func chooseSource(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	input = normalizeTerm(input)
	fallback = normalizeTerm(fallback)

	primary, err := findSource(devices, input)
	if err != nil {
		return Selection{}, fmt.Errorf("audio.input %q did not match any device", input)
	}
	reason := primary.problem()
	if reason == "" {
		return Selection{Device: primary}, nil
	}

	backup, err := findSource(devices, fallback)
	if err != nil {
		return Selection{}, fmt.Errorf("primary input %q is %s and fallback %q not found", primary.ID, reason, fallback)
	}
	if backupReason := backup.problem(); backupReason != "" {
		return Selection{}, fmt.Errorf("audio fallback device %q is %s", backup.ID, backupReason)
	}

	return Selection{
		Device:   backup,
		Warning:  fmt.Sprintf("audio.input %q is %s; falling back to %q", primary.ID, reason, backup.ID),
		Fallback: primary.ID != backup.ID,
	}, nil
}

func normalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return "default"
	}
	return term
}

func findSource(devices []Device, term string) (Device, error) {
	for _, dev := range devices {
		if term == "default" && dev.Default {
			return dev, nil
		}
		if term != "default" && dev.matches(term) {
			return dev, nil
		}
	}
	return Device{}, fmt.Errorf("no source matches %q", term)
}

var sourceStates = map[uint32]string{
	0: "running",
	1: "idle",
	2: "suspended",
}

func sourceStateString(state uint32) string {
	if name, ok := sourceStates[state]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", state)
}

// sourceAvailable reads the active port's availability (0 unknown, 1 no, 2 yes).
func sourceAvailable(info *pulseproto.GetSourceInfoReply) bool {
	if info == nil {
		return false
	}
	for _, port := range info.Ports {
		if port.Name == info.ActivePortName {
			return port.Available != 1
		}
	}
	return true
}
