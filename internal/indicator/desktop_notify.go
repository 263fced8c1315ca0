package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const notifyIcon = "audio-input-microphone"

// busctl calls one org.freedesktop.Notifications method on the user bus.
func busctl(ctx context.Context, method string, signature string, args ...string) (string, error) {
	argv := append([]string{
		"--user", "call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		method, signature,
	}, args...)

	out, err := exec.CommandContext(ctx, "busctl", argv...).CombinedOutput()
	reply := strings.TrimSpace(string(out))
	if err != nil {
		if reply == "" {
			return "", fmt.Errorf("busctl %s: %w", method, err)
		}
		return "", fmt.Errorf("busctl %s: %w (%s)", method, err, reply)
	}
	return reply, nil
}

// desktopNotify shows or replaces a notification and returns its server ID.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	reply, err := busctl(ctx, "Notify", "susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		notifyIcon,
		summary,
		"",  // body
		"0", // actions
		"0", // hints
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, err
	}
	return parseNotificationID(reply)
}

// parseNotificationID reads busctl's "u <id>" reply.
func parseNotificationID(reply string) (uint32, error) {
	kind, value, ok := strings.Cut(strings.TrimSpace(reply), " ")
	if !ok || kind != "u" {
		return 0, fmt.Errorf("unexpected notify reply %q", reply)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse notification id %q: %w", value, err)
	}
	return uint32(id), nil
}

func desktopDismiss(ctx context.Context, id uint32) error {
	_, err := busctl(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	return err
}
