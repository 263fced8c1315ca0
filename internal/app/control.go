package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rbright/jarvis/internal/audio"
	"github.com/rbright/jarvis/internal/ipc"
)

const forwardTimeout = 220 * time.Millisecond

// errNoAssistant means no assistant is listening on the control socket.
var errNoAssistant = errors.New("no running jarvis assistant")

func (r Runner) commandStatus(ctx context.Context) int {
	resp, err := forwardRuntime(ctx, ipc.CommandStatus)
	switch {
	case errors.Is(err, errNoAssistant):
		fmt.Fprintln(r.Stdout, "offline")
		return 0
	case err != nil:
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, formatStatus(resp))
	return 0
}

func (r Runner) commandStop(ctx context.Context) int {
	resp, err := forwardRuntime(ctx, ipc.CommandStop)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// forwardRuntime sends command to the socket under XDG_RUNTIME_DIR.
// Without a runtime dir there can be no assistant.
func forwardRuntime(ctx context.Context, command string) (ipc.Response, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return ipc.Response{}, errNoAssistant
	}
	return forward(ctx, socketPath, command)
}

// forward returns errNoAssistant when nothing owns socketPath, and the
// assistant's own error text when it answers with ok=false.
func forward(ctx context.Context, socketPath, command string) (ipc.Response, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	switch {
	case ipc.NotRunning(err):
		return ipc.Response{}, errNoAssistant
	case err != nil:
		return ipc.Response{}, fmt.Errorf("forward command %q: %w", command, err)
	case !resp.OK:
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func formatStatus(resp ipc.Response) string {
	state := resp.State
	if state == "" {
		state = "idle"
	}
	fields := []string{state}
	if resp.Name != "" {
		fields = append(fields, "name="+resp.Name)
	}
	fields = append(fields, fmt.Sprintf("handled=%d", resp.Handled))
	if resp.LastIntent != "" {
		fields = append(fields, "last_intent="+resp.LastIntent)
	}
	return strings.Join(fields, " ")
}

// commandDevices prints one row per capture source; the default is starred.
func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	w := tabwriter.NewWriter(r.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tDESCRIPTION\tSTATE\tAVAILABLE\tMUTED")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark(d.Default, "*", ""),
			d.ID,
			d.Description,
			d.State,
			mark(d.Available, "yes", "no"),
			mark(d.Muted, "yes", "no"),
		)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func mark(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
