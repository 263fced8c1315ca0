// Package ipc is the newline-delimited JSON control channel of a running assistant.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Commands understood by a running assistant.
const (
	CommandStatus = "status"
	CommandStop   = "stop"
)

// Request is one control command.
type Request struct {
	Command string `json:"command"`
}

// Response reports the loop state and counters at the time of the request.
type Response struct {
	OK         bool   `json:"ok"`
	State      string `json:"state,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Name       string `json:"name,omitempty"`
	Handled    int    `json:"handled,omitempty"`
	LastIntent string `json:"last_intent,omitempty"`
}

func failure(format string, args ...any) Response {
	return Response{OK: false, Error: fmt.Sprintf(format, args...)}
}

// writeLine encodes v as one JSON line.
func writeLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// readLine reads one line and decodes it into v. The label prefixes errors.
func readLine(r *bufio.Reader, label string, v any) error {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read %s: %w", label, err)
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("decode %s: %w", label, err)
	}
	return nil
}

func normalizeCommand(command string) string {
	return strings.ToLower(strings.TrimSpace(command))
}
