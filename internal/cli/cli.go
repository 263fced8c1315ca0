// Package cli parses the jarvis command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandStop    Command = "stop"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandStop:    {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// Input sources for the run command.
const (
	InputMic      = "mic"
	InputKeyboard = "keyboard"
)

// Parsed is the validated command line.
type Parsed struct {
	Command    Command
	ConfigPath string
	EnvPath    string
	Input      string
	LogLevel   string
	ShowHelp   bool
}

// Parse reads flags and at most one command; no command means run.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandRun}

	fs := pflag.NewFlagSet("jarvis", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	fs.StringVar(&parsed.EnvPath, "env", "", "dotenv file path")
	fs.StringVar(&parsed.Input, "input", InputMic, "command input: mic or keyboard")
	fs.StringVar(&parsed.LogLevel, "log-level", "", "mirror logs to stderr at level")
	help := fs.BoolP("help", "h", false, "show help")
	showVersion := fs.Bool("version", false, "show version")

	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}

	parsed.Input = strings.ToLower(strings.TrimSpace(parsed.Input))
	if parsed.Input != InputMic && parsed.Input != InputKeyboard {
		return Parsed{}, fmt.Errorf("invalid --input %q (expected mic or keyboard)", parsed.Input)
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return Parsed{}, fmt.Errorf("unexpected arguments after command %q", rest[0])
	}
	if len(rest) == 1 {
		cmd := Command(rest[0])
		if _, ok := validCommands[cmd]; !ok {
			return Parsed{}, fmt.Errorf("unknown command: %s", rest[0])
		}
		parsed.Command = cmd
	}

	switch {
	case *help:
		parsed.Command = CommandHelp
	case *showVersion:
		parsed.Command = CommandVersion
	}
	parsed.ShowHelp = parsed.Command == CommandHelp

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] [command]

Commands:
  run       Greet and listen for voice commands (default)
  stop      Ask a running assistant to go offline
  status    Print the running assistant's state
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH      Config file path (default: $XDG_CONFIG_HOME/jarvis/config.jsonc)
  --env PATH         Dotenv file with secrets (default: .env next to the config)
  --input SOURCE     mic or keyboard (default: mic)
  --log-level LEVEL  Mirror logs to stderr: debug, info, warn, error
  -h, --help         Show help
  --version          Show version
`, binaryName)
}
