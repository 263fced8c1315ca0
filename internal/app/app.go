// Package app wires the CLI commands to the assistant runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rbright/jarvis/internal/cli"
	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/doctor"
	"github.com/rbright/jarvis/internal/logging"
	"github.com/rbright/jarvis/internal/version"
)

const binaryName = "jarvis"

// Runner executes one CLI invocation against the given streams.
// A nil Logger means the file-backed runtime logger is used.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Execute runs args with process stdin and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}.Execute(ctx, args)
}

// Execute returns 0 on success, 1 on runtime failure and 2 on usage errors.
func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	switch {
	case err != nil:
		fmt.Fprintf(r.Stderr, "error: %v\n\n%s", err, cli.HelpText(binaryName))
		return 2
	case parsed.ShowHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	case parsed.Command == cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	env, err := r.bootstrap(parsed)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer env.close()

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(env.loaded)
		fmt.Fprintln(r.Stdout, report.String())
		return exitCode(report.OK())
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.commandStop(ctx)
	case cli.CommandRun:
		return r.commandRun(ctx, parsed, env.loaded.Config, env.logger)
	}
	fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
	return 2
}

// environment is what every non-trivial command needs before it starts.
type environment struct {
	logger *slog.Logger
	loaded config.Loaded
	close  func()
}

// bootstrap opens logging, applies the dotenv file and loads config, in that
// order, so env values can feed config and failures are logged.
func (r Runner) bootstrap(parsed cli.Parsed) (environment, error) {
	logs, err := logging.New(logging.Options{ConsoleLevel: parsed.LogLevel, Console: r.Stderr})
	if err != nil {
		return environment{}, fmt.Errorf("setup logging: %w", err)
	}
	env := environment{logger: logs.Logger, close: func() { _ = logs.Close() }}
	if r.Logger != nil {
		env.logger = r.Logger
	}

	envPath, err := loadEnv(parsed.EnvPath)
	if err != nil {
		env.logger.Error("load env failed", "path", envPath, "error", err.Error())
		env.close()
		return environment{}, err
	}

	env.loaded, err = config.Load(parsed.ConfigPath)
	if err != nil {
		env.logger.Error("load config failed", "error", err.Error())
		env.close()
		return environment{}, err
	}
	r.reportWarnings(env.logger, env.loaded.Warnings)

	env.logger.Info("command start",
		"command", parsed.Command,
		"input", parsed.Input,
		"config", env.loaded.Path,
		"env", envPath,
		"log", logs.Path,
	)
	return env, nil
}

func (r Runner) reportWarnings(logger *slog.Logger, warnings []config.Warning) {
	for _, w := range warnings {
		text := w.Message
		if w.Line > 0 {
			text = fmt.Sprintf("line %d: %s", w.Line, text)
		}
		fmt.Fprintln(r.Stderr, "warning: "+text)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}
}

// loadEnv applies the dotenv file without overriding variables already set.
// A missing default file is not an error; a missing explicit file is.
func loadEnv(explicit string) (string, error) {
	optional := strings.TrimSpace(explicit) == ""
	path, err := config.ResolveEnvPath(explicit)
	if err != nil {
		if optional {
			return "", nil
		}
		return "", err
	}

	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return path, fmt.Errorf("load env file %s: %w", path, err)
	}
	return path, nil
}

func exitCode(ok bool) int {
	if ok {
		return 0
	}
	return 1
}
