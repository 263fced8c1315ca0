package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/dispatch"
	"github.com/rbright/jarvis/internal/fsm"
	"github.com/rbright/jarvis/internal/intent"
	"github.com/rbright/jarvis/internal/ipc"
	"github.com/stretchr/testify/require"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "jarvis")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRunnerStatusOfflineWhenSocketUnavailable(t *testing.T) {
	paths := setupRunnerEnv(t, "\n")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, "offline\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestRunnerStopReportsNoRunningAssistant(t *testing.T) {
	paths := setupRunnerEnv(t, "\n")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "stop"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "no running jarvis assistant")
}

func TestRunnerForwardsCommandsToRunningAssistant(t *testing.T) {
	paths := setupRunnerEnv(t, "\n")
	commands := make(chan string, 8)

	shutdown := startIPCServerForRunnerTest(t, filepath.Join(paths.runtimeDir, "jarvis.sock"), func(_ context.Context, req ipc.Request) ipc.Response {
		commands <- req.Command
		switch req.Command {
		case "status":
			return ipc.Response{OK: true, State: "listening", Name: "Friday", Handled: 2, LastIntent: "time"}
		case "stop":
			return ipc.Response{OK: true, Message: "stop requested"}
		default:
			return ipc.Response{OK: false, Error: "unsupported"}
		}
	})
	defer shutdown()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"}))
	require.Equal(t, "listening name=Friday handled=2 last_intent=time\n", stdout.String())

	stdout.Reset()
	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "stop"}))
	require.Equal(t, "stop requested\n", stdout.String())
	require.Empty(t, stderr.String())

	got := []string{<-commands, <-commands}
	require.Equal(t, []string{"status", "stop"}, got)
}

func TestFormatStatus(t *testing.T) {
	require.Equal(t, "idle handled=0", formatStatus(ipc.Response{OK: true}))
	require.Equal(t, "dispatching name=Jarvis handled=1 last_intent=joke", formatStatus(ipc.Response{
		State:      "dispatching",
		Name:       "Jarvis",
		Handled:    1,
		LastIntent: "joke",
	}))
}

func TestForwardReturnsAssistantResponseOrError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "jarvis.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	serverCtx, cancelServer := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- ipc.Serve(serverCtx, listener, ipc.HandlerFunc(func(_ context.Context, req ipc.Request) ipc.Response {
			if req.Command == ipc.CommandStatus {
				return ipc.Response{OK: true, State: "listening"}
			}
			return ipc.Response{OK: false, Error: "already stopped"}
		}))
	}()

	resp, err := forward(context.Background(), socketPath, ipc.CommandStatus)
	require.NoError(t, err)
	require.Equal(t, "listening", resp.State)

	_, err = forward(context.Background(), socketPath, ipc.CommandStop)
	require.EqualError(t, err, "already stopped")

	cancelServer()
	require.NoError(t, <-serverDone)
}

func TestForwardLeavesStaleSocketFileInPlace(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "jarvis.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	_, err := forward(context.Background(), socketPath, ipc.CommandStatus)
	require.ErrorIs(t, err, errNoAssistant)

	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
}

func TestForwardWrapsBrokenExchange(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "jarvis.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if conn, acceptErr := listener.Accept(); acceptErr == nil {
			_ = conn.Close()
		}
	}()

	_, err = forward(context.Background(), socketPath, ipc.CommandStatus)
	require.Error(t, err)
	require.NotErrorIs(t, err, errNoAssistant)
	require.Contains(t, err.Error(), `forward command "status":`)

	<-done
	require.NoError(t, listener.Close())
}

func TestMark(t *testing.T) {
	require.Equal(t, "*", mark(true, "*", ""))
	require.Equal(t, "no", mark(false, "yes", "no"))
}

func TestRunnerDoctorCommandDispatchesAndPrintsReport(t *testing.T) {
	paths := setupRunnerEnv(t, "\n")
	t.Setenv("XDG_SESSION_TYPE", "x11")
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "doctor"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "[OK] config: loaded")
	require.Contains(t, stdout.String(), "[FAIL]")
}

func TestRunnerDevicesCommandDispatches(t *testing.T) {
	paths := setupRunnerEnv(t, "\n")
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "devices"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestRunnerRunWithKeyboardInputHandlesCommandsUntilExit(t *testing.T) {
	paths := setupRunnerEnv(t, `{
  "assistant": {"default_name": "Friday"},
  "tts": {"engine": "none"},
}`)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{
		Stdin:  strings.NewReader("What is the TIME\nsing something\nexit\nthe time again\n"),
		Stdout: &stdout,
		Stderr: &stderr,
	}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "--input", "keyboard"})
	require.Equal(t, 0, exitCode, stderr.String())

	out := stdout.String()
	require.Contains(t, out, "Welcome back!")
	require.Contains(t, out, "Friday at your service.")
	require.Equal(t, 1, strings.Count(out, "The current time is "))
	require.Contains(t, out, "Going offline, goodbye!")

	// owner path removes its socket on exit
	_, statErr := os.Stat(filepath.Join(paths.runtimeDir, "jarvis.sock"))
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunnerRunEndsCleanlyWhenKeyboardInputCloses(t *testing.T) {
	paths := setupRunnerEnv(t, `{"tts": {"engine": "none"}}`)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdin: strings.NewReader("tell me a joke\n"), Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "--input", "keyboard", "run"})
	require.Equal(t, 0, exitCode, stderr.String())
	require.Contains(t, stdout.String(), "Jarvis at your service.")
}

func TestRunnerRunRefusesSecondAssistant(t *testing.T) {
	paths := setupRunnerEnv(t, `{"tts": {"engine": "none"}}`)

	shutdown := startIPCServerForRunnerTest(t, filepath.Join(paths.runtimeDir, "jarvis.sock"), func(_ context.Context, _ ipc.Request) ipc.Response {
		return ipc.Response{OK: true, State: "listening"}
	})
	defer shutdown()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdin: strings.NewReader("exit\n"), Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "--input", "keyboard"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "already running")
	require.Empty(t, stdout.String())
}

func TestRunnerRunFailsWhenSpeechRecognitionUnavailable(t *testing.T) {
	paths := setupRunnerEnv(t, `{"stt": {"engine": "openai"}, "tts": {"engine": "none"}}`)
	t.Setenv("OPENAI_API_KEY", "")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "speech recognition")
	require.Contains(t, stderr.String(), "OPENAI_API_KEY")

	_, statErr := os.Stat(filepath.Join(paths.runtimeDir, "jarvis.sock"))
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestLoadEnvExplicitFileSetsMissingVariables(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(envPath, []byte("JARVIS_APP_TEST_TOKEN=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("JARVIS_APP_TEST_TOKEN") })

	path, err := loadEnv(envPath)
	require.NoError(t, err)
	require.Equal(t, envPath, path)
	require.Equal(t, "from-file", os.Getenv("JARVIS_APP_TEST_TOKEN"))
}

func TestLoadEnvDoesNotOverrideExistingVariables(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(envPath, []byte("JARVIS_APP_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("JARVIS_APP_TEST_KEEP", "from-shell")

	_, err := loadEnv(envPath)
	require.NoError(t, err)
	require.Equal(t, "from-shell", os.Getenv("JARVIS_APP_TEST_KEEP"))
}

func TestLoadEnvMissingFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := loadEnv("")
	require.NoError(t, err)
	require.Empty(t, path)

	_, err = loadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "load env file")
}

func TestLogRunResultWritesFailureAndSuccess(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	started := time.Now()
	finished := started.Add(1500 * time.Millisecond)

	logRunResult(logger, dispatch.Result{
		State:      fsm.StateStopped,
		Handled:    3,
		Missed:     1,
		LastIntent: intent.Exit,
		Terminated: true,
		StartedAt:  started,
		FinishedAt: finished,
	})
	require.Contains(t, logBuf.String(), "assistant stopped")
	require.Contains(t, logBuf.String(), "\"handled\":3")
	require.Contains(t, logBuf.String(), "\"duration_ms\":1500")

	logBuf.Reset()
	logRunResult(logger, dispatch.Result{
		State:      fsm.StateStopped,
		StartedAt:  started,
		FinishedAt: finished,
		Err:        errors.New("boom"),
	})
	require.Contains(t, logBuf.String(), "assistant stopped with error")
	require.Contains(t, logBuf.String(), "boom")
}

type runnerPaths struct {
	configPath string
	runtimeDir string
}

func setupRunnerEnv(t *testing.T, configContent string) runnerPaths {
	t.Helper()

	runtimeDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)

	configPath := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	return runnerPaths{configPath: configPath, runtimeDir: runtimeDir}
}

func startIPCServerForRunnerTest(t *testing.T, socketPath string, handler func(context.Context, ipc.Request) ipc.Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ipc.Serve(ctx, listener, ipc.HandlerFunc(handler))
	}()

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestBuildSkillsFallsBackToSpeechCommandAndWarns(t *testing.T) {
	setupRunnerEnv(t, "\n")
	dir := t.TempDir()
	outPath := filepath.Join(dir, "spoken.txt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "say-stub"), []byte("#!/usr/bin/env bash\ncat >> \"$1\"\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	cfg := config.Default()
	cfg.TTS.Engine = "festival"
	cfg.TTS.Command = config.CommandConfig{Raw: "say-stub " + outPath, Argv: []string{"say-stub", outPath}}

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}
	handlers, err := runner.buildSkills(cfg, nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	require.Contains(t, stderr.String(), "warning: tts engine \"festival\" unavailable, speaking through say-stub")

	handlers.Voice.Say(context.Background(), "Going offline, goodbye!")
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, "Going offline, goodbye!", string(data))

	stderr.Reset()
	cfg.TTS.Command.Argv = []string{"definitely-missing-synth"}
	_, err = runner.buildSkills(cfg, nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	require.Contains(t, stderr.String(), "printing replies only")
}

func TestRunnerRunSurvivesOverlongTypedLine(t *testing.T) {
	paths := setupRunnerEnv(t, `{"tts": {"engine": "none"}}`)

	var stdout, stderr bytes.Buffer
	runner := Runner{
		Stdin:  strings.NewReader(strings.Repeat("a", 70000) + "\nexit\n"),
		Stdout: &stdout,
		Stderr: &stderr,
	}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "--input", "keyboard"})
	require.Equal(t, 0, exitCode, stderr.String())
	require.Contains(t, stdout.String(), "Going offline, goodbye!")
}
