package launch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/jarvis/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRunWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := RunWithInput(context.Background(), []string{scriptPath, outputPath}, "hello from jarvis")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from jarvis", string(data))
}

func TestRunWithInputRejectsEmptyArgv(t *testing.T) {
	err := RunWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestRunWithInputIncludesStderrOnFailure(t *testing.T) {
	err := RunWithInput(context.Background(), []string{writeFailScript(t, "no display")}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no display")
}

func TestOpenPassesTargetToOpener(t *testing.T) {
	argsPath := filepath.Join(t.TempDir(), "args.txt")
	cfg := config.Default()
	cfg.OpenCmd = config.CommandConfig{Argv: []string{writeArgsCaptureScript(t), argsPath, "--new-window"}}

	launcher := New(cfg, nil)
	require.NoError(t, launcher.Open(context.Background(), "https://youtube.com"))

	data, err := os.ReadFile(argsPath)
	require.NoError(t, err)
	require.Equal(t, "--new-window https://youtube.com\n", string(data))
}

func TestOpenRejectsEmptyTarget(t *testing.T) {
	launcher := New(config.Default(), nil)
	err := launcher.Open(context.Background(), " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be empty")
}

func TestOpenWrapsOpenerFailure(t *testing.T) {
	cfg := config.Default()
	cfg.OpenCmd = config.CommandConfig{Argv: []string{writeFailScript(t, "opener failed")}}

	err := New(cfg, nil).Open(context.Background(), "/music/song.mp3")
	require.Error(t, err)
	require.Contains(t, err.Error(), `open "/music/song.mp3"`)
	require.Contains(t, err.Error(), "opener failed")
}

func TestPowerCommandsRunConfiguredArgv(t *testing.T) {
	argsPath := filepath.Join(t.TempDir(), "args.txt")
	script := writeArgsCaptureScript(t)

	cfg := config.Default()
	cfg.Power.Shutdown = config.CommandConfig{Argv: []string{script, argsPath, "poweroff"}}
	cfg.Power.Restart = config.CommandConfig{Argv: []string{script, argsPath, "reboot"}}
	launcher := New(cfg, nil)

	require.NoError(t, launcher.Shutdown(context.Background()))
	require.NoError(t, launcher.Restart(context.Background()))

	data, err := os.ReadFile(argsPath)
	require.NoError(t, err)
	require.Equal(t, "poweroff\nreboot\n", string(data))
}

func TestPowerWithoutCommandReturnsErrNoCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Power.Shutdown = config.CommandConfig{}

	err := New(cfg, nil).Shutdown(context.Background())
	require.ErrorIs(t, err, ErrNoCommand)
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeArgsCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-args.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
out="$1"
shift
printf '%s\n' "$*" >> "$out"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\necho " + "\"" + message + "\"" + " >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
