package doctor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/jarvis/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "open_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-opener")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-opener", "--new-tab"}, "open_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "open_cmd command is available")
}

func TestCheckLookupReportsSitename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/w/api.php", r.URL.Path)
		require.Equal(t, "siteinfo", r.URL.Query().Get("meta"))
		_, _ = w.Write([]byte(`{"query":{"general":{"sitename":"Wikipedia"}}}`))
	}))
	t.Cleanup(server.Close)

	check := checkLookup(config.LookupConfig{Endpoint: server.URL + "/"}, server.Client())
	require.True(t, check.Pass)
	require.Equal(t, "Wikipedia reachable at "+server.URL, check.Message)
}

func TestCheckLookupFailureStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	check := checkLookup(config.LookupConfig{Endpoint: server.URL}, server.Client())
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 503")
}

func TestCheckLookupPassesOnNonWikiBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	check := checkLookup(config.LookupConfig{Endpoint: server.URL}, server.Client())
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 200")
}

func TestCheckLookupEmptyEndpoint(t *testing.T) {
	check := checkLookup(config.LookupConfig{}, http.DefaultClient)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "lookup.endpoint is empty")
}

func TestCheckSpeechInputOpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := config.Default().STT
	cfg.Engine = "openai"

	check := checkSpeechInput(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	require.True(t, checkSpeechInput(cfg).Pass)
}

func TestCheckSpeechInputWhisperModelMissing(t *testing.T) {
	cfg := config.Default().STT
	cfg.WhisperModel = filepath.Join(t.TempDir(), "ggml-base.en.bin")

	check := checkSpeechInput(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "whisper model not found")
}

func TestCheckSpeechOutputEngines(t *testing.T) {
	require.True(t, checkSpeechOutput(config.TTSConfig{Engine: "none"}).Pass)

	check := checkSpeechOutput(config.TTSConfig{Engine: "command"})
	require.False(t, check.Pass)
	require.Equal(t, "tts", check.Name)
}

func TestCheckMusicDir(t *testing.T) {
	dir := t.TempDir()
	require.True(t, checkMusicDir(dir).Pass)

	check := checkMusicDir(filepath.Join(dir, "missing"))
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "directory not found")
}

func TestCheckScreenshotWithoutDisplay(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	check := checkScreenshot("auto")
	require.False(t, check.Pass)
}

func TestCheckAudioInputFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioInput(config.Default().Audio)
	require.False(t, check.Pass)
	require.Equal(t, "audio.device", check.Name)
}

func TestRunIncludesPowerChecksOnlyWhenConfigured(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "fake-poweroff"), []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	cfg := config.Default()
	cfg.Lookup.Endpoint = ""
	cfg.Power.Shutdown = config.CommandConfig{Raw: "fake-poweroff", Argv: []string{"fake-poweroff"}}
	cfg.Power.Restart = config.CommandConfig{}

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	require.False(t, report.OK())

	var names []string
	for _, check := range report.Checks {
		names = append(names, check.Name)
	}
	joined := strings.Join(names, ",")
	require.Contains(t, joined, "fake-poweroff")
	require.NotContains(t, joined, "reboot")
	require.Equal(t, "config", names[0])
}
