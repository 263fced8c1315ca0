// Package doctor runs readiness diagnostics for config, tools, audio, and speech services.
package doctor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/jarvis/internal/audio"
	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/screenshot"
	"github.com/rbright/jarvis/internal/stt"
	"github.com/rbright/jarvis/internal/tts"
	"github.com/tidwall/gjson"
)

const probeTimeout = 3 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	c := cfg.Config
	checks = append(checks, checkCommand(c.OpenCmd.Argv, "open_cmd"))
	checks = append(checks, checkSpeechOutput(c.TTS))
	checks = append(checks, checkSpeechInput(c.STT))
	checks = append(checks, checkAudioInput(c.Audio))
	checks = append(checks, checkLookup(c.Lookup, &http.Client{Timeout: probeTimeout}))
	checks = append(checks, checkMusicDir(c.Music.Dir))
	checks = append(checks, checkScreenshot(c.Screenshot.Backend))

	if len(c.Power.Shutdown.Argv) > 0 {
		checks = append(checks, checkCommand(c.Power.Shutdown.Argv, "power.shutdown_cmd"))
	}
	if len(c.Power.Restart.Argv) > 0 {
		checks = append(checks, checkCommand(c.Power.Restart.Argv, "power.restart_cmd"))
	}

	return Report{Checks: checks}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkSpeechOutput builds the configured engine without speaking.
func checkSpeechOutput(cfg config.TTSConfig) Check {
	if strings.EqualFold(cfg.Engine, "command") {
		check := checkCommand(cfg.Command.Argv, "tts.command")
		check.Name = "tts"
		return check
	}
	if _, err := tts.NewEngine(cfg); err != nil {
		return Check{Name: "tts", Pass: false, Message: err.Error()}
	}
	return Check{Name: "tts", Pass: true, Message: fmt.Sprintf("engine %q ready", cfg.Engine)}
}

// checkSpeechInput verifies engine prerequisites without loading a model.
func checkSpeechInput(cfg config.STTConfig) Check {
	switch strings.ToLower(cfg.Engine) {
	case "openai":
		if strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) == "" {
			return Check{Name: "stt", Pass: false, Message: "OPENAI_API_KEY is not set"}
		}
		if _, err := stt.NewHTTPClient(cfg.OpenAIProxy, probeTimeout); err != nil {
			return Check{Name: "stt", Pass: false, Message: err.Error()}
		}
		return Check{Name: "stt", Pass: true, Message: fmt.Sprintf("openai model %q configured", cfg.OpenAIModel)}
	default:
		path, err := config.ExpandHome(cfg.WhisperModel)
		if err != nil {
			return Check{Name: "stt", Pass: false, Message: err.Error()}
		}
		if _, err := os.Stat(path); err != nil {
			return Check{Name: "stt", Pass: false, Message: fmt.Sprintf("whisper model not found: %s", path)}
		}
		if !stt.WhisperCompiled {
			return Check{Name: "stt", Pass: false, Message: "whisper support not compiled in (build with -tags whisper)"}
		}
		return Check{Name: "stt", Pass: true, Message: fmt.Sprintf("whisper model at %s", path)}
	}
}

// checkAudioInput runs live device selection to surface selection/fallback issues.
func checkAudioInput(cfg config.AudioConfig) Check {
	if strings.EqualFold(cfg.Backend, "portaudio") {
		stream, err := audio.StartPortAudio(context.Background())
		if err != nil {
			return Check{Name: "audio.device", Pass: false, Message: err.Error()}
		}
		device := stream.Device()
		_ = stream.Stop()
		return Check{Name: "audio.device", Pass: true, Message: fmt.Sprintf("portaudio default input %q", device.Description)}
	}

	selection, err := audio.SelectDevice(context.Background(), cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkLookup queries the wiki's siteinfo endpoint.
func checkLookup(cfg config.LookupConfig, client *http.Client) Check {
	base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if base == "" {
		return Check{Name: "lookup", Pass: false, Message: "lookup.endpoint is empty"}
	}

	url := base + "/w/api.php?action=query&meta=siteinfo&format=json"
	resp, err := client.Get(url)
	if err != nil {
		return Check{Name: "lookup", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Check{Name: "lookup", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	sitename := gjson.GetBytes(body, "query.general.sitename").String()
	if sitename == "" {
		return Check{Name: "lookup", Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
	}
	return Check{Name: "lookup", Pass: true, Message: fmt.Sprintf("%s reachable at %s", sitename, base)}
}

// checkMusicDir reports whether the music library exists.
func checkMusicDir(dir string) Check {
	path, err := config.ExpandHome(dir)
	if err != nil {
		return Check{Name: "music.dir", Pass: false, Message: err.Error()}
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Check{Name: "music.dir", Pass: false, Message: fmt.Sprintf("directory not found: %s", path)}
	}
	return Check{Name: "music.dir", Pass: true, Message: path}
}

// checkScreenshot reports whether a capture tool fits the current session.
func checkScreenshot(backend string) Check {
	if !screenshot.New(backend).Available() {
		return Check{Name: "screenshot", Pass: false, Message: "no capture tool for this session (grim on Wayland, scrot on X11)"}
	}
	return Check{Name: "screenshot", Pass: true, Message: fmt.Sprintf("backend %q available", backend)}
}
