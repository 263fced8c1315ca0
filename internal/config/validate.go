package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Assistant.DefaultName) == "" {
		return nil, fmt.Errorf("assistant.default_name must not be empty")
	}

	if err := oneOf("audio.backend", cfg.Audio.Backend, "pulse", "portaudio"); err != nil {
		return nil, err
	}
	if cfg.Audio.ListenTimeoutMS <= 0 {
		return nil, fmt.Errorf("audio.listen_timeout_ms must be > 0")
	}
	if cfg.Audio.PauseThresholdMS <= 0 {
		return nil, fmt.Errorf("audio.pause_threshold_ms must be > 0")
	}
	if cfg.Audio.MaxUtteranceMS < cfg.Audio.PauseThresholdMS {
		return nil, fmt.Errorf("audio.max_utterance_ms must be >= audio.pause_threshold_ms")
	}
	if cfg.Audio.SilenceRMS <= 0 || cfg.Audio.SilenceRMS >= 1 {
		return nil, fmt.Errorf("audio.silence_rms must be between 0 and 1")
	}

	if err := oneOf("stt.engine", cfg.STT.Engine, "whisper", "openai"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.STT.Language) == "" {
		return nil, fmt.Errorf("stt.language must not be empty")
	}
	if cfg.STT.Engine == "whisper" && strings.TrimSpace(cfg.STT.WhisperModel) == "" {
		return nil, fmt.Errorf("stt.whisper_model must not be empty when stt.engine=whisper")
	}
	if cfg.STT.WhisperThreads <= 0 {
		return nil, fmt.Errorf("stt.whisper_threads must be > 0")
	}
	if cfg.STT.Engine == "openai" && strings.TrimSpace(cfg.STT.OpenAIModel) == "" {
		return nil, fmt.Errorf("stt.openai_model must not be empty when stt.engine=openai")
	}
	if cfg.STT.TimeoutMS <= 0 {
		return nil, fmt.Errorf("stt.timeout_ms must be > 0")
	}

	if err := oneOf("tts.engine", cfg.TTS.Engine, "espeak", "command", "none"); err != nil {
		return nil, err
	}
	if cfg.TTS.Rate <= 0 {
		return nil, fmt.Errorf("tts.rate must be > 0")
	}
	if cfg.TTS.Volume < 0 || cfg.TTS.Volume > 200 {
		return nil, fmt.Errorf("tts.volume must be between 0 and 200")
	}
	if cfg.TTS.Engine == "command" && len(cfg.TTS.Command.Argv) == 0 {
		return nil, fmt.Errorf("tts.command must not be empty when tts.engine=command")
	}

	if !strings.HasPrefix(cfg.Lookup.Endpoint, "http://") && !strings.HasPrefix(cfg.Lookup.Endpoint, "https://") {
		return nil, fmt.Errorf("lookup.endpoint must be an http(s) URL")
	}
	if cfg.Lookup.Sentences <= 0 {
		return nil, fmt.Errorf("lookup.sentences must be > 0")
	}
	if cfg.Lookup.TimeoutMS <= 0 {
		return nil, fmt.Errorf("lookup.timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Music.Dir) == "" {
		return nil, fmt.Errorf("music.dir must not be empty")
	}
	if strings.TrimSpace(cfg.Browser.YouTubeURL) == "" || strings.TrimSpace(cfg.Browser.GoogleURL) == "" {
		return nil, fmt.Errorf("browser.youtube_url and browser.google_url must not be empty")
	}
	if strings.TrimSpace(cfg.Screenshot.Path) == "" {
		return nil, fmt.Errorf("screenshot.path must not be empty")
	}
	if err := oneOf("screenshot.backend", cfg.Screenshot.Backend, "auto", "grim", "scrot"); err != nil {
		return nil, err
	}
	if len(cfg.OpenCmd.Argv) == 0 {
		return nil, fmt.Errorf("open_cmd must not be empty")
	}

	if len(cfg.Power.Shutdown.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "power.shutdown_cmd is empty; shutdown will only end the session"})
	}
	if len(cfg.Power.Restart.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "power.restart_cmd is empty; restart will only end the session"})
	}

	if err := oneOf("indicator.backend", cfg.Indicator.Backend, "hypr", "desktop"); err != nil {
		return nil, err
	}
	if cfg.Indicator.Backend == "desktop" && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	return warnings, nil
}

func oneOf(key string, value string, allowed ...string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fmt.Errorf("%s must not be empty", key)
	}
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", key, strings.Join(allowed, ", "))
}
