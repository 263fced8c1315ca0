package config

// DefaultAssistantName is used until the user renames the assistant.
const DefaultAssistantName = "Jarvis"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	opener := "xdg-open"
	ttsCmd := "spd-say -w -e"
	shutdown := "shutdown now"
	restart := "reboot"

	return Config{
		Assistant: AssistantConfig{
			DefaultName: DefaultAssistantName,
		},
		Audio: AudioConfig{
			Backend:          "pulse",
			Input:            "default",
			Fallback:         "default",
			ListenTimeoutMS:  5000,
			PauseThresholdMS: 1000,
			MaxUtteranceMS:   15000,
			SilenceRMS:       0.015,
		},
		STT: STTConfig{
			Engine:         "whisper",
			Language:       "en",
			WhisperModel:   "~/.local/share/jarvis/models/ggml-base.en.bin",
			WhisperThreads: 4,
			OpenAIModel:    "whisper-1",
			TimeoutMS:      20000,
		},
		TTS: TTSConfig{
			Engine:  "espeak",
			Rate:    150,
			Volume:  100,
			Command: CommandConfig{Raw: ttsCmd, Argv: mustParseArgv(ttsCmd)},
		},
		Lookup: LookupConfig{
			Endpoint:  "https://en.wikipedia.org",
			Sentences: 2,
			TimeoutMS: 8000,
		},
		Music: MusicConfig{Dir: "~/Music"},
		Browser: BrowserConfig{
			YouTubeURL: "https://youtube.com",
			GoogleURL:  "https://google.com",
		},
		Screenshot: ScreenshotConfig{
			Path:    "~/screenshot.png",
			Backend: "auto",
		},
		Power: PowerConfig{
			Shutdown: CommandConfig{Raw: shutdown, Argv: mustParseArgv(shutdown)},
			Restart:  CommandConfig{Raw: restart, Argv: mustParseArgv(restart)},
		},
		Indicator: IndicatorConfig{
			Enable:         false,
			Backend:        "hypr",
			DesktopAppName: "jarvis-indicator",
			SoundEnable:    false,
			ErrorTimeoutMS: 1600,
		},
		OpenCmd: CommandConfig{Raw: opener, Argv: mustParseArgv(opener)},
		Debug:   DebugConfig{},
	}
}
