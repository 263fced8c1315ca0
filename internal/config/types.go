// Package config resolves, parses, validates, and defaults jarvis configuration.
package config

// Config is the fully materialized runtime configuration used by jarvis.
type Config struct {
	Assistant  AssistantConfig
	Audio      AudioConfig
	STT        STTConfig
	TTS        TTSConfig
	Lookup     LookupConfig
	Music      MusicConfig
	Browser    BrowserConfig
	Screenshot ScreenshotConfig
	Power      PowerConfig
	Indicator  IndicatorConfig
	OpenCmd    CommandConfig
	Debug      DebugConfig
}

// AssistantConfig controls the assistant identity.
type AssistantConfig struct {
	DefaultName  string
	IdentityPath string
}

// AudioConfig controls capture backend, source selection, and utterance bounds.
type AudioConfig struct {
	Backend          string
	Input            string
	Fallback         string
	ListenTimeoutMS  int
	PauseThresholdMS int
	MaxUtteranceMS   int
	SilenceRMS       float64
}

// STTConfig selects and tunes the speech-to-text engine.
type STTConfig struct {
	Engine         string
	Language       string
	WhisperModel   string
	WhisperThreads int
	OpenAIModel    string
	OpenAIBaseURL  string
	OpenAIProxy    string
	TimeoutMS      int
}

// TTSConfig selects and tunes the speech output engine.
type TTSConfig struct {
	Engine  string
	Voice   string
	Rate    int
	Volume  int
	Command CommandConfig
}

// LookupConfig controls encyclopedia summaries.
type LookupConfig struct {
	Endpoint  string
	Sentences int
	TimeoutMS int
}

// MusicConfig points at the local music library.
type MusicConfig struct {
	Dir string
}

// BrowserConfig holds the sites opened by the browser intents.
type BrowserConfig struct {
	YouTubeURL string
	GoogleURL  string
}

// ScreenshotConfig controls screenshot destination and capture tool.
type ScreenshotConfig struct {
	Path    string
	Backend string
}

// PowerConfig holds the system power commands.
type PowerConfig struct {
	Shutdown CommandConfig
	Restart  CommandConfig
}

// IndicatorConfig controls visual indicator and audio cue behavior.
type IndicatorConfig struct {
	Enable          bool
	Backend         string
	DesktopAppName  string
	SoundEnable     bool
	SoundListenFile string
	SoundErrorFile  string
	TextListening   string
	TextError       string
	ErrorTimeoutMS  int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
