package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Assistant  *jsoncAssistant  `json:"assistant"`
	Audio      *jsoncAudio      `json:"audio"`
	STT        *jsoncSTT        `json:"stt"`
	TTS        *jsoncTTS        `json:"tts"`
	Lookup     *jsoncLookup     `json:"lookup"`
	Music      *jsoncMusic      `json:"music"`
	Browser    *jsoncBrowser    `json:"browser"`
	Screenshot *jsoncScreenshot `json:"screenshot"`
	Power      *jsoncPower      `json:"power"`
	Indicator  *jsoncIndicator  `json:"indicator"`

	OpenCmd *string     `json:"open_cmd"`
	Debug   *jsoncDebug `json:"debug"`
}

type jsoncAssistant struct {
	DefaultName  *string `json:"default_name"`
	IdentityPath *string `json:"identity_path"`
}

type jsoncAudio struct {
	Backend          *string  `json:"backend"`
	Input            *string  `json:"input"`
	Fallback         *string  `json:"fallback"`
	ListenTimeoutMS  *int     `json:"listen_timeout_ms"`
	PauseThresholdMS *int     `json:"pause_threshold_ms"`
	MaxUtteranceMS   *int     `json:"max_utterance_ms"`
	SilenceRMS       *float64 `json:"silence_rms"`
}

type jsoncSTT struct {
	Engine         *string `json:"engine"`
	Language       *string `json:"language"`
	WhisperModel   *string `json:"whisper_model"`
	WhisperThreads *int    `json:"whisper_threads"`
	OpenAIModel    *string `json:"openai_model"`
	OpenAIBaseURL  *string `json:"openai_base_url"`
	OpenAIProxy    *string `json:"openai_proxy"`
	TimeoutMS      *int    `json:"timeout_ms"`
}

type jsoncTTS struct {
	Engine  *string `json:"engine"`
	Voice   *string `json:"voice"`
	Rate    *int    `json:"rate"`
	Volume  *int    `json:"volume"`
	Command *string `json:"command"`
}

type jsoncLookup struct {
	Endpoint  *string `json:"endpoint"`
	Sentences *int    `json:"sentences"`
	TimeoutMS *int    `json:"timeout_ms"`
}

type jsoncMusic struct {
	Dir *string `json:"dir"`
}

type jsoncBrowser struct {
	YouTubeURL *string `json:"youtube_url"`
	GoogleURL  *string `json:"google_url"`
}

type jsoncScreenshot struct {
	Path    *string `json:"path"`
	Backend *string `json:"backend"`
}

type jsoncPower struct {
	ShutdownCmd *string `json:"shutdown_cmd"`
	RestartCmd  *string `json:"restart_cmd"`
}

type jsoncIndicator struct {
	Enable          *bool   `json:"enable"`
	Backend         *string `json:"backend"`
	DesktopAppName  *string `json:"desktop_app_name"`
	SoundEnable     *bool   `json:"sound_enable"`
	SoundListenFile *string `json:"sound_listen_file"`
	SoundErrorFile  *string `json:"sound_error_file"`
	TextListening   *string `json:"text_listening"`
	TextError       *string `json:"text_error"`
	ErrorTimeoutMS  *int    `json:"error_timeout_ms"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if a := payload.Assistant; a != nil {
		setTrimmed(&cfg.Assistant.DefaultName, a.DefaultName)
		setTrimmed(&cfg.Assistant.IdentityPath, a.IdentityPath)
	}

	if a := payload.Audio; a != nil {
		setLower(&cfg.Audio.Backend, a.Backend)
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
		setInt(&cfg.Audio.ListenTimeoutMS, a.ListenTimeoutMS)
		setInt(&cfg.Audio.PauseThresholdMS, a.PauseThresholdMS)
		setInt(&cfg.Audio.MaxUtteranceMS, a.MaxUtteranceMS)
		if a.SilenceRMS != nil {
			cfg.Audio.SilenceRMS = *a.SilenceRMS
		}
	}

	if s := payload.STT; s != nil {
		setLower(&cfg.STT.Engine, s.Engine)
		setTrimmed(&cfg.STT.Language, s.Language)
		setTrimmed(&cfg.STT.WhisperModel, s.WhisperModel)
		setInt(&cfg.STT.WhisperThreads, s.WhisperThreads)
		setTrimmed(&cfg.STT.OpenAIModel, s.OpenAIModel)
		setTrimmed(&cfg.STT.OpenAIBaseURL, s.OpenAIBaseURL)
		setTrimmed(&cfg.STT.OpenAIProxy, s.OpenAIProxy)
		setInt(&cfg.STT.TimeoutMS, s.TimeoutMS)
	}

	if s := payload.TTS; s != nil {
		setLower(&cfg.TTS.Engine, s.Engine)
		setTrimmed(&cfg.TTS.Voice, s.Voice)
		setInt(&cfg.TTS.Rate, s.Rate)
		setInt(&cfg.TTS.Volume, s.Volume)
		if err := setCommand(&cfg.TTS.Command, s.Command, "tts.command"); err != nil {
			return nil, err
		}
	}

	if l := payload.Lookup; l != nil {
		if l.Endpoint != nil {
			cfg.Lookup.Endpoint = strings.TrimRight(strings.TrimSpace(*l.Endpoint), "/")
		}
		setInt(&cfg.Lookup.Sentences, l.Sentences)
		setInt(&cfg.Lookup.TimeoutMS, l.TimeoutMS)
	}

	if payload.Music != nil {
		setTrimmed(&cfg.Music.Dir, payload.Music.Dir)
	}

	if b := payload.Browser; b != nil {
		setTrimmed(&cfg.Browser.YouTubeURL, b.YouTubeURL)
		setTrimmed(&cfg.Browser.GoogleURL, b.GoogleURL)
	}

	if s := payload.Screenshot; s != nil {
		setTrimmed(&cfg.Screenshot.Path, s.Path)
		setLower(&cfg.Screenshot.Backend, s.Backend)
	}

	if p := payload.Power; p != nil {
		if err := setCommand(&cfg.Power.Shutdown, p.ShutdownCmd, "power.shutdown_cmd"); err != nil {
			return nil, err
		}
		if err := setCommand(&cfg.Power.Restart, p.RestartCmd, "power.restart_cmd"); err != nil {
			return nil, err
		}
	}

	if ind := payload.Indicator; ind != nil {
		if ind.Enable != nil {
			cfg.Indicator.Enable = *ind.Enable
		}
		setLower(&cfg.Indicator.Backend, ind.Backend)
		setTrimmed(&cfg.Indicator.DesktopAppName, ind.DesktopAppName)
		if ind.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *ind.SoundEnable
		}
		setTrimmed(&cfg.Indicator.SoundListenFile, ind.SoundListenFile)
		setTrimmed(&cfg.Indicator.SoundErrorFile, ind.SoundErrorFile)
		setString(&cfg.Indicator.TextListening, ind.TextListening)
		setString(&cfg.Indicator.TextError, ind.TextError)
		setInt(&cfg.Indicator.ErrorTimeoutMS, ind.ErrorTimeoutMS)
	}

	if err := setCommand(&cfg.OpenCmd, payload.OpenCmd, "open_cmd"); err != nil {
		return nil, err
	}

	if payload.Debug != nil && payload.Debug.AudioDump != nil {
		cfg.Debug.EnableAudioDump = *payload.Debug.AudioDump
	}

	if cfg.STT.Engine == "openai" && cfg.STT.OpenAIProxy != "" && !strings.HasPrefix(cfg.STT.OpenAIProxy, "socks5://") {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("stt.openai_proxy %q has no socks5:// scheme; treating it as host:port", cfg.STT.OpenAIProxy)})
	}

	return warnings, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setLower(dst *string, src *string) {
	if src != nil {
		*dst = strings.ToLower(strings.TrimSpace(*src))
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setCommand(dst *CommandConfig, src *string, key string) error {
	if src == nil {
		return nil
	}
	raw := *src
	argv, err := parseArgv(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = CommandConfig{Raw: raw, Argv: argv}
	return nil
}

// normalizeJSONC blanks comments and drops trailing commas in one pass.
// Byte offsets are preserved so decode errors still point at the right line.
func normalizeJSONC(content string) (string, error) {
	out := make([]byte, 0, len(content))
	comma := -1

	for i := 0; i < len(content); i++ {
		ch := content[i]
		next := byte(0)
		if i+1 < len(content) {
			next = content[i+1]
		}

		switch {
		case ch == '"':
			end := stringEnd(content, i)
			out = append(out, content[i:end]...)
			i = end - 1
			comma = -1
		case ch == '/' && next == '/':
			end := len(content)
			if nl := strings.IndexAny(content[i:], "\r\n"); nl >= 0 {
				end = i + nl
			}
			out = appendBlank(out, content[i:end])
			i = end - 1
		case ch == '/' && next == '*':
			closing := strings.Index(content[i+2:], "*/")
			if closing < 0 {
				return "", errors.New("unterminated block comment in JSONC")
			}
			end := i + 2 + closing + 2
			out = appendBlank(out, content[i:end])
			i = end - 1
		case ch == ',':
			comma = len(out)
			out = append(out, ch)
		case ch == '}' || ch == ']':
			if comma >= 0 {
				out[comma] = ' '
			}
			comma = -1
			out = append(out, ch)
		case isJSONWhitespace(ch):
			out = append(out, ch)
		default:
			comma = -1
			out = append(out, ch)
		}
	}
	return string(out), nil
}

// stringEnd returns the index just past the string literal opening at start.
func stringEnd(content string, start int) int {
	for j := start + 1; j < len(content); j++ {
		switch content[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(content)
}

// appendBlank keeps line structure and replaces everything else with spaces.
func appendBlank(out []byte, comment string) []byte {
	for i := 0; i < len(comment); i++ {
		if ch := comment[i]; ch == '\n' || ch == '\r' || ch == '\t' {
			out = append(out, ch)
			continue
		}
		out = append(out, ' ')
	}
	return out
}

func isJSONWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t'
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	_, err := decoder.Token()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("multiple JSON values are not allowed")
	}
}

func wrapJSONDecodeError(content string, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}
	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// offsetToLineCol converts a decoder byte offset to 1-based line and column.
func offsetToLineCol(content string, offset int64) (int, int) {
	limit := min(max(int(offset), 1), len(content))
	prefix := content[:max(limit-1, 0)]
	line := 1 + strings.Count(prefix, "\n")
	col := len(prefix) - (strings.LastIndexByte(prefix, '\n') + 1) + 1
	return line, col
}
