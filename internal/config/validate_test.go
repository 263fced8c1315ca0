package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty default name", mutate: func(c *Config) { c.Assistant.DefaultName = " " }, wantErr: "assistant.default_name"},
		{name: "unknown audio backend", mutate: func(c *Config) { c.Audio.Backend = "alsa" }, wantErr: "audio.backend must be one of"},
		{name: "zero listen timeout", mutate: func(c *Config) { c.Audio.ListenTimeoutMS = 0 }, wantErr: "listen_timeout_ms"},
		{name: "zero pause threshold", mutate: func(c *Config) { c.Audio.PauseThresholdMS = 0 }, wantErr: "pause_threshold_ms"},
		{name: "utterance shorter than pause", mutate: func(c *Config) { c.Audio.MaxUtteranceMS = 500 }, wantErr: "max_utterance_ms"},
		{name: "silence rms out of range", mutate: func(c *Config) { c.Audio.SilenceRMS = 1.5 }, wantErr: "silence_rms"},
		{name: "unknown stt engine", mutate: func(c *Config) { c.STT.Engine = "vosk" }, wantErr: "stt.engine"},
		{name: "empty language", mutate: func(c *Config) { c.STT.Language = "" }, wantErr: "stt.language"},
		{name: "missing whisper model", mutate: func(c *Config) { c.STT.WhisperModel = "" }, wantErr: "stt.whisper_model"},
		{name: "missing openai model", mutate: func(c *Config) {
			c.STT.Engine = "openai"
			c.STT.OpenAIModel = ""
		}, wantErr: "stt.openai_model"},
		{name: "unknown tts engine", mutate: func(c *Config) { c.TTS.Engine = "festival" }, wantErr: "tts.engine"},
		{name: "tts command empty", mutate: func(c *Config) {
			c.TTS.Engine = "command"
			c.TTS.Command = CommandConfig{}
		}, wantErr: "tts.command"},
		{name: "volume too loud", mutate: func(c *Config) { c.TTS.Volume = 300 }, wantErr: "tts.volume"},
		{name: "lookup endpoint scheme", mutate: func(c *Config) { c.Lookup.Endpoint = "en.wikipedia.org" }, wantErr: "lookup.endpoint"},
		{name: "zero sentences", mutate: func(c *Config) { c.Lookup.Sentences = 0 }, wantErr: "lookup.sentences"},
		{name: "empty music dir", mutate: func(c *Config) { c.Music.Dir = "" }, wantErr: "music.dir"},
		{name: "bad screenshot backend", mutate: func(c *Config) { c.Screenshot.Backend = "gnome" }, wantErr: "screenshot.backend"},
		{name: "empty opener", mutate: func(c *Config) { c.OpenCmd.Argv = nil }, wantErr: "open_cmd"},
		{name: "bad indicator backend", mutate: func(c *Config) { c.Indicator.Backend = "waybar" }, wantErr: "indicator.backend"},
		{name: "negative error timeout", mutate: func(c *Config) { c.Indicator.ErrorTimeoutMS = -1 }, wantErr: "error_timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
