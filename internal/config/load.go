package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the effective configuration and where it came from.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load reads the config file, overlays it on Default, validates it, and
// expands "~" in path settings. A missing file yields defaults plus a warning.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: path, Config: Default()}
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = []Warning{{Message: fmt.Sprintf("config file %q not found; using defaults", path)}}
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	default:
		cfg, warnings, parseErr := Parse(string(content), loaded.Config)
		if parseErr != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", path, parseErr)
		}
		loaded.Config = cfg
		loaded.Warnings = warnings
		loaded.Exists = true
	}

	if err := expandPaths(&loaded.Config); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

// expandPaths resolves "~" in every file or directory setting.
func expandPaths(cfg *Config) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"assistant.identity_path", &cfg.Assistant.IdentityPath},
		{"stt.whisper_model", &cfg.STT.WhisperModel},
		{"music.dir", &cfg.Music.Dir},
		{"screenshot.path", &cfg.Screenshot.Path},
		{"indicator.sound_listen_file", &cfg.Indicator.SoundListenFile},
		{"indicator.sound_error_file", &cfg.Indicator.SoundErrorFile},
	}
	for _, field := range fields {
		expanded, err := ExpandHome(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}
