// Package identity persists the assistant's spoken name to a flat file.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyName is returned when saving a blank name.
var ErrEmptyName = errors.New("assistant name must not be empty")

// Store reads and writes the assistant name at Path.
type Store struct {
	Path        string
	DefaultName string
}

// NewStore resolves the identity file location and default name.
//
// An empty path falls back to $XDG_DATA_HOME/jarvis/assistant_name.txt.
func NewStore(path string, defaultName string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return &Store{Path: path, DefaultName: defaultName}, nil
}

// DefaultPath returns the XDG data location of the identity file.
func DefaultPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "jarvis", "assistant_name.txt"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for identity file")
	}
	return filepath.Join(home, ".local", "share", "jarvis", "assistant_name.txt"), nil
}

// Load returns the stored name, or the default when none is usable.
func (s *Store) Load() string {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		return s.DefaultName
	}
	name := strings.TrimSpace(string(content))
	if name == "" {
		return s.DefaultName
	}
	return name
}

// Save overwrites the stored name.
func (s *Store) Save(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(name), 0o600); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}
	return nil
}
