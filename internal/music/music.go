// Package music lists and picks tracks from a local music directory.
package music

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNoLibrary means the music directory does not exist.
	ErrNoLibrary = errors.New("music folder not found")
	// ErrNoSongs means nothing in the library matched.
	ErrNoSongs = errors.New("no songs found")
)

// Library is a flat directory of playable files.
type Library struct {
	Dir string
	// Intn picks an index in [0,n); defaults to math/rand/v2.
	Intn func(n int) int
}

// NewLibrary returns a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{Dir: dir, Intn: rand.IntN}
}

// List returns the sorted names of visible regular files in the library.
// Symlinks count when their target is a regular file.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoLibrary
		}
		return nil, fmt.Errorf("read music dir %q: %w", l.Dir, err)
	}

	songs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(l.Dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		songs = append(songs, name)
	}
	sort.Strings(songs)
	return songs, nil
}

// Filter keeps songs whose names contain query, ignoring case.
// An empty query keeps everything.
func Filter(songs []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return songs
	}
	out := make([]string, 0, len(songs))
	for _, song := range songs {
		if strings.Contains(strings.ToLower(song), query) {
			out = append(out, song)
		}
	}
	return out
}

// Pick chooses a random song matching query and returns its name and full path.
func (l *Library) Pick(query string) (string, string, error) {
	songs, err := l.List()
	if err != nil {
		return "", "", err
	}
	songs = Filter(songs, query)
	if len(songs) == 0 {
		return "", "", ErrNoSongs
	}

	intn := l.Intn
	if intn == nil {
		intn = rand.IntN
	}
	song := songs[intn(len(songs))]
	return song, filepath.Join(l.Dir, song), nil
}
