// Package catalog reads the songs.json metadata store and matches MIDI
// folders to songs.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Song is one catalog entry. Fields other than these are ignored.
type Song struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	MidiFolder string `json:"midi_folder,omitempty"`
}

// Catalog is an ordered list of songs.
type Catalog struct {
	Songs []Song
}

// Load reads a JSON array of songs.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var songs []Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Catalog{Songs: songs}, nil
}

// Lookup finds the song whose MIDI folder is folder. Candidates are tried in
// order: explicit midi_folder, sanitized "artist_title", sanitized title,
// then the lower-cased title with spaces as underscores and dots removed.
// The first song with any matching candidate wins.
func (c *Catalog) Lookup(folder string) (Song, bool) {
	if c == nil {
		return Song{}, false
	}
	for _, s := range c.Songs {
		for _, name := range s.Folders() {
			if name == folder {
				return s, true
			}
		}
	}
	return Song{}, false
}

// Folders returns the folder names this song may be stored under.
func (s Song) Folders() []string {
	var names []string
	if s.MidiFolder != "" {
		names = append(names, s.MidiFolder)
	}
	return append(names,
		Sanitize(s.Artist+"_"+s.Title),
		Sanitize(s.Title),
		strings.NewReplacer(" ", "_", ".", "").Replace(strings.ToLower(s.Title)),
	)
}

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)
	separators  = regexp.MustCompile(`[-\s]+`)
)

// Sanitize makes a folder-safe lower-case name: punctuation dropped, runs of
// spaces and hyphens collapsed to one underscore.
func Sanitize(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	name = separators.ReplaceAllString(name, "_")
	return strings.ToLower(name)
}
