// Package emit turns finished layout cells into the JSON hand-off document.
// It performs no layout logic.
package emit

import (
	"encoding/json"
	"io"

	"go-pianoroll/align"
	"go-pianoroll/layout"
	"go-pianoroll/score"
)

// Piano key range used to clamp melodic pitch windows (A0..C8).
const (
	lowestKey  = 21
	highestKey = 108
	windowPad  = 3
)

// Meta is the song information the timeline does not carry.
type Meta struct {
	Title  string
	Artist string
	Bars   int // rendered range; 0 means the whole timeline
}

// PitchWindow is the vertical extent a renderer should draw for a layer.
type PitchWindow struct {
	Low  uint8 `json:"low"`
	High uint8 `json:"high"`
}

// LayerSummary describes one layer of the document.
type LayerSummary struct {
	Name   string       `json:"name"`
	Source string       `json:"source"`
	Track  string       `json:"track"`
	Role   score.Role   `json:"role"`
	Color  layout.Color `json:"color"`
	Notes  int          `json:"notes"`
	Window PitchWindow  `json:"window"`
}

// Document is the render-agnostic output of a conversion.
type Document struct {
	Title         string              `json:"title"`
	Artist        string              `json:"artist,omitempty"`
	Roles         []score.Role        `json:"roles"`
	Bars          int                 `json:"bars"`
	BeatsPerBar   float64             `json:"beatsPerBar"`
	TimeSignature score.TimeSignature `json:"timeSignature"`
	BPM           float64             `json:"bpm"`
	Seconds       float64             `json:"seconds"`
	Layers        []LayerSummary      `json:"layers"`
	Cells         []layout.Cell       `json:"cells"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// Build assembles a document. Cells are kept in the order given.
func Build(meta Meta, tl *align.Timeline, cells []layout.Cell, warnings []score.Warning) Document {
	bars := meta.Bars
	if bars <= 0 {
		bars = tl.Bars()
	}

	doc := Document{
		Title:         meta.Title,
		Artist:        meta.Artist,
		Roles:         rolesPresent(tl),
		Bars:          bars,
		BeatsPerBar:   tl.TimeSignature.BeatsPerBar(),
		TimeSignature: tl.TimeSignature,
		BPM:           tl.Tempo.BPM(),
		Cells:         cells,
	}
	if doc.Cells == nil {
		doc.Cells = []layout.Cell{}
	}

	end := uint32(tl.Length * float64(tl.Resolution))
	doc.Seconds = tl.Tempo.Duration(end, tl.Resolution).Seconds()

	for _, l := range tl.Layers {
		doc.Layers = append(doc.Layers, LayerSummary{
			Name:   l.Name,
			Source: l.Source,
			Track:  l.TrackID,
			Role:   l.Role,
			Color:  layout.ColorFor(l.Role),
			Notes:  len(l.Notes),
			Window: Window(l.Role, l.Notes),
		})
	}
	for _, w := range warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}
	return doc
}

func rolesPresent(tl *align.Timeline) []score.Role {
	seen := make(map[score.Role]bool)
	for _, l := range tl.Layers {
		seen[l.Role] = true
	}
	roles := []score.Role{}
	for _, r := range score.Roles {
		if seen[r] {
			roles = append(roles, r)
		}
	}
	return roles
}

// Window returns the pitch range to draw for a layer. Drums use the exact
// range played; other roles get a margin clamped to the piano keyboard,
// never cutting off a played pitch. An empty layer gets one octave from
// middle C.
func Window(role score.Role, notes []score.Note) PitchWindow {
	if len(notes) == 0 {
		return PitchWindow{Low: 60, High: 72}
	}
	lo, hi := notes[0].Pitch, notes[0].Pitch
	for _, n := range notes[1:] {
		lo = min(lo, n.Pitch)
		hi = max(hi, n.Pitch)
	}
	if role == score.Drum {
		return PitchWindow{Low: lo, High: hi}
	}
	return PitchWindow{
		Low:  uint8(max(int(lo)-windowPad, min(int(lo), lowestKey))),
		High: uint8(min(int(hi)+windowPad, max(int(hi), highestKey))),
	}
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Read decodes a document written by Write.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
