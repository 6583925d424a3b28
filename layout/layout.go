// Package layout maps a merged timeline onto a bar/beat/pitch grid.
package layout

import (
	"math"
	"sort"

	"go-pianoroll/align"
	"go-pianoroll/score"
)

// DefaultMinOpacity keeps the quietest note visible.
const DefaultMinOpacity = 0.6

// Options controls the rendered range and cell decoration.
type Options struct {
	Bars       int     // rendered range in bars; 0 covers the whole timeline
	MinOpacity float64 // opacity at velocity 0
	Labels     bool    // attach pitch names
}

func DefaultOptions() Options {
	return Options{MinOpacity: DefaultMinOpacity, Labels: true}
}

// Cell is one rendered note.
type Cell struct {
	PitchRow   uint8      `json:"pitchRow"`
	Bar        int        `json:"bar"`
	BeatOffset float64    `json:"beatOffset"`
	Width      float64    `json:"width"`
	Color      Color      `json:"color"`
	Opacity    float64    `json:"opacity"`
	Label      string     `json:"label,omitempty"`
	DrumName   string     `json:"drumName,omitempty"`
	Layer      int        `json:"layer"`
	Role       score.Role `json:"role"`
}

// Start returns the cell's absolute beat given the bar length.
func (c Cell) Start(beatsPerBar float64) float64 {
	return float64(c.Bar)*beatsPerBar + c.BeatOffset
}

// Layout produces one cell per note after same-pitch overlaps are merged.
// Output order is stable: bar, beat offset, pitch, layer, width.
func Layout(tl *align.Timeline, opts Options) []Cell {
	bpb := tl.TimeSignature.BeatsPerBar()
	bars := opts.Bars
	if bars <= 0 {
		bars = tl.Bars()
	}
	end := float64(bars) * bpb

	var cells []Cell
	for li, l := range tl.Layers {
		color := ColorFor(l.Role)
		for _, n := range Merge(l.Notes) {
			if n.Start >= end {
				continue
			}
			bar, off := position(n.Start, bpb)
			c := Cell{
				PitchRow:   n.Pitch,
				Bar:        bar,
				BeatOffset: off,
				Width:      math.Min(n.End(), end) - n.Start,
				Color:      color,
				Opacity:    Opacity(n.Velocity, opts.MinOpacity),
				Layer:      li,
				Role:       l.Role,
			}
			if opts.Labels {
				c.Label = score.PitchName(n.Pitch)
			}
			if l.Role == score.Drum {
				c.DrumName = score.DrumName(n.Pitch)
			}
			cells = append(cells, c)
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.Bar != b.Bar {
			return a.Bar < b.Bar
		}
		if a.BeatOffset != b.BeatOffset {
			return a.BeatOffset < b.BeatOffset
		}
		if a.PitchRow != b.PitchRow {
			return a.PitchRow < b.PitchRow
		}
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		return a.Width < b.Width
	})
	return cells
}

func position(start, bpb float64) (int, float64) {
	bar := math.Floor(start / bpb)
	off := start - bar*bpb
	switch {
	case off < 0:
		bar--
		off += bpb
	case off >= bpb:
		bar++
		off -= bpb
	}
	return int(bar), off
}

// Opacity maps velocity linearly onto [min, 1].
func Opacity(velocity uint8, min float64) float64 {
	min = math.Max(0, math.Min(1, min))
	return min + float64(velocity)/127*(1-min)
}

// Merge collapses notes of the same pitch whose tick ranges strictly overlap
// into their union, keeping the louder velocity. Notes that only touch stay
// separate. The input is not modified; the result is ordered by start, pitch.
func Merge(notes []score.Note) []score.Note {
	sorted := make([]score.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Pitch != sorted[j].Pitch {
			return sorted[i].Pitch < sorted[j].Pitch
		}
		return sorted[i].OnTick < sorted[j].OnTick
	})

	var out []score.Note
	open := -1
	for _, n := range sorted {
		if open >= 0 && out[open].Pitch == n.Pitch && n.OnTick < out[open].OffTick {
			cur := &out[open]
			if n.OffTick > cur.OffTick {
				cur.OffTick = n.OffTick
				cur.Duration = n.End() - cur.Start
			}
			cur.Velocity = max(cur.Velocity, n.Velocity)
			continue
		}
		out = append(out, n)
		open = len(out) - 1
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OnTick != out[j].OnTick {
			return out[i].OnTick < out[j].OnTick
		}
		return out[i].Pitch < out[j].Pitch
	})
	return out
}
