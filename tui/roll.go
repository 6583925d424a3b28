package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/debug"
	"go-pianoroll/emit"
	"go-pianoroll/score"
	"go-pianoroll/theme"
)

// View scales: beats per column
var ViewScales = []float64{
	0.125, // 1/8 per col - zoomed in
	0.25,  // 1/4 per col
	0.5,   // 1/2 per col
	1.0,   // 1 beat per col
	2.0,   // 2 beats per col - zoomed out
}

// Viewport is the window of the roll being drawn.
type Viewport struct {
	Start float64 // first visible beat
	Scale float64 // beats per column
	Cols  int
	Top   uint8 // highest visible pitch
	Rows  int
	Layer int // -1 shows every layer
}

// roll indexes a document's cells by pitch.
type roll struct {
	doc     *emit.Document
	byPitch [128][]int
	end     float64 // last beat of the rendered range
}

func newRoll(doc *emit.Document) *roll {
	r := &roll{doc: doc, end: float64(doc.Bars) * doc.BeatsPerBar}
	for i, c := range doc.Cells {
		if c.PitchRow < 128 {
			r.byPitch[c.PitchRow] = append(r.byPitch[c.PitchRow], i)
		}
	}
	return r
}

// pitchSpan returns the lowest and highest pitch with cells.
func (r *roll) pitchSpan() (uint8, uint8, bool) {
	lo, hi, ok := uint8(127), uint8(0), false
	for p := range r.byPitch {
		if len(r.byPitch[p]) == 0 {
			continue
		}
		lo, hi, ok = min(lo, uint8(p)), max(hi, uint8(p)), true
	}
	return lo, hi, ok
}

// Render draws the viewport, one line per pitch, top pitch first.
func (r *roll) Render(th *theme.Theme, v Viewport) []string {
	sym := th.Symbols
	gridStyle := lipgloss.NewStyle().Foreground(th.Grid())
	labelStyle := lipgloss.NewStyle().Foreground(th.Muted())
	bpb := r.doc.BeatsPerBar
	debug.LogEvery(50, "tui", "render start=%g scale=%g layer=%d", v.Start, v.Scale, v.Layer)

	var lines []string
	for row := 0; row < v.Rows; row++ {
		p := int(v.Top) - row
		if p < 0 {
			break
		}
		pitch := uint8(p)

		var line strings.Builder
		label := score.PitchName(pitch)
		if score.IsBlackKey(pitch) {
			label = strings.ToLower(label)
		}
		line.WriteString(labelStyle.Render(padLeft(label, 4) + " "))

		for col := 0; col < v.Cols; col++ {
			from := v.Start + float64(col)*v.Scale
			to := from + v.Scale

			if from >= r.end {
				line.WriteString(gridStyle.Render(string(sym.Beyond)))
				continue
			}

			hit, starts, layers := r.hit(pitch, from, to, v.Layer)
			if hit < 0 {
				ch := sym.Empty
				if onBar(from, v.Scale, bpb) {
					ch = sym.BarLine
				}
				line.WriteString(gridStyle.Render(string(ch)))
				continue
			}

			c := r.doc.Cells[hit]
			ch := sym.NoteBody
			switch {
			case starts:
				ch = sym.NoteStart
			case layers > 1:
				ch = sym.Overlap
			}
			style := lipgloss.NewStyle().Foreground(th.Color(c.Color, c.Opacity))
			line.WriteString(style.Render(string(ch)))
		}
		lines = append(lines, line.String())
	}
	return lines
}

// hit returns the loudest cell at pitch sounding in [from, to), whether any
// such cell starts there, and how many distinct layers sound.
func (r *roll) hit(pitch uint8, from, to float64, layer int) (int, bool, int) {
	best, starts := -1, false
	seen := make(map[int]bool)
	bpb := r.doc.BeatsPerBar
	for _, i := range r.byPitch[pitch] {
		c := r.doc.Cells[i]
		if layer >= 0 && c.Layer != layer {
			continue
		}
		s := c.Start(bpb)
		if s >= to || s+c.Width <= from {
			continue
		}
		seen[c.Layer] = true
		if s >= from {
			starts = true
		}
		if best < 0 || c.Opacity > r.doc.Cells[best].Opacity {
			best = i
		}
	}
	return best, starts, len(seen)
}

func onBar(from, scale, bpb float64) bool {
	bar := math.Ceil(from/bpb) * bpb
	return bar >= from && bar < from+scale
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}
