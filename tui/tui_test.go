package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-pianoroll/emit"
	"go-pianoroll/layout"
	"go-pianoroll/score"
	"go-pianoroll/theme"
)

func testDoc() *emit.Document {
	return &emit.Document{
		Title:         "Preview",
		Bars:          1,
		BeatsPerBar:   4,
		TimeSignature: score.CommonTime,
		BPM:           120,
		Seconds:       2,
		Layers: []emit.LayerSummary{
			{Name: "Lead", Role: score.Melody, Color: layout.Purple, Notes: 1},
			{Name: "Pad", Role: score.Harmony, Color: layout.Orange, Notes: 1},
		},
		Cells: []layout.Cell{
			{PitchRow: 60, Bar: 0, BeatOffset: 0, Width: 2, Color: layout.Purple, Opacity: 1, Layer: 0, Role: score.Melody},
			{PitchRow: 60, Bar: 0, BeatOffset: 1, Width: 1, Color: layout.Orange, Opacity: 0.8, Layer: 1, Role: score.Harmony},
		},
	}
}

// plain drops the label column; tests run without a color profile.
func plain(line string) string {
	return strings.TrimSpace(line)[len("C4"):]
}

func TestRollRender(t *testing.T) {
	r := newRoll(testDoc())
	lines := r.Render(theme.Default(), Viewport{Start: 0, Scale: 1, Cols: 6, Top: 61, Rows: 2, Layer: -1})
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "c#4") {
		t.Errorf("black key label = %q", lines[0])
	}
	if got := strings.TrimSpace(plain(lines[1])); got != "●●··--" {
		t.Errorf("row 60 = %q", got)
	}
}

func TestRollRenderLayerFilter(t *testing.T) {
	r := newRoll(testDoc())
	lines := r.Render(theme.Default(), Viewport{Scale: 1, Cols: 4, Top: 60, Rows: 1, Layer: 0})
	if got := strings.TrimSpace(plain(lines[0])); got != "●─··" {
		t.Errorf("layer 0 only = %q", got)
	}
}

func TestRollOverlapAndBarLine(t *testing.T) {
	doc := testDoc()
	doc.Bars = 2
	doc.Cells[1].BeatOffset = 0.5
	r := newRoll(doc)
	lines := r.Render(theme.Default(), Viewport{Scale: 0.5, Cols: 10, Top: 60, Rows: 1, Layer: -1})
	if got := strings.TrimSpace(plain(lines[0])); got != "●●═─····│·" {
		t.Errorf("row = %q", got)
	}
}

func TestPitchSpan(t *testing.T) {
	lo, hi, ok := newRoll(testDoc()).pitchSpan()
	if !ok || lo != 60 || hi != 60 {
		t.Fatalf("span = %d..%d %v", lo, hi, ok)
	}
	if _, _, ok := newRoll(&emit.Document{}).pitchSpan(); ok {
		t.Fatal("empty doc has a span")
	}
}

func TestModelKeys(t *testing.T) {
	doc := testDoc()
	doc.Bars = 4
	var m tea.Model = NewModel(doc, theme.Default())

	press := func(k string) {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
	press("l")
	press("l")
	if got := m.(Model).view.Start; got != 8 {
		t.Fatalf("start = %v", got)
	}
	press("h")
	if got := m.(Model).view.Start; got != 4 {
		t.Fatalf("start = %v", got)
	}

	press("-")
	if got := m.(Model).view.Scale; got != 0.5 {
		t.Fatalf("scale = %v", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.(Model).view.Layer; got != 0 {
		t.Fatalf("layer = %d", got)
	}
	if !strings.Contains(m.View(), "Lead") {
		t.Fatal("status should name the layer")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || m.View() != "" {
		t.Fatal("q should quit")
	}
}

func TestModelResize(t *testing.T) {
	var m tea.Model = NewModel(testDoc(), theme.Default())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v := m.(Model).view
	if v.Cols != 95 || v.Rows != 40-7 {
		t.Fatalf("view = %+v", v)
	}
}

func TestModelHelpToggle(t *testing.T) {
	var m tea.Model = NewModel(testDoc(), theme.Default())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if got := m.(Model).view.Rows; got != 40-10 {
		t.Fatalf("rows with full help = %d", got)
	}
	if !strings.Contains(m.View(), "octave up") {
		t.Fatal("full help should list octave keys")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if got := m.(Model).view.Rows; got != 40-7 {
		t.Fatalf("rows = %d", got)
	}
}
