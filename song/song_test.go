package song

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/catalog"
	"go-pianoroll/classify"
	"go-pianoroll/layout"
	"go-pianoroll/midi"
	"go-pianoroll/score"
)

type fixNote struct {
	ch, key, vel uint8
	on, off      uint32
}

type fixEvent struct {
	tick uint32
	off  bool
	msg  []byte
}

// writeMIDI writes a single-track file; meter is optional.
func writeMIDI(t *testing.T, path string, res uint16, meter *score.TimeSignature, notes ...fixNote) {
	t.Helper()

	var events []fixEvent
	for _, n := range notes {
		events = append(events,
			fixEvent{tick: n.on, msg: gomidi.NoteOn(n.ch, n.key, n.vel)},
			fixEvent{tick: n.off, off: true, msg: gomidi.NoteOff(n.ch, n.key)},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(res)
	var tr smf.Track
	if meter != nil {
		tr.Add(0, smf.MetaMeter(meter.Numerator, meter.Denominator))
	}
	var last uint32
	for _, ev := range events {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func request(paths ...string) Request {
	return Request{
		Paths:    paths,
		Classify: classify.DefaultOptions(),
		Layout:   layout.DefaultOptions(),
	}
}

func TestConvertSingleNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my_song", "piano.mid")
	writeMIDI(t, path, 480, nil, fixNote{ch: 0, key: 60, vel: 100, on: 0, off: 480})

	res, err := Convert(context.Background(), request(path))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(res.Timeline.Layers) != 1 {
		t.Fatalf("layers = %d", len(res.Timeline.Layers))
	}
	l := res.Timeline.Layers[0]
	if l.Name != "Piano" || l.Role != score.Melody || l.Source != "piano.mid" {
		t.Fatalf("layer = %+v", l)
	}
	n := l.Notes[0]
	if n.Pitch != 60 || n.Start != 0 || n.Duration != 1 || n.Velocity != 100 {
		t.Fatalf("note = %+v", n)
	}

	if len(res.Cells) != 1 {
		t.Fatalf("cells = %d", len(res.Cells))
	}
	c := res.Cells[0]
	if c.PitchRow != 60 || c.Bar != 0 || c.BeatOffset != 0 || c.Width != 1 || c.Label != "C4" {
		t.Fatalf("cell = %+v", c)
	}

	if res.Document.Title != "My Song" || res.Document.Bars != 1 {
		t.Fatalf("document title %q bars %d", res.Document.Title, res.Document.Bars)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestConvertMultiFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "band")
	drums := filepath.Join(dir, "drums.mid")
	bass := filepath.Join(dir, "bass_line.mid")
	chords := filepath.Join(dir, "chords.mid")

	writeMIDI(t, drums, 960, nil,
		fixNote{ch: 9, key: 36, vel: 120, on: 0, off: 240},
		fixNote{ch: 9, key: 38, vel: 100, on: 960, off: 1200},
	)
	writeMIDI(t, bass, 480, nil,
		fixNote{ch: 1, key: 36, vel: 90, on: 0, off: 480},
		fixNote{ch: 1, key: 40, vel: 90, on: 480, off: 960},
		fixNote{ch: 1, key: 43, vel: 90, on: 480 * 7, off: 480 * 8},
	)
	writeMIDI(t, chords, 480, nil,
		fixNote{ch: 2, key: 60, vel: 70, on: 0, off: 1920},
		fixNote{ch: 2, key: 64, vel: 70, on: 0, off: 1920},
		fixNote{ch: 2, key: 67, vel: 70, on: 0, off: 1920},
	)

	req := request(drums, bass, chords)
	req.MaxWorkers = 2
	res, err := Convert(context.Background(), req)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	tl := res.Timeline
	if tl.Resolution != 960 {
		t.Errorf("resolution = %d", tl.Resolution)
	}
	if tl.Length != 8 || res.Document.Bars != 2 {
		t.Errorf("length = %v bars = %d", tl.Length, res.Document.Bars)
	}

	want := []struct {
		name string
		role score.Role
	}{
		{"Drums", score.Drum},
		{"Bass Line", score.Bass},
		{"Chords", score.Chord},
	}
	if len(tl.Layers) != len(want) {
		t.Fatalf("layers = %d", len(tl.Layers))
	}
	for i, w := range want {
		if tl.Layers[i].Name != w.name || tl.Layers[i].Role != w.role {
			t.Errorf("layer %d = %s/%v, want %s/%v", i, tl.Layers[i].Name, tl.Layers[i].Role, w.name, w.role)
		}
	}
	if len(res.Roles) != 3 || res.Roles[2].Rule != "polyphony" {
		t.Errorf("roles = %+v", res.Roles)
	}

	if len(res.Cells) != 8 {
		t.Fatalf("cells = %d", len(res.Cells))
	}
	first := res.Cells[0]
	if first.PitchRow != 36 || first.Layer != 0 || first.DrumName != "Kick" {
		t.Errorf("first cell = %+v", first)
	}
	if got := res.Document.Roles; len(got) != 3 || got[0] != score.Drum || got[2] != score.Chord {
		t.Errorf("document roles = %v", got)
	}
}

func truncatedFile() []byte {
	b := []byte("MThd")
	b = binary.BigEndian.AppendUint32(b, 6)
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint16(b, 1)
	b = binary.BigEndian.AppendUint16(b, 480)
	b = append(b, "MTrk"...)
	b = binary.BigEndian.AppendUint32(b, 100)
	return append(b, 0x00, 0x90, 0x3C, 0x64)
}

func TestConvertTruncatedAbortsSong(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.mid")
	bad := filepath.Join(dir, "bad.mid")
	writeMIDI(t, good, 480, nil, fixNote{key: 60, vel: 100, off: 480})
	if err := os.WriteFile(bad, truncatedFile(), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Convert(context.Background(), request(good, bad))
	if !errors.Is(err, midi.ErrTruncatedFile) {
		t.Fatalf("err = %v, want truncated file", err)
	}
	if res != nil {
		t.Fatal("partial result returned")
	}
	var de *midi.DecodeError
	if !errors.As(err, &de) || de.Offset == 0 {
		t.Fatalf("decode error = %+v", de)
	}
}

func TestConvertMissingFile(t *testing.T) {
	_, err := Convert(context.Background(), request(filepath.Join(t.TempDir(), "nope.mid")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestConvertNoPaths(t *testing.T) {
	if _, err := Convert(context.Background(), request()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConvertTimeSignatureMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mid")
	b := filepath.Join(dir, "b.mid")
	writeMIDI(t, a, 480, &score.TimeSignature{Numerator: 3, Denominator: 4}, fixNote{key: 60, vel: 90, off: 480})
	writeMIDI(t, b, 480, nil, fixNote{key: 72, vel: 90, off: 480})

	res, err := Convert(context.Background(), request(a, b))
	if err != nil {
		t.Fatal(err)
	}
	if res.Timeline.TimeSignature != (score.TimeSignature{Numerator: 3, Denominator: 4}) {
		t.Errorf("time signature = %v", res.Timeline.TimeSignature)
	}
	var found bool
	for _, w := range res.Warnings {
		if w.Kind == score.TimeSignatureMismatch && w.Source == "b.mid" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if len(res.Document.Warnings) != len(res.Warnings) {
		t.Errorf("document warnings = %v", res.Document.Warnings)
	}
}

func TestConvertStuckNoteWarningNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lead.mid")
	writeMIDI(t, path, 480, nil,
		fixNote{key: 60, vel: 90, on: 0, off: 960},
		fixNote{key: 60, vel: 90, on: 480, off: 960},
	)

	res, err := Convert(context.Background(), request(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) == 0 || res.Warnings[0].Kind != score.StuckNote || res.Warnings[0].Source != "lead.mid 0:0" {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestConvertTitleFromCatalog(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "daft_punk_get_lucky", "keys.mid")
	writeMIDI(t, path, 480, nil, fixNote{key: 64, vel: 90, off: 480})

	cat := &catalog.Catalog{Songs: []catalog.Song{{Title: "Get Lucky", Artist: "Daft Punk"}}}
	req := request(path)
	req.Catalog = cat
	res, err := Convert(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Document.Title != "Get Lucky" || res.Document.Artist != "Daft Punk" {
		t.Fatalf("title %q artist %q", res.Document.Title, res.Document.Artist)
	}

	req.Title = "Override"
	res, err = Convert(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Document.Title != "Override" || res.Document.Artist != "" {
		t.Fatalf("title %q artist %q", res.Document.Title, res.Document.Artist)
	}
}

func TestConvertCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mid")
	writeMIDI(t, path, 480, nil, fixNote{key: 60, vel: 90, off: 480})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Convert(ctx, request(path)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mid", "a.MID", "notes.txt", "c.midi"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	extra := filepath.Join(t.TempDir(), "solo.mid")
	if err := os.WriteFile(extra, nil, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Inputs([]string{extra, dir})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{extra, filepath.Join(dir, "a.MID"), filepath.Join(dir, "b.mid"), filepath.Join(dir, "c.midi")}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if _, err := Inputs([]string{t.TempDir()}); err == nil {
		t.Error("empty dir should fail")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"lead_synth", "Lead Synth"},
		{"my-song", "My Song"},
		{"DRUMS", "Drums"},
		{"  two  spaces ", "Two Spaces"},
	}
	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := LayerName("/x/y/bass_line.mid"); got != "Bass Line" {
		t.Errorf("LayerName = %q", got)
	}
}
