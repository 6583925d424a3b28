package align

import (
	"errors"
	"testing"

	"go-pianoroll/score"
	"go-pianoroll/timing"
)

func source(name string, res uint16, end uint32, notes ...score.Note) Source {
	return Source{
		Name:          name,
		Resolution:    res,
		EndTick:       end,
		TimeSignature: score.CommonTime,
		Tempo:         timing.NewTempoMap(nil),
		Layers: []Layer{{
			Name:    name,
			TrackID: "0:0",
			Role:    score.Melody,
			Notes:   notes,
		}},
	}
}

func oneBeat(res uint16) score.Note {
	r := uint32(res)
	return score.Note{
		Pitch:    60,
		Velocity: 100,
		OnTick:   0,
		OffTick:  r,
		Start:    0,
		Duration: 1,
	}
}

func TestAlignResolutionIndependence(t *testing.T) {
	tl, warnings, err := Align([]Source{
		source("a.mid", 480, 480, oneBeat(480)),
		source("b.mid", 960, 960, oneBeat(960)),
	})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if tl.Resolution != 960 {
		t.Fatalf("reference resolution = %d, want 960", tl.Resolution)
	}
	if len(tl.Layers) != 2 {
		t.Fatalf("layers = %d", len(tl.Layers))
	}

	a, b := tl.Layers[0].Notes[0], tl.Layers[1].Notes[0]
	if a.Start != b.Start || a.Duration != b.Duration {
		t.Fatalf("a = %+v, b = %+v", a, b)
	}
	if a.Start != 0 || a.Duration != 1 {
		t.Fatalf("note = %+v, want start 0 duration 1", a)
	}
	if a.OnTick != b.OnTick || a.OffTick != 960 {
		t.Fatalf("ticks a = %d..%d, b = %d..%d", a.OnTick, a.OffTick, b.OnTick, b.OffTick)
	}
	if tl.Layers[0].Source != "a.mid" || tl.Layers[1].Source != "b.mid" {
		t.Fatalf("sources = %q, %q", tl.Layers[0].Source, tl.Layers[1].Source)
	}
}

func TestAlignCoprimeResolutions(t *testing.T) {
	n := score.Note{Pitch: 50, Velocity: 90, OnTick: 96, OffTick: 192}
	m := score.Note{Pitch: 50, Velocity: 90, OnTick: 120, OffTick: 240}
	tl, _, err := Align([]Source{
		source("a", 96, 192, n),
		source("b", 120, 240, m),
	})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Resolution != 480 {
		t.Fatalf("resolution = %d, want lcm 480", tl.Resolution)
	}
	for _, l := range tl.Layers {
		got := l.Notes[0]
		if got.Start != 1 || got.Duration != 1 || got.OnTick != 480 {
			t.Fatalf("%s note = %+v", l.Name, got)
		}
	}
}

func TestAlignLengthIsLongestFile(t *testing.T) {
	long := oneBeat(480)
	long.OnTick, long.OffTick = 480*6, 480*7
	tl, _, err := Align([]Source{
		source("short", 480, 480, oneBeat(480)),
		source("long", 480, 480*8, long),
	})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Length != 8 {
		t.Fatalf("length = %v, want 8", tl.Length)
	}
	if tl.Bars() != 2 {
		t.Fatalf("bars = %d, want 2", tl.Bars())
	}
	if len(tl.Layers[0].Notes) != 1 {
		t.Fatal("shorter file must not lose notes")
	}
}

func TestAlignLengthCoversNotesPastEndOfTrack(t *testing.T) {
	n := oneBeat(480)
	n.OnTick, n.OffTick = 480*4, 480*5
	tl, _, err := Align([]Source{source("a", 480, 480, n)})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Length != 5 || tl.Bars() != 2 {
		t.Fatalf("length = %v bars = %d", tl.Length, tl.Bars())
	}
}

func TestAlignTimeSignatureMismatch(t *testing.T) {
	a := source("a", 480, 480, oneBeat(480))
	b := source("b", 480, 480, oneBeat(480))
	b.TimeSignature = score.TimeSignature{Numerator: 3, Denominator: 4}

	tl, warnings, err := Align([]Source{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if tl.TimeSignature != score.CommonTime {
		t.Fatalf("time signature = %v, first file must govern", tl.TimeSignature)
	}
	if len(warnings) != 1 || warnings[0].Kind != score.TimeSignatureMismatch || warnings[0].Source != "b" {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestAlignNoSources(t *testing.T) {
	if _, _, err := Align(nil); !errors.Is(err, ErrNoSources) {
		t.Fatalf("err = %v", err)
	}
}

func TestAlignDoesNotMutateInput(t *testing.T) {
	src := source("a", 480, 480, oneBeat(480))
	other := source("b", 960, 960, oneBeat(960))
	if _, _, err := Align([]Source{src, other}); err != nil {
		t.Fatal(err)
	}
	if src.Layers[0].Notes[0].OffTick != 480 {
		t.Fatalf("input note rescaled in place: %+v", src.Layers[0].Notes[0])
	}
}

func TestReferenceResolutionFallback(t *testing.T) {
	// 32749 and 32719 are prime, so their lcm exceeds the cap.
	n := score.Note{Pitch: 60, Velocity: 100, OnTick: 32749, OffTick: 2 * 32749}
	m := score.Note{Pitch: 60, Velocity: 100, OnTick: 32719, OffTick: 2 * 32719}
	tl, _, err := Align([]Source{
		source("a", 32749, 2*32749, n),
		source("b", 32719, 2*32719, m),
	})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Resolution != 32749 {
		t.Fatalf("resolution = %d, want first file's", tl.Resolution)
	}
	for _, l := range tl.Layers {
		if got := l.Notes[0]; got.Start != 1 || got.Duration != 1 {
			t.Fatalf("%s note = %+v", l.Name, got)
		}
	}
}
