// Package align merges classified tracks from one or more files onto a
// shared beat timeline.
package align

import (
	"errors"
	"fmt"
	"math"

	"go-pianoroll/score"
	"go-pianoroll/timing"
)

// maxReference bounds the shared resolution; above it the first file's
// resolution is used and other files are rounded onto it.
const maxReference = 1 << 20

var ErrNoSources = errors.New("no input files")

// Layer is one classified track.
type Layer struct {
	Name    string
	Source  string
	TrackID string
	Role    score.Role
	Notes   []score.Note
}

// Source is one decoded, normalized and classified file.
type Source struct {
	Name          string
	Resolution    uint16
	EndTick       uint32
	TimeSignature score.TimeSignature
	Tempo         timing.TempoMap
	Layers        []Layer
}

// Timeline is the merged result. Note ticks are expressed in Resolution and
// beats are resolution independent.
type Timeline struct {
	Resolution    uint32
	TimeSignature score.TimeSignature
	Tempo         timing.TempoMap
	Length        float64 // beats, longest input wins
	Layers        []Layer
}

// Bars returns how many whole bars cover the timeline.
func (t *Timeline) Bars() int {
	return int(math.Ceil(t.Length / t.TimeSignature.BeatsPerBar()))
}

// Align merges sources in order. The first source's time signature governs
// bar boundaries; any other signature produces a warning.
func Align(sources []Source) (*Timeline, []score.Warning, error) {
	if len(sources) == 0 {
		return nil, nil, ErrNoSources
	}
	for _, s := range sources {
		if s.Resolution == 0 {
			return nil, nil, fmt.Errorf("%s: zero resolution", s.Name)
		}
	}

	first := sources[0]
	ref, exact := referenceResolution(sources)

	tl := &Timeline{
		Resolution:    ref,
		TimeSignature: first.TimeSignature,
	}
	if exact {
		tl.Tempo = first.Tempo.Rescale(ref / uint32(first.Resolution))
	} else {
		tl.Tempo = first.Tempo
	}

	var warnings []score.Warning
	for _, s := range sources {
		if s.TimeSignature != first.TimeSignature {
			warnings = append(warnings, score.Warning{
				Kind:   score.TimeSignatureMismatch,
				Source: s.Name,
				Message: fmt.Sprintf("time signature %v differs from %v in %s, using %v",
					s.TimeSignature, first.TimeSignature, first.Name, first.TimeSignature),
			})
		}

		sc := scaler{from: s.Resolution, to: ref, exact: exact}
		end := s.EndTick
		for _, l := range s.Layers {
			out := l
			out.Source = s.Name
			out.Notes = make([]score.Note, len(l.Notes))
			for i, n := range l.Notes {
				out.Notes[i] = sc.note(n)
				end = max(end, n.OffTick)
			}
			tl.Layers = append(tl.Layers, out)
		}
		tl.Length = max(tl.Length, timing.BeatAt(end, uint32(s.Resolution)))
	}

	return tl, warnings, nil
}

// referenceResolution returns the least common multiple of every input
// resolution, or the first one when that grows past maxReference or would
// overflow scaled ticks.
func referenceResolution(sources []Source) (uint32, bool) {
	ref := uint64(sources[0].Resolution)
	for _, s := range sources[1:] {
		ref = lcm(ref, uint64(s.Resolution))
		if ref > maxReference {
			return uint32(sources[0].Resolution), false
		}
	}

	for _, s := range sources {
		factor := ref / uint64(s.Resolution)
		end := uint64(s.EndTick)
		for _, l := range s.Layers {
			for _, n := range l.Notes {
				end = max(end, uint64(n.OffTick))
			}
		}
		if end*factor > math.MaxUint32 {
			return uint32(sources[0].Resolution), false
		}
	}
	return uint32(ref), true
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b uint64) uint64 {
	return a / gcd(a, b) * b
}

type scaler struct {
	from  uint16
	to    uint32
	exact bool
}

func (sc scaler) tick(t uint32) uint32 {
	if sc.exact {
		return t * (sc.to / uint32(sc.from))
	}
	return uint32(math.Round(float64(t) * float64(sc.to) / float64(sc.from)))
}

// note moves n onto the reference resolution. Beats are derived from the
// rescaled ticks when exact, otherwise from the source ticks so rounding
// never shifts a note.
func (sc scaler) note(n score.Note) score.Note {
	out := n
	out.OnTick, out.OffTick = sc.tick(n.OnTick), sc.tick(n.OffTick)
	if sc.exact {
		out.Start = timing.BeatAt(out.OnTick, sc.to)
		out.Duration = timing.BeatAt(out.OffTick-out.OnTick, sc.to)
		return out
	}
	from := uint32(sc.from)
	out.Start = timing.BeatAt(n.OnTick, from)
	out.Duration = timing.BeatAt(n.OffTick-n.OnTick, from)
	return out
}
