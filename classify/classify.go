// Package classify assigns an instrument role to each track from its channel,
// pitch range and polyphony.
package classify

import (
	"fmt"
	"sort"

	"go-pianoroll/score"
)

// Defaults match General MIDI and the ranges the role heuristics were tuned on.
const (
	DefaultPercussionChannel = 9  // channel 10, zero-based
	DefaultBassCeiling       = 51 // D#3; E3 and above is no longer bass
	DefaultChordPolyphony    = 3
)

// Options tunes the rule thresholds.
type Options struct {
	PercussionChannel uint8
	BassCeiling       uint8
	ChordPolyphony    int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		PercussionChannel: DefaultPercussionChannel,
		BassCeiling:       DefaultBassCeiling,
		ChordPolyphony:    DefaultChordPolyphony,
	}
}

// Input is one track's notes as seen by the classifier.
type Input struct {
	ID      string
	Channel uint8
	Notes   []score.Note
}

// Stats are the per-track measurements the rules look at.
type Stats struct {
	Channel      uint8
	NoteCount    int
	MinPitch     uint8
	MaxPitch     uint8
	AveragePitch float64
	Polyphony    int
}

// Measure computes Stats for a track.
func Measure(in Input) Stats {
	s := Stats{Channel: in.Channel, NoteCount: len(in.Notes)}
	if len(in.Notes) == 0 {
		return s
	}
	s.MinPitch, s.MaxPitch = 127, 0
	var sum int
	for _, n := range in.Notes {
		s.MinPitch = min(s.MinPitch, n.Pitch)
		s.MaxPitch = max(s.MaxPitch, n.Pitch)
		sum += int(n.Pitch)
	}
	s.AveragePitch = float64(sum) / float64(len(in.Notes))
	s.Polyphony = PeakPolyphony(in.Notes)
	return s
}

// PeakPolyphony returns the largest number of notes sounding at once. Notes
// are half-open intervals, so a note ending where another starts does not
// overlap it.
func PeakPolyphony(notes []score.Note) int {
	type boundary struct {
		tick  uint32
		delta int
	}
	bounds := make([]boundary, 0, 2*len(notes))
	for _, n := range notes {
		bounds = append(bounds, boundary{n.OnTick, +1}, boundary{n.OffTick, -1})
	}
	sort.Slice(bounds, func(i, j int) bool {
		if bounds[i].tick != bounds[j].tick {
			return bounds[i].tick < bounds[j].tick
		}
		return bounds[i].delta < bounds[j].delta // ends first
	})

	active, peak := 0, 0
	for _, b := range bounds {
		active += b.delta
		peak = max(peak, active)
	}
	return peak
}

// Result is the role given to one input track.
type Result struct {
	ID    string
	Role  score.Role
	Rule  string
	Stats Stats
}

// Classify assigns exactly one role to each of the sibling tracks, in input
// order. Siblings are analyzed together because the melody rule compares
// them against each other.
func Classify(inputs []Input, opts Options) ([]Result, []score.Warning) {
	results := make([]Result, len(inputs))
	var warnings []score.Warning

	for i, in := range inputs {
		st := Measure(in)
		results[i] = Result{ID: in.ID, Stats: st}
		if st.NoteCount == 0 && st.Channel != opts.PercussionChannel {
			results[i].Role, results[i].Rule = score.Melody, "empty"
			warnings = append(warnings, score.Warning{
				Kind:    score.ClassificationAmbiguous,
				Source:  in.ID,
				Message: "track has no notes, defaulting to melody",
			})
			continue
		}
		results[i].Role = -1
		for _, r := range Rules {
			if r.Match(st, opts) {
				results[i].Role, results[i].Rule = r.Role, r.Name
				break
			}
		}
	}

	melody, tied := pickMelody(results)
	for i := range results {
		if results[i].Role >= 0 {
			continue
		}
		if i == melody {
			results[i].Role, results[i].Rule = score.Melody, "highest-average"
		} else {
			results[i].Role, results[i].Rule = score.Harmony, "fallback"
		}
	}
	if len(tied) > 1 {
		warnings = append(warnings, score.Warning{
			Kind:    score.ClassificationAmbiguous,
			Source:  results[melody].ID,
			Message: fmt.Sprintf("tracks %v share the highest average pitch, earliest chosen as melody", tied),
		})
	}
	return results, warnings
}

// pickMelody returns the index of the unassigned track with the highest
// average pitch (earliest on ties) and the IDs of every track on that average.
func pickMelody(results []Result) (int, []string) {
	best := -1
	for i, r := range results {
		if r.Role >= 0 {
			continue
		}
		if best < 0 || r.Stats.AveragePitch > results[best].Stats.AveragePitch {
			best = i
		}
	}
	if best < 0 {
		return -1, nil
	}

	var tied []string
	for _, r := range results {
		if r.Role < 0 && r.Stats.AveragePitch == results[best].Stats.AveragePitch {
			tied = append(tied, r.ID)
		}
	}
	return best, tied
}
