package timing

import (
	"go-pianoroll/midi"
	"go-pianoroll/score"
)

// BeatAt converts an absolute tick to beats. Tempo plays no part: the grid
// is beat-based.
func BeatAt(tick, resolution uint32) float64 {
	return float64(tick) / float64(resolution)
}

// TimeSignature returns the first time signature declared in the events,
// or 4/4 when there is none.
func TimeSignature(events []midi.Event) score.TimeSignature {
	for _, ev := range events {
		if ev.Kind == midi.KindTimeSig {
			return ev.TimeSig
		}
	}
	return score.CommonTime
}
