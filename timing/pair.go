package timing

import (
	"fmt"
	"sort"

	"go-pianoroll/midi"
	"go-pianoroll/score"
)

type pending struct {
	tick     uint32
	velocity uint8
}

// Pair turns a track's note events into notes.
//
// For each channel and pitch a NoteOn opens a note and the next NoteOff
// closes it. A NoteOn arriving while the note is still open closes the open
// one at its own tick and starts a new one. Notes left open at end-of-track
// close at the track's end tick. Zero-length notes are dropped. Notes are
// returned ordered by start tick, then pitch.
func Pair(track midi.Track) ([]score.Note, []score.Warning) {
	var notes []score.Note
	var warnings []score.Warning
	open := make(map[[2]uint8]pending)
	res := uint32(track.Resolution)

	closeNote := func(key [2]uint8, p pending, off uint32) {
		if off <= p.tick {
			return
		}
		notes = append(notes, score.Note{
			Pitch:    key[1],
			Velocity: p.velocity,
			Channel:  key[0],
			OnTick:   p.tick,
			OffTick:  off,
			Start:    BeatAt(p.tick, res),
			Duration: BeatAt(off-p.tick, res),
		})
	}

	for _, ev := range track.Events {
		key := [2]uint8{ev.Channel, ev.Pitch}
		switch ev.Kind {
		case midi.KindNoteOn:
			if p, ok := open[key]; ok {
				warnings = append(warnings, score.Warning{
					Kind:    score.StuckNote,
					Source:  track.ID,
					Message: fmt.Sprintf("%s re-struck at tick %d before release, truncated", score.PitchName(ev.Pitch), ev.Tick),
				})
				closeNote(key, p, ev.Tick)
			}
			open[key] = pending{tick: ev.Tick, velocity: ev.Velocity}

		case midi.KindNoteOff:
			if p, ok := open[key]; ok {
				closeNote(key, p, ev.Tick)
				delete(open, key)
			}
		}
	}

	if len(open) > 0 {
		// Close leftovers in event order so output stays deterministic.
		for _, ev := range track.Events {
			key := [2]uint8{ev.Channel, ev.Pitch}
			p, ok := open[key]
			if !ok || ev.Kind != midi.KindNoteOn || ev.Tick != p.tick {
				continue
			}
			warnings = append(warnings, score.Warning{
				Kind:    score.StuckNote,
				Source:  track.ID,
				Message: fmt.Sprintf("%s never released, closed at end of track (tick %d)", score.PitchName(ev.Pitch), track.EndTick),
			})
			closeNote(key, p, track.EndTick)
			delete(open, key)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].OnTick != notes[j].OnTick {
			return notes[i].OnTick < notes[j].OnTick
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes, warnings
}
