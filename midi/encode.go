package midi

import (
	"bytes"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Encode writes the decoded events back out as a format 1 SMF. Only the
// events Decode keeps survive, so the result is a normalized copy.
func Encode(f *File) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(f.Resolution)

	for _, c := range f.Chunks {
		var tr smf.Track
		var last uint32
		closed := false

		for _, ev := range c.Events {
			delta := ev.Tick - last
			last = ev.Tick

			switch ev.Kind {
			case KindNoteOn:
				tr.Add(delta, gomidi.NoteOn(ev.Channel, ev.Pitch, ev.Velocity))
			case KindNoteOff:
				tr.Add(delta, gomidi.NoteOffVelocity(ev.Channel, ev.Pitch, ev.Velocity))
			case KindTempo:
				tr.Add(delta, tempoMessage(ev.MicrosPerBeat))
			case KindTimeSig:
				tr.Add(delta, smf.MetaMeter(ev.TimeSig.Numerator, ev.TimeSig.Denominator))
			case KindEndOfTrack:
				tr.Close(delta)
				closed = true
			}
		}
		if !closed {
			tr.Close(c.EndTick - last)
		}

		if err := s.Add(tr); err != nil {
			return nil, fmt.Errorf("add track %d: %w", c.Index, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write smf: %w", err)
	}
	return buf.Bytes(), nil
}

// tempoMessage builds the raw meta event so the exact microseconds survive;
// smf.MetaTempo takes BPM as a float.
func tempoMessage(micros uint32) []byte {
	return []byte{Meta, MetaTempo, 0x03, byte(micros >> 16), byte(micros >> 8), byte(micros)}
}
