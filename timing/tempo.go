package timing

import (
	"sort"
	"time"

	"go-pianoroll/midi"
)

// TempoChange sets the tempo from Tick onward.
type TempoChange struct {
	Tick          uint32 `json:"tick"`
	MicrosPerBeat uint32 `json:"microsPerBeat"`
}

// TempoMap is a piecewise tempo, strictly increasing in tick and always
// starting at tick 0. It only feeds informational wall-clock figures; beat
// positions never depend on it.
type TempoMap []TempoChange

// NewTempoMap builds a map from tempo events. A later event at the same tick
// replaces an earlier one; a file without a tempo at tick 0 gets 120 BPM there.
func NewTempoMap(events []midi.Event) TempoMap {
	var tempos []midi.Event
	for _, ev := range events {
		if ev.Kind == midi.KindTempo {
			tempos = append(tempos, ev)
		}
	}
	sort.SliceStable(tempos, func(i, j int) bool {
		return tempos[i].Tick < tempos[j].Tick
	})

	m := TempoMap{{Tick: 0, MicrosPerBeat: midi.DefaultMicrosPerBeat}}
	for _, ev := range tempos {
		last := &m[len(m)-1]
		if ev.Tick == last.Tick {
			last.MicrosPerBeat = ev.MicrosPerBeat
			continue
		}
		m = append(m, TempoChange{Tick: ev.Tick, MicrosPerBeat: ev.MicrosPerBeat})
	}
	return m
}

// BPM returns the tempo in effect at tick 0.
func (m TempoMap) BPM() float64 {
	if len(m) == 0 {
		return 60e6 / midi.DefaultMicrosPerBeat
	}
	return 60e6 / float64(m[0].MicrosPerBeat)
}

// Duration returns the wall-clock time from tick 0 to tick.
func (m TempoMap) Duration(tick, resolution uint32) time.Duration {
	if resolution == 0 {
		return 0
	}
	if len(m) == 0 {
		m = TempoMap{{MicrosPerBeat: midi.DefaultMicrosPerBeat}}
	}

	var micros float64
	for i, tc := range m {
		if tc.Tick >= tick {
			break
		}
		segEnd := tick
		if i+1 < len(m) && m[i+1].Tick < tick {
			segEnd = m[i+1].Tick
		}
		micros += float64(segEnd-tc.Tick) / float64(resolution) * float64(tc.MicrosPerBeat)
	}
	return time.Duration(micros * float64(time.Microsecond))
}

// Rescale returns a copy with ticks multiplied by factor.
func (m TempoMap) Rescale(factor uint32) TempoMap {
	out := make(TempoMap, len(m))
	for i, tc := range m {
		out[i] = TempoChange{Tick: tc.Tick * factor, MicrosPerBeat: tc.MicrosPerBeat}
	}
	return out
}
