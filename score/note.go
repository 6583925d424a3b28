package score

import "fmt"

// Note is a NoteOn paired with its closing NoteOff.
// Start and Duration are in beats (quarter notes); Duration is always > 0.
type Note struct {
	Pitch    uint8
	Velocity uint8
	Channel  uint8
	OnTick   uint32
	OffTick  uint32
	Start    float64
	Duration float64
}

// End returns the beat at which the note stops sounding.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// TimeSignature is a meter as written (6/8 is {6, 8}).
type TimeSignature struct {
	Numerator   uint8 `json:"numerator"`
	Denominator uint8 `json:"denominator"`
}

// CommonTime is used when a file declares no time signature.
var CommonTime = TimeSignature{Numerator: 4, Denominator: 4}

// BeatsPerBar returns the bar length in quarter-note beats.
func (ts TimeSignature) BeatsPerBar() float64 {
	if ts.Numerator == 0 || ts.Denominator == 0 {
		return CommonTime.BeatsPerBar()
	}
	return float64(ts.Numerator) * 4 / float64(ts.Denominator)
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}
