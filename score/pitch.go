package score

import "fmt"

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName converts a MIDI pitch to scientific pitch notation.
// Middle C (60) is C4, so pitch 0 is C-1.
func PitchName(pitch uint8) string {
	octave := int(pitch)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[pitch%12], octave)
}

// IsBlackKey reports whether the pitch falls on a sharp/flat key.
func IsBlackKey(pitch uint8) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// General MIDI percussion key map (channel 10).
var drumNames = map[uint8]string{
	35: "Kick",
	36: "Kick",
	37: "Side Stick",
	38: "Snare",
	39: "Clap",
	40: "Snare",
	41: "Tom Low",
	42: "Hi-Hat Closed",
	43: "Tom Low-Mid",
	44: "Hi-Hat Pedal",
	45: "Tom Mid",
	46: "Hi-Hat Open",
	47: "Tom Mid-High",
	48: "Tom High",
	49: "Crash",
	51: "Ride",
	52: "Crash China",
	53: "Ride Bell",
	54: "Tambourine",
	55: "Splash",
	56: "Cowbell",
	57: "Crash",
	59: "Ride",
}

// DrumName returns the General MIDI instrument for a percussion key, or "".
func DrumName(pitch uint8) string {
	return drumNames[pitch]
}
