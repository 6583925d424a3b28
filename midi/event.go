package midi

import "go-pianoroll/score"

// MIDI message types
const (
	NoteOff   uint8 = 0x80
	NoteOn    uint8 = 0x90
	SysEx     uint8 = 0xF0
	SysExCont uint8 = 0xF7
	Meta      uint8 = 0xFF
)

// Meta event types we decode; everything else is skipped.
const (
	MetaEndOfTrack uint8 = 0x2F
	MetaTempo      uint8 = 0x51
	MetaTimeSig    uint8 = 0x58
)

// DefaultMicrosPerBeat is the tempo a file has before any tempo event (120 BPM).
const DefaultMicrosPerBeat = 500000

// Kind tags what an Event carries so later stages never look at status bytes.
type Kind uint8

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindTempo
	KindTimeSig
	KindEndOfTrack
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindTempo:
		return "tempo"
	case KindTimeSig:
		return "time-sig"
	case KindEndOfTrack:
		return "end-of-track"
	}
	return "unknown"
}

// Event is one decoded event with its delta resolved to an absolute tick.
// Channel, Pitch and Velocity are set for note events; MicrosPerBeat for
// tempo events; TimeSig for time-signature events.
type Event struct {
	Tick          uint32
	Kind          Kind
	Channel       uint8
	Pitch         uint8
	Velocity      uint8
	MicrosPerBeat uint32
	TimeSig       score.TimeSignature
	Offset        int64 // byte offset of the event's delta-time in the file
}

// IsNote reports whether the event is a NoteOn or NoteOff.
func (e Event) IsNote() bool {
	return e.Kind == KindNoteOn || e.Kind == KindNoteOff
}
