package midi

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"go-pianoroll/score"
)

const (
	maxVLQBytes    = 4
	chunkHeaderLen = 8
)

// Header is the content of the MThd chunk.
type Header struct {
	Format     uint16
	TrackCount uint16
	Resolution uint16 // ticks per quarter note
}

// Chunk holds the decoded events of one MTrk chunk in file order.
type Chunk struct {
	Index   int
	Offset  int64 // offset of the chunk's magic
	Events  []Event
	EndTick uint32 // tick of end-of-track, or of the last event when missing
}

// File is a decoded Standard MIDI File.
type File struct {
	Name string
	Header
	Chunks []Chunk
}

// DecodeFile reads and decodes the file at path.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	f.Name = path
	return f, nil
}

// Decode parses raw SMF bytes. Any error is a *DecodeError.
func Decode(data []byte) (*File, error) {
	d := &decoder{data: data, chunk: -1}
	hdr, err := d.header()
	if err != nil {
		return nil, err
	}

	f := &File{Header: hdr, Chunks: make([]Chunk, 0, hdr.TrackCount)}
	for i := 0; i < int(hdr.TrackCount); i++ {
		d.chunk = i
		c, err := d.trackChunk()
		if err != nil {
			return nil, err
		}
		c.Index = i
		f.Chunks = append(f.Chunks, c)
	}
	return f, nil
}

type decoder struct {
	data  []byte
	pos   int
	end   int // end of the chunk being decoded
	chunk int
}

func (d *decoder) fail(sentinel error, offset int, format string, args ...any) error {
	return &DecodeError{
		Err:    sentinel,
		Offset: int64(offset),
		Chunk:  d.chunk,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (d *decoder) header() (Header, error) {
	var h Header
	if len(d.data) < chunkHeaderLen || string(d.data[:4]) != "MThd" {
		return h, d.fail(ErrMalformedHeader, 0, "missing MThd identifier")
	}
	length := int(binary.BigEndian.Uint32(d.data[4:8]))
	if length < 6 {
		return h, d.fail(ErrMalformedHeader, 4, "header length %d, want at least 6", length)
	}
	if length > len(d.data)-chunkHeaderLen {
		return h, d.fail(ErrTruncatedFile, 4, "header declares %d bytes, %d remain", length, len(d.data)-chunkHeaderLen)
	}

	body := d.data[chunkHeaderLen:]
	h.Format = binary.BigEndian.Uint16(body[0:2])
	h.TrackCount = binary.BigEndian.Uint16(body[2:4])
	division := binary.BigEndian.Uint16(body[4:6])

	switch {
	case h.Format > 1:
		return h, d.fail(ErrUnsupportedFormat, 8, "format %d", h.Format)
	case h.Format == 0 && h.TrackCount != 1:
		return h, d.fail(ErrMalformedHeader, 10, "format 0 declares %d tracks", h.TrackCount)
	case division&0x8000 != 0:
		return h, d.fail(ErrUnsupportedFormat, 12, "SMPTE time division 0x%04x", division)
	case division == 0:
		return h, d.fail(ErrMalformedHeader, 12, "zero ticks per beat")
	}
	h.Resolution = division

	// Extra header bytes are reserved for future use; skip them.
	d.pos = chunkHeaderLen + length
	return h, nil
}

func (d *decoder) trackChunk() (Chunk, error) {
	start := d.pos
	c := Chunk{Offset: int64(start)}

	if len(d.data)-start < chunkHeaderLen {
		return c, d.fail(ErrTruncatedFile, start, "missing track chunk")
	}
	if string(d.data[start:start+4]) != "MTrk" {
		return c, d.fail(ErrMalformedHeader, start, "chunk id %q, want MTrk", d.data[start:start+4])
	}
	length := int(binary.BigEndian.Uint32(d.data[start+4 : start+8]))
	if length > len(d.data)-start-chunkHeaderLen {
		return c, d.fail(ErrTruncatedFile, start+4, "chunk declares %d bytes, %d remain",
			length, len(d.data)-start-chunkHeaderLen)
	}

	d.pos = start + chunkHeaderLen
	d.end = d.pos + length
	err := d.events(&c)

	// Anything after end-of-track is ignored.
	d.pos = d.end
	return c, err
}

func (d *decoder) events(c *Chunk) error {
	var tick uint32
	var running uint8 // reset per chunk

	for d.pos < d.end {
		offset := d.pos
		delta, err := d.vlq()
		if err != nil {
			return err
		}
		if delta > math.MaxUint32-tick {
			return d.fail(ErrMalformedEvent, offset, "absolute tick overflows")
		}
		tick += delta

		if d.pos >= d.end {
			return d.fail(ErrMalformedEvent, d.pos, "missing status byte")
		}
		status := d.data[d.pos]
		if status&0x80 != 0 {
			d.pos++
		} else {
			if running == 0 {
				return d.fail(ErrMalformedEvent, d.pos, "data byte 0x%02x without running status", status)
			}
			status = running
		}

		switch {
		case status == Meta:
			// Meta events leave running status alone; only SysEx cancels it.
			ev, done, err := d.meta(tick, offset)
			if err != nil {
				return err
			}
			if ev != nil {
				c.Events = append(c.Events, *ev)
			}
			if done {
				c.EndTick = tick
				return nil
			}

		case status == SysEx || status == SysExCont:
			running = 0
			length, err := d.vlq()
			if err != nil {
				return err
			}
			if _, err := d.take(int(length)); err != nil {
				return err
			}

		case status >= 0xF0:
			return d.fail(ErrMalformedEvent, d.pos-1, "unexpected status 0x%02x", status)

		default:
			running = status
			ev, err := d.channel(status, tick, offset)
			if err != nil {
				return err
			}
			if ev != nil {
				c.Events = append(c.Events, *ev)
			}
		}
	}

	c.EndTick = tick
	return nil
}

func (d *decoder) channel(status uint8, tick uint32, offset int) (*Event, error) {
	kind := status & 0xF0
	n := 2
	if kind == 0xC0 || kind == 0xD0 {
		n = 1
	}
	data, err := d.take(n)
	if err != nil {
		return nil, err
	}
	for i, b := range data {
		if b&0x80 != 0 {
			return nil, d.fail(ErrMalformedEvent, d.pos-n+i, "status byte 0x%02x inside channel message", b)
		}
	}

	ev := Event{Tick: tick, Channel: status & 0x0F, Offset: int64(offset)}
	switch kind {
	case NoteOn:
		ev.Pitch, ev.Velocity = data[0], data[1]
		ev.Kind = KindNoteOn
		if ev.Velocity == 0 {
			ev.Kind = KindNoteOff
		}
	case NoteOff:
		ev.Pitch, ev.Velocity = data[0], data[1]
		ev.Kind = KindNoteOff
	default:
		return nil, nil
	}
	return &ev, nil
}

func (d *decoder) meta(tick uint32, offset int) (*Event, bool, error) {
	typ, err := d.take(1)
	if err != nil {
		return nil, false, err
	}
	length, err := d.vlq()
	if err != nil {
		return nil, false, err
	}
	payloadAt := d.pos
	payload, err := d.take(int(length))
	if err != nil {
		return nil, false, err
	}

	ev := Event{Tick: tick, Offset: int64(offset)}
	switch typ[0] {
	case MetaEndOfTrack:
		ev.Kind = KindEndOfTrack
		return &ev, true, nil

	case MetaTempo:
		if len(payload) < 3 {
			return nil, false, d.fail(ErrMalformedEvent, payloadAt, "tempo payload %d bytes, want 3", len(payload))
		}
		ev.Kind = KindTempo
		ev.MicrosPerBeat = uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
		if ev.MicrosPerBeat == 0 {
			return nil, false, d.fail(ErrMalformedEvent, payloadAt, "zero tempo")
		}
		return &ev, false, nil

	case MetaTimeSig:
		if len(payload) < 2 {
			return nil, false, d.fail(ErrMalformedEvent, payloadAt, "time signature payload %d bytes, want 4", len(payload))
		}
		if payload[0] == 0 || payload[1] > 7 {
			return nil, false, d.fail(ErrMalformedEvent, payloadAt, "time signature %d/2^%d", payload[0], payload[1])
		}
		ev.Kind = KindTimeSig
		ev.TimeSig = score.TimeSignature{Numerator: payload[0], Denominator: 1 << payload[1]}
		return &ev, false, nil
	}
	return nil, false, nil
}

// vlq reads a variable-length quantity: 7 bits per byte, high bit set on
// every byte but the last.
func (d *decoder) vlq() (uint32, error) {
	start := d.pos
	var v uint32
	for i := 0; i < maxVLQBytes; i++ {
		if d.pos >= d.end {
			return 0, d.fail(ErrMalformedEvent, start, "variable-length quantity runs past end of chunk")
		}
		b := d.data[d.pos]
		d.pos++
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, d.fail(ErrMalformedEvent, start, "variable-length quantity longer than %d bytes", maxVLQBytes)
}

func (d *decoder) take(n int) ([]byte, error) {
	if n > d.end-d.pos {
		return nil, d.fail(ErrMalformedEvent, d.pos, "event needs %d bytes, %d left in chunk", n, d.end-d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}
