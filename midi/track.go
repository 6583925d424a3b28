package midi

import (
	"fmt"
	"sort"
)

// Track is the note stream of one channel within one chunk. A format 0 file
// yields one Track per channel it uses.
type Track struct {
	ID         string
	Chunk      int
	Channel    uint8
	Events     []Event // note events only, in tick order
	EndTick    uint32
	Resolution uint16
}

// Tracks splits every chunk into per-channel tracks, ordered by chunk and
// then channel. Chunks without note events (conductor tracks) yield nothing.
func (f *File) Tracks() []Track {
	var tracks []Track
	for _, c := range f.Chunks {
		byChannel := make(map[uint8][]Event)
		for _, ev := range c.Events {
			if ev.IsNote() {
				byChannel[ev.Channel] = append(byChannel[ev.Channel], ev)
			}
		}

		channels := make([]int, 0, len(byChannel))
		for ch := range byChannel {
			channels = append(channels, int(ch))
		}
		sort.Ints(channels)

		for _, ch := range channels {
			tracks = append(tracks, Track{
				ID:         fmt.Sprintf("%d:%d", c.Index, ch),
				Chunk:      c.Index,
				Channel:    uint8(ch),
				Events:     byChannel[uint8(ch)],
				EndTick:    c.EndTick,
				Resolution: f.Resolution,
			})
		}
	}
	return tracks
}

// MetaEvents returns tempo and time-signature events from every chunk,
// ordered by tick. Events at the same tick keep chunk order.
func (f *File) MetaEvents() []Event {
	var meta []Event
	for _, c := range f.Chunks {
		for _, ev := range c.Events {
			if ev.Kind == KindTempo || ev.Kind == KindTimeSig {
				meta = append(meta, ev)
			}
		}
	}
	sort.SliceStable(meta, func(i, j int) bool {
		return meta[i].Tick < meta[j].Tick
	})
	return meta
}

// EndTick returns the latest end-of-track tick across chunks.
func (f *File) EndTick() uint32 {
	var end uint32
	for _, c := range f.Chunks {
		end = max(end, c.EndTick)
	}
	return end
}

// Deltas re-derives the delta-time sequence of events in file order.
func Deltas(events []Event) []uint32 {
	deltas := make([]uint32, len(events))
	var last uint32
	for i, ev := range events {
		deltas[i] = ev.Tick - last
		last = ev.Tick
	}
	return deltas
}
