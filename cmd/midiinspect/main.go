package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"go-pianoroll/classify"
	"go-pianoroll/config"
	"go-pianoroll/emit"
	"go-pianoroll/midi"
	"go-pianoroll/score"
	"go-pianoroll/timing"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "events":
		err = dumpEvents(os.Args[2:])
	case "tracks":
		err = listTracks(os.Args[2:])
	case "normalize":
		err = normalize(os.Args[2:])
	case "layouts":
		err = listLayouts(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI inspection tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  events <file> [--chunk n]  - Dump decoded events")
	fmt.Println("  tracks <file>              - Show tracks with their role")
	fmt.Println("  normalize <in> <out>       - Rewrite as a clean format 1 file")
	fmt.Println("  layouts [dir]              - List saved layout documents")
}

func dumpEvents(args []string) error {
	fs := pflag.NewFlagSet("events", pflag.ContinueOnError)
	fChunk := fs.Int("chunk", -1, "only dump chunk `n`")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: midiinspect events <file>")
	}

	f, err := midi.DecodeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("format %d, %d chunks, %d ticks per beat\n", f.Format, f.TrackCount, f.Resolution)

	for _, c := range f.Chunks {
		if *fChunk >= 0 && c.Index != *fChunk {
			continue
		}
		fmt.Printf("\n=== chunk %d @%#x (%d events, end %d) ===\n", c.Index, c.Offset, len(c.Events), c.EndTick)
		deltas := midi.Deltas(c.Events)
		for i, ev := range c.Events {
			fmt.Printf("  %8d +%-6d %s\n", ev.Tick, deltas[i], describe(ev))
		}
	}
	return nil
}

func describe(ev midi.Event) string {
	switch ev.Kind {
	case midi.KindNoteOn:
		return fmt.Sprintf("ch%-2d note on  %-4s vel %d", ev.Channel+1, score.PitchName(ev.Pitch), ev.Velocity)
	case midi.KindNoteOff:
		return fmt.Sprintf("ch%-2d note off %-4s", ev.Channel+1, score.PitchName(ev.Pitch))
	case midi.KindTempo:
		return fmt.Sprintf("tempo %.2f bpm", 60e6/float64(ev.MicrosPerBeat))
	case midi.KindTimeSig:
		return fmt.Sprintf("time signature %v", ev.TimeSig)
	case midi.KindEndOfTrack:
		return "end of track"
	}
	return fmt.Sprintf("kind %d", ev.Kind)
}

func listTracks(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: midiinspect tracks <file>")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f, err := midi.DecodeFile(args[0])
	if err != nil {
		return err
	}
	meta := f.MetaEvents()
	tempo := timing.NewTempoMap(meta)
	fmt.Printf("%s: %v, %.1f bpm, %s\n", args[0], timing.TimeSignature(meta), tempo.BPM(),
		tempo.Duration(f.EndTick(), uint32(f.Resolution)).Round(time.Millisecond))

	tracks := f.Tracks()
	inputs := make([]classify.Input, len(tracks))
	var warnings []score.Warning
	for i, t := range tracks {
		notes, w := timing.Pair(t)
		inputs[i] = classify.Input{ID: t.ID, Channel: t.Channel, Notes: notes}
		warnings = append(warnings, w...)
	}
	results, w := classify.Classify(inputs, cfg.ClassifyOptions())
	warnings = append(warnings, w...)

	fmt.Printf("\n  %-6s %-4s %-8s %-18s %6s %-9s %4s\n", "track", "ch", "role", "rule", "notes", "range", "poly")
	for i, r := range results {
		st := r.Stats
		span := "-"
		if st.NoteCount > 0 {
			span = score.PitchName(st.MinPitch) + "-" + score.PitchName(st.MaxPitch)
		}
		fmt.Printf("  %-6s %-4d %-8s %-18s %6s %-9s %4d\n",
			r.ID, tracks[i].Channel+1, r.Role, r.Rule, humanize.Comma(int64(st.NoteCount)), span, st.Polyphony)
	}
	for _, w := range warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

func normalize(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: midiinspect normalize <in> <out>")
	}
	f, err := midi.DecodeFile(args[0])
	if err != nil {
		return err
	}
	data, err := midi.Encode(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s, %d chunks)\n", args[1], humanize.Bytes(uint64(len(data))), len(f.Chunks))
	return nil
}

func listLayouts(args []string) error {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	} else {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if dir, err = cfg.OutputDir(); err != nil {
			return err
		}
	}

	saved, err := emit.List(dir)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Printf("no layouts in %s\n", dir)
		return nil
	}
	for _, s := range saved {
		doc, err := emit.Load(s.Path)
		if err != nil {
			fmt.Printf("  %-32s unreadable: %v\n", s.Name, err)
			continue
		}
		fmt.Printf("  %-32s %3d bars %5s cells  %8s  %s\n",
			s.Name, doc.Bars, humanize.Comma(int64(len(doc.Cells))), humanize.Bytes(uint64(s.Size)), humanize.Time(s.Modified))
	}
	return nil
}
