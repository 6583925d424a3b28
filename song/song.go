// Package song runs the whole conversion: per-file decode, pairing and
// classification in parallel, then alignment, layout and emission.
package song

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-pianoroll/align"
	"go-pianoroll/catalog"
	"go-pianoroll/classify"
	"go-pianoroll/debug"
	"go-pianoroll/emit"
	"go-pianoroll/layout"
	"go-pianoroll/midi"
	"go-pianoroll/score"
	"go-pianoroll/timing"
)

var titleCaser = cases.Title(language.English)

// Request describes one song. Paths are MIDI files in layer order.
type Request struct {
	Paths      []string
	Title      string // overrides the catalog and folder name
	Artist     string
	Catalog    *catalog.Catalog
	Classify   classify.Options
	Layout     layout.Options
	MaxWorkers int // 0 = GOMAXPROCS
}

// Result holds every stage's output. Warnings are ordered by input file.
type Result struct {
	Timeline *align.Timeline
	Cells    []layout.Cell
	Document emit.Document
	Roles    []classify.Result // one per layer, same order as Timeline.Layers
	Warnings []score.Warning
}

type prepared struct {
	source   align.Source
	roles    []classify.Result
	warnings []score.Warning
}

// Convert runs the pipeline. Any decode error aborts the whole song; no
// partial result is returned.
func Convert(ctx context.Context, req Request) (*Result, error) {
	if len(req.Paths) == 0 {
		return nil, align.ErrNoSources
	}

	workers := req.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]prepared, len(req.Paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range req.Paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := prepare(path, req.Classify)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	sources := make([]align.Source, len(out))
	for i, p := range out {
		sources[i] = p.source
		res.Roles = append(res.Roles, p.roles...)
		res.Warnings = append(res.Warnings, p.warnings...)
	}

	tl, warnings, err := align.Align(sources)
	if err != nil {
		return nil, err
	}
	res.Timeline = tl
	res.Warnings = append(res.Warnings, warnings...)
	for _, w := range res.Warnings {
		debug.Warn("convert", "%s", w)
	}

	res.Cells = layout.Layout(tl, req.Layout)
	res.Document = emit.Build(meta(req), tl, res.Cells, res.Warnings)

	debug.Log("convert", "%d files, %d layers, %d cells, %d bars",
		len(req.Paths), len(tl.Layers), len(res.Cells), res.Document.Bars)
	if debug.Enabled() {
		for _, l := range res.Document.Layers {
			debug.Log("convert", "layer %q: %s, %d notes, window %d..%d",
				l.Name, l.Role, l.Notes, l.Window.Low, l.Window.High)
		}
	}
	return res, nil
}

// prepare decodes one file and classifies its tracks against each other.
func prepare(path string, opts classify.Options) (prepared, error) {
	f, err := midi.DecodeFile(path)
	if err != nil {
		return prepared{}, fmt.Errorf("%s: %w", path, err)
	}

	name := filepath.Base(path)
	metaEvents := f.MetaEvents()
	p := prepared{
		source: align.Source{
			Name:          name,
			Resolution:    f.Header.Resolution,
			EndTick:       f.EndTick(),
			TimeSignature: timing.TimeSignature(metaEvents),
			Tempo:         timing.NewTempoMap(metaEvents),
		},
	}

	tracks := f.Tracks()
	inputs := make([]classify.Input, len(tracks))
	for i, t := range tracks {
		notes, warnings := timing.Pair(t)
		inputs[i] = classify.Input{ID: t.ID, Channel: t.Channel, Notes: notes}
		p.warnings = append(p.warnings, warnings...)
	}

	results, warnings := classify.Classify(inputs, opts)
	p.warnings = append(p.warnings, warnings...)
	for i := range p.warnings {
		p.warnings[i].Source = name + " " + p.warnings[i].Source
	}

	base := LayerName(path)
	for i, t := range tracks {
		layerName := base
		if len(tracks) > 1 {
			layerName = fmt.Sprintf("%s (track %d, ch %d)", base, t.Chunk, t.Channel+1)
		}
		p.source.Layers = append(p.source.Layers, align.Layer{
			Name:    layerName,
			TrackID: t.ID,
			Role:    results[i].Role,
			Notes:   inputs[i].Notes,
		})
		debug.Log("classify", "%s %s: %s by %s (%d notes, avg %.1f, poly %d)",
			name, t.ID, results[i].Role, results[i].Rule,
			results[i].Stats.NoteCount, results[i].Stats.AveragePitch, results[i].Stats.Polyphony)
	}
	p.roles = results
	return p, nil
}

func meta(req Request) emit.Meta {
	m := emit.Meta{Title: req.Title, Artist: req.Artist, Bars: req.Layout.Bars}
	if m.Title != "" {
		return m
	}

	folder := filepath.Base(filepath.Dir(req.Paths[0]))
	if s, ok := req.Catalog.Lookup(folder); ok {
		m.Title = s.Title
		if m.Artist == "" {
			m.Artist = s.Artist
		}
		return m
	}
	m.Title = Title(folder)
	return m
}

// LayerName title-cases a file's base name: "lead_synth.mid" is "Lead Synth".
func LayerName(path string) string {
	return Title(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Title turns a folder or file stem into display text.
func Title(stem string) string {
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return titleCaser.String(strings.Join(strings.Fields(stem), " "))
}

// Inputs expands directories to the MIDI files they contain, sorted by name.
// Files are passed through in the order given.
func Inputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".mid", ".midi":
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s: no MIDI files", arg)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
