package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"go-pianoroll/catalog"
	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/emit"
	"go-pianoroll/render"
	"go-pianoroll/song"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

func mainE() error {
	fOut := pflag.StringP("out", "o", "", "write the layout to `file` (- for stdout); default saves under the output dir")
	fTitle := pflag.String("title", "", "song title (default: catalog entry or folder name)")
	fArtist := pflag.String("artist", "", "artist name")
	fBars := pflag.Int("bars", 0, "render `n` bars (0 = whole song)")
	fMinOpacity := pflag.Float64("min-opacity", 0, "opacity of the quietest note")
	fNoLabels := pflag.Bool("no-labels", false, "omit pitch labels")
	fCatalog := pflag.String("catalog", "", "songs.json `file` for titles")
	fPNG := pflag.String("png", "", "also draw a piano roll image to `file`")
	fPreview := pflag.Bool("preview", false, "show the result in the terminal")
	fDebug := pflag.Bool("debug", false, "log to ~/.config/go-pianoroll/debug.log")
	fConfig := pflag.String("config", "", "config `file` (default ~/.config/go-pianoroll/config.json)")
	fJobs := pflag.IntP("jobs", "j", 0, "decode up to `n` files at once")
	fPalette := pflag.String("palette", "", "GIMP palette `file` for previews")
	fSaveConfig := pflag.Bool("save-config", false, "store the effective settings as the new defaults")
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		return errors.New("usage: go-pianoroll [flags] <file.mid|dir>...")
	}

	if *fDebug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	cfg, err := loadConfig(*fConfig)
	if err != nil {
		return err
	}
	flags := pflag.CommandLine
	if flags.Changed("bars") {
		cfg.Layout.Bars = *fBars
	}
	if flags.Changed("min-opacity") {
		cfg.Layout.MinOpacity = *fMinOpacity
	}
	if *fNoLabels {
		cfg.Layout.Labels = false
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath = *fCatalog
	}
	if flags.Changed("jobs") {
		cfg.MaxWorkers = *fJobs
	}
	if flags.Changed("palette") {
		cfg.PalettePath = *fPalette
	}
	if *fSaveConfig {
		if err := saveConfig(cfg, *fConfig); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	paths, err := song.Inputs(args)
	if err != nil {
		return err
	}

	req := song.Request{
		Paths:      paths,
		Title:      *fTitle,
		Artist:     *fArtist,
		Classify:   cfg.ClassifyOptions(),
		Layout:     cfg.LayoutOptions(),
		MaxWorkers: cfg.MaxWorkers,
	}
	if cfg.CatalogPath != "" {
		req.Catalog, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := song.Convert(ctx, req)
	if err != nil {
		return err
	}
	doc := res.Document

	written, err := writeDocument(cfg, *fOut, doc)
	if err != nil {
		return err
	}

	th, err := loadTheme(cfg.PalettePath)
	if err != nil {
		return err
	}
	pngPath := *fPNG
	if pngPath == "" && cfg.Output.PNG && written != "" {
		pngPath = strings.TrimSuffix(written, filepath.Ext(written)) + ".png"
	}
	if pngPath != "" {
		if err := render.File(pngPath, &doc, th, render.DefaultOptions()); err != nil {
			return fmt.Errorf("render %s: %w", pngPath, err)
		}
	}

	if written != "" {
		summary(written, doc, len(paths), time.Since(start))
	}
	if *fPreview {
		return tui.Run(&doc, th)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return cfg.SaveFile(path)
	}
	return cfg.Save()
}

func loadTheme(path string) (*theme.Theme, error) {
	if path == "" {
		return theme.Default(), nil
	}
	p, err := theme.LoadGPL(path)
	if err != nil {
		return nil, fmt.Errorf("load palette: %w", err)
	}
	return theme.New(p), nil
}

// writeDocument writes doc and returns the path written, or "" for stdout.
func writeDocument(cfg *config.Config, out string, doc emit.Document) (string, error) {
	switch out {
	case "-":
		return "", emit.Write(os.Stdout, doc)
	case "":
		dir, err := cfg.OutputDir()
		if err != nil {
			return "", err
		}
		return emit.Save(dir, doc.Title, doc)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("open output: %w", err)
	}
	if err := emit.Write(f, doc); err != nil {
		f.Close()
		return "", err
	}
	return out, f.Close()
}

func summary(path string, doc emit.Document, files int, took time.Duration) {
	size := ""
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	length := time.Duration(doc.Seconds * float64(time.Second)).Round(time.Second)

	fmt.Printf("%s\n", doc.Title)
	fmt.Printf("  %d files, %d layers, %s cells, %d bars of %v, %s\n",
		files, len(doc.Layers), humanize.Comma(int64(len(doc.Cells))), doc.Bars, doc.TimeSignature,
		durafmt.Parse(length).LimitFirstN(2))
	for _, l := range doc.Layers {
		fmt.Printf("  %-24s %-8s %s notes\n", l.Name, l.Role, humanize.Comma(int64(l.Notes)))
	}
	if len(doc.Warnings) > 0 {
		fmt.Printf("  %d warnings\n", len(doc.Warnings))
	}
	fmt.Printf("wrote %s (%s) in %s\n", path, size, took.Round(time.Millisecond))
}

func main() {
	if err := mainE(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
