// Package render draws a layout document as a PNG piano roll, one panel
// per layer stacked top to bottom.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"go-pianoroll/emit"
	"go-pianoroll/layout"
	"go-pianoroll/score"
	"go-pianoroll/theme"
)

const (
	margin      = 20.0
	gutter      = 44.0 // pitch labels
	panelHeader = 22.0
	panelGap    = 14.0
	footer      = 24.0

	minNoteBeats = 0.15 // shortest drawn note, so one-tick hits stay visible
)

type Options struct {
	Width     int     // image width in pixels
	RowHeight float64 // pixels per semitone
	FontSize  float64
}

func DefaultOptions() Options {
	return Options{Width: 1600, RowHeight: 10, FontSize: 10}
}

// panel is one layer's area on the page.
type panel struct {
	layer     int
	top       float64
	low, high uint8
}

type page struct {
	doc    *emit.Document
	th     *theme.Theme
	opts   Options
	panels []panel
	xScale float64 // pixels per beat
	height float64
}

func newPage(doc *emit.Document, th *theme.Theme, opts Options) *page {
	p := &page{doc: doc, th: th, opts: opts}
	beats := math.Max(1, float64(doc.Bars)*doc.BeatsPerBar)
	p.xScale = (float64(opts.Width) - gutter - 2*margin) / beats

	y := margin
	for i, l := range doc.Layers {
		rows := float64(int(l.Window.High)-int(l.Window.Low)) + 1
		p.panels = append(p.panels, panel{layer: i, top: y, low: l.Window.Low, high: l.Window.High})
		y += panelHeader + rows*opts.RowHeight + panelGap
	}
	p.height = y + footer
	return p
}

// PNG draws doc and encodes it to w.
func PNG(w io.Writer, doc *emit.Document, th *theme.Theme, opts Options) error {
	dc, err := Draw(doc, th, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// File draws doc into a PNG file at path.
func File(path string, doc *emit.Document, th *theme.Theme, opts Options) error {
	dc, err := Draw(doc, th, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

// Draw renders doc onto a new context.
func Draw(doc *emit.Document, th *theme.Theme, opts Options) (*gg.Context, error) {
	if opts.Width <= int(gutter+2*margin) || opts.RowHeight <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%g", opts.Width, opts.RowHeight)
	}
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	p := newPage(doc, th, opts)
	dc := gg.NewContext(opts.Width, int(math.Ceil(p.height)))
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: opts.FontSize}))

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, pn := range p.panels {
		p.drawGrid(dc, pn)
	}
	for _, c := range doc.Cells {
		if c.Layer < 0 || c.Layer >= len(p.panels) {
			continue
		}
		p.drawCell(dc, p.panels[c.Layer], c)
	}
	p.drawBarNumbers(dc)
	return dc, nil
}

func (p *page) x(beat float64) float64 {
	return margin + gutter + beat*p.xScale
}

// y returns the top edge of a pitch row; higher pitches sit higher.
func (p *page) y(pn panel, pitch uint8) float64 {
	return pn.top + panelHeader + float64(int(pn.high)-int(pitch))*p.opts.RowHeight
}

func (p *page) drawGrid(dc *gg.Context, pn panel) {
	l := p.doc.Layers[pn.layer]
	beats := float64(p.doc.Bars) * p.doc.BeatsPerBar
	bottom := p.y(pn, pn.low) + p.opts.RowHeight

	// Title
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString(fmt.Sprintf("%s (%s)", l.Name, l.Role), margin, pn.top+panelHeader-7)

	// Black key rows
	for pitch := int(pn.low); pitch <= int(pn.high); pitch++ {
		pt := uint8(pitch)
		y := p.y(pn, pt)
		if score.IsBlackKey(pt) {
			dc.SetRGBA(0, 0, 0, 0.05)
			dc.DrawRectangle(p.x(0), y, beats*p.xScale, p.opts.RowHeight)
			dc.Fill()
		}
		if pt%12 == 0 || pitch == int(pn.low) {
			label := score.PitchName(pt)
			if l.Role == score.Drum {
				if name := score.DrumName(pt); name != "" {
					label = name
				}
			}
			dc.SetRGBA(0, 0, 0, 0.6)
			dc.DrawStringAnchored(label, margin+gutter-4, y+p.opts.RowHeight/2, 1, 0.35)
		}
	}

	// Beat and bar lines
	for b := 0.0; b <= beats+1e-9; b++ {
		onBar := math.Mod(b, p.doc.BeatsPerBar) < 1e-9
		if onBar {
			dc.SetRGBA(0, 0, 0, 0.45)
			dc.SetLineWidth(1)
		} else {
			dc.SetRGBA(0, 0, 0, 0.12)
			dc.SetLineWidth(0.5)
		}
		dc.DrawLine(p.x(b), pn.top+panelHeader, p.x(b), bottom)
		dc.Stroke()
	}

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.SetLineWidth(1)
	dc.DrawRectangle(p.x(0), pn.top+panelHeader, beats*p.xScale, bottom-pn.top-panelHeader)
	dc.Stroke()
}

func (p *page) drawCell(dc *gg.Context, pn panel, c layout.Cell) {
	if c.PitchRow < pn.low || c.PitchRow > pn.high {
		return
	}
	col := p.th.Cell(c.Color, c.Opacity, theme.White)
	x, y := p.x(c.Start(p.doc.BeatsPerBar)), p.y(pn, c.PitchRow)
	w, h := max(c.Width, minNoteBeats)*p.xScale, p.opts.RowHeight

	dc.DrawRoundedRectangle(x, y+0.5, w, h-1, 2)
	dc.SetRGB255(int(col[0]), int(col[1]), int(col[2]))
	dc.FillPreserve()
	dc.SetRGBA(0, 0, 0, 0.7)
	dc.SetLineWidth(0.5)
	dc.Stroke()

	label := c.Label
	if c.DrumName != "" {
		label = c.DrumName
	}
	if label != "" {
		if tw, _ := dc.MeasureString(label); tw+4 <= w {
			dc.SetRGB(1, 1, 1)
			dc.DrawStringAnchored(label, x+2, y+h/2, 0, 0.35)
		}
	}
}

func (p *page) drawBarNumbers(dc *gg.Context) {
	if len(p.panels) == 0 {
		return
	}
	last := p.panels[len(p.panels)-1]
	y := p.y(last, last.low) + p.opts.RowHeight + 14
	dc.SetRGBA(0, 0, 0, 0.7)
	for bar := 0; bar < p.doc.Bars; bar++ {
		dc.DrawStringAnchored(fmt.Sprint(bar+1), p.x(float64(bar)*p.doc.BeatsPerBar)+3, y, 0, 0)
	}
}
