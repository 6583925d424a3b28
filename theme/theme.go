package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"go-pianoroll/layout"
)

// Palette positions after the five role colors.
const (
	slotBG = iota + 5
	slotFG
	slotGrid
	paletteSize
)

// White is the paper background used for image output.
var White = RGB{255, 255, 255}

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	NoteStart rune // ● note begins in this column
	NoteBody  rune // ─ note continues
	Overlap   rune // ═ several layers sound here
	Empty     rune // · nothing sounding
	BarLine   rune // │ empty column on a bar boundary
	Beyond    rune // - past the rendered range

	LegendSwatch rune // ■
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			NoteStart: '●',
			NoteBody:  '─',
			Overlap:   '═',
			Empty:     '·',
			BarLine:   '│',
			Beyond:    '-',

			LegendSwatch: '■',
		},
	}
}

// Default uses the built-in palette.
func Default() *Theme {
	return New(DefaultPalette())
}

// Role returns the raw color of a layout color.
func (t *Theme) Role(c layout.Color) RGB {
	return t.Palette.Index(int(c))
}

// Cell returns the color of a cell drawn at opacity over bg.
func (t *Theme) Cell(c layout.Color, opacity float64, bg RGB) RGB {
	return Blend(bg, t.Role(c), opacity)
}

// Blend mixes from toward to by amount (0 = from, 1 = to).
func Blend(from, to RGB, amount float64) RGB {
	amount = max(0, min(1, amount))
	c := from.colorful().BlendRgb(to.colorful(), amount).Clamped()
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

// Hex returns #rrggbb.
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

// Style helpers

func (t *Theme) BGRGB() RGB {
	return t.Palette.Index(slotBG)
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(slotFG))
}

func (t *Theme) Grid() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(slotGrid))
}

// Muted sits between background and foreground.
func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(Blend(t.Palette.Index(slotBG), t.Palette.Index(slotFG), 0.45))
}

// Color returns the terminal color for a cell over the theme background.
func (t *Theme) Color(c layout.Color, opacity float64) lipgloss.Color {
	return rgbToLipgloss(t.Cell(c, opacity, t.BGRGB()))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
