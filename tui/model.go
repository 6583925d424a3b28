package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"

	"go-pianoroll/emit"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

const labelWidth = 5

type Model struct {
	Doc      *emit.Document
	Theme    *theme.Theme
	roll     *roll
	help     help.Model
	view     Viewport
	scale    int // index into ViewScales
	width    int
	height   int
	quitting bool
}

func NewModel(doc *emit.Document, th *theme.Theme) Model {
	m := Model{
		Doc:    doc,
		Theme:  th,
		roll:   newRoll(doc),
		help:   help.New(),
		scale:  1,
		width:  80,
		height: 24,
	}
	m.view = Viewport{Scale: ViewScales[m.scale], Layer: -1, Top: 72}
	if _, hi, ok := m.roll.pitchSpan(); ok {
		m.view.Top = min(127, hi+1)
	}
	m.resize()
	return m
}

// Run shows the preview until the user quits.
func Run(doc *emit.Document, th *theme.Theme) error {
	_, err := tea.NewProgram(NewModel(doc, th), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) resize() {
	m.view.Cols = max(8, m.width-labelWidth)
	m.view.Rows = max(4, m.height-m.chromeHeight())
}

// chromeHeight counts the lines around the grid.
func (m Model) chromeHeight() int {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 4
	}
	return 1 + 1 + 1 + len(m.Doc.Layers) + helpLines + 1
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tea.KeyMsg:
		bar := m.Doc.BeatsPerBar
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.BarLeft):
			m.view.Start = max(0, m.view.Start-bar)
		case key.Matches(msg, keys.BarRight):
			if m.view.Start+bar < m.roll.end {
				m.view.Start += bar
			}
		case key.Matches(msg, keys.Home):
			m.view.Start = 0

		case key.Matches(msg, keys.PitchUp):
			m.view.Top = min(127, m.view.Top+1)
		case key.Matches(msg, keys.PitchDown):
			if int(m.view.Top) >= m.view.Rows {
				m.view.Top--
			}
		case key.Matches(msg, keys.OctaveUp):
			m.view.Top = uint8(min(127, int(m.view.Top)+12))
		case key.Matches(msg, keys.OctaveDown):
			m.view.Top = uint8(min(127, max(m.view.Rows-1, int(m.view.Top)-12)))

		case key.Matches(msg, keys.ZoomOut):
			if m.scale < len(ViewScales)-1 {
				m.scale++
			}
			m.view.Scale = ViewScales[m.scale]
		case key.Matches(msg, keys.ZoomIn):
			if m.scale > 0 {
				m.scale--
			}
			m.view.Scale = ViewScales[m.scale]

		case key.Matches(msg, keys.NextLayer):
			m.view.Layer++
			if m.view.Layer >= len(m.Doc.Layers) {
				m.view.Layer = -1
			}
		case key.Matches(msg, keys.AllLayers):
			m.view.Layer = -1

		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var out strings.Builder
	out.WriteString(headerStyle.Render(m.header()))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.status()))
	out.WriteString("\n\n")
	out.WriteString(strings.Join(m.roll.Render(m.Theme, m.view), "\n"))
	out.WriteString("\n")
	out.WriteString(m.legend())
	out.WriteString("\n")
	out.WriteString(m.help.View(keys))
	return out.String()
}

func (m Model) header() string {
	d := m.Doc
	title := d.Title
	if d.Artist != "" {
		title += " - " + d.Artist
	}
	length := time.Duration(d.Seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%s  %v  %.0fbpm  %d bars  %s",
		title, d.TimeSignature, d.BPM, d.Bars, durafmt.Parse(length).LimitFirstN(2))
}

func (m Model) status() string {
	bar := int(m.view.Start/m.Doc.BeatsPerBar) + 1
	layer := "all layers"
	if m.view.Layer >= 0 {
		layer = m.Doc.Layers[m.view.Layer].Name
	}
	return fmt.Sprintf("bar %d  %g beat/col  %s", bar, m.view.Scale, layer)
}

func (m Model) legend() string {
	items := make([]widgets.LegendItem, len(m.Doc.Layers))
	for i, l := range m.Doc.Layers {
		items[i] = widgets.LegendItem{
			Color: m.Theme.Role(l.Color),
			Name:  l.Name,
			Desc:  fmt.Sprintf("%s, %d notes", l.Role, l.Notes),
		}
	}
	return widgets.RenderLegend(items)
}
