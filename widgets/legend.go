package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderSwatch renders a single colored block
func RenderSwatch(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderSwatch(color), name, desc)
}

// LegendItem is one row of a legend
type LegendItem struct {
	Color [3]uint8
	Name  string
	Desc  string
}

// RenderLegend renders items one per line, names padded to line up
func RenderLegend(items []LegendItem) string {
	width := 0
	for _, it := range items {
		width = max(width, lipgloss.Width(it.Name))
	}
	lines := make([]string, len(items))
	for i, it := range items {
		name := it.Name + strings.Repeat(" ", width-lipgloss.Width(it.Name))
		lines[i] = RenderLegendItem(it.Color, name, it.Desc)
	}
	return strings.Join(lines, "\n")
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
