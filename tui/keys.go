package tui

import "github.com/charmbracelet/bubbles/key"

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	BarLeft    key.Binding
	BarRight   key.Binding
	Home       key.Binding
	PitchUp    key.Binding
	PitchDown  key.Binding
	OctaveUp   key.Binding
	OctaveDown key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	NextLayer  key.Binding
	AllLayers  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	BarLeft:    Key("bar left", "h", "left"),
	BarRight:   Key("bar right", "l", "right"),
	Home:       Key("first bar", "0", "home"),
	PitchUp:    Key("pitch up", "k", "up"),
	PitchDown:  Key("pitch down", "j", "down"),
	OctaveUp:   Key("octave up", "K", "pgup"),
	OctaveDown: Key("octave down", "J", "pgdown"),
	ZoomIn:     Key("zoom in", "+", "="),
	ZoomOut:    Key("zoom out", "-", "_"),
	NextLayer:  Key("next layer", "tab"),
	AllLayers:  Key("all layers", "a"),
	Help:       Key("more keys", "?"),
	Quit:       Key("quit", "q", "ctrl+c", "esc"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.BarLeft, k.BarRight, k.ZoomIn, k.ZoomOut, k.NextLayer, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.BarLeft, k.BarRight, k.Home},
		{k.PitchUp, k.PitchDown, k.OctaveUp, k.OctaveDown},
		{k.ZoomIn, k.ZoomOut, k.NextLayer, k.AllLayers},
		{k.Help, k.Quit},
	}
}
