package layout

import (
	"fmt"

	"go-pianoroll/score"
)

// Color is the role-derived fill of a cell. Renderers map it to actual RGB.
type Color int

const (
	Red Color = iota
	Blue
	Green
	Purple
	Orange
)

var colorNames = [...]string{"red", "blue", "green", "purple", "orange"}

// roleColors is fixed; a role always renders in the same color.
var roleColors = map[score.Role]Color{
	score.Drum:    Red,
	score.Bass:    Blue,
	score.Chord:   Green,
	score.Melody:  Purple,
	score.Harmony: Orange,
}

// ColorFor returns the color used for a role.
func ColorFor(r score.Role) Color {
	if c, ok := roleColors[r]; ok {
		return c
	}
	return Purple
}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("color(%d)", int(c))
	}
	return colorNames[c]
}

func (c Color) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(colorNames) {
		return nil, fmt.Errorf("unknown color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	for i, name := range colorNames {
		if name == string(b) {
			*c = Color(i)
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", b)
}
