package score

import "fmt"

// Role is the semantic instrument classification of a track.
type Role int

const (
	Drum Role = iota
	Bass
	Chord
	Melody
	Harmony
)

var roleNames = [...]string{"drum", "bass", "chord", "melody", "harmony"}

// Roles lists every role in display order.
var Roles = []Role{Drum, Bass, Chord, Melody, Harmony}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// MarshalText encodes the role by name so JSON output stays readable.
func (r Role) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(roleNames) {
		return nil, fmt.Errorf("unknown role %d", int(r))
	}
	return []byte(roleNames[r]), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	for i, name := range roleNames {
		if name == string(b) {
			*r = Role(i)
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", b)
}
