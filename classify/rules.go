package classify

import "go-pianoroll/score"

// Rule is one step of the classification cascade.
type Rule struct {
	Name  string
	Role  score.Role
	Match func(Stats, Options) bool
}

// Rules are tried in order and the first match wins. Tracks matching none
// of them are settled by comparing siblings: the highest average pitch
// becomes Melody, the rest Harmony.
var Rules = []Rule{
	{
		Name: "percussion-channel",
		Role: score.Drum,
		Match: func(s Stats, o Options) bool {
			return s.Channel == o.PercussionChannel
		},
	},
	{
		Name: "bass-range",
		Role: score.Bass,
		Match: func(s Stats, o Options) bool {
			return s.MaxPitch <= o.BassCeiling
		},
	},
	{
		Name: "polyphony",
		Role: score.Chord,
		Match: func(s Stats, o Options) bool {
			return s.Polyphony >= o.ChordPolyphony
		},
	},
}
