package score

import "fmt"

// WarningKind classifies non-fatal conditions found during conversion.
type WarningKind string

const (
	ClassificationAmbiguous WarningKind = "classification-ambiguous"
	TimeSignatureMismatch   WarningKind = "time-signature-mismatch"
	StuckNote               WarningKind = "stuck-note"
)

// Warning is a non-fatal finding. Source names the file or track it refers to.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  string      `json:"source,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Source == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Source, w.Kind, w.Message)
}
