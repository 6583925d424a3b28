package midi

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHeader   = errors.New("malformed header")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrTruncatedFile     = errors.New("truncated file")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// DecodeError reports where decoding failed. It unwraps to one of the
// Err* sentinels so callers can use errors.Is.
type DecodeError struct {
	Err    error
	Offset int64 // byte offset into the file
	Chunk  int   // track chunk index, -1 for the header
	Detail string
}

func (e *DecodeError) Error() string {
	where := "header"
	if e.Chunk >= 0 {
		where = fmt.Sprintf("track %d", e.Chunk)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%v at offset %d (%s)", e.Err, e.Offset, where)
	}
	return fmt.Sprintf("%v at offset %d (%s): %s", e.Err, e.Offset, where, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
