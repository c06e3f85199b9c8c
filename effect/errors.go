package effect

import (
	"errors"
	"fmt"

	"github.com/dudk/sfx"
)

// ErrUnknownLength is returned from Start when a position relative to
// the end of the stream is requested but the stream length is unknown.
var ErrUnknownLength = errors.New("cannot use positions relative to end: audio length is unknown")

// UsageError reports a malformed configuration token.
type UsageError struct {
	Expr string
	Err  error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid position %q: %v", e.Expr, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// OrderingError reports a resolved position that precedes an earlier
// one. Position is the 1-based index of the later entry of the pair.
type OrderingError struct {
	Position int
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("position %d is behind the preceding position", e.Position)
}

// BoundsError reports a resolved position outside the stream. Offset
// is the resolved wide offset, Length the known wide stream length.
// A negative offset means the position lies before the stream start.
type BoundsError struct {
	Position int
	Offset   sfx.Wide
	Length   sfx.Wide
}

func (e *BoundsError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("position %d is before the start of the audio", e.Position)
	}
	return fmt.Sprintf("position %d is past the end of the audio: %d > %d", e.Position, e.Offset, e.Length)
}

// ShortStreamWarning reports that the stream ended before every
// configured position was reached. It is a diagnostic, not a failure:
// the effect completes as if the unreached positions never existed.
type ShortStreamWarning struct {
	Unreached int
}

func (w *ShortStreamWarning) Error() string {
	return fmt.Sprintf("audio shorter than expected: last %d positions not reached", w.Unreached)
}
