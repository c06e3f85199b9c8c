// Package sfx provides the shared types for streaming audio effects:
// sample units, stream properties and component identity.
package sfx

import (
	"time"

	"github.com/rs/xid"
)

// Sample is a single channel value. Its numeric encoding is owned by
// sources and sinks; effects treat it as opaque.
type Sample int32

// Wide counts time-index positions spanning all channels at once.
// Stream lengths and effect positions are always wide counts.
type Wide int64

// Raw counts individual channel values. One wide sample is Channels
// raw samples. Buffers passed between stages are raw sample slices.
type Raw int64

// Frequency is a sample rate in Hz.
type Frequency float64

const (
	// UnknownLength is the raw length of a stream of indeterminate size.
	UnknownLength Raw = -1
	// UnknownWide is the wide length of a stream of indeterminate size.
	UnknownWide Wide = -1
)

// Known reports whether the length has a determined value.
func (r Raw) Known() bool {
	return r >= 0
}

// Known reports whether the length has a determined value.
func (w Wide) Known() bool {
	return w >= 0
}

// Wide converts a raw count to a wide count for the provided number
// of channels. Unknown stays unknown.
func (r Raw) Wide(channels int) Wide {
	if !r.Known() {
		return UnknownWide
	}
	return Wide(int64(r) / int64(channels))
}

// Raw converts a wide count to a raw count for the provided number
// of channels. Unknown stays unknown.
func (w Wide) Raw(channels int) Raw {
	if !w.Known() {
		return UnknownLength
	}
	return Raw(int64(w) * int64(channels))
}

// Duration returns the play time of a wide sample count at this rate.
func (f Frequency) Duration(w Wide) time.Duration {
	if !w.Known() || f <= 0 {
		return 0
	}
	return time.Duration(float64(w) / float64(f) * float64(time.Second))
}

// Properties describes the signal between two stages. Length is a raw
// sample count or UnknownLength.
type Properties struct {
	SampleRate Frequency
	Channels   int
	Length     Raw
}

// NewUID returns a new unique component id.
func NewUID() string {
	return xid.New().String()
}
