// Package trim provides an effect that cuts portions out of the audio
// stream. Cut points are given as an ordered list of position
// expressions which alternate the meaning "stop copying here" /
// "start copying here", starting in the not-copying state. An odd
// list leaves the final kept segment open until end of stream.
package trim

import (
	"strings"

	"github.com/dudk/sfx"
	"github.com/dudk/sfx/effect"
	"github.com/dudk/sfx/timespec"
)

type anchor int

const (
	// relative to the previously resolved position, the default
	anchorLatest anchor = iota
	// absolute from the stream start, `=` prefix
	anchorStart
	// relative to the stream end, `-` prefix
	anchorEnd
)

// position holds one cut point. The expression stays unparsed until
// Start, when the sample rate is known.
type position struct {
	expr   string
	anchor anchor
	sample sfx.Wide // absolute wide offset, resolved at Start
}

// Trim implements effect.Effect. The zero value must be configured
// before use; New does both in one step.
type Trim struct {
	positions []position
	usesEnd   bool

	// streaming state
	channels int
	current  int      // index of the next unreached boundary
	read     sfx.Wide // wide samples consumed so far
	copying  bool
}

// New returns a trim effect configured with the provided position
// expressions.
func New(positions ...string) (*Trim, error) {
	t := &Trim{}
	if err := t.Configure(positions); err != nil {
		return nil, err
	}
	return t, nil
}

// Configure parses the anchor prefixes and syntax-checks every
// expression. Resolution is deferred to Start.
func (t *Trim) Configure(args []string) error {
	t.positions = make([]position, 0, len(args))
	t.usesEnd = false
	for _, arg := range args {
		p := position{anchor: anchorLatest}
		switch {
		case strings.HasPrefix(arg, "="):
			p.anchor = anchorStart
			arg = arg[1:]
		case strings.HasPrefix(arg, "-"):
			p.anchor = anchorEnd
			t.usesEnd = true
			arg = arg[1:]
		}
		p.expr = arg
		if err := timespec.Check(arg); err != nil {
			return &effect.UsageError{Expr: arg, Err: err}
		}
		t.positions = append(t.positions, p)
	}
	return nil
}

// Start resolves every position to an absolute wide offset, validates
// ordering and bounds and computes the declared output length. It
// returns Bypass for a single zero position: trimming nothing.
func (t *Trim) Start(in sfx.Properties) (sfx.Properties, effect.StartResult, error) {
	t.channels = in.Channels
	t.current, t.read = 0, 0
	// an empty table keeps everything: copying from the first sample
	t.copying = len(t.positions) == 0
	length := in.Length.Wide(in.Channels)

	if !length.Known() && t.usesEnd {
		return sfx.Properties{}, 0, effect.ErrUnknownLength
	}

	// resolve absolute offsets
	last := sfx.Wide(0)
	for i := range t.positions {
		s, err := timespec.Parse(t.positions[i].expr, in.SampleRate)
		if err != nil {
			return sfx.Properties{}, 0, &effect.UsageError{Expr: t.positions[i].expr, Err: err}
		}
		var res sfx.Wide
		switch t.positions[i].anchor {
		case anchorStart:
			res = s
		case anchorLatest:
			res = last + s
		case anchorEnd:
			if s > length {
				return sfx.Properties{}, 0, &effect.BoundsError{Position: i + 1, Offset: length - s, Length: length}
			}
			res = length - s
		}
		t.positions[i].sample = res
		last = res
	}

	// sanity checks
	last = 0
	for i := range t.positions {
		if t.positions[i].sample < last {
			return sfx.Properties{}, 0, &effect.OrderingError{Position: i + 1}
		}
		last = t.positions[i].sample
	}
	if len(t.positions) > 0 && length.Known() {
		if first := t.positions[0].sample; first > length {
			return sfx.Properties{}, 0, &effect.BoundsError{Position: 1, Offset: first, Length: length}
		}
		if end := t.positions[len(t.positions)-1].sample; end > length {
			return sfx.Properties{}, 0, &effect.BoundsError{Position: len(t.positions), Offset: end, Length: length}
		}
	}

	if len(t.positions) == 1 && t.positions[0].sample == 0 {
		return in, effect.Bypass, nil
	}

	out := in
	out.Length = t.outLength(length).Raw(in.Channels)
	return out, effect.Ready, nil
}

// outLength computes the declared output length in wide samples, or
// UnknownWide when the table is open-ended and the input length is
// unknown.
func (t *Trim) outLength(in sfx.Wide) sfx.Wide {
	if len(t.positions) == 0 {
		return in
	}
	openEnd := len(t.positions)%2 == 1
	if openEnd && !in.Known() {
		return sfx.UnknownWide
	}
	var out sfx.Wide
	for i := 0; i+1 < len(t.positions); i += 2 {
		out += t.positions[i+1].sample - t.positions[i].sample
	}
	if openEnd {
		out += in - t.positions[len(t.positions)-1].sample
	}
	return out
}

// Flow copies the kept spans of in to out and discards the rest. It
// reports EndOfStream once all boundaries are passed and copying is
// off: no more output will ever be produced.
func (t *Trim) Flow(in, out []sfx.Sample) effect.Result {
	var res effect.Result
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	left := sfx.Wide(n / t.channels)

	for left > 0 {
		if t.current < len(t.positions) && t.read == t.positions[t.current].sample {
			t.copying = !t.copying
			t.current++
		}

		if t.current >= len(t.positions) && !t.copying {
			res.Status = effect.EndOfStream
			return res
		}

		chunk := left
		if t.current < len(t.positions) {
			if ahead := t.positions[t.current].sample - t.read; ahead < chunk {
				chunk = ahead
			}
		}
		raw := chunk.Raw(t.channels)
		if t.copying {
			copy(out[res.Produced:], in[res.Consumed:res.Consumed+raw])
			res.Produced += raw
		}
		res.Consumed += raw
		t.read += chunk
		left -= chunk
	}

	return res
}

// Drain never emits samples: trim buffers nothing. It reports a
// ShortStreamWarning when the stream ended before every position was
// reached.
func (t *Trim) Drain([]sfx.Sample) effect.Result {
	res := effect.Result{Status: effect.EndOfStream}
	if t.current < len(t.positions) {
		res.Warning = &effect.ShortStreamWarning{Unreached: len(t.positions) - t.current}
	}
	return res
}

// Terminate releases the position table.
func (t *Trim) Terminate() error {
	t.positions = nil
	return nil
}

// StartSkip returns the number of raw samples a seek-capable source
// may skip instead of streaming them through the effect: the leading
// discarded span. Callers that perform the skip must report it with
// SkipStart.
func (t *Trim) StartSkip() sfx.Raw {
	if len(t.positions) == 0 {
		return 0
	}
	return t.positions[0].sample.Raw(t.channels)
}

// SkipStart records that the leading discarded span was skipped in
// the source. The effect behaves exactly as if Flow had discarded
// that many samples.
func (t *Trim) SkipStart() {
	if len(t.positions) == 0 {
		t.read = 0
		return
	}
	t.read = t.positions[0].sample
}
