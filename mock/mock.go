// Package mock provides pumps, sinks and effects for tests.
package mock

import (
	"io"

	"github.com/dudk/sfx"
	"github.com/dudk/sfx/effect"
)

// Pump produces a deterministic interleaved ramp signal: the raw
// sample at stream offset i has the value Value+i, so tests can check
// byte-exact spans. Limit caps the stream in wide samples.
type Pump struct {
	Counter
	Limit      sfx.Wide
	Channels   int
	SampleRate sfx.Frequency
	Value      sfx.Sample
	// HideLength makes Properties report an unknown stream length.
	HideLength bool
	// NoSkip makes Skip refuse to skip, forcing the chain to stream
	// the leading span through the effects.
	NoSkip bool

	pumped sfx.Wide
}

// Properties reports the stream format.
func (m *Pump) Properties() sfx.Properties {
	length := m.Limit.Raw(m.Channels)
	if m.HideLength {
		length = sfx.UnknownLength
	}
	return sfx.Properties{
		SampleRate: m.SampleRate,
		Channels:   m.Channels,
		Length:     length,
	}
}

// Pump fills b with the next block and returns the raw count written.
func (m *Pump) Pump(b []sfx.Sample) (int, error) {
	if m.pumped >= m.Limit {
		return 0, io.EOF
	}
	wide := sfx.Wide(len(b) / m.Channels)
	if left := m.Limit - m.pumped; left < wide {
		wide = left
	}
	n := int(wide.Raw(m.Channels))
	base := m.pumped.Raw(m.Channels)
	for i := 0; i < n; i++ {
		b[i] = m.Value + sfx.Sample(base) + sfx.Sample(i)
	}
	m.pumped += wide
	m.advance(n)
	return n, nil
}

// Skip discards up to n leading raw samples without producing them.
func (m *Pump) Skip(n sfx.Raw) (sfx.Raw, error) {
	if m.NoSkip {
		return 0, nil
	}
	wide := n.Wide(m.Channels)
	if left := m.Limit - m.pumped; left < wide {
		wide = left
	}
	m.pumped += wide
	return wide.Raw(m.Channels), nil
}

// Sink collects everything it receives unless Discard is set.
type Sink struct {
	Counter
	Discard bool
	buffer  []sfx.Sample
}

// Sink appends the block to the capture buffer.
func (m *Sink) Sink(b []sfx.Sample) error {
	if !m.Discard {
		m.buffer = append(m.buffer, b...)
	}
	m.advance(len(b))
	return nil
}

// Buffer returns the captured samples.
func (m *Sink) Buffer() []sfx.Sample {
	return m.buffer
}

// PassThrough is an effect that copies its input unchanged. It tracks
// lifecycle calls so contract tests can assert the call sequence.
type PassThrough struct {
	Started    bool
	Drained    bool
	Terminated bool
}

// Configure accepts no arguments.
func (m *PassThrough) Configure([]string) error {
	return nil
}

// Start keeps the input properties unchanged.
func (m *PassThrough) Start(in sfx.Properties) (sfx.Properties, effect.StartResult, error) {
	m.Started = true
	return in, effect.Ready, nil
}

// Flow copies as much as both blocks allow.
func (m *PassThrough) Flow(in, out []sfx.Sample) effect.Result {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	copy(out, in[:n])
	return effect.Result{Consumed: sfx.Raw(n), Produced: sfx.Raw(n)}
}

// Drain has nothing buffered.
func (m *PassThrough) Drain([]sfx.Sample) effect.Result {
	m.Drained = true
	return effect.Result{Status: effect.EndOfStream}
}

// Terminate records the call.
func (m *PassThrough) Terminate() error {
	m.Terminated = true
	return nil
}

// Counter counts blocks and raw samples.
type Counter struct {
	Messages int
	Samples  int
}

func (c *Counter) advance(size int) {
	c.Messages++
	c.Samples += size
}
