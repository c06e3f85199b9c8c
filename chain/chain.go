// Package chain provides a synchronous driver for effect chains: one
// pump, zero or more effects and one sink, executed as a cooperative
// pull pipeline in the caller's goroutine. The chain owns the block
// buffers and honors the effect contract: unconsumed input is offered
// again, produced output is delivered downstream before more input is
// offered, and an end-of-stream status stops pumping even when the
// source has more data.
package chain

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dudk/sfx"
	"github.com/dudk/sfx/effect"
	"github.com/dudk/sfx/log"
)

type (
	// Pump is a source of interleaved sample blocks. Pump fills b
	// with up to len(b) raw samples and returns the count written;
	// it returns io.EOF once the stream is exhausted.
	Pump interface {
		Pump(b []sfx.Sample) (int, error)
		Properties() sfx.Properties
	}

	// Sink consumes interleaved sample blocks.
	Sink interface {
		Sink(b []sfx.Sample) error
	}

	// Skipper is a pump that can discard leading samples cheaply,
	// for example by seeking the underlying file. Skip discards up
	// to n raw samples and returns the count discarded; a result
	// short of n means the source is exhausted.
	Skipper interface {
		Skip(n sfx.Raw) (sfx.Raw, error)
	}

	// StartSkipper is an effect whose leading discarded span may be
	// skipped in the source instead of streamed through the chain.
	StartSkipper interface {
		StartSkip() sfx.Raw
		SkipStart()
	}

	// Starter is a sink that needs the stream properties before the
	// first block.
	Starter interface {
		Start(props sfx.Properties) error
	}

	// Flusher is a pump or sink with cleanup to run after the
	// stream is done.
	Flusher interface {
		Flush() error
	}
)

// stage is a started effect with its output buffer.
type stage struct {
	id  string
	eff effect.Effect
	out []sfx.Sample
}

// Chain is a bound pipeline, ready to run once.
type Chain struct {
	uid        string
	bufferSize int // wide samples per block
	logger     *logrus.Logger

	pump    Pump
	sink    Sink
	effects []effect.Effect
	stages  []*stage
	props   sfx.Properties // properties delivered to the sink
}

// Option provides a way to set functional parameters to the chain.
type Option func(*Chain)

// WithLogger sets the chain logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Chain) {
		c.logger = l
	}
}

// WithEffects appends effects to the chain in processing order.
// Effects must be configured already; the chain starts them.
func WithEffects(effects ...effect.Effect) Option {
	return func(c *Chain) {
		c.effects = append(c.effects, effects...)
	}
}

// New binds pump, effects and sink into a runnable chain. Every
// effect is started with the properties propagated from the pump
// through the preceding effects; effects that report Bypass are
// excluded. The buffer size is in wide samples per block.
func New(bufferSize int, pump Pump, sink Sink, options ...Option) (*Chain, error) {
	c := &Chain{
		uid:        sfx.NewUID(),
		bufferSize: bufferSize,
		logger:     log.GetLogger(),
		pump:       pump,
		sink:       sink,
	}
	for _, option := range options {
		option(c)
	}

	props := pump.Properties()
	if props.SampleRate <= 0 {
		return nil, fmt.Errorf("chain %v: sample rate not positive: %v", c.uid, props.SampleRate)
	}
	if props.Channels <= 0 {
		return nil, fmt.Errorf("chain %v: channels not positive: %v", c.uid, props.Channels)
	}

	for i, eff := range c.effects {
		out, res, err := eff.Start(props)
		if err != nil {
			return nil, fmt.Errorf("chain %v: effect %d: %w", c.uid, i+1, err)
		}
		if res == effect.Bypass {
			c.logger.WithField("chain", c.uid).Debugf("effect %d bypassed", i+1)
			if err := eff.Terminate(); err != nil {
				return nil, fmt.Errorf("chain %v: effect %d: %w", c.uid, i+1, err)
			}
			continue
		}
		c.stages = append(c.stages, &stage{
			id:  sfx.NewUID(),
			eff: eff,
			out: make([]sfx.Sample, bufferSize*out.Channels),
		})
		props = out
	}
	c.props = props

	if s, ok := sink.(Starter); ok {
		if err := s.Start(props); err != nil {
			return nil, fmt.Errorf("chain %v: sink: %w", c.uid, err)
		}
	}
	return c, nil
}

// Properties returns the stream properties the sink receives,
// including the declared output length.
func (c *Chain) Properties() sfx.Properties {
	return c.props
}

// Run executes the chain until the pump is exhausted or an effect
// reports end-of-stream, then drains the stages and flushes the pump
// and the sink. Warnings raised at drain time are logged, not
// returned.
func (c *Chain) Run() error {
	c.skipStart()

	in := make([]sfx.Sample, c.bufferSize*c.pump.Properties().Channels)
	for {
		n, pumpErr := c.pump.Pump(in)
		if pumpErr != nil && pumpErr != io.EOF {
			c.teardown()
			return fmt.Errorf("chain %v: pump: %w", c.uid, pumpErr)
		}
		if n > 0 {
			done, err := c.flow(0, in[:n])
			if err != nil {
				c.teardown()
				return err
			}
			if done {
				break
			}
		}
		if pumpErr == io.EOF || n == 0 {
			break
		}
	}

	if err := c.drain(); err != nil {
		c.teardown()
		return err
	}
	return c.teardown()
}

// flow offers a block to stage i and cascades everything it produces
// downstream. It reports done when some stage will never produce
// output again.
func (c *Chain) flow(i int, in []sfx.Sample) (bool, error) {
	if i == len(c.stages) {
		return false, c.sink.Sink(in)
	}
	st := c.stages[i]
	for len(in) > 0 {
		res := st.eff.Flow(in, st.out)
		in = in[res.Consumed:]
		if res.Produced > 0 {
			done, err := c.flow(i+1, st.out[:res.Produced])
			if err != nil {
				return false, err
			}
			if done {
				return true, nil
			}
		}
		if res.Status == effect.EndOfStream {
			return true, nil
		}
		if res.Consumed == 0 && res.Produced == 0 {
			return false, fmt.Errorf("chain %v: effect %v stalled", c.uid, st.id)
		}
	}
	return false, nil
}

// drain flushes buffered output stage by stage, feeding whatever a
// stage emits through the stages after it.
func (c *Chain) drain() error {
	for i, st := range c.stages {
		for {
			res := st.eff.Drain(st.out)
			if res.Warning != nil {
				c.logger.WithField("chain", c.uid).Warn(res.Warning)
			}
			if res.Produced > 0 {
				if _, err := c.flow(i+1, st.out[:res.Produced]); err != nil {
					return err
				}
			}
			if res.Status == effect.EndOfStream {
				break
			}
		}
	}
	return nil
}

// skipStart applies the seek optimization: when the first effect
// exposes a leading discarded span and the pump can skip, the span is
// dropped at the source. A short skip means the source ended inside
// the span; the effect state is left untouched so the drain warning
// still fires.
func (c *Chain) skipStart() {
	if len(c.stages) == 0 {
		return
	}
	eff, ok := c.stages[0].eff.(StartSkipper)
	if !ok {
		return
	}
	pump, ok := c.pump.(Skipper)
	if !ok {
		return
	}
	want := eff.StartSkip()
	if want <= 0 {
		return
	}
	skipped, err := pump.Skip(want)
	if err != nil {
		c.logger.WithField("chain", c.uid).Debugf("skip failed, streaming instead: %v", err)
		return
	}
	if skipped == want {
		eff.SkipStart()
		c.logger.WithField("chain", c.uid).Debugf("skipped %d leading samples in source", skipped)
	}
}

// teardown terminates the effects and flushes pump and sink. The
// first error wins but every hook runs.
func (c *Chain) teardown() error {
	var first error
	for _, st := range c.stages {
		if err := st.eff.Terminate(); err != nil && first == nil {
			first = fmt.Errorf("chain %v: effect %v: %w", c.uid, st.id, err)
		}
	}
	c.stages = nil
	if f, ok := c.pump.(Flusher); ok {
		if err := f.Flush(); err != nil && first == nil {
			first = fmt.Errorf("chain %v: pump: %w", c.uid, err)
		}
	}
	if f, ok := c.sink.(Flusher); ok {
		if err := f.Flush(); err != nil && first == nil {
			first = fmt.Errorf("chain %v: sink: %w", c.uid, err)
		}
	}
	return first
}
