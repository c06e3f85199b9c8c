// Package effect defines the lifecycle contract between an effect and
// the chain that drives it.
//
// An effect goes through a fixed sequence of calls:
//
//	Configure -> Start -> Flow (repeated) -> Drain (repeated) -> Terminate
//
// Configure receives the user-supplied tokens and must not depend on
// the stream format. Start receives the input properties once the
// format is known and finishes all format-dependent setup. Flow moves
// samples, Drain flushes anything buffered once input is exhausted,
// Terminate releases owned storage. No call may be repeated out of
// this order and no state is shared between effect instances.
package effect

import (
	"github.com/dudk/sfx"
)

// Status is returned by streaming calls.
type Status int

const (
	// Continue means the effect may produce more output.
	Continue Status = iota
	// EndOfStream means no further output will ever be produced,
	// independent of whether more input exists. The driver may stop
	// calling Flow and proceed to Drain and Terminate.
	EndOfStream
)

// StartResult is returned by Start.
type StartResult int

const (
	// Ready means the effect is set up and Flow may be called.
	Ready StartResult = iota
	// Bypass means the effect is a no-op for this stream and the
	// driver should exclude it from the chain.
	Bypass
)

// Result reports the accounting of a single Flow or Drain call. All
// counts are raw samples.
type Result struct {
	// Consumed is the prefix of the input block that was read. The
	// driver must offer the remainder again on the next call.
	Consumed sfx.Raw
	// Produced is the prefix of the output block that was written.
	Produced sfx.Raw
	Status   Status
	// Warning carries a non-fatal diagnostic. Only Drain sets it.
	Warning error
}

// Effect is a single stage of the processing chain.
//
// Flow consumes some prefix of in and produces some prefix of out,
// reporting exact counts; repeated calls with the full stream must
// reproduce the selected output with no sample duplicated or dropped
// across call boundaries. The effect must not retain either slice
// after the call returns. Flow and Drain never fail: by the time
// streaming begins all configuration is known valid, so the only
// runtime signal is Status.
type Effect interface {
	Configure(args []string) error
	Start(in sfx.Properties) (out sfx.Properties, res StartResult, err error)
	Flow(in, out []sfx.Sample) Result
	Drain(out []sfx.Sample) Result
	Terminate() error
}
