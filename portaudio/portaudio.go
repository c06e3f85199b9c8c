// Package portaudio provides a sink playing the stream on the
// default output device.
package portaudio

import (
	"github.com/gordonklaus/portaudio"

	"github.com/dudk/sfx"
)

// Sink plays interleaved samples using the default portaudio device.
// The stream is opened on Start with a fixed frame count per write:
// short trailing blocks are padded with silence.
type Sink struct {
	bufferSize int // wide samples per write
	bitDepth   int
	buf        []float32
	stream     *portaudio.Stream
	channels   int
	scale      float32
}

// NewSink returns a playback sink. bitDepth is the depth of the
// incoming samples, used to scale them to the device range.
func NewSink(bufferSize, bitDepth int) *Sink {
	return &Sink{
		bufferSize: bufferSize,
		bitDepth:   bitDepth,
	}
}

// Start initializes portaudio and opens the default stream.
func (s *Sink) Start(props sfx.Properties) error {
	s.channels = props.Channels
	s.buf = make([]float32, s.bufferSize*props.Channels)
	s.scale = float32(int64(1) << uint(s.bitDepth-1))
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, props.Channels, float64(props.SampleRate), s.bufferSize, &s.buf)
	if err != nil {
		return err
	}
	s.stream = stream
	return stream.Start()
}

// Sink writes the block to the device.
func (s *Sink) Sink(b []sfx.Sample) error {
	for i := range s.buf {
		if i < len(b) {
			s.buf[i] = float32(b[i]) / s.scale
		} else {
			s.buf[i] = 0
		}
	}
	return s.stream.Write()
}

// Flush stops the stream and terminates portaudio.
func (s *Sink) Flush() error {
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
