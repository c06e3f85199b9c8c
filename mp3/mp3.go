// Package mp3 provides a sink encoding interleaved samples to mp3.
package mp3

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/viert/lame"

	"github.com/dudk/sfx"
)

// Sink writes the stream to an mp3 file. The encoder expects 16-bit
// input: samples of other depths are shifted to 16 bit on write.
type Sink struct {
	path     string
	bitRate  int
	quality  int
	bitDepth int
	shift    uint
	f        *os.File
	wr       *lame.LameWriter
}

// NewSink creates an mp3 sink. bitDepth is the depth of the incoming
// samples.
func NewSink(path string, bitRate, quality, bitDepth int) *Sink {
	return &Sink{
		path:     path,
		bitRate:  bitRate,
		quality:  quality,
		bitDepth: bitDepth,
	}
}

// Start creates the output file and initializes the encoder for the
// stream properties.
func (s *Sink) Start(props sfx.Properties) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	s.f = f
	s.wr = lame.NewWriter(f)
	s.wr.Encoder.SetBitrate(s.bitRate)
	s.wr.Encoder.SetQuality(s.quality)
	s.wr.Encoder.SetNumChannels(props.Channels)
	s.wr.Encoder.SetInSamplerate(int(props.SampleRate))
	s.wr.Encoder.SetMode(lame.JOINT_STEREO)
	s.wr.Encoder.SetVBR(lame.VBR_RH)
	s.wr.Encoder.InitParams()
	if s.bitDepth > 16 {
		s.shift = uint(s.bitDepth - 16)
	}
	return nil
}

// Sink writes the block to the encoder.
func (s *Sink) Sink(b []sfx.Sample) error {
	buf := new(bytes.Buffer)
	for i := range b {
		if err := binary.Write(buf, binary.LittleEndian, int16(b[i]>>s.shift)); err != nil {
			return err
		}
	}
	_, err := s.wr.Write(buf.Bytes())
	return err
}

// Flush finalizes the encoder and closes the file.
func (s *Sink) Flush() error {
	if err := s.wr.Close(); err != nil {
		return err
	}
	return s.f.Close()
}
