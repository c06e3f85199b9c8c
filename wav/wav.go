// Package wav provides a pump and a sink for wav files.
package wav

import (
	"errors"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dudk/sfx"
)

// ErrNotValid is returned when the input is not a readable wav file.
var ErrNotValid = errors.New("wav is not valid")

type (
	// Pump reads interleaved samples from a wav file.
	Pump struct {
		file    *os.File
		decoder *wav.Decoder
		ib      *audio.IntBuffer
		props   sfx.Properties

		bitDepth    int
		audioFormat int
	}

	// Sink saves interleaved samples to a wav file. The encoder is
	// created on Start, once the stream properties are known.
	Sink struct {
		path     string
		bitDepth int
		file     *os.File
		encoder  *wav.Encoder
		ib       *audio.IntBuffer
	}
)

// NewPump opens a wav file and reads its format. The stream length is
// known up front from the PCM chunk size.
func NewPump(path string) (*Pump, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, ErrNotValid
	}

	length := sfx.UnknownLength
	if bytesPerSample := int64(decoder.BitDepth) / 8; bytesPerSample > 0 {
		length = sfx.Raw(decoder.PCMLen() / bytesPerSample)
	}
	return &Pump{
		file:        file,
		decoder:     decoder,
		bitDepth:    int(decoder.BitDepth),
		audioFormat: int(decoder.WavAudioFormat),
		props: sfx.Properties{
			SampleRate: sfx.Frequency(decoder.SampleRate),
			Channels:   decoder.Format().NumChannels,
			Length:     length,
		},
	}, nil
}

// Properties reports the stream format of the file.
func (p *Pump) Properties() sfx.Properties {
	return p.props
}

// BitDepth returns the bit depth of the file samples.
func (p *Pump) BitDepth() int {
	return p.bitDepth
}

// Pump fills b with the next raw samples and returns the count read.
func (p *Pump) Pump(b []sfx.Sample) (int, error) {
	if p.ib == nil || cap(p.ib.Data) < len(b) {
		p.ib = &audio.IntBuffer{
			Format:         p.decoder.Format(),
			Data:           make([]int, len(b)),
			SourceBitDepth: p.bitDepth,
		}
	}
	p.ib.Data = p.ib.Data[:len(b)]
	n, err := p.decoder.PCMBuffer(p.ib)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		b[i] = sfx.Sample(p.ib.Data[i])
	}
	return n, nil
}

// Skip reads and discards up to n leading raw samples. A short count
// means the file ended inside the span.
func (p *Pump) Skip(n sfx.Raw) (sfx.Raw, error) {
	scratch := &audio.IntBuffer{
		Format:         p.decoder.Format(),
		Data:           make([]int, 8192),
		SourceBitDepth: p.bitDepth,
	}
	var skipped sfx.Raw
	for skipped < n {
		left := n - skipped
		if int64(left) < int64(len(scratch.Data)) {
			scratch.Data = scratch.Data[:left]
		}
		read, err := p.decoder.PCMBuffer(scratch)
		if err != nil {
			return skipped, err
		}
		if read == 0 {
			break
		}
		skipped += sfx.Raw(read)
	}
	return skipped, nil
}

// Flush closes the file.
func (p *Pump) Flush() error {
	return p.file.Close()
}

// NewSink creates a wav sink writing samples of the given bit depth.
func NewSink(path string, bitDepth int) *Sink {
	return &Sink{
		path:     path,
		bitDepth: bitDepth,
	}
}

// Start creates the output file and the encoder for the stream
// properties.
func (s *Sink) Start(props sfx.Properties) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, int(props.SampleRate), s.bitDepth, props.Channels, 1)
	s.ib = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: props.Channels,
			SampleRate:  int(props.SampleRate),
		},
		SourceBitDepth: s.bitDepth,
	}
	return nil
}

// Sink writes the block to the encoder.
func (s *Sink) Sink(b []sfx.Sample) error {
	if cap(s.ib.Data) < len(b) {
		s.ib.Data = make([]int, len(b))
	}
	s.ib.Data = s.ib.Data[:len(b)]
	for i := range b {
		s.ib.Data[i] = int(b[i])
	}
	return s.encoder.Write(s.ib)
}

// Flush finalizes the encoder and closes the file.
func (s *Sink) Flush() error {
	if err := s.encoder.Close(); err != nil {
		return err
	}
	return s.file.Close()
}
