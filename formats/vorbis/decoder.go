// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

var newOggReader = func(r io.Reader) (oggReader, error) {
	return oggvorbis.NewReader(r)
}

// Source reads a whole Ogg Vorbis stream as interleaved int16 samples.
type Source struct {
	dec        oggReader
	sampleRate int
	channels   int
	buf        []float32
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }

func (s *Source) Format() audio.Format {
	return audio.Format{SampleRate: s.sampleRate, Channels: s.channels, BitDepth: 16}
}

// ReadSamples fills dst with whole sample frames and returns the number of
// samples read. io.EOF marks the end of the stream.
func (s *Source) ReadSamples(dst []int16) (int, error) {
	want := len(dst) / s.channels * s.channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.buf) < want {
		s.buf = make([]float32, want)
	}
	s.buf = s.buf[:want]

	// oggvorbis counts values, not frames
	n, err := s.dec.Read(s.buf)
	if n == 0 {
		return 0, err
	}

	return utils.Float32sToInt16(dst, s.buf[:n]), err
}

// Decoder is the whole-stream reference decoder. The streaming pipeline
// decodes page by page with UnitDecoder instead.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (*Source, error) {
	dec, err := newOggReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}
	if dec.Channels() <= 0 {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, ErrBadIdent)
	}

	return &Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		buf:        make([]float32, 4096),
	}, nil
}

// CountSamples decodes r to the end and returns the number of samples,
// all channels included.
func CountSamples(r io.Reader) (int, error) {
	src, err := Decoder{}.Decode(r)
	if err != nil {
		return 0, err
	}

	buf := make([]int16, 4096)
	total := 0
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("%w: %w", audio.ErrDecode, err)
		}
	}
}
