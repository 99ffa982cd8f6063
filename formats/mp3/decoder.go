// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

// go-mp3 always emits 16-bit little-endian stereo.
const (
	outputChannels = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

var newMP3Reader = func(r io.Reader) (mp3Reader, error) {
	return gomp3.NewDecoder(r)
}

// Source reads a whole MP3 stream as interleaved int16 samples.
type Source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return outputChannels }

func (s *Source) Format() audio.Format {
	return audio.Format{SampleRate: s.sampleRate, Channels: outputChannels, BitDepth: 16}
}

// ReadSamples fills dst and returns the number of samples read. io.EOF marks
// the end of the stream.
func (s *Source) ReadSamples(dst []int16) (int, error) {
	bytesNeeded := len(dst) * bytesPerSample
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		return 0, err
	}

	return utils.BytesLEToInt16(dst, s.buf[:n]), err
}

// Decoder is the whole-stream reference decoder. The streaming pipeline
// decodes unit by unit with UnitDecoder instead.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (*Source, error) {
	dec, err := newMP3Reader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	return &Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
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
