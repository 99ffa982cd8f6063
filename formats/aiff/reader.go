// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audstream/audio"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// ReadPCM16 reads a whole 16-bit AIFF.
func ReadPCM16(r io.ReadSeeker) ([]int16, audio.Format, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, audio.Format{}, ErrNotAiffFile
	}

	dec.ReadInfo()
	if dec.BitDepth != 16 {
		return nil, audio.Format{}, ErrOnlyPCM16bitSupported
	}

	return readAll(dec)
}

func readAll(dec aiffReader) ([]int16, audio.Format, error) {
	format := dec.Format()
	if format == nil {
		return nil, audio.Format{}, ErrUnsupportedAiffLayout
	}

	buf := &goaudio.IntBuffer{Data: make([]int, 4096), Format: format}
	var samples []int16

	for {
		n, err := dec.PCMBuffer(buf)
		for _, v := range buf.Data[:n] {
			samples = append(samples, int16(v))
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return nil, audio.Format{}, fmt.Errorf("reading aiff samples: %w", err)
		}
		if n == 0 || err != nil {
			break
		}
	}

	return samples, audio.Format{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   16,
	}, nil
}
