// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audstream/audio"
)

// ReadPCM16 reads a whole 16-bit PCM WAV.
func ReadPCM16(r io.ReadSeeker) ([]int16, audio.Format, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, audio.Format{}, ErrNotWavFile
	}
	if d.BitDepth != 16 || d.WavAudioFormat != pcmFormat {
		return nil, audio.Format{}, fmt.Errorf("%w: %d bit, format %d", ErrOnlyPCM16bitSupported, d.BitDepth, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("%w", err)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	return samples, audio.Format{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}, nil
}
