// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/capture"
	"github.com/ik5/audstream/utils"
)

const pcmFormat = 1

// Sink records little-endian 16-bit PCM into a WAV container. It is the
// capture destination of the drain engine: the format arrives through
// SetFormat when the transfer starts, then raw PCM bytes through Write.
type Sink struct {
	ws     io.WriteSeeker
	closer io.Closer

	w      *capture.Writer
	format audio.Format
}

// NewSink records into ws. The caller keeps ownership of ws.
func NewSink(ws io.WriteSeeker) *Sink {
	return &Sink{ws: ws}
}

// Create records into a new file at path. Close closes the file.
func Create(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}

	return &Sink{ws: f, closer: f}, nil
}

// SetFormat starts the WAV stream. It may be called once.
func (s *Sink) SetFormat(f audio.Format) error {
	if s.w != nil {
		if f == s.format {
			return nil
		}
		return ErrFormatChanged
	}
	if f.BitDepth != 16 || f.Channels <= 0 || f.SampleRate <= 0 {
		return fmt.Errorf("%w: %+v", ErrOnlyPCM16bitSupported, f)
	}

	s.format = f
	s.w = capture.NewWriter(f, wav.NewEncoder(s.ws, f.SampleRate, f.BitDepth, f.Channels, pcmFormat))

	return nil
}

// Format set by SetFormat.
func (s *Sink) Format() audio.Format { return s.format }

// Samples counts samples written, all channels included.
func (s *Sink) Samples() int64 {
	if s.w == nil {
		return 0
	}
	return s.w.Samples()
}

// Write accepts any byte count. The encoder only takes whole frames, so a
// trailing partial frame is held until the next write.
func (s *Sink) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNoFormat
	}

	return s.w.Write(p)
}

// Close finalizes the WAV header and closes the file opened by Create.
func (s *Sink) Close() error {
	var err error
	if s.w != nil {
		err = s.w.Close()
	}

	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

// WriteWAV16 writes samples as a complete 16-bit PCM WAV.
func WriteWAV16(ws io.WriteSeeker, f audio.Format, samples []int16) error {
	s := NewSink(ws)
	if err := s.SetFormat(f); err != nil {
		return err
	}

	if _, err := s.Write(utils.Int16ToBytesLE(make([]byte, 2*len(samples)), samples)); err != nil {
		return err
	}

	return s.Close()
}
