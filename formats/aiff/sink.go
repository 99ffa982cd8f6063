// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/capture"
)

// Sink records little-endian 16-bit PCM into an AIFF container. The encoder
// stores samples big-endian; callers always write little-endian bytes.
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
		return nil, fmt.Errorf("creating aiff file: %w", err)
	}

	return &Sink{ws: f, closer: f}, nil
}

// SetFormat starts the AIFF stream. Repeating the same format is allowed.
func (s *Sink) SetFormat(f audio.Format) error {
	if s.w != nil {
		if f == s.format {
			return nil
		}
		return ErrFormatChanged
	}
	if f.BitDepth != 16 {
		return ErrOnlyPCM16bitSupported
	}
	if f.Channels <= 0 || f.SampleRate <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedAiffLayout, f.SampleRate, f.Channels)
	}

	s.format = f
	s.w = capture.NewWriter(f, aiff.NewEncoder(s.ws, f.SampleRate, f.BitDepth, f.Channels))

	return nil
}

func (s *Sink) Format() audio.Format { return s.format }

func (s *Sink) Samples() int64 {
	if s.w == nil {
		return 0
	}
	return s.w.Samples()
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNoFormat
	}

	return s.w.Write(p)
}

// Close finalizes the COMM and SSND chunks and closes the file opened by
// Create.
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
