// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"

	goaudio "github.com/go-audio/audio"
)

// Format describes the PCM produced by a decode step.
// It is discovered from the first decodable unit and assumed constant afterwards.
type Format struct {
	// SampleRate of the PCM stream in Hz.
	SampleRate int
	// Channels count of the interleaved output (e.g., 1=mono, 2=stereo).
	Channels int
	// BitDepth of a single sample. The pipeline only emits 16.
	BitDepth int
}

// BlockAlign is the size in bytes of one interleaved frame.
func (f Format) BlockAlign() int { return f.Channels * f.BitDepth / 8 }

// BytesPerSecond is the rate at which hardware consumes PCM in this format.
func (f Format) BytesPerSecond() int { return f.SampleRate * f.BlockAlign() }

// IsZero reports whether the format was never set.
func (f Format) IsZero() bool { return f == Format{} }

// GoAudio converts the format to the go-audio representation.
func (f Format) GoAudio() *goaudio.Format {
	return &goaudio.Format{
		NumChannels: f.Channels,
		SampleRate:  f.SampleRate,
	}
}

// UnitDecoder is the decode step. DecodeUnit receives exactly one aligned
// decodable unit and writes interleaved int16 samples into out.
// It returns the number of samples written; zero is a valid result.
// Failures wrap ErrDecode.
//
// The decoder has no knowledge of downstream backpressure, callers must not
// invoke it while a previous block is still undelivered.
type UnitDecoder interface {
	DecodeUnit(unit []byte, out []int16) (int, error)
}

// OutputFormatter is implemented by unit decoders whose PCM layout differs
// from what the unit header announces (e.g. a decoder that always emits stereo).
type OutputFormatter interface {
	OutputFormat(header Format) Format
}

// OutputFormat returns the format dec produces for units announcing header.
func OutputFormat(dec UnitDecoder, header Format) Format {
	if of, ok := dec.(OutputFormatter); ok {
		return of.OutputFormat(header)
	}
	return header
}

// NewDecoderFunc builds a fresh UnitDecoder. Unit decoders keep state across
// units (e.g. the MP3 bit reservoir), so the registry hands out constructors.
type NewDecoderFunc func() UnitDecoder

// Registry for unit decoders by format key (e.g., "mp3").
type Registry struct {
	codecs map[string]NewDecoderFunc

	mtx *sync.Mutex
}

// DefaultRegistry is the process wide registry used when callers do not
// provide their own.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]NewDecoderFunc),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, fn NewDecoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = fn
}

func (r *Registry) Get(format string) (NewDecoderFunc, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	fn, ok := r.codecs[format]
	return fn, ok
}

// New returns a fresh decoder for format or ErrUnknownFormat.
func (r *Registry) New(format string) (UnitDecoder, error) {
	fn, ok := r.Get(format)
	if !ok || fn == nil {
		return nil, ErrUnknownFormat
	}

	return fn(), nil
}
