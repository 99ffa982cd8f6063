// SPDX-License-Identifier: EPL-2.0

// Package capture turns raw little-endian 16-bit PCM into go-audio buffers
// for the container encoders behind the WAV and AIFF sinks.
package capture

import (
	"encoding/binary"
	"fmt"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audstream/audio"
)

// Encoder is the part of the go-audio wav and aiff encoders a Writer uses.
type Encoder interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// Writer feeds whole frames to an Encoder. go-audio encoders drop a trailing
// partial frame, so one is carried over to the next Write instead.
type Writer struct {
	enc     Encoder
	buf     *goaudio.IntBuffer
	align   int
	carry   []byte
	samples int64
}

func NewWriter(f audio.Format, enc Encoder) *Writer {
	return &Writer{
		enc:   enc,
		buf:   &goaudio.IntBuffer{Format: f.GoAudio(), SourceBitDepth: f.BitDepth},
		align: f.BlockAlign(),
		carry: make([]byte, 0, f.BlockAlign()),
	}
}

// Samples counts samples handed to the encoder, all channels included.
func (w *Writer) Samples() int64 { return w.samples }

// Pending is the size of the partial frame waiting for more bytes.
func (w *Writer) Pending() int { return len(w.carry) }

func (w *Writer) Write(p []byte) (int, error) {
	total := len(p)
	w.buf.Data = w.buf.Data[:0]

	if len(w.carry) > 0 {
		need := w.align - len(w.carry)
		if len(p) < need {
			w.carry = append(w.carry, p...)
			return total, nil
		}
		w.carry = append(w.carry, p[:need]...)
		w.appendSamples(w.carry)
		w.carry = w.carry[:0]
		p = p[need:]
	}

	whole := len(p) - len(p)%w.align
	w.appendSamples(p[:whole])
	w.carry = append(w.carry, p[whole:]...)

	if len(w.buf.Data) == 0 {
		return total, nil
	}
	if err := w.enc.Write(w.buf); err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	w.samples += int64(len(w.buf.Data))

	return total, nil
}

func (w *Writer) appendSamples(p []byte) {
	for ; len(p) >= 2; p = p[2:] {
		w.buf.Data = append(w.buf.Data, int(int16(binary.LittleEndian.Uint16(p))))
	}
}

// Close finalizes the container. A partial frame still carried is dropped.
func (w *Writer) Close() error {
	var err error
	if w.samples == 0 {
		// header only, so an empty capture is still a valid file
		w.buf.Data = w.buf.Data[:0]
		err = w.enc.Write(w.buf)
	}

	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}

	return err
}
