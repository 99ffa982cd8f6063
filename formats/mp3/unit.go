// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/frame"
	"github.com/ik5/audstream/utils"
)

// Format is the registry key of this codec.
const Format = "mp3"

var (
	ErrShortOutput = errors.New("output buffer smaller than one unit")
	ErrMalformed   = errors.New("malformed main data")
)

// feed hands go-mp3 one unit at a time. It must not implement io.Seeker:
// go-mp3 scans seekable inputs for every frame start up front.
type feed struct {
	buf []byte
	off int
}

func (f *feed) Read(p []byte) (int, error) {
	if f.off >= len(f.buf) {
		return 0, io.EOF
	}

	n := copy(p, f.buf[f.off:])
	f.off += n
	return n, nil
}

func (f *feed) load(unit []byte) {
	f.buf = append(f.buf[:0], unit...)
	f.off = 0
}

func (f *feed) reset() {
	f.buf = f.buf[:0]
	f.off = 0
}

// UnitDecoder decodes one MPEG audio frame per call on top of a single
// long-lived go-mp3 decoder, so the bit reservoir carries from frame to frame.
// Only Layer III is supported; other layers fail with audio.ErrDecode.
type UnitDecoder struct {
	in  feed
	dec mp3Reader
	pcm []byte
}

func NewUnitDecoder() *UnitDecoder {
	return &UnitDecoder{
		in:  feed{buf: make([]byte, 0, frame.MaxLength)},
		pcm: make([]byte, 1152*outputChannels*bytesPerSample),
	}
}

// OutputFormat reports stereo whatever the header says.
func (*UnitDecoder) OutputFormat(header audio.Format) audio.Format {
	header.Channels = outputChannels
	header.BitDepth = 16
	return header
}

// DecodeUnit decodes unit into out. go-mp3 panics on some malformed main
// data; such a unit fails with audio.ErrDecode and the next unit starts on a
// fresh go-mp3 decoder.
func (u *UnitDecoder) DecodeUnit(unit []byte, out []int16) (n int, err error) {
	info, err := frame.Parse(unit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	// exactly one frame of PCM; reading further would hit the end of the
	// feed and make go-mp3 drop the previous frame
	need := info.SamplesPerFrame * outputChannels * bytesPerSample
	if len(out)*bytesPerSample < need {
		return 0, fmt.Errorf("%w: %w: %d < %d samples", audio.ErrDecode, ErrShortOutput, len(out), need/bytesPerSample)
	}
	if cap(u.pcm) < need {
		u.pcm = make([]byte, need)
	}

	u.in.load(unit)
	defer u.in.reset()

	defer func() {
		if r := recover(); r != nil {
			u.dec = nil
			n, err = 0, fmt.Errorf("%w: %w: %v", audio.ErrDecode, ErrMalformed, r)
		}
	}()

	if u.dec == nil {
		dec, err := newMP3Reader(&u.in)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", audio.ErrDecode, err)
		}
		u.dec = dec
	}

	read, err := io.ReadFull(u.dec, u.pcm[:need])
	if err != nil && read == 0 {
		return 0, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	return utils.BytesLEToInt16(out, u.pcm[:read]), nil
}

// Register adds the unit decoder to reg under Format.
func Register(reg *audio.Registry) {
	reg.Register(Format, func() audio.UnitDecoder { return NewUnitDecoder() })
}
