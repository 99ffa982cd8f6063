// SPDX-License-Identifier: EPL-2.0

// Package streamtest holds test helpers for the streaming pipeline:
// synthetic MPEG frames, mock unit decoders and a mock output.
package streamtest

import (
	"bytes"

	"github.com/ik5/audstream/frame"
)

// Common headers.
var (
	// MPEG-1 Layer III, 128 kbps, 44.1 kHz, joint stereo. 417 bytes.
	HeaderMPEG1 = [4]byte{0xFF, 0xFB, 0x90, 0x64}
	// Same as HeaderMPEG1 with the padding bit set. 418 bytes.
	HeaderMPEG1Padded = [4]byte{0xFF, 0xFB, 0x92, 0x64}
	// MPEG-2 Layer III, 64 kbps, 22.05 kHz, mono. 208 bytes.
	HeaderMPEG2Mono = [4]byte{0xFF, 0xF3, 0x80, 0xC0}
)

// Frame builds one frame with the given header and a zeroed body. With a
// Layer III header the zero side info decodes to silence.
func Frame(header [4]byte) []byte {
	info, err := frame.Parse(header[:])
	if err != nil {
		panic("streamtest: invalid header: " + err.Error())
	}

	b := make([]byte, info.Length)
	copy(b, header[:])
	return b
}

// Frames concatenates n frames built from header.
func Frames(header [4]byte, n int) []byte {
	return bytes.Repeat(Frame(header), n)
}

// ID3v2 builds an ID3v2.4 tag whose total size, header included, is size bytes.
// The payload is filled with fill so callers can plant false sync markers.
func ID3v2(size int, fill byte) []byte {
	if size < 10 {
		panic("streamtest: tag smaller than its header")
	}

	b := make([]byte, size)
	copy(b, "ID3")
	b[3] = 4
	body := size - 10
	b[6] = byte(body>>21) & 0x7F
	b[7] = byte(body>>14) & 0x7F
	b[8] = byte(body>>7) & 0x7F
	b[9] = byte(body) & 0x7F
	for i := 10; i < size; i++ {
		b[i] = fill
	}

	return b
}

// Join concatenates byte slices.
func Join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// MixedBlockFrame is an MPEG-2 Layer III mono frame (HeaderMPEG2Mono) whose
// side info announces a mixed short block with no scale factor bits.
// go-mp3 v0.3.4 indexes past its scale factor list on it and panics.
func MixedBlockFrame() []byte {
	b := Frame(HeaderMPEG2Mono)

	// side info follows the header: window switching set, then block type 2
	// and the mixed block flag
	b[frame.HeaderSize+5] = 0x01
	b[frame.HeaderSize+6] = 0xA0

	return b
}
