// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/audstream/audio"
)

const (
	capture = "OggS"

	// PageHeaderSize is the fixed part of a page header; the segment table
	// follows it.
	PageHeaderSize = 27

	// MaxPageSize is a page with 255 segments of 255 bytes.
	MaxPageSize = PageHeaderSize + 255 + 255*255

	// bytes of the identification packet needed to read the format
	identSize = 16

	maxLacing = 255
)

const (
	flagContinued = 1 << iota
	flagFirst
	flagLast
)

// Page is a parsed Ogg page header. On the first page of a Vorbis stream it
// also carries the sample rate and channel count of the identification
// header.
type Page struct {
	Flags     byte
	Granule   int64
	Serial    uint32
	Sequence  uint32
	Checksum  uint32
	Segments  int
	HeaderLen int // header plus segment table
	Length    int // whole page

	Vorbis     bool
	SampleRate int
	Channels   int
}

func (p Page) Size() int { return p.Length }

// Continued reports whether the first packet started on an earlier page.
func (p Page) Continued() bool { return p.Flags&flagContinued != 0 }

// First reports whether the page opens a logical stream.
func (p Page) First() bool { return p.Flags&flagFirst != 0 }

// Last reports whether the page closes a logical stream.
func (p Page) Last() bool { return p.Flags&flagLast != 0 }

// Format is known only on the first page of a Vorbis stream.
func (p Page) Format() audio.Format {
	if !p.Vorbis {
		return audio.Format{}
	}
	return audio.Format{SampleRate: p.SampleRate, Channels: p.Channels, BitDepth: 16}
}

func (p Page) String() string {
	return fmt.Sprintf("ogg page %d of stream %08x, %d segments, %d bytes",
		p.Sequence, p.Serial, p.Segments, p.Length)
}

// ParsePage reads the page header at the start of b. It looks past the
// segment table only on a first page, for the identification header.
func ParsePage(b []byte) (Page, error) {
	var p Page

	n := min(len(b), len(capture))
	if string(b[:n]) != capture[:n] {
		return p, ErrNoCapture
	}
	if len(b) < PageHeaderSize {
		return p, ErrShortPage
	}
	if b[4] != 0 {
		return p, ErrPageVersion
	}

	p.Flags = b[5]
	if p.Flags&^(flagContinued|flagFirst|flagLast) != 0 {
		return p, ErrPageFlags
	}
	p.Granule = int64(binary.LittleEndian.Uint64(b[6:]))
	p.Serial = binary.LittleEndian.Uint32(b[14:])
	p.Sequence = binary.LittleEndian.Uint32(b[18:])
	p.Checksum = binary.LittleEndian.Uint32(b[22:])
	p.Segments = int(b[26])
	p.HeaderLen = PageHeaderSize + p.Segments

	if len(b) < p.HeaderLen {
		return p, ErrShortPage
	}

	p.Length = p.HeaderLen
	for _, l := range b[PageHeaderSize:p.HeaderLen] {
		p.Length += int(l)
	}

	if !p.First() || p.Segments == 0 || b[PageHeaderSize] < identSize {
		return p, nil
	}
	if len(b) < p.HeaderLen+identSize {
		return p, ErrShortPage
	}

	ident := b[p.HeaderLen : p.HeaderLen+identSize]
	if ident[0] != 1 || string(ident[1:7]) != "vorbis" {
		return p, nil
	}

	p.Channels = int(ident[11])
	p.SampleRate = int(binary.LittleEndian.Uint32(ident[12:]))
	if binary.LittleEndian.Uint32(ident[7:]) != 0 || p.Channels == 0 || p.SampleRate == 0 {
		return p, ErrBadIdent
	}
	p.Vorbis = true

	return p, nil
}

// Framer finds Ogg pages.
type Framer struct{}

var _ audio.Framer = Framer{}

func (Framer) Marker() byte       { return capture[0] }
func (Framer) MaxHeaderSize() int { return PageHeaderSize + maxLacing + identSize }
func (Framer) MaxUnitSize() int   { return MaxPageSize }

func (Framer) Header(b []byte) (audio.UnitHeader, error) {
	p, err := ParsePage(b)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Consistent expects the next page of the same logical stream to carry the
// next sequence number. Pages of other streams are always accepted.
func (Framer) Consistent(cur, next audio.UnitHeader) bool {
	a, ok := cur.(Page)
	if !ok {
		return false
	}
	b, ok := next.(Page)
	if !ok {
		return false
	}

	return a.Serial != b.Serial || b.Sequence == a.Sequence+1
}

func (Framer) MayStart(tail []byte) bool {
	n := min(len(tail), len(capture))
	if n == 0 || string(tail[:n]) != capture[:n] {
		return false
	}
	return len(tail) <= 4 || tail[4] == 0
}

var crcTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04C11DB7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// Checksum computes the CRC of a whole page, reading its checksum field as
// zero.
func Checksum(page []byte) uint32 {
	var crc uint32
	for i, b := range page {
		if i >= 22 && i < 26 {
			b = 0
		}
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
