// SPDX-License-Identifier: EPL-2.0

package streamtest

import "encoding/binary"

// Ogg page flags.
const (
	OggContinued = 1
	OggFirst     = 2
	OggLast      = 4
)

// OggPage describes one page to build.
type OggPage struct {
	Flags    byte
	Serial   uint32
	Sequence uint32
	Granule  int64
	Lacing   []byte
	Body     []byte
}

// Bytes encodes the page with a valid checksum.
func (p OggPage) Bytes() []byte {
	b := make([]byte, 27, 27+len(p.Lacing)+len(p.Body))
	copy(b, "OggS")
	b[5] = p.Flags
	binary.LittleEndian.PutUint64(b[6:], uint64(p.Granule))
	binary.LittleEndian.PutUint32(b[14:], p.Serial)
	binary.LittleEndian.PutUint32(b[18:], p.Sequence)
	b[26] = byte(len(p.Lacing))
	b = append(b, p.Lacing...)
	b = append(b, p.Body...)

	binary.LittleEndian.PutUint32(b[22:], oggCRC(b))
	return b
}

// Lace packs whole packets into a segment table and body.
func Lace(packets ...[]byte) (lacing, body []byte) {
	for _, pkt := range packets {
		n := len(pkt)
		for ; n >= 255; n -= 255 {
			lacing = append(lacing, 255)
		}
		lacing = append(lacing, byte(n))
		body = append(body, pkt...)
	}
	return lacing, body
}

// Page builds a page holding whole packets.
func Page(flags byte, serial, seq uint32, packets ...[]byte) []byte {
	lacing, body := Lace(packets...)
	return OggPage{Flags: flags, Serial: serial, Sequence: seq, Lacing: lacing, Body: body}.Bytes()
}

// VorbisIdent is a valid identification header with 256 and 2048 sample
// blocks.
func VorbisIdent(channels, rate int) []byte {
	b := make([]byte, 30)
	copy(b, "\x01vorbis")
	b[11] = byte(channels)
	binary.LittleEndian.PutUint32(b[12:], uint32(rate))
	b[28] = 0xB8
	b[29] = 1
	return b
}

// VorbisComment is a comment header with an empty vendor and no comments.
func VorbisComment() []byte {
	b := make([]byte, 16)
	copy(b, "\x03vorbis")
	b[15] = 1
	return b
}

// oggCRC is the bitwise form of the Ogg checksum, computed over a page
// whose checksum field is still zero.
func oggCRC(b []byte) uint32 {
	var crc uint32
	for _, c := range b {
		crc ^= uint32(c) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
