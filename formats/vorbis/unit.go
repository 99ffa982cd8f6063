// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	jvorbis "github.com/jfreymuth/vorbis"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

// Format is the registry key of this codec.
const Format = "vorbis"

// DefaultReservoirSize holds the largest Ogg page.
const DefaultReservoirSize = 65536

// maxPacketSize bounds a packet assembled across pages.
const maxPacketSize = 1 << 18

// packetDecoder is the part of jfreymuth/vorbis.Decoder used here.
type packetDecoder interface {
	ReadHeader(packet []byte) error
	HeadersRead() bool
	SampleRate() int
	Channels() int
	BufferSize() int
	DecodeInto(packet []byte, buf []float32) ([]float32, error)
	Clear()
}

var newPacketDecoder = func() packetDecoder { return &jvorbis.Decoder{} }

// UnitDecoder decodes one Ogg page per call. Packets are assembled across
// pages and fed to a jfreymuth/vorbis decoder that lives for the whole
// logical stream. A page usually holds more audio than one output block, so
// what does not fit is handed out by DecodeBacklog.
type UnitDecoder struct {
	open   func() packetDecoder
	dec    packetDecoder
	serial uint32
	seq    uint32
	format audio.Format

	body   []byte
	lacing []byte
	seg    int
	off    int

	packet []byte
	// dropping the rest of a packet whose start was lost
	partial bool

	pcm []float32
	buf []float32
	err error
}

func NewUnitDecoder() *UnitDecoder {
	return &UnitDecoder{
		open:   newPacketDecoder,
		body:   make([]byte, 0, MaxPageSize),
		lacing: make([]byte, 0, maxLacing),
	}
}

func (*UnitDecoder) Framer() audio.Framer { return Framer{} }

// OutputFormat is the header's format on a first page and the stream's
// format on every other page.
func (u *UnitDecoder) OutputFormat(header audio.Format) audio.Format {
	if header.IsZero() {
		return u.format
	}
	return header
}

func (u *UnitDecoder) DecodeUnit(unit []byte, out []int16) (int, error) {
	page, err := ParsePage(unit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}
	if page.Length != len(unit) {
		return 0, fmt.Errorf("%w: %w: page of %d bytes in a unit of %d", audio.ErrDecode, audio.ErrParse, page.Length, len(unit))
	}
	if sum := Checksum(unit); sum != page.Checksum {
		u.lose(true)
		return 0, fmt.Errorf("%w: %w: %08x != %08x", audio.ErrDecode, ErrChecksum, sum, page.Checksum)
	}

	switch {
	case page.First() && page.Vorbis:
		u.restart(page)
	case page.First():
		// another codec multiplexed into the file
		return 0, nil
	case u.dec == nil:
		return 0, fmt.Errorf("%w: %w", audio.ErrDecode, ErrNoStream)
	case page.Serial != u.serial:
		return 0, nil
	case page.Sequence != u.seq+1:
		u.lose(page.Continued())
	}
	u.seq = page.Sequence

	switch {
	case page.Continued() && len(u.packet) == 0 && !u.partial:
		u.lose(true)
	case !page.Continued() && (len(u.packet) > 0 || u.partial):
		u.lose(false)
	}

	u.lacing = append(u.lacing[:0], unit[PageHeaderSize:page.HeaderLen]...)
	u.body = append(u.body[:0], unit[page.HeaderLen:]...)
	u.seg, u.off = 0, 0

	return u.DecodeBacklog(out)
}

func (u *UnitDecoder) restart(page Page) {
	u.dec = u.open()
	u.serial = page.Serial
	u.seq = page.Sequence
	u.format = page.Format()
	u.packet, u.partial = u.packet[:0], false
	u.pcm, u.err = nil, nil
}

// lose drops the packet being assembled after a gap in the stream. With
// partial set, the start of the next page belongs to a packet that is gone.
func (u *UnitDecoder) lose(partial bool) {
	u.packet, u.partial = u.packet[:0], partial
	if u.dec != nil {
		u.dec.Clear()
	}
}

// Backlogged reports whether samples or packets of the last page are left.
func (u *UnitDecoder) Backlogged() bool {
	return len(u.pcm) > 0 || u.seg < len(u.lacing) || u.err != nil
}

// DecodeBacklog hands out whole sample frames of the current page. A packet
// that fails after samples were written is reported on the next call.
func (u *UnitDecoder) DecodeBacklog(out []int16) (int, error) {
	if err := u.err; err != nil {
		u.err = nil
		return 0, err
	}

	n := 0
	for {
		if len(u.pcm) > 0 {
			ch := max(u.format.Channels, 1)
			room := (len(out) - n) / ch * ch
			if room == 0 {
				if n == 0 {
					u.pcm = nil
					return 0, fmt.Errorf("%w: %w: %d < %d", audio.ErrDecode, ErrShortOutput, len(out), ch)
				}
				return n, nil
			}

			c := utils.Float32sToInt16(out[n:n+min(room, len(u.pcm))], u.pcm)
			u.pcm = u.pcm[c:]
			n += c
			continue
		}

		pkt, ok := u.nextPacket()
		if !ok {
			return n, nil
		}

		if err := u.decodePacket(pkt); err != nil {
			if n == 0 {
				return 0, err
			}
			u.err = err
			return n, nil
		}
	}
}

// nextPacket returns the next packet completed on the current page.
func (u *UnitDecoder) nextPacket() ([]byte, bool) {
	for u.seg < len(u.lacing) {
		l := int(u.lacing[u.seg])
		seg := u.body[u.off : u.off+l]
		u.seg++
		u.off += l

		if u.partial {
			u.partial = l == maxLacing
			continue
		}
		if len(u.packet)+l > maxPacketSize {
			u.lose(l == maxLacing)
			u.err = fmt.Errorf("%w: %w", audio.ErrDecode, ErrPacketSize)
			continue
		}

		u.packet = append(u.packet, seg...)
		if l < maxLacing {
			pkt := u.packet
			u.packet = u.packet[:0]
			return pkt, true
		}
	}

	return nil, false
}

func (u *UnitDecoder) decodePacket(pkt []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			u.pcm = nil
			u.dec.Clear()
			err = fmt.Errorf("%w: %w: %v", audio.ErrDecode, ErrMalformed, r)
		}
	}()

	if !u.dec.HeadersRead() {
		if err := u.dec.ReadHeader(pkt); err != nil {
			return fmt.Errorf("%w: header: %w", audio.ErrDecode, err)
		}
		if u.dec.HeadersRead() {
			u.format = audio.Format{SampleRate: u.dec.SampleRate(), Channels: u.dec.Channels(), BitDepth: 16}
		}
		return nil
	}

	if size := u.dec.BufferSize(); cap(u.buf) < size {
		u.buf = make([]float32, size)
	}

	pcm, err := u.dec.DecodeInto(pkt, u.buf[:cap(u.buf)])
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}
	u.pcm = pcm

	return nil
}

// Register adds the unit decoder to reg under Format.
func Register(reg *audio.Registry) {
	reg.Register(Format, func() audio.UnitDecoder { return NewUnitDecoder() })
}
