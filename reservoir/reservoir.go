// SPDX-License-Identifier: EPL-2.0

package reservoir

import (
	"errors"
	"fmt"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/frame"
)

// Reservoir is a fixed-size circular byte store for compressed input.
// It tracks a head index and an occupied length; occupied + free always
// equals the capacity. Nothing is allocated after New.
//
// Units are found through the decoder's Framer when it implements
// audio.Framed, as MPEG audio frames otherwise.
//
// A Reservoir is owned by a single driver and is not safe for concurrent use.
type Reservoir struct {
	buf     []byte
	head    int
	length  int
	scratch []byte
	hdr     []byte

	dec     audio.UnitDecoder
	framer  audio.Framer
	backlog audio.Backlogger

	// bytes of an ID3v2 tag still to be dropped from admitted data
	skip int

	discarded int64
	consumed  int64
}

// MinCapacity leaves room for a tag header and a unit header.
const MinCapacity = 64

// New creates a reservoir holding capacity bytes that decodes through dec.
// Units longer than capacity can never be buffered whole; they are skipped.
// Capacities above the framer's MaxUnitSize avoid that.
func New(capacity int, dec audio.UnitDecoder) (*Reservoir, error) {
	if dec == nil {
		return nil, ErrNilDecoder
	}

	var framer audio.Framer = frame.Framer{}
	if f, ok := dec.(audio.Framed); ok {
		framer = f.Framer()
	}

	if least := max(MinCapacity, 2*framer.MaxHeaderSize()); capacity < least {
		return nil, fmt.Errorf("%w: %d < %d", ErrCapacity, capacity, least)
	}

	r := &Reservoir{
		buf:     make([]byte, capacity),
		scratch: make([]byte, min(capacity, framer.MaxUnitSize())),
		hdr:     make([]byte, framer.MaxHeaderSize()),
		dec:     dec,
		framer:  framer,
	}
	r.backlog, _ = dec.(audio.Backlogger)

	return r, nil
}

func (r *Reservoir) Cap() int { return len(r.buf) }

// Len is the number of occupied bytes.
func (r *Reservoir) Len() int { return r.length }

// FreeSpace is the number of bytes Admit accepts right now.
func (r *Reservoir) FreeSpace() int { return len(r.buf) - r.length }

// Discarded counts bytes dropped while searching for a marker or skipping tags.
func (r *Reservoir) Discarded() int64 { return r.discarded }

// Consumed counts bytes handed to the decoder, failed units included.
func (r *Reservoir) Consumed() int64 { return r.consumed }

// Admit appends chunk in full, or fails with audio.ErrOverflow and leaves
// the reservoir untouched.
func (r *Reservoir) Admit(chunk []byte) error {
	if len(chunk) > r.FreeSpace() {
		return fmt.Errorf("%w: %d bytes, %d free", audio.ErrOverflow, len(chunk), r.FreeSpace())
	}

	if r.skip > 0 {
		drop := min(r.skip, len(chunk))
		chunk = chunk[drop:]
		r.skip -= drop
		r.discarded += int64(drop)
	}

	tail := (r.head + r.length) % len(r.buf)
	n := copy(r.buf[tail:], chunk)
	copy(r.buf, chunk[n:])
	r.length += len(chunk)

	return nil
}

// IsAligned reports whether a valid unit header sits at the front.
func (r *Reservoir) IsAligned() bool {
	_, err := r.PeekUnitInfo()
	return err == nil
}

// PeekUnitInfo parses the header at the front without consuming anything.
// It fails with an error matching audio.ErrParse when not aligned.
func (r *Reservoir) PeekUnitInfo() (audio.UnitHeader, error) {
	return r.parseAt(0)
}

// HasUnit reports whether DecodeNext has work: samples the decoder still
// holds back, or a complete, aligned unit.
func (r *Reservoir) HasUnit() bool {
	if r.backlogged() {
		return true
	}

	info, err := r.PeekUnitInfo()
	return err == nil && r.length >= info.Size()
}

// OutputFormat is the PCM format the decoder produces for the front unit.
// A unit whose header carries no format takes the decoder's, and fails with
// audio.ErrFormatUnknown while the decoder has none.
func (r *Reservoir) OutputFormat() (audio.Format, error) {
	info, err := r.PeekUnitInfo()
	if err != nil {
		return audio.Format{}, err
	}

	f := audio.OutputFormat(r.dec, info.Format())
	if f.IsZero() {
		return f, fmt.Errorf("%w: %s", audio.ErrFormatUnknown, info)
	}

	return f, nil
}

// SkipToMarker discards bytes until a unit header sits at the front.
// Calling it while aligned changes nothing. A leading ID3v2 tag is skipped
// whole; the part not yet buffered is dropped from later admissions.
//
// A header found past the front is only accepted when the header one unit
// further is consistent with it, or when that position is not buffered yet.
//
// When no header is found every byte is discarded except a trailing
// fragment that could begin one, and false is returned.
func (r *Reservoir) SkipToMarker() bool {
	for {
		if r.IsAligned() {
			return true
		}

		var hdr [10]byte
		h := r.peek(hdr[:], 0)
		if size, ok := frame.ID3v2Size(h); ok {
			drop := min(size, r.length)
			r.discard(drop)
			r.skip = size - drop
			continue
		}
		if frame.MaybeID3v2(h) {
			return false
		}

		break
	}

	marker := r.framer.Marker()
	for off := 0; off < r.length; off++ {
		if r.at(off) != marker {
			continue
		}

		info, err := r.parseAt(off)
		switch {
		case err == nil:
			if !r.confirmed(off, info) {
				continue
			}
			r.discard(off)
			return true

		case errors.Is(err, audio.ErrShortHeader) && r.framer.MayStart(r.peek(r.hdr, off)):
			r.discard(off)
			return false
		}
	}

	r.discard(r.length)

	return false
}

// DecodeNext hands exactly one unit to the decoder and consumes it.
//
// Not aligned: an error matching audio.ErrParse, nothing consumed.
// Unit not fully buffered: audio.ErrIncompleteUnit, nothing consumed.
// Decoder failure: the unit is still consumed, since its length is known
// from the header, and the error is wrapped in audio.ErrDecode. A unit that
// can never fit is dropped the same way, with ErrUnitTooLarge.
//
// Samples a decoder held back from the previous unit are handed out first,
// without touching the buffered bytes.
func (r *Reservoir) DecodeNext(out []int16) (int, error) {
	if r.backlogged() {
		return decodeResult(r.backlog.DecodeBacklog(out))
	}

	info, err := r.PeekUnitInfo()
	if err != nil {
		return 0, err
	}

	size := info.Size()
	if size > len(r.buf) {
		r.skip = size - r.length
		r.discard(r.length)
		return 0, fmt.Errorf("%w: %w: %d bytes", audio.ErrDecode, ErrUnitTooLarge, size)
	}
	if r.length < size {
		return 0, audio.ErrIncompleteUnit
	}

	unit := r.contiguous(size)
	n, err := r.dec.DecodeUnit(unit, out)

	r.consume(size)

	return decodeResult(n, err)
}

func decodeResult(n int, err error) (int, error) {
	if err != nil {
		if !errors.Is(err, audio.ErrDecode) {
			err = fmt.Errorf("%w: %w", audio.ErrDecode, err)
		}
		return 0, err
	}

	return n, nil
}

func (r *Reservoir) backlogged() bool {
	return r.backlog != nil && r.backlog.Backlogged()
}

func (r *Reservoir) at(off int) byte {
	return r.buf[(r.head+off)%len(r.buf)]
}

// peek copies up to len(dst) bytes starting at off.
func (r *Reservoir) peek(dst []byte, off int) []byte {
	n := min(len(dst), r.length-off)
	if n <= 0 {
		return dst[:0]
	}

	start := (r.head + off) % len(r.buf)
	c := copy(dst[:n], r.buf[start:])
	copy(dst[c:n], r.buf)

	return dst[:n]
}

func (r *Reservoir) parseAt(off int) (audio.UnitHeader, error) {
	return r.framer.Header(r.peek(r.hdr, off))
}

func (r *Reservoir) confirmed(off int, info audio.UnitHeader) bool {
	next := off + info.Size()
	if next >= r.length {
		return true
	}

	nextInfo, err := r.parseAt(next)
	if errors.Is(err, audio.ErrShortHeader) {
		return true
	}

	return err == nil && r.framer.Consistent(info, nextInfo)
}

// contiguous returns the first n bytes as one slice, using scratch when
// they wrap around the end of the arena.
func (r *Reservoir) contiguous(n int) []byte {
	if r.head+n <= len(r.buf) {
		return r.buf[r.head : r.head+n]
	}

	return r.peek(r.scratch[:n], 0)
}

func (r *Reservoir) discard(n int) {
	r.advance(n)
	r.discarded += int64(n)
}

func (r *Reservoir) consume(n int) {
	r.advance(n)
	r.consumed += int64(n)
}

func (r *Reservoir) advance(n int) {
	r.head = (r.head + n) % len(r.buf)
	r.length -= n
	if r.length == 0 {
		r.head = 0
	}
}
