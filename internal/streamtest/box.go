// SPDX-License-Identifier: EPL-2.0

package streamtest

import (
	"fmt"

	"github.com/ik5/audstream/audio"
)

// BoxHeader frames test units as 'B' 'X' <size> <channels>. Zero channels
// means the header carries no format.
type BoxHeader struct {
	Length   int
	Channels int
}

func (h BoxHeader) Size() int { return h.Length }

func (h BoxHeader) Format() audio.Format {
	if h.Channels == 0 {
		return audio.Format{}
	}
	return audio.Format{SampleRate: 8000, Channels: h.Channels, BitDepth: 16}
}

func (h BoxHeader) String() string { return fmt.Sprintf("box %d bytes", h.Length) }

// BoxFramer finds boxes. HeaderSize raises MaxHeaderSize above the 4 bytes
// a box header needs.
type BoxFramer struct{ HeaderSize int }

var _ audio.Framer = BoxFramer{}

func (f BoxFramer) Marker() byte       { return 'B' }
func (f BoxFramer) MaxHeaderSize() int { return max(f.HeaderSize, 4) }
func (f BoxFramer) MaxUnitSize() int   { return 255 }

func (BoxFramer) Header(b []byte) (audio.UnitHeader, error) {
	switch {
	case len(b) > 0 && b[0] != 'B', len(b) > 1 && b[1] != 'X':
		return nil, fmt.Errorf("%w: no box", audio.ErrParse)
	case len(b) < 4:
		return nil, fmt.Errorf("%w: %w", audio.ErrParse, audio.ErrShortHeader)
	case b[2] < 4:
		return nil, fmt.Errorf("%w: box too small", audio.ErrParse)
	}
	return BoxHeader{Length: int(b[2]), Channels: int(b[3])}, nil
}

func (BoxFramer) Consistent(cur, next audio.UnitHeader) bool {
	_, ok := next.(BoxHeader)
	return ok
}

func (BoxFramer) MayStart(tail []byte) bool {
	return len(tail) < 4 && (len(tail) < 2 || tail[1] == 'X')
}

// Box builds a zeroed box of size bytes.
func Box(size, channels int) []byte {
	b := make([]byte, size)
	copy(b, []byte{'B', 'X', byte(size), byte(channels)})
	return b
}

// BoxDecoder produces PerUnit sequential samples for every box and hands
// out what does not fit in out on later calls. Until a box announcing a
// format is decoded, boxes without one have no format.
type BoxDecoder struct {
	Framing BoxFramer
	PerUnit int

	left   int
	next   int16
	format audio.Format
	units  int
}

func (d *BoxDecoder) Framer() audio.Framer { return d.Framing }

func (d *BoxDecoder) OutputFormat(header audio.Format) audio.Format {
	if header.IsZero() {
		return d.format
	}
	return header
}

// Learn sets the format boxes without one decode to.
func (d *BoxDecoder) Learn(f audio.Format) { d.format = f }

func (d *BoxDecoder) DecodeUnit(unit []byte, out []int16) (int, error) {
	d.units++
	if h, err := d.Framing.Header(unit); err == nil && !h.Format().IsZero() {
		d.format = h.Format()
	}

	d.left = d.PerUnit
	return d.DecodeBacklog(out)
}

func (d *BoxDecoder) Backlogged() bool { return d.left > 0 }

func (d *BoxDecoder) DecodeBacklog(out []int16) (int, error) {
	n := min(d.left, len(out))
	for i := range n {
		out[i] = d.next
		d.next++
	}
	d.left -= n
	return n, nil
}

// Units is the number of boxes decoded.
func (d *BoxDecoder) Units() int { return d.units }
