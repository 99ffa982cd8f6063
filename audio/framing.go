// SPDX-License-Identifier: EPL-2.0

package audio

// UnitHeader is the parsed header of one decodable unit.
type UnitHeader interface {
	// Size of the whole unit, header included.
	Size() int
	// Format announced by the header, zero when the header carries none.
	Format() Format
	String() string
}

// Framer finds unit boundaries in a compressed byte stream.
type Framer interface {
	// Marker is the first byte of every unit header.
	Marker() byte
	// MaxHeaderSize is the most bytes Header looks at.
	MaxHeaderSize() int
	// MaxUnitSize is the largest unit the framer accepts.
	MaxUnitSize() int
	// Header parses the header at the start of b. Failures match ErrParse,
	// and ErrShortHeader when b ends before the header can be judged.
	Header(b []byte) (UnitHeader, error)
	// Consistent reports whether next may follow cur in the same stream.
	Consistent(cur, next UnitHeader) bool
	// MayStart reports whether tail, the last buffered bytes, could be the
	// beginning of a header.
	MayStart(tail []byte) bool
}

// Framed is implemented by unit decoders that bring their own framing.
// Decoders that do not are fed MPEG audio frames.
type Framed interface {
	Framer() Framer
}

// Backlogger is implemented by unit decoders that can produce more samples
// for one unit than fit in one output block. The rest is handed out through
// DecodeBacklog before the next unit is taken.
type Backlogger interface {
	Backlogged() bool
	DecodeBacklog(out []int16) (int, error)
}
