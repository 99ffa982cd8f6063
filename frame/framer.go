// SPDX-License-Identifier: EPL-2.0

package frame

import "github.com/ik5/audstream/audio"

// Framer finds MPEG audio frames. It is the framing used for decoders that
// bring none of their own.
type Framer struct{}

var _ audio.Framer = Framer{}

func (Framer) Marker() byte       { return 0xFF }
func (Framer) MaxHeaderSize() int { return HeaderSize }
func (Framer) MaxUnitSize() int   { return MaxLength }

func (Framer) Header(b []byte) (audio.UnitHeader, error) {
	info, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Consistent compares two UnitInfo headers. Other header types never match.
func (Framer) Consistent(cur, next audio.UnitHeader) bool {
	a, ok := cur.(UnitInfo)
	if !ok {
		return false
	}
	b, ok := next.(UnitInfo)
	return ok && Consistent(a, b)
}

// MayStart accepts a lone 0xFF or a partial sync word.
func (Framer) MayStart(tail []byte) bool {
	switch {
	case len(tail) == 0 || len(tail) >= HeaderSize:
		return false
	case tail[0] != 0xFF:
		return false
	case len(tail) > 1 && tail[1]&0xE0 != 0xE0:
		return false
	}
	return true
}
