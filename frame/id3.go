// SPDX-License-Identifier: EPL-2.0

package frame

const id3HeaderSize = 10

// ID3v2Size returns the full size of the ID3v2 tag at the start of b,
// header and optional footer included. ok is false when b does not start
// with a complete, well-formed tag header.
func ID3v2Size(b []byte) (size int, ok bool) {
	if len(b) < id3HeaderSize || b[0] != 'I' || b[1] != 'D' || b[2] != '3' {
		return 0, false
	}
	// version bytes are never 0xFF
	if b[3] == 0xFF || b[4] == 0xFF {
		return 0, false
	}

	// syncsafe integer: 7 bits per byte
	for _, c := range b[6:10] {
		if c&0x80 != 0 {
			return 0, false
		}
		size = size<<7 | int(c)
	}

	size += id3HeaderSize
	if b[5]&0x10 != 0 {
		size += id3HeaderSize // footer
	}

	return size, true
}

// MaybeID3v2 reports whether b could be the beginning of an ID3v2 header
// that is not fully buffered yet.
func MaybeID3v2(b []byte) bool {
	const magic = "ID3"
	if len(b) >= id3HeaderSize {
		return false
	}
	n := min(len(b), len(magic))
	return n > 0 && string(b[:n]) == magic[:n]
}
