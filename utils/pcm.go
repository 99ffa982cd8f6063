// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

// Int16ToBytesLE writes src as little-endian 16-bit PCM into dst and returns
// the written prefix. dst must hold at least 2*len(src) bytes.
func Int16ToBytesLE(dst []byte, src []int16) []byte {
	dst = dst[:len(src)*2]
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(s))
	}

	return dst
}

// BytesLEToInt16 reads little-endian 16-bit PCM from src into dst and returns
// the number of samples written. A trailing odd byte is ignored.
func BytesLEToInt16(dst []int16, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := range n {
		dst[i] = int16(binary.LittleEndian.Uint16(src[2*i:]))
	}

	return n
}
