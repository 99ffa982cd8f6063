// SPDX-License-Identifier: EPL-2.0

// Package frame parses MPEG audio frame headers.
//
// A frame starts with an 11-bit sync marker followed by fields that fully
// determine its byte length, so the header alone tells where the next frame
// begins:
//
//	info, err := frame.Parse(buf)
//	if err != nil {
//	    // not aligned, errors.Is(err, audio.ErrParse)
//	}
//	next := buf[info.Length:]
//
// Free format bitrates are rejected since their length cannot be derived
// from the header.
//
// ID3v2Size measures a leading ID3v2 tag so callers can skip it in one step
// instead of scanning its payload for false markers.
package frame
