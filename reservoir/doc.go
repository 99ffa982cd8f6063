// SPDX-License-Identifier: EPL-2.0

// Package reservoir implements the input reservoir: a fixed-size circular
// store of compressed bytes between a bursty source and the decode step.
//
// The driver admits source chunks only while they fit, aligns the front on a
// unit header and decodes one unit at a time:
//
//	res, _ := reservoir.New(4096, dec)
//	for res.FreeSpace() >= len(chunk) {
//	    _ = res.Admit(chunk)
//	}
//	if res.SkipToMarker() {
//	    n, err := res.DecodeNext(samples)
//	}
//
// Units that wrap around the end of the arena are copied into a fixed
// scratch area so the decoder always sees contiguous bytes.
//
// # Framing
//
// Unit boundaries come from the decoder's audio.Framer when it implements
// audio.Framed, and from frame.Framer (MPEG audio) otherwise. A decoder that
// implements audio.Backlogger may turn one unit into several output blocks;
// DecodeNext drains that backlog before it takes the next unit.
package reservoir
