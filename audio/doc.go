// SPDX-License-Identifier: EPL-2.0

// Package audio provides the contracts shared by the streaming pipeline.
//
// This package contains the pieces every stage agrees on:
//   - Format describing the PCM a stream decodes to
//   - UnitDecoder, the decode step contract
//   - Framer, which finds unit boundaries in the byte stream
//   - Registry for decoder constructors by format key
//   - Sentinel errors used to classify failures
//
// # Decode Step
//
// A UnitDecoder consumes exactly one aligned decodable unit and writes
// interleaved 16-bit samples:
//
//	type UnitDecoder interface {
//	    DecodeUnit(unit []byte, out []int16) (int, error)
//	}
//
// Zero samples is a valid result and is never pushed downstream. The decoder
// does not know about backpressure; the driver never calls it while an
// earlier block is undelivered.
//
// # Framing
//
// The reservoir finds units through a Framer. MPEG audio frames are the
// default; a decoder implementing Framed brings its own (Ogg pages for
// Vorbis). A decoder whose units can decode to more than one output block
// implements Backlogger and hands the rest out on later steps.
//
// # Format Registry
//
// Unit decoders carry state between units, so the registry stores
// constructors rather than instances:
//
//	registry := audio.NewRegistry()
//	mp3.Register(registry)
//	dec, err := registry.New("mp3")
//
// # Error Handling
//
// Failures are classified with errors.Is against the sentinels in this package:
//
//	n, err := res.DecodeNext(buf)
//	switch {
//	case errors.Is(err, audio.ErrIncompleteUnit):
//	    // admit more source data
//	case errors.Is(err, audio.ErrParse):
//	    // resynchronize
//	case errors.Is(err, audio.ErrDecode):
//	    // unit skipped, keep going
//	}
//
// Source exhaustion is reported as io.EOF and is not an error.
package audio
