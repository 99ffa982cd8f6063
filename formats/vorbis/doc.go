// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis on top of github.com/jfreymuth/vorbis
// and github.com/jfreymuth/oggvorbis.
//
// # Unit Decoding
//
// UnitDecoder is the decode step of the streaming pipeline. Its unit is one
// Ogg page, found by Framer:
//
//	dec := vorbis.NewUnitDecoder()
//	n, err := dec.DecodeUnit(page, samples)
//	for dec.Backlogged() {
//	    n, err = dec.DecodeBacklog(samples)
//	}
//
// Packets are reassembled across pages and fed to one packet decoder per
// logical stream. A page can hold far more audio than one output block; the
// rest is handed out by DecodeBacklog in whole sample frames.
//
// Pages with a bad checksum fail with audio.ErrDecode and ErrChecksum. A
// packet whose start was lost is skipped. Pages of other multiplexed streams
// are ignored, and a new first page restarts the decoder, so chained files
// play through.
//
// # Whole Streams
//
// Decoder reads a complete file through oggvorbis, which is handy as a
// reference:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	n, err := src.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: int16, interleaved, clamped from float32
//   - Channels and sample rate: taken from the identification header
//
// The format is known once the first page is seen. Until then pages carry
// none, and a stream joined in the middle has no format at all.
package vorbis
