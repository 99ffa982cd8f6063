// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 decoding on top of github.com/hajimehoshi/go-mp3.
//
// # Unit Decoding
//
// UnitDecoder is the decode step of the streaming pipeline. It takes exactly
// one MPEG audio frame per call:
//
//	dec := mp3.NewUnitDecoder()
//	n, err := dec.DecodeUnit(frame, samples)
//
// A single go-mp3 decoder lives across calls, so frames that borrow bits from
// earlier frames (the bit reservoir) decode correctly. A frame that fails is
// reported with audio.ErrDecode and leaves nothing behind for the next one.
//
// # Whole Streams
//
// Decoder reads a complete stream, which is handy as a reference:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	n, err := src.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: int16, interleaved
//   - Channels: always 2, mono streams are duplicated
//   - Sample rate: taken from the stream
//
// # Limitations
//
// go-mp3 decodes MPEG-1 and MPEG-2 Layer III only. MPEG-2.5 and Layers I and II
// fail per frame with audio.ErrDecode.
package mp3
