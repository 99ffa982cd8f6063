// SPDX-License-Identifier: EPL-2.0

// Package audstream streams compressed audio to a playback device with a
// fixed, small amount of memory.
//
// Bytes flow through four stages, each with a bounded buffer:
//
//	source -> reservoir -> decode step -> output ring -> hardware
//
// The source hands out chunks (package source). The reservoir holds raw bytes
// and finds unit boundaries (package reservoir, using package frame). The
// decode step turns exactly one unit into PCM (formats/mp3). The output ring
// is drained by the hardware at its own rate (package output). The driver in
// package pipeline ties them together and applies backpressure: a decoded
// block is only pushed when the ring has room for twice its size.
//
// # Quick Start
//
// Stream builds the reservoir and driver for you:
//
//	src, _ := source.Open("song.mp3", 0)
//	defer src.Close()
//
//	ring, _ := output.NewRing(32768, output.NewDevice(logger), logger)
//	stats, err := audstream.Stream(ctx, src, ring, audstream.Options{Logger: logger})
//
// Without a sound card, output.Engine drains the ring in real time into any
// io.Writer, for example a WAV capture:
//
//	sink, _ := wav.Create("capture.wav")
//	engine := output.NewEngine(sink, output.DefaultPeriod, 1, logger)
//	ring, _ := output.NewRing(32768, engine, logger)
//
// # Memory
//
// Nothing grows with the stream. The reservoir is ReservoirSize bytes, the
// pending block holds one decoded unit and the ring has a fixed capacity.
// A stream of any length plays in the same footprint.
//
// # Errors
//
// Junk and tags before the first unit are skipped. A unit that fails to
// decode is dropped and the stream continues. See package pipeline for the
// full policy.
//
// See the individual subpackages for more detailed documentation.
package audstream
