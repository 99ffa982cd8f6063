// SPDX-License-Identifier: EPL-2.0

// Package wav records and reads 16-bit PCM WAV files with github.com/go-audio/wav.
//
// # Capturing
//
// Sink is an io.Writer for raw little-endian PCM. The drain engine learns the
// stream format when the transfer starts and passes it through SetFormat
// before the first block:
//
//	sink, _ := wav.Create("capture.wav")
//	engine := output.NewEngine(sink, output.DefaultPeriod, 1, logger)
//	// ... stream ...
//	sink.Close() // patches the RIFF sizes
//
// Writes of any length are accepted; partial frames wait for the next write.
//
// # Reading
//
//	samples, format, err := wav.ReadPCM16(file)
//
// Only PCM with 16 bits per sample is supported.
package wav
