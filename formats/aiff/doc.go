// SPDX-License-Identifier: EPL-2.0

// Package aiff records and reads 16-bit PCM AIFF files with
// github.com/go-audio/aiff.
//
// Sink works like the WAV sink: the drain engine passes the format through
// SetFormat, then writes little-endian PCM of any length.
//
//	sink, _ := aiff.Create("capture.aiff")
//	engine := output.NewEngine(sink, output.DefaultPeriod, 1, logger)
//
// ReadPCM16 loads a whole file back:
//
//	samples, format, err := aiff.ReadPCM16(file)
package aiff
