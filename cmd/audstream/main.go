// SPDX-License-Identifier: EPL-2.0

// Command audstream plays an MP3 or Ogg Vorbis file with a fixed memory
// footprint, either on the sound card or into a WAV or AIFF capture file.
//
//	audstream -in song.mp3 -out capture.wav
//	audstream -in song.ogg -out capture.aiff -verify
//	audstream -in song.mp3 -device   (needs -tags malgo)
//
// The codec follows the input extension unless -format names it. With
// -verify the input is decoded once more as a whole and the sample count
// compared with what was streamed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ik5/audstream"
	"github.com/ik5/audstream/internal/log"
	"github.com/ik5/audstream/pipeline"
)

var (
	successExitCode = 0
	errorExitCode   = 1
)

// options are the parsed command line.
type options struct {
	in     string
	out    string
	device bool
	verify bool

	ring   int
	speed  float64
	linger time.Duration

	stream audstream.Options
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		opts options
		cfg  = pipeline.DefaultConfig()
	)

	fs := flag.NewFlagSet("audstream", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input MP3 or Ogg Vorbis file")
	fs.StringVar(&opts.out, "out", "", "capture the output into this WAV file")
	fs.BoolVar(&opts.device, "device", false, "play on the default sound card")
	fs.IntVar(&opts.ring, "ring", 32768, "output ring capacity in bytes")
	fs.Float64Var(&opts.speed, "speed", 1, "capture drain speed, 1 is real time")
	fs.DurationVar(&opts.linger, "linger", 2*time.Second, "how long to let queued audio play out")
	fs.BoolVar(&opts.verify, "verify", false, "decode the input again as a whole and compare sample counts")
	fs.StringVar(&opts.stream.Format, "format", "", "input codec, mp3 or vorbis; taken from the extension when empty")
	fs.IntVar(&opts.stream.ReservoirSize, "reservoir", 0, "input reservoir capacity in bytes, 0 for the codec default")
	fs.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "bytes read from the input per step")
	fs.IntVar(&cfg.Headroom, "headroom", cfg.Headroom, "push a block only when the ring has this many times its size free")
	fs.IntVar(&cfg.MaxResyncs, "max-resyncs", cfg.MaxResyncs, "failed marker searches tolerated in a row")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.in == "":
		return opts, errors.New("-in is required")
	case opts.out == "" && !opts.device:
		return opts, errors.New("one of -out or -device is required")
	case opts.out != "" && opts.device:
		return opts, errors.New("-out and -device are mutually exclusive")
	case opts.ring <= 0:
		return opts, fmt.Errorf("-ring must be positive, got %d", opts.ring)
	case opts.stream.ReservoirSize < 0:
		return opts, fmt.Errorf("-reservoir must not be negative, got %d", opts.stream.ReservoirSize)
	}

	if opts.stream.Format == "" {
		opts.stream.Format = formatFor(opts.in)
	}

	if err := cfg.Validate(); err != nil {
		return opts, err
	}
	opts.stream.Config = cfg

	return opts, nil
}

func run(args []string, stderr io.Writer) int {
	logger := log.GetLogger()

	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return successExitCode
		}
		fmt.Fprintf(stderr, "audstream: %v\n", err)
		return errorExitCode
	}
	opts.stream.Logger = logger

	if err := play(opts, logger); err != nil {
		logger.WithError(err).Error("playback failed")
		return errorExitCode
	}

	return successExitCode
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
