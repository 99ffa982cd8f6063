// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audstream"
	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats/aiff"
	"github.com/ik5/audstream/formats/mp3"
	"github.com/ik5/audstream/formats/vorbis"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/output"
	"github.com/ik5/audstream/pipeline"
	"github.com/ik5/audstream/source"
)

// play streams opts.in until it ends or the process is interrupted.
func play(opts options, logger *logrus.Logger) error {
	src, err := source.Open(opts.in, opts.stream.Config.ChunkSize)
	if err != nil {
		return err
	}
	defer src.Close()

	var (
		hw   output.Hardware
		sink captureSink
	)
	if opts.device {
		hw, err = newDevice(logger)
		if err != nil {
			return err
		}
	} else {
		sink, err = createCapture(opts.out)
		if err != nil {
			return err
		}
		hw = output.NewEngine(sink, output.DefaultPeriod, opts.speed, logger)
	}

	ring, err := output.NewRing(opts.ring, hw, logger)
	if err != nil {
		return err
	}
	ring.Linger = opts.linger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, ctx := errgroup.WithContext(ctx)

	var stats pipeline.Stats

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig.String()).Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()

		started := time.Now()
		var err error
		stats, err = audstream.Stream(ctx, src, ring, opts.stream)
		logger.WithFields(logrus.Fields{
			"format":        opts.stream.Format,
			"units":         stats.Units,
			"samples":       stats.Samples,
			"discarded":     stats.Discarded,
			"decode_errors": stats.DecodeErrors,
			"underruns":     ring.Underruns(),
			"elapsed":       time.Since(started).Round(time.Millisecond).String(),
		}).Info("playback done")

		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()

	if sink != nil {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close capture: %w", cerr)
		}
		if err == nil {
			summarize(opts.out, logger)
		}
	}

	if opts.verify && err == nil {
		verify(opts.in, opts.stream.Format, stats.Samples, logger)
	}

	return err
}

// formatFor picks the codec from the file extension, MP3 unless it is .ogg
// or .oga.
func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".oga":
		return vorbis.Format
	}
	return mp3.Format
}

// referenceSamples decodes path as a whole with the reference decoder of
// format.
func referenceSamples(path, format string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	switch format {
	case mp3.Format:
		return mp3.CountSamples(f)
	case vorbis.Format:
		return vorbis.CountSamples(f)
	}
	return 0, fmt.Errorf("%w: no reference decoder for %q", audio.ErrUnknownFormat, format)
}

// verify logs how the streamed sample count compares with the reference
// decoder.
func verify(path, format string, streamed int64, logger logrus.FieldLogger) {
	want, err := referenceSamples(path, format)
	if err != nil {
		logger.WithError(err).Warn("cannot verify")
		return
	}

	entry := logger.WithFields(logrus.Fields{
		"streamed":  streamed,
		"reference": want,
	})
	if int64(want) != streamed {
		entry.Warn("sample count differs from the reference decoder")
		return
	}
	entry.Info("sample count matches the reference decoder")
}

// captureSink is a container file the engine records into.
type captureSink interface {
	output.FormatSink
	io.Closer
}

func isAIFF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".aif", ".aiff":
		return true
	}
	return false
}

// createCapture picks the container from the file extension, WAV unless it
// is .aif or .aiff.
func createCapture(path string) (captureSink, error) {
	if isAIFF(path) {
		return aiff.Create(path)
	}
	return wav.Create(path)
}

func readCapture(path string) ([]int16, audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, err
	}
	defer f.Close()

	if isAIFF(path) {
		return aiff.ReadPCM16(f)
	}
	return wav.ReadPCM16(f)
}

// summarize logs what ended up in the capture file.
func summarize(path string, logger logrus.FieldLogger) {
	samples, format, err := readCapture(path)
	if err != nil {
		logger.WithError(err).Warn("cannot read capture")
		return
	}

	frames := len(samples) / max(format.Channels, 1)
	logger.WithFields(logrus.Fields{
		"path":     path,
		"rate":     format.SampleRate,
		"channels": format.Channels,
		"duration": (time.Duration(frames) * time.Second / time.Duration(max(format.SampleRate, 1))).String(),
	}).Info("capture written")
}
