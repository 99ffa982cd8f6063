// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/log"
	"github.com/ik5/audstream/source"
)

// Output is the playback side of the pipeline. Push must copy data before
// returning; the driver reuses the slice.
type Output interface {
	Start(format audio.Format) error
	Available() int
	Push(data []byte) error
	Stop() error
}

// Reservoir is the input side as the driver uses it. *reservoir.Reservoir
// implements it.
type Reservoir interface {
	Cap() int
	Len() int
	FreeSpace() int
	Discarded() int64
	Consumed() int64
	Admit(chunk []byte) error
	IsAligned() bool
	HasUnit() bool
	SkipToMarker() bool
	PeekUnitInfo() (audio.UnitHeader, error)
	OutputFormat() (audio.Format, error)
	DecodeNext(out []int16) (int, error)
}

type capacityReporter interface {
	Capacity() int
}

// Stats counts what happened to a stream. Units counts decode steps that
// succeeded; a unit whose samples span several blocks counts once per block.
type Stats struct {
	BytesAdmitted  int64
	Discarded      int64
	Consumed       int64
	Units          int64
	Samples        int64
	DecodeErrors   int64
	Resyncs        int64
	DeferredPushes int64
	FailedPushes   int64
}

// Driver moves a stream through the pipeline. It is single threaded: Step and
// Run must not be called concurrently.
type Driver struct {
	cfg Config
	res Reservoir
	src source.Provider
	out Output
	log logrus.FieldLogger
	id  xid.ID

	state   State
	pending *Pending
	format  audio.Format
	ignored audio.Format
	stats   Stats

	held          []byte
	exhausted     bool
	failedResyncs int
	err           error
}

func New(cfg Config, res Reservoir, src source.Provider, out Output, logger logrus.FieldLogger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch {
	case res == nil:
		return nil, fmt.Errorf("%w: reservoir", ErrMissingComponent)
	case src == nil:
		return nil, fmt.Errorf("%w: source", ErrMissingComponent)
	case out == nil:
		return nil, fmt.Errorf("%w: output", ErrMissingComponent)
	}

	if c, ok := out.(capacityReporter); ok {
		if err := cfg.fits(c.Capacity()); err != nil {
			return nil, err
		}
	}

	id := xid.New()
	d := &Driver{
		cfg:     cfg,
		res:     res,
		src:     src,
		out:     out,
		id:      id,
		pending: newPending(cfg.SampleBufferSize),
		log:     log.OrDiscard(logger).WithField("stream", id.String()),
	}

	return d, nil
}

// ID identifies the stream in log entries.
func (d *Driver) ID() string { return d.id.String() }

func (d *Driver) State() State { return d.state }

func (d *Driver) Pending() *Pending { return d.pending }

// Format is the output format the stream was started with. It is zero until
// the first unit has been found.
func (d *Driver) Format() audio.Format { return d.format }

// Err is the cause the stream stopped with, if any.
func (d *Driver) Err() error { return d.err }

func (d *Driver) Stats() Stats {
	s := d.stats
	s.Discarded = d.res.Discarded()
	s.Consumed = d.res.Consumed()
	return s
}

// Step runs one iteration of the loop.
func (d *Driver) Step(ctx context.Context) error {
	d.step(ctx)
	if d.state == Stopped {
		return d.err
	}

	return nil
}

// Run steps until the stream stops. A clean end of the source returns a nil
// error; cancellation returns ctx.Err().
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	d.log.Debug("stream running")

	for d.state != Stopped {
		if !d.step(ctx) {
			d.idle(ctx)
		}
	}

	stats := d.Stats()
	entry := d.log.WithFields(logrus.Fields{
		"units":         stats.Units,
		"samples":       stats.Samples,
		"decode_errors": stats.DecodeErrors,
		"discarded":     stats.Discarded,
		"deferred":      stats.DeferredPushes,
	})

	switch {
	case d.err == nil:
		entry.Info("stream finished")
	case errors.Is(d.err, context.Canceled), errors.Is(d.err, context.DeadlineExceeded):
		entry.WithError(d.err).Info("stream canceled")
	default:
		entry.WithError(d.err).Error("stream failed")
	}

	return stats, d.err
}

func (d *Driver) idle(ctx context.Context) {
	if d.cfg.PollInterval == 0 {
		runtime.Gosched()
		return
	}

	t := time.NewTimer(d.cfg.PollInterval)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// step reports whether the iteration made progress.
func (d *Driver) step(ctx context.Context) bool {
	if d.state == Stopped {
		return false
	}

	if err := ctx.Err(); err != nil {
		d.stop(err)
		return true
	}

	switch d.state {
	case Filling:
		return d.fill()
	case Syncing:
		return d.sync()
	case Streaming:
		return d.stream()
	case Draining:
		return d.drain()
	}

	return false
}

func (d *Driver) fill() bool {
	admitted, err := d.admit()
	if err != nil {
		d.stop(err)
		return true
	}

	switch {
	case d.exhausted && d.res.Len() == 0:
		if d.stats.BytesAdmitted > 0 {
			d.stop(fmt.Errorf("%w: no unit found in %d bytes", audio.ErrAlignmentLost, d.stats.BytesAdmitted))
			break
		}
		d.stop(nil)
	case d.exhausted, !admitted, d.res.IsAligned():
		d.setState(Syncing)
	default:
		return admitted
	}

	return true
}

func (d *Driver) sync() bool {
	if d.res.SkipToMarker() {
		format, err := d.res.OutputFormat()
		switch {
		case err == nil:
			return d.begin(format)
		case errors.Is(err, audio.ErrFormatUnknown) && (d.res.HasUnit() || d.res.FreeSpace() == 0):
			return d.skipUnit(err)
		}
	}

	if d.exhausted {
		d.stop(fmt.Errorf("%w: no unit found in %d bytes", audio.ErrAlignmentLost, d.stats.BytesAdmitted))
		return true
	}

	d.setState(Filling)
	return true
}

// skipUnit feeds a unit that cannot start the output to the decoder and
// drops what it produces, so a decoder that learns the format from it can
// start the next one.
func (d *Driver) skipUnit(cause error) bool {
	d.log.WithError(cause).Debug("unit skipped before start")

	if _, err := d.res.DecodeNext(d.pending.Buffer()); errors.Is(err, audio.ErrDecode) {
		d.stats.DecodeErrors++
	}

	return true
}

func (d *Driver) begin(format audio.Format) bool {
	if err := d.out.Start(format); err != nil {
		d.stop(fmt.Errorf("start output: %w", err))
		return true
	}

	d.format = format
	d.failedResyncs = 0

	if info, err := d.res.PeekUnitInfo(); err == nil {
		d.log.WithField("unit", info.String()).Info("stream synchronized")
	}
	d.log.WithFields(logrus.Fields{
		"rate":     format.SampleRate,
		"channels": format.Channels,
	}).Debug("output started")

	d.setState(Streaming)
	return true
}

func (d *Driver) stream() bool {
	progressed := false

	if d.pending.Remaining() > 0 {
		if !d.push() {
			return false
		}
		progressed = true
	}

	admitted, err := d.admit()
	if err != nil {
		d.stop(err)
		return true
	}

	if d.decode() || admitted {
		progressed = true
	}

	if d.state == Streaming && d.exhausted {
		d.setState(Draining)
		progressed = true
	}

	return progressed
}

func (d *Driver) drain() bool {
	if d.pending.Remaining() > 0 {
		if !d.push() {
			return false
		}
	}

	if !d.res.HasUnit() {
		if d.res.Len() > 0 && !d.res.IsAligned() && d.res.SkipToMarker() {
			return true
		}
		d.stop(nil)
		return true
	}

	d.decode()
	return true
}

// push delivers the pending block when the output has headroom for it.
func (d *Driver) push() bool {
	block := d.pending.Bytes()
	if d.out.Available() <= d.cfg.Headroom*len(block) {
		d.stats.DeferredPushes++
		return false
	}

	if err := d.out.Push(block); err != nil {
		d.stats.FailedPushes++
		if errors.Is(err, audio.ErrStopped) {
			d.stop(err)
			return false
		}
		d.log.WithError(err).Warn("push failed, retrying")
		return false
	}

	d.stats.Samples += int64(d.pending.Remaining())
	d.pending.Clear()
	return true
}

// admit pulls one chunk from the source when the reservoir has room for it.
// A chunk larger than the free space is held and admitted piecewise; a short
// reservoir with no complete unit still pulls, so a unit never waits on room
// that decoding cannot make. The returned error is terminal.
func (d *Driver) admit() (bool, error) {
	free := d.res.FreeSpace()

	if d.held == nil {
		if d.exhausted || free == 0 || (free < d.cfg.ChunkSize && d.res.HasUnit()) {
			return false, nil
		}

		chunk, err := d.src.NextChunk()
		switch {
		case errors.Is(err, io.EOF):
			d.exhausted = true
			d.log.WithField("bytes", d.stats.BytesAdmitted).Debug("source exhausted")
			return false, nil
		case err != nil:
			d.exhausted = true
			if !errors.Is(err, audio.ErrIO) {
				err = fmt.Errorf("%w: %w", audio.ErrIO, err)
			}
			if d.err == nil {
				d.err = err
			}
			d.log.WithError(err).Warn("source failed, draining")
			return false, nil
		case len(chunk) == 0:
			return false, nil
		}

		d.held = chunk
	}

	n := min(len(d.held), free)
	if n == 0 {
		return false, nil
	}

	if err := d.res.Admit(d.held[:n]); err != nil {
		return false, err
	}

	d.stats.BytesAdmitted += int64(n)
	d.held = d.held[n:]
	if len(d.held) == 0 {
		d.held = nil
	}

	return true, nil
}

// decode runs the decode step once. It never runs with a block pending.
func (d *Driver) decode() bool {
	if d.pending.Remaining() > 0 {
		return false
	}

	d.checkFormat()

	n, err := d.res.DecodeNext(d.pending.Buffer())
	switch {
	case err == nil:
		d.stats.Units++
		d.failedResyncs = 0
		if n > 0 {
			d.pending.Set(n)
		}
		return true

	case errors.Is(err, audio.ErrIncompleteUnit), errors.Is(err, audio.ErrShortHeader):
		// wait for the rest of the unit, or of its header
		return false

	case errors.Is(err, audio.ErrDecode):
		d.stats.DecodeErrors++
		d.log.WithError(err).Warn("unit skipped")
		return true

	case errors.Is(err, audio.ErrParse):
		return d.resync()
	}

	d.stop(err)
	return true
}

func (d *Driver) resync() bool {
	d.stats.Resyncs++
	before := d.res.Discarded()

	if d.res.SkipToMarker() {
		d.failedResyncs = 0
		d.log.WithField("discarded", d.res.Discarded()-before).Debug("resynchronized")
		return true
	}

	d.failedResyncs++
	if d.failedResyncs > d.cfg.MaxResyncs {
		d.stop(fmt.Errorf("%w: %d searches without a unit", audio.ErrAlignmentLost, d.failedResyncs))
		return true
	}

	return d.res.Discarded() > before
}

// checkFormat logs, once per distinct format, units whose format differs from
// the one the output was started with. They are still decoded.
func (d *Driver) checkFormat() {
	f, err := d.res.OutputFormat()
	if err != nil || f == d.format || f == d.ignored {
		return
	}

	d.ignored = f
	d.log.WithFields(logrus.Fields{
		"rate":     f.SampleRate,
		"channels": f.Channels,
	}).Warn("format change ignored")
}

func (d *Driver) stop(err error) {
	if d.state == Stopped {
		return
	}

	if err != nil && d.err == nil {
		d.err = err
	}

	d.pending.Clear()
	d.held = nil

	if serr := d.out.Stop(); serr != nil {
		d.log.WithError(serr).Warn("output stop failed")
		if d.err == nil {
			d.err = fmt.Errorf("stop output: %w", serr)
		}
	}

	d.setState(Stopped)
}

func (d *Driver) setState(s State) {
	if s == d.state {
		return
	}

	d.log.WithFields(logrus.Fields{
		"from":  d.state.String(),
		"state": s.String(),
	}).Debug("state changed")
	d.state = s
}
