// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smallnest/ringbuffer"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/log"
)

// Hardware drains a Ring at its own fixed rate once opened. drain copies up
// to len(p) queued bytes into p and returns how many it copied.
type Hardware interface {
	Open(format audio.Format, drain func(p []byte) int) error
	Close() error
}

// Ring is the output ring buffer. The driver is the only writer; the
// hardware is the only reader. Since only the reader removes bytes, free
// space seen by Available can only grow until the next Push, so a push that
// fits is always applied whole.
type Ring struct {
	rb  *ringbuffer.RingBuffer
	hw  Hardware
	log logrus.FieldLogger

	// Linger bounds how long Stop waits for queued bytes to play out
	// before closing the hardware. Zero stops at once.
	Linger time.Duration

	mtx     sync.Mutex
	format  audio.Format
	started bool
	stopped bool

	pushed    atomic.Int64
	drained   atomic.Int64
	underruns atomic.Int64
}

// NewRing creates a ring of capacity bytes drained by hw. A nil hw leaves
// draining to the caller.
func NewRing(capacity int, hw Hardware, logger logrus.FieldLogger) (*Ring, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}

	return &Ring{
		rb:  ringbuffer.New(capacity),
		hw:  hw,
		log: log.OrDiscard(logger),
	}, nil
}

func (r *Ring) Capacity() int { return r.rb.Capacity() }

// Len is the number of queued bytes not yet drained.
func (r *Ring) Len() int { return r.rb.Length() }

// Format the transfer was started with.
func (r *Ring) Format() audio.Format {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.format
}

// Start hands the ring to the hardware.
func (r *Ring) Start(format audio.Format) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	switch {
	case r.stopped:
		return audio.ErrStopped
	case r.started:
		return ErrAlreadyStarted
	case format.BlockAlign() <= 0 || format.SampleRate <= 0:
		return fmt.Errorf("%w: %+v", ErrBadFormat, format)
	}

	if r.hw != nil {
		if err := r.hw.Open(format, r.Drain); err != nil {
			return fmt.Errorf("open hardware: %w", err)
		}
	}

	r.format = format
	r.started = true
	r.log.WithField("format", fmt.Sprintf("%d Hz/%d ch", format.SampleRate, format.Channels)).Info("transfer started")

	return nil
}

// Available is a fresh snapshot of free space.
func (r *Ring) Available() int { return r.rb.Free() }

// Push queues data in full or not at all.
func (r *Ring) Push(data []byte) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.stopped {
		return audio.ErrStopped
	}
	if len(data) == 0 {
		return nil
	}
	if free := r.rb.Free(); len(data) > free {
		return fmt.Errorf("%w: %d bytes, %d free", audio.ErrOverflow, len(data), free)
	}

	n, err := r.rb.Write(data)
	r.pushed.Add(int64(n))
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d: %w", audio.ErrOverflow, n, len(data), err)
	}

	return nil
}

// Stop ends the transfer. Later calls do nothing.
func (r *Ring) Stop() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.stopped {
		return nil
	}
	r.stopped = true

	if r.hw == nil || !r.started {
		return nil
	}

	if r.Linger > 0 {
		deadline := time.Now().Add(r.Linger)
		for r.rb.Length() > 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	r.log.WithFields(logrus.Fields{
		"pushed":    r.pushed.Load(),
		"drained":   r.drained.Load(),
		"underruns": r.underruns.Load(),
		"dropped":   r.rb.Length(),
	}).Info("transfer stopped")

	return r.hw.Close()
}

// Stopped reports whether Stop was called.
func (r *Ring) Stopped() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.stopped
}

// Drain is the hardware side: it moves up to len(p) queued bytes into p.
// A short read is counted as an underrun.
func (r *Ring) Drain(p []byte) int {
	if len(p) == 0 {
		return 0
	}

	n, _ := r.rb.Read(p) // ringbuffer.ErrIsEmpty just means n == 0
	r.drained.Add(int64(n))
	if n < len(p) {
		r.underruns.Add(1)
	}

	return n
}

// Pushed counts bytes accepted by Push.
func (r *Ring) Pushed() int64 { return r.pushed.Load() }

// Drained counts bytes handed to the hardware.
func (r *Ring) Drained() int64 { return r.drained.Load() }

// Underruns counts drains that found fewer bytes than requested.
func (r *Ring) Underruns() int64 { return r.underruns.Load() }
