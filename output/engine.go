// SPDX-License-Identifier: EPL-2.0

package output

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/log"
)

// DefaultPeriod is how often the engine pulls a block from the ring.
const DefaultPeriod = 10 * time.Millisecond

// FormatSink is a sink that must learn the PCM format before the first block,
// such as a WAV capture file.
type FormatSink interface {
	io.Writer
	SetFormat(audio.Format) error
}

// Engine is a fixed-rate drain that stands in for DMA hardware. Every period
// it pulls one period's worth of PCM, pads any shortfall with silence and
// writes the block to its sink.
type Engine struct {
	sink   io.Writer
	period time.Duration
	speed  float64
	log    logrus.FieldLogger

	mtx    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	written atomic.Int64
	silence atomic.Int64
}

// NewEngine creates an engine writing to sink. speed scales the drain rate;
// 1 plays in real time, 0 or less is treated as 1.
func NewEngine(sink io.Writer, period time.Duration, speed float64, logger logrus.FieldLogger) *Engine {
	if period <= 0 {
		period = DefaultPeriod
	}
	if speed <= 0 {
		speed = 1
	}

	return &Engine{
		sink:   sink,
		period: period,
		speed:  speed,
		log:    log.OrDiscard(logger),
	}
}

// BlockSize is the number of bytes drained per period for format.
func (e *Engine) BlockSize(format audio.Format) int {
	align := format.BlockAlign()
	n := int(float64(int64(format.BytesPerSecond())*int64(e.period)) * e.speed / float64(time.Second))
	n -= n % align
	return max(n, align)
}

func (e *Engine) Open(format audio.Format, drain func([]byte) int) error {
	if format.BlockAlign() <= 0 || format.SampleRate <= 0 {
		return fmt.Errorf("%w: %+v", ErrBadFormat, format)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.done != nil {
		return ErrAlreadyStarted
	}

	if fs, ok := e.sink.(FormatSink); ok {
		if err := fs.SetFormat(format); err != nil {
			return fmt.Errorf("sink format: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	block := make([]byte, e.BlockSize(format))

	e.log.WithFields(logrus.Fields{
		"block":  len(block),
		"period": e.period,
	}).Debug("drain engine running")

	go e.run(ctx, block, drain)

	return nil
}

func (e *Engine) run(ctx context.Context, block []byte, drain func([]byte) int) {
	defer close(e.done)

	ticker := time.NewTicker(e.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n := drain(block)
		if n < len(block) {
			clear(block[n:])
			e.silence.Add(int64(len(block) - n))
		}

		if _, err := e.sink.Write(block); err != nil {
			e.log.WithError(err).Error("drain sink failed")
			e.mtx.Lock()
			e.err = err
			e.mtx.Unlock()
			return
		}
		e.written.Add(int64(len(block)))
	}
}

// Close stops the drain goroutine and waits for it. It returns the sink
// error that stopped the engine early, if any.
func (e *Engine) Close() error {
	e.mtx.Lock()
	cancel, done := e.cancel, e.done
	e.mtx.Unlock()

	if done == nil {
		return ErrNotOpen
	}

	cancel()
	<-done

	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.err
}

// Written counts bytes delivered to the sink, padding included.
func (e *Engine) Written() int64 { return e.written.Load() }

// Silence counts padding bytes written during underruns.
func (e *Engine) Silence() int64 { return e.silence.Load() }
