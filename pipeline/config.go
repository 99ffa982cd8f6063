// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"
	"time"
)

// Config tunes the driver loop.
type Config struct {
	// ChunkSize is the number of source bytes pulled per admission. The
	// reservoir must have this much free space before a chunk is pulled.
	ChunkSize int

	// SampleBufferSize is the capacity, in samples, of the pending block a
	// single unit decodes into.
	SampleBufferSize int

	// Headroom is the backpressure multiplier: a block of n bytes is pushed
	// only while the output reports more than Headroom*n bytes free.
	// Tune it against the drain rate of the actual hardware.
	Headroom int

	// MaxResyncs is the number of consecutive failed marker searches
	// tolerated mid-stream before alignment is declared lost.
	MaxResyncs int

	// PollInterval is slept when an iteration makes no progress.
	// Zero yields the processor instead.
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:        512,
		SampleBufferSize: 4096,
		Headroom:         2,
		MaxResyncs:       64,
		PollInterval:     time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d", ErrConfig, c.ChunkSize)
	case c.SampleBufferSize <= 0:
		return fmt.Errorf("%w: sample buffer size %d", ErrConfig, c.SampleBufferSize)
	case c.Headroom < 1:
		return fmt.Errorf("%w: headroom %d", ErrConfig, c.Headroom)
	case c.MaxResyncs < 0:
		return fmt.Errorf("%w: max resyncs %d", ErrConfig, c.MaxResyncs)
	case c.PollInterval < 0:
		return fmt.Errorf("%w: poll interval %s", ErrConfig, c.PollInterval)
	}

	return nil
}

// fits reports whether the largest block could ever be pushed to a ring of
// capacity bytes.
func (c Config) fits(capacity int) error {
	largest := c.Headroom * c.SampleBufferSize * 2
	if largest >= capacity {
		return fmt.Errorf("%w: headroom %d x %d bytes >= capacity %d",
			ErrBlockTooLarge, c.Headroom, c.SampleBufferSize*2, capacity)
	}

	return nil
}
