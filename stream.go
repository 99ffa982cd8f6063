// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats/mp3"
	"github.com/ik5/audstream/formats/vorbis"
	"github.com/ik5/audstream/pipeline"
	"github.com/ik5/audstream/reservoir"
	"github.com/ik5/audstream/source"
)

// DefaultReservoirSize is the input reservoir capacity used when Options
// leaves it unset and the format has no size of its own.
const DefaultReservoirSize = 4096

// reservoirSizes holds formats whose units do not fit DefaultReservoirSize.
var reservoirSizes = map[string]int{
	vorbis.Format: vorbis.DefaultReservoirSize,
}

// Options for Stream. The zero value streams MP3 with default settings.
type Options struct {
	// ReservoirSize is the input reservoir capacity in bytes. Zero picks a
	// size that holds the largest unit of Format.
	ReservoirSize int
	// Format is the registry key of the unit decoder, "mp3" by default.
	Format string
	// Config tunes the driver. The zero value means pipeline.DefaultConfig().
	Config pipeline.Config
	// Registry resolves Format. audio.DefaultRegistry when nil.
	Registry *audio.Registry
	// Logger receives lifecycle and error entries. Nothing is logged when nil.
	Logger logrus.FieldLogger
}

var registerOnce sync.Once

func defaultRegistry() *audio.Registry {
	registerOnce.Do(func() {
		if _, ok := audio.DefaultRegistry.Get(mp3.Format); !ok {
			mp3.Register(audio.DefaultRegistry)
		}
		if _, ok := audio.DefaultRegistry.Get(vorbis.Format); !ok {
			vorbis.Register(audio.DefaultRegistry)
		}
	})

	return audio.DefaultRegistry
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = mp3.Format
	}
	if o.ReservoirSize == 0 {
		o.ReservoirSize = DefaultReservoirSize
		if size, ok := reservoirSizes[o.Format]; ok {
			o.ReservoirSize = size
		}
	}
	if o.Config == (pipeline.Config{}) {
		o.Config = pipeline.DefaultConfig()
	}
	if o.Registry == nil {
		o.Registry = defaultRegistry()
	}

	return o
}

// Stream plays src into out until the source is exhausted, the stream fails
// or ctx is cancelled. It blocks for the whole stream. Once the driver is
// built, out is stopped before Stream returns; setup errors leave it alone.
//
// Example:
//
//	src, _ := source.Open("song.mp3", 0)
//	defer src.Close()
//	stats, err := audstream.Stream(ctx, src, ring, audstream.Options{})
func Stream(ctx context.Context, src source.Provider, out pipeline.Output, opts Options) (pipeline.Stats, error) {
	opts = opts.withDefaults()

	dec, err := opts.Registry.New(opts.Format)
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("format %q: %w", opts.Format, err)
	}

	res, err := reservoir.New(opts.ReservoirSize, dec)
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("reservoir: %w", err)
	}

	d, err := pipeline.New(opts.Config, res, src, out, opts.Logger)
	if err != nil {
		return pipeline.Stats{}, err
	}

	return d.Run(ctx)
}
