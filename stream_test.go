// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats/vorbis"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/frame"
	"github.com/ik5/audstream/internal/log"
	"github.com/ik5/audstream/internal/streamtest"
	"github.com/ik5/audstream/output"
	"github.com/ik5/audstream/pipeline"
	"github.com/ik5/audstream/reservoir"
	"github.com/ik5/audstream/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOptions_WithDefaults(t *testing.T) {
	t.Parallel()

	o := Options{}.withDefaults()
	assert.Equal(t, DefaultReservoirSize, o.ReservoirSize)
	assert.Equal(t, "mp3", o.Format)
	assert.Equal(t, pipeline.DefaultConfig(), o.Config)
	assert.Same(t, audio.DefaultRegistry, o.Registry)

	_, ok := o.Registry.Get("mp3")
	assert.True(t, ok)

	cfg := pipeline.DefaultConfig()
	cfg.Headroom = 3
	o = Options{ReservoirSize: 8192, Config: cfg}.withDefaults()
	assert.Equal(t, 8192, o.ReservoirSize)
	assert.Equal(t, 3, o.Config.Headroom)

	o = Options{Format: vorbis.Format}.withDefaults()
	assert.Equal(t, vorbis.DefaultReservoirSize, o.ReservoirSize)
	assert.GreaterOrEqual(t, o.ReservoirSize, vorbis.MaxPageSize)

	_, ok = o.Registry.Get(vorbis.Format)
	assert.True(t, ok)
}

func TestStream_SetupErrors(t *testing.T) {
	t.Parallel()

	out := streamtest.NewMockOutput(1 << 20)
	src := source.NewMemory(streamtest.Frames(streamtest.HeaderMPEG1, 2), 0)

	_, err := Stream(context.Background(), src, out, Options{Format: "flac"})
	require.ErrorIs(t, err, audio.ErrUnknownFormat)
	assert.ErrorContains(t, err, "flac")

	_, err = Stream(context.Background(), src, out, Options{ReservoirSize: 10})
	require.ErrorIs(t, err, reservoir.ErrCapacity)

	_, err = Stream(context.Background(), src, nil, Options{})
	require.ErrorIs(t, err, pipeline.ErrMissingComponent)

	assert.Zero(t, out.StartCalls)
	assert.Zero(t, out.StopCalls)
}

func TestStream_CustomRegistry(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	dec := streamtest.NewSequenceDecoder(10)
	reg.Register("seq", func() audio.UnitDecoder { return dec })

	out := streamtest.NewMockOutput(1 << 20)
	src := source.NewMemory(streamtest.Frames(streamtest.HeaderMPEG2Mono, 4), 0)

	stats, err := Stream(context.Background(), src, out, Options{Format: "seq", Registry: reg, Logger: log.Discard()})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Units)
	assert.Equal(t, 4, dec.Units())
	assert.Equal(t, audio.Format{SampleRate: 22050, Channels: 1, BitDepth: 16}, out.Format)
}

func TestStream_MalformedUnit(t *testing.T) {
	t.Parallel()

	good := streamtest.Frames(streamtest.HeaderMPEG2Mono, 3)
	data := streamtest.Join(good, streamtest.MixedBlockFrame(), good)

	out := streamtest.NewMockOutput(1 << 20)
	stats, err := Stream(context.Background(), source.NewMemory(data, 0), out, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.DecodeErrors)
	assert.Equal(t, int64(6), stats.Units)
	assert.Equal(t, int64(6*1152), stats.Samples)
	assert.Equal(t, 1, out.StopCalls)
}

// frameStarts lists where each MPEG frame of an untagged stream begins.
func frameStarts(t *testing.T, stream []byte) []int {
	t.Helper()

	var starts []int
	for off := 0; off < len(stream); {
		info, err := frame.Parse(stream[off:])
		require.NoError(t, err, "offset %d", off)
		starts = append(starts, off)
		off += info.Length
	}
	return starts
}

// TestStream_CorruptedRealStream damages a real MP3 in three ways: a unit
// go-mp3 panics on, a run of garbage between frames, and flipped main data
// bits. The stream must play through to the end.
func TestStream_CorruptedRealStream(t *testing.T) {
	t.Parallel()

	clean, err := os.ReadFile(filepath.Join("formats", "mp3", "testdata", "speech.mp3"))
	require.NoError(t, err)

	tag, ok := frame.ID3v2Size(clean)
	require.True(t, ok)
	starts := frameStarts(t, clean[tag:])
	require.Len(t, starts, 191)
	at := func(i int) int { return tag + starts[i] }

	flipped := append([]byte(nil), clean[at(120):at(121)]...)
	for i := 40; i < len(flipped); i += 7 {
		flipped[i] ^= 0x5A
	}

	garbage := make([]byte, 300)
	for i := range garbage {
		garbage[i] = byte(i*37) & 0x7F
	}

	data := streamtest.Join(
		clean[:at(50)],
		streamtest.MixedBlockFrame(),
		clean[at(50):at(90)],
		garbage,
		clean[at(90):at(120)],
		flipped,
		clean[at(121):],
	)

	out := streamtest.NewMockOutput(1 << 22)
	stats, err := Stream(context.Background(), source.NewMemory(data, 0), out, Options{Logger: log.Discard()})
	require.NoError(t, err)

	assert.Positive(t, stats.DecodeErrors)
	assert.GreaterOrEqual(t, stats.Discarded, int64(len(garbage)))
	assert.Zero(t, stats.Samples%1152, "whole frames only")
	assert.Greater(t, stats.Samples, int64(170*1152), "frames past the damage were played")
	assert.LessOrEqual(t, stats.Samples, int64(191*1152))
	assert.Equal(t, audio.Format{SampleRate: 22050, Channels: 2, BitDepth: 16}, out.Format)
	assert.Equal(t, 1, out.StopCalls)
}

// TestStream_Vorbis feeds Ogg pages through the real Vorbis decoder. The
// setup header is garbage, so the output starts from the identification
// header and every later page fails without stopping the stream.
func TestStream_Vorbis(t *testing.T) {
	t.Parallel()

	setup := append([]byte("\x05vorbis"), make([]byte, 32)...)
	pages := streamtest.Join(
		streamtest.Page(streamtest.OggFirst, 1, 0, streamtest.VorbisIdent(2, 44100)),
		streamtest.Page(0, 1, 1, streamtest.VorbisComment(), setup),
		streamtest.Page(0, 1, 2, make([]byte, 10)),
		streamtest.Page(streamtest.OggLast, 1, 3, make([]byte, 10)),
	)
	data := streamtest.Join([]byte("junk"), pages)

	out := streamtest.NewMockOutput(1 << 20)
	stats, err := Stream(context.Background(), source.NewMemory(data, 0), out, Options{Format: vorbis.Format})
	require.NoError(t, err)

	assert.Equal(t, 1, out.StartCalls)
	assert.Equal(t, audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, out.Format)
	assert.Equal(t, int64(4), stats.Discarded)
	assert.Equal(t, int64(len(pages)), stats.Consumed)
	assert.GreaterOrEqual(t, stats.DecodeErrors, int64(3))
	assert.Zero(t, stats.Samples)
	assert.Equal(t, 1, out.StopCalls)
}

// TestStream_Capture runs the whole chain: MP3 frames through the real
// decoder into a ring drained by the engine into a WAV file.
func TestStream_Capture(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capture.wav")
	sink, err := wav.Create(path)
	require.NoError(t, err)

	engine := output.NewEngine(sink, output.DefaultPeriod, 20, nil)
	ring, err := output.NewRing(32768, engine, nil)
	require.NoError(t, err)
	ring.Linger = 5 * time.Second

	data := streamtest.Join(streamtest.ID3v2(300, 0), streamtest.Frames(streamtest.HeaderMPEG1, 20))
	stats, err := Stream(context.Background(), source.NewMemory(data, 0), ring, Options{})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, int64(20), stats.Units)
	assert.Equal(t, int64(20*2304), stats.Samples)
	assert.Equal(t, int64(300), stats.Discarded)
	assert.True(t, ring.Stopped())
	assert.Equal(t, int64(20*2304*2), ring.Pushed())
	assert.Equal(t, ring.Pushed(), ring.Drained())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	samples, format, err := wav.ReadPCM16(f)
	require.NoError(t, err)
	assert.Equal(t, audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, format)
	assert.GreaterOrEqual(t, len(samples), 20*2304)
	for i, s := range samples {
		if s != 0 {
			t.Fatalf("sample %d = %d, want silence", i, s)
		}
	}
}

func TestStream_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := streamtest.NewMockOutput(1 << 20)
	src := source.NewMemory(streamtest.Frames(streamtest.HeaderMPEG1, 4), 0)

	_, err := Stream(ctx, src, out, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, out.StopCalls)
}
