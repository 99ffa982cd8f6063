// SPDX-License-Identifier: EPL-2.0

package output

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audstream/audio"
)

// lockedBuffer is a bytes.Buffer safe for the engine goroutine and the test.
type lockedBuffer struct {
	mtx sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return append([]byte(nil), b.buf.Bytes()...)
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

var mono8k = audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16}

func TestEngine_BlockSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		period time.Duration
		speed  float64
		format audio.Format
		want   int
	}{
		{"mono 8k 10ms", 10 * time.Millisecond, 1, mono8k, 160},
		{"stereo 44.1k 10ms", 10 * time.Millisecond, 1, stereo16, 1764},
		{"double speed", 10 * time.Millisecond, 2, mono8k, 320},
		{"rounded to frames", 10 * time.Millisecond, 1, audio.Format{SampleRate: 22050, Channels: 2, BitDepth: 16}, 880},
		{"at least one frame", time.Microsecond, 1, mono8k, 2},
		{"defaults", 0, 0, mono8k, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(nil, tt.period, tt.speed, nil)
			assert.Equal(t, tt.want, e.BlockSize(tt.format))
		})
	}
}

func TestEngine_DrainsRing(t *testing.T) {
	sink := &lockedBuffer{}
	engine := NewEngine(sink, 2*time.Millisecond, 1, nil)

	r, err := NewRing(4096, engine, nil)
	require.NoError(t, err)

	want := make([]byte, 800)
	for i := range want {
		want[i] = byte(i%200 + 1)
	}
	require.NoError(t, r.Push(want))
	require.NoError(t, r.Start(mono8k))

	require.Eventually(t, func() bool { return r.Len() == 0 }, 2*time.Second, time.Millisecond)
	require.NoError(t, r.Stop())

	got := sink.Bytes()
	require.GreaterOrEqual(t, len(got), len(want))
	assert.Equal(t, want, got[:len(want)])
	for _, b := range got[len(want):] {
		require.Zero(t, b, "underruns are padded with silence")
	}

	assert.EqualValues(t, len(got), engine.Written())
	assert.EqualValues(t, len(got)-len(want), engine.Silence())
}

func TestEngine_Linger(t *testing.T) {
	sink := &lockedBuffer{}
	engine := NewEngine(sink, time.Millisecond, 4, nil)

	r, err := NewRing(4096, engine, nil)
	require.NoError(t, err)
	r.Linger = 2 * time.Second

	require.NoError(t, r.Start(mono8k))
	require.NoError(t, r.Push(bytes.Repeat([]byte{7}, 2000)))
	require.NoError(t, r.Stop())

	assert.Equal(t, 0, r.Len(), "stop waits for queued bytes to play")
	assert.GreaterOrEqual(t, bytes.Count(sink.Bytes(), []byte{7}), 2000)
}

func TestEngine_SinkError(t *testing.T) {
	boom := errors.New("disk full")
	engine := NewEngine(failingWriter{err: boom}, time.Millisecond, 1, nil)

	require.NoError(t, engine.Open(mono8k, func(p []byte) int { return len(p) }))
	require.Eventually(t, func() bool {
		engine.mtx.Lock()
		defer engine.mtx.Unlock()
		return engine.err != nil
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, engine.Close(), boom)
}

func TestEngine_OpenClose(t *testing.T) {
	engine := NewEngine(&lockedBuffer{}, time.Millisecond, 1, nil)

	assert.ErrorIs(t, engine.Close(), ErrNotOpen)
	assert.ErrorIs(t, engine.Open(audio.Format{}, nil), ErrBadFormat)

	drain := func(p []byte) int { return 0 }
	require.NoError(t, engine.Open(mono8k, drain))
	assert.ErrorIs(t, engine.Open(mono8k, drain), ErrAlreadyStarted)
	require.NoError(t, engine.Close())
}

type formatSink struct {
	lockedBuffer

	format audio.Format
	err    error
}

func (s *formatSink) SetFormat(f audio.Format) error {
	s.format = f
	return s.err
}

func TestEngine_FormatSink(t *testing.T) {
	sink := &formatSink{}
	engine := NewEngine(sink, time.Millisecond, 1, nil)

	require.NoError(t, engine.Open(stereo16, func(p []byte) int { return 0 }))
	require.NoError(t, engine.Close())
	assert.Equal(t, stereo16, sink.format)

	boom := errors.New("read-only")
	failing := NewEngine(&formatSink{err: boom}, time.Millisecond, 1, nil)
	assert.ErrorIs(t, failing.Open(stereo16, func(p []byte) int { return 0 }), boom)
	assert.ErrorIs(t, failing.Close(), ErrNotOpen, "no goroutine was started")
}
