// SPDX-License-Identifier: EPL-2.0

package output

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ik5/audstream/audio"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var stereo16 = audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}

// MockHardware implements Hardware for testing
type MockHardware struct {
	mock.Mock

	drain func([]byte) int
}

func (m *MockHardware) Open(format audio.Format, drain func([]byte) int) error {
	m.drain = drain
	return m.Called(format).Error(0)
}

func (m *MockHardware) Close() error {
	return m.Called().Error(0)
}

func newRing(t *testing.T, capacity int, hw Hardware) *Ring {
	t.Helper()

	r, err := NewRing(capacity, hw, nil)
	require.NoError(t, err)
	return r
}

func TestNewRing(t *testing.T) {
	t.Parallel()

	_, err := NewRing(0, nil, nil)
	assert.ErrorIs(t, err, ErrCapacity)

	r := newRing(t, 4096, nil)
	assert.Equal(t, 4096, r.Capacity())
	assert.Equal(t, 4096, r.Available())
	assert.Equal(t, 0, r.Len())
}

func TestRing_PushAllOrNothing(t *testing.T) {
	t.Parallel()

	r := newRing(t, 1000, nil)

	require.NoError(t, r.Push(make([]byte, 600)))
	assert.Equal(t, 400, r.Available())

	err := r.Push(make([]byte, 401))
	assert.ErrorIs(t, err, audio.ErrOverflow)
	assert.Equal(t, 400, r.Available(), "rejected push must not be partially applied")

	require.NoError(t, r.Push(make([]byte, 400)))
	assert.Equal(t, 0, r.Available())
	assert.EqualValues(t, 1000, r.Pushed())

	require.NoError(t, r.Push(nil))
}

func TestRing_DrainOrder(t *testing.T) {
	t.Parallel()

	r := newRing(t, 8, nil)
	out := make([]byte, 4)

	require.NoError(t, r.Push([]byte{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, 4, r.Drain(out))
	assert.Equal(t, []byte{1, 2, 3, 4}, out)

	// wraps around the end of the ring
	require.NoError(t, r.Push([]byte{7, 8, 9, 10, 11, 12}))
	assert.Equal(t, 4, r.Drain(out))
	assert.Equal(t, []byte{5, 6, 7, 8}, out)
	assert.Equal(t, 4, r.Drain(out))
	assert.Equal(t, []byte{9, 10, 11, 12}, out)

	assert.EqualValues(t, 12, r.Drained())
	assert.Zero(t, r.Underruns())
}

func TestRing_Underrun(t *testing.T) {
	t.Parallel()

	r := newRing(t, 64, nil)
	out := make([]byte, 16)

	assert.Equal(t, 0, r.Drain(out))
	require.NoError(t, r.Push(make([]byte, 10)))
	assert.Equal(t, 10, r.Drain(out))
	assert.Equal(t, 0, r.Drain(nil))

	assert.EqualValues(t, 2, r.Underruns())
}

func TestRing_StartStop(t *testing.T) {
	t.Parallel()

	hw := &MockHardware{}
	hw.On("Open", stereo16).Return(nil).Once()
	hw.On("Close").Return(nil).Once()

	r := newRing(t, 4096, hw)
	require.NoError(t, r.Start(stereo16))
	assert.Equal(t, stereo16, r.Format())
	assert.ErrorIs(t, r.Start(stereo16), ErrAlreadyStarted)

	require.NoError(t, r.Push([]byte{1, 2}))
	buf := make([]byte, 2)
	require.NotNil(t, hw.drain)
	assert.Equal(t, 2, hw.drain(buf))

	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
	assert.True(t, r.Stopped())

	assert.ErrorIs(t, r.Push([]byte{1}), audio.ErrStopped)
	assert.ErrorIs(t, r.Start(stereo16), audio.ErrStopped)

	hw.AssertExpectations(t)
}

func TestRing_StartFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no device")
	hw := &MockHardware{}
	hw.On("Open", stereo16).Return(boom)

	r := newRing(t, 4096, hw)
	assert.ErrorIs(t, r.Start(stereo16), boom)

	// never started, so the hardware is not closed
	require.NoError(t, r.Stop())
	hw.AssertNotCalled(t, "Close")
}

func TestRing_StartBadFormat(t *testing.T) {
	t.Parallel()

	r := newRing(t, 4096, nil)
	assert.ErrorIs(t, r.Start(audio.Format{}), ErrBadFormat)
}

func TestRing_ConcurrentDrain(t *testing.T) {
	t.Parallel()

	const total = 64 * 1024
	r := newRing(t, 1024, nil)

	var (
		got []byte
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 100)
		for len(got) < total {
			n := r.Drain(buf)
			got = append(got, buf[:n]...)
		}
	}()

	want := make([]byte, total)
	for i := range want {
		want[i] = byte(i % 251)
	}

	for off := 0; off < total; {
		n := min(300, total-off)
		if r.Available() < n {
			continue
		}
		require.NoError(t, r.Push(want[off:off+n]), "push passed its free-space check")
		off += n
	}

	wg.Wait()
	assert.True(t, bytes.Equal(want, got))
}
