// SPDX-License-Identifier: EPL-2.0

package reservoir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/streamtest"
)

func TestFramed_FindsUnits(t *testing.T) {
	t.Parallel()

	dec := &streamtest.BoxDecoder{PerUnit: 3}
	r := newReservoir(t, 256, dec)
	// 'B' without 'X' and a box too small to be real are both skipped
	require.NoError(t, r.Admit(streamtest.Join([]byte("xxBqB"), []byte{'B', 'X', 2, 0}, streamtest.Box(10, 1), streamtest.Box(20, 1))))

	require.True(t, r.SkipToMarker())
	assert.EqualValues(t, 9, r.Discarded())

	hdr, err := r.PeekUnitInfo()
	require.NoError(t, err)
	assert.Equal(t, 10, hdr.Size())

	out := make([]int16, 8)
	for range 2 {
		n, err := r.DecodeNext(out)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}
	assert.Equal(t, 0, r.Len())
	assert.EqualValues(t, 30, r.Consumed())
	assert.Equal(t, 2, dec.Units())
}

func TestFramed_KeepsPartialHeader(t *testing.T) {
	t.Parallel()

	r := newReservoir(t, 256, &streamtest.BoxDecoder{PerUnit: 1})
	require.NoError(t, r.Admit([]byte("zzzzBX")))

	assert.False(t, r.SkipToMarker())
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Admit(streamtest.Box(8, 1)[2:]))
	assert.True(t, r.SkipToMarker())
	assert.True(t, r.HasUnit())
}

func TestFramed_Backlog(t *testing.T) {
	t.Parallel()

	dec := &streamtest.BoxDecoder{PerUnit: 10}
	r := newReservoir(t, 256, dec)
	require.NoError(t, r.Admit(streamtest.Join(streamtest.Box(8, 2), streamtest.Box(8, 2))))

	out := make([]int16, 4)
	var lengths []int
	var samples []int16
	for r.HasUnit() {
		n, err := r.DecodeNext(out)
		require.NoError(t, err)
		lengths = append(lengths, n)
		samples = append(samples, out[:n]...)
	}

	assert.Equal(t, []int{4, 4, 2, 4, 4, 2}, lengths)
	assert.Equal(t, 2, dec.Units())
	for i, s := range samples {
		require.Equal(t, int16(i), s)
	}
}

func TestFramed_BacklogBeforeAlignment(t *testing.T) {
	t.Parallel()

	dec := &streamtest.BoxDecoder{PerUnit: 6}
	r := newReservoir(t, 256, dec)
	require.NoError(t, r.Admit(streamtest.Join(streamtest.Box(8, 2), []byte("junk"))))

	out := make([]int16, 4)
	n, err := r.DecodeNext(out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.False(t, r.IsAligned())
	assert.True(t, r.HasUnit(), "held back samples count as work")

	n, err = r.DecodeNext(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, r.HasUnit())

	_, err = r.DecodeNext(out)
	assert.ErrorIs(t, err, audio.ErrParse)
}

func TestFramed_FormatUnknown(t *testing.T) {
	t.Parallel()

	dec := &streamtest.BoxDecoder{PerUnit: 1}
	r := newReservoir(t, 256, dec)
	require.NoError(t, r.Admit(streamtest.Box(8, 0)))

	_, err := r.OutputFormat()
	assert.ErrorIs(t, err, audio.ErrFormatUnknown)

	learnt := audio.Format{SampleRate: 8000, Channels: 2, BitDepth: 16}
	dec.Learn(learnt)
	f, err := r.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, learnt, f)
}

func TestNew_FramerHeaderSize(t *testing.T) {
	t.Parallel()

	dec := &streamtest.BoxDecoder{Framing: streamtest.BoxFramer{HeaderSize: 100}}
	_, err := New(199, dec)
	assert.ErrorIs(t, err, ErrCapacity)

	r, err := New(200, dec)
	require.NoError(t, err)
	assert.Equal(t, 200, r.Cap())
}
