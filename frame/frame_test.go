// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audstream/audio"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  []byte
		want    UnitInfo
		channel int
	}{
		{
			name:   "mpeg1 layer3 128k 44.1k",
			header: []byte{0xFF, 0xFB, 0x90, 0x64},
			want: UnitInfo{
				Version: Version1, Layer: 3, Bitrate: 128000, SampleRate: 44100,
				ChannelMode: JointStereo, Length: 417, SamplesPerFrame: 1152,
			},
			channel: 2,
		},
		{
			name:   "mpeg1 layer3 128k 44.1k padded",
			header: []byte{0xFF, 0xFB, 0x92, 0x64},
			want: UnitInfo{
				Version: Version1, Layer: 3, Bitrate: 128000, SampleRate: 44100,
				ChannelMode: JointStereo, Padding: true, Length: 418, SamplesPerFrame: 1152,
			},
			channel: 2,
		},
		{
			name:   "mpeg1 layer3 with crc mono 48k",
			header: []byte{0xFF, 0xFA, 0x94, 0xC0},
			want: UnitInfo{
				Version: Version1, Layer: 3, Bitrate: 128000, SampleRate: 48000,
				ChannelMode: Mono, CRC: true, Length: 384, SamplesPerFrame: 1152,
			},
			channel: 1,
		},
		{
			name:   "mpeg2 layer3 64k 22.05k",
			header: []byte{0xFF, 0xF3, 0x80, 0xC0},
			want: UnitInfo{
				Version: Version2, Layer: 3, Bitrate: 64000, SampleRate: 22050,
				ChannelMode: Mono, Length: 208, SamplesPerFrame: 576,
			},
			channel: 1,
		},
		{
			name:   "mpeg2.5 layer3 8k 8000",
			header: []byte{0xFF, 0xE3, 0x18, 0x00},
			want: UnitInfo{
				Version: Version25, Layer: 3, Bitrate: 8000, SampleRate: 8000,
				ChannelMode: Stereo, Length: 72, SamplesPerFrame: 576,
			},
			channel: 2,
		},
		{
			name:   "mpeg1 layer2 192k 48k",
			header: []byte{0xFF, 0xFD, 0xA4, 0x00},
			want: UnitInfo{
				Version: Version1, Layer: 2, Bitrate: 192000, SampleRate: 48000,
				ChannelMode: Stereo, Length: 576, SamplesPerFrame: 1152,
			},
			channel: 2,
		},
		{
			name:   "mpeg1 layer1 384k 44.1k padded",
			header: []byte{0xFF, 0xFF, 0xC2, 0x00},
			want: UnitInfo{
				Version: Version1, Layer: 1, Bitrate: 384000, SampleRate: 44100,
				ChannelMode: Stereo, Padding: true, Length: 420, SamplesPerFrame: 384,
			},
			channel: 2,
		},
		{
			name:   "largest frame",
			header: []byte{0xFF, 0xE5, 0xEA, 0x00},
			want: UnitInfo{
				Version: Version25, Layer: 2, Bitrate: 160000, SampleRate: 8000,
				ChannelMode: Stereo, Padding: true, Length: MaxLength, SamplesPerFrame: 1152,
			},
			channel: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.channel, got.Channels())
			assert.Equal(t, audio.Format{SampleRate: tt.want.SampleRate, Channels: tt.channel, BitDepth: 16}, got.Format())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   error
	}{
		{"empty", nil, ErrShortHeader},
		{"short", []byte{0xFF, 0xFB, 0x90}, ErrShortHeader},
		{"zeros", []byte{0, 0, 0, 0}, ErrNoSync},
		{"partial sync", []byte{0xFF, 0x1B, 0x90, 0x64}, ErrNoSync},
		{"reserved version", []byte{0xFF, 0xEB, 0x90, 0x64}, ErrReservedVersion},
		{"reserved layer", []byte{0xFF, 0xF9, 0x90, 0x64}, ErrReservedLayer},
		{"free bitrate", []byte{0xFF, 0xFB, 0x00, 0x64}, ErrFreeBitrate},
		{"bad bitrate", []byte{0xFF, 0xFB, 0xF0, 0x64}, ErrBadBitrate},
		{"reserved rate", []byte{0xFF, 0xFB, 0x9C, 0x64}, ErrReservedRate},
		{"reserved emphasis", []byte{0xFF, 0xFB, 0x90, 0x66}, ErrReservedEmphasis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.header)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.Is(err, audio.ErrParse), "%v should match audio.ErrParse", err)
		})
	}
}

func TestParse_ReadsOnlyHeader(t *testing.T) {
	t.Parallel()

	buf := []byte{0xFF, 0xFB, 0x90, 0x64, 0xDE, 0xAD}
	orig := append([]byte(nil), buf...)

	_, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, orig, buf)
}

func TestIsSync(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSync([]byte{0xFF, 0xE0}))
	assert.True(t, IsSync([]byte{0xFF, 0xFB, 0x90}))
	assert.False(t, IsSync([]byte{0xFF}))
	assert.False(t, IsSync([]byte{0xFE, 0xFB}))
	assert.False(t, IsSync([]byte{0xFF, 0xDF}))
}

func TestConsistent(t *testing.T) {
	t.Parallel()

	a, err := Parse([]byte{0xFF, 0xFB, 0x90, 0x64})
	require.NoError(t, err)
	b, err := Parse([]byte{0xFF, 0xFB, 0xB2, 0xC0}) // other bitrate, padded, mono
	require.NoError(t, err)
	c, err := Parse([]byte{0xFF, 0xFB, 0x94, 0x64}) // 48k
	require.NoError(t, err)
	d, err := Parse([]byte{0xFF, 0xF3, 0x80, 0xC0}) // mpeg2
	require.NoError(t, err)

	assert.True(t, Consistent(a, b))
	assert.False(t, Consistent(a, c))
	assert.False(t, Consistent(a, d))
}

func TestStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MPEG-2.5", Version25.String())
	assert.Equal(t, "unknown", Version(0).String())
	assert.Equal(t, "joint stereo", JointStereo.String())

	info, err := Parse([]byte{0xFF, 0xFB, 0x90, 0x64})
	require.NoError(t, err)
	assert.Equal(t, "MPEG-1 layer 3, 128000 bps, 44100 Hz, joint stereo, 417 bytes", info.String())
}
