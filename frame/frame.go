// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"fmt"

	"github.com/ik5/audstream/audio"
)

const (
	// HeaderSize is the size of the sync word plus header fields.
	HeaderSize = 4

	// MaxLength is the largest legal frame (Layer II, MPEG-2.5, 160 kbps, 8 kHz, padded).
	MaxLength = 2881
)

// Version of the MPEG audio standard.
type Version uint8

const (
	Version1 Version = iota + 1
	Version2
	Version25
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "MPEG-1"
	case Version2:
		return "MPEG-2"
	case Version25:
		return "MPEG-2.5"
	default:
		return "unknown"
	}
}

// ChannelMode as encoded in the header.
type ChannelMode uint8

const (
	Stereo ChannelMode = iota
	JointStereo
	DualChannel
	Mono
)

func (m ChannelMode) String() string {
	return [...]string{"stereo", "joint stereo", "dual channel", "mono"}[m&3]
}

// UnitInfo is the read-only result of probing a frame header.
type UnitInfo struct {
	Version     Version
	Layer       int
	Bitrate     int // bits per second
	SampleRate  int
	ChannelMode ChannelMode
	Padding     bool
	CRC         bool
	// Length of the whole frame, header included.
	Length int
	// SamplesPerFrame per channel.
	SamplesPerFrame int
}

// Channels is the channel count of the encoded stream.
func (u UnitInfo) Channels() int {
	if u.ChannelMode == Mono {
		return 1
	}
	return 2
}

// Format is the PCM format this unit decodes to with a 16-bit decoder.
func (u UnitInfo) Format() audio.Format {
	return audio.Format{SampleRate: u.SampleRate, Channels: u.Channels(), BitDepth: 16}
}

// Size is the whole frame length.
func (u UnitInfo) Size() int { return u.Length }

func (u UnitInfo) String() string {
	return fmt.Sprintf("%s layer %d, %d bps, %d Hz, %s, %d bytes",
		u.Version, u.Layer, u.Bitrate, u.SampleRate, u.ChannelMode, u.Length)
}

// kbps, indexed by [lsf][layer-1][index]
var bitrates = [2][3][15]int{
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	},
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	},
}

var sampleRates = [...][3]int{
	Version1:  {44100, 48000, 32000},
	Version2:  {22050, 24000, 16000},
	Version25: {11025, 12000, 8000},
}

// IsSync reports whether b starts with the 11-bit frame sync marker.
func IsSync(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}

// Parse reads the header at the start of b. It never looks past HeaderSize bytes.
func Parse(b []byte) (UnitInfo, error) {
	var u UnitInfo

	if len(b) < HeaderSize {
		return u, ErrShortHeader
	}
	if !IsSync(b) {
		return u, ErrNoSync
	}

	switch (b[1] >> 3) & 0x03 {
	case 0:
		u.Version = Version25
	case 2:
		u.Version = Version2
	case 3:
		u.Version = Version1
	default:
		return u, ErrReservedVersion
	}

	layerBits := (b[1] >> 1) & 0x03
	if layerBits == 0 {
		return u, ErrReservedLayer
	}
	u.Layer = 4 - int(layerBits)
	u.CRC = b[1]&0x01 == 0

	idx := int(b[2] >> 4)
	switch idx {
	case 0:
		return u, ErrFreeBitrate
	case 15:
		return u, ErrBadBitrate
	}
	lsf := 0
	if u.Version != Version1 {
		lsf = 1
	}
	u.Bitrate = bitrates[lsf][u.Layer-1][idx] * 1000

	rateIdx := (b[2] >> 2) & 0x03
	if rateIdx == 3 {
		return u, ErrReservedRate
	}
	u.SampleRate = sampleRates[u.Version][rateIdx]

	u.Padding = (b[2]>>1)&0x01 == 1
	u.ChannelMode = ChannelMode(b[3] >> 6)

	if b[3]&0x03 == 2 {
		return u, ErrReservedEmphasis
	}

	pad := 0
	if u.Padding {
		pad = 1
	}

	switch u.Layer {
	case 1:
		u.Length = (12*u.Bitrate/u.SampleRate + pad) * 4
		u.SamplesPerFrame = 384
	case 2:
		u.Length = 144*u.Bitrate/u.SampleRate + pad
		u.SamplesPerFrame = 1152
	default:
		if u.Version == Version1 {
			u.Length = 144*u.Bitrate/u.SampleRate + pad
			u.SamplesPerFrame = 1152
		} else {
			u.Length = 72*u.Bitrate/u.SampleRate + pad
			u.SamplesPerFrame = 576
		}
	}

	return u, nil
}

// Consistent reports whether two headers can belong to the same stream.
func Consistent(a, b UnitInfo) bool {
	return a.Version == b.Version && a.Layer == b.Layer && a.SampleRate == b.SampleRate
}
