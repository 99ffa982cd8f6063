// SPDX-License-Identifier: EPL-2.0

package streamtest

import (
	"errors"
	"math"
	"sync"
)

// ErrMockDecode is returned by MockDecoder for units listed in FailUnits.
var ErrMockDecode = errors.New("mock decode failure")

// MockDecoder is a unit decoder that generates samples instead of decoding.
// It implements audio.UnitDecoder (without importing it to keep helpers
// usable from every package's tests).
type MockDecoder struct {
	samplesPerUnit int
	waveform       func(unit, sample int) int16

	// FailUnits lists zero-based unit indices that fail to decode.
	FailUnits map[int]bool

	mtx     sync.Mutex
	units   int
	lengths []int
}

// NewMockDecoder creates a decoder emitting samplesPerUnit samples per unit,
// each produced by waveform.
func NewMockDecoder(samplesPerUnit int, waveform func(unit, sample int) int16) *MockDecoder {
	return &MockDecoder{
		samplesPerUnit: samplesPerUnit,
		waveform:       waveform,
		FailUnits:      map[int]bool{},
	}
}

// NewSilentDecoder emits zeros.
func NewSilentDecoder(samplesPerUnit int) *MockDecoder {
	return NewMockDecoder(samplesPerUnit, func(int, int) int16 { return 0 })
}

// NewSequenceDecoder emits a running counter across units, so the output of
// a whole stream is 0, 1, 2, ... and ordering mistakes are easy to spot.
func NewSequenceDecoder(samplesPerUnit int) *MockDecoder {
	return NewMockDecoder(samplesPerUnit, func(unit, sample int) int16 {
		return int16(unit*samplesPerUnit + sample)
	})
}

// NewSineDecoder emits a sine wave of frequency Hz at sampleRate.
func NewSineDecoder(samplesPerUnit, sampleRate int, frequency float64) *MockDecoder {
	return NewMockDecoder(samplesPerUnit, func(unit, sample int) int16 {
		t := float64(unit*samplesPerUnit+sample) / float64(sampleRate)
		return int16(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16 / 2)
	})
}

func (m *MockDecoder) DecodeUnit(unit []byte, out []int16) (int, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	idx := m.units
	m.units++
	m.lengths = append(m.lengths, len(unit))

	if m.FailUnits[idx] {
		return 0, ErrMockDecode
	}

	n := min(m.samplesPerUnit, len(out))
	for i := range n {
		out[i] = m.waveform(idx, i)
	}

	return n, nil
}

// Units is the number of DecodeUnit calls so far.
func (m *MockDecoder) Units() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.units
}

// Lengths of every unit handed to the decoder, in call order.
func (m *MockDecoder) Lengths() []int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return append([]int(nil), m.lengths...)
}
