// SPDX-License-Identifier: EPL-2.0

package pipeline

import "github.com/ik5/audstream/utils"

// Pending is the decoded block not yet delivered to the output. It is the
// only state the driver carries from one iteration to the next besides the
// reservoir itself.
type Pending struct {
	samples []int16
	pcm     []byte
	n       int
}

func newPending(size int) *Pending {
	return &Pending{
		samples: make([]int16, size),
		pcm:     make([]byte, 2*size),
	}
}

// Remaining is the number of undelivered samples.
func (p *Pending) Remaining() int { return p.n }

// Buffer is where the next unit is decoded into.
func (p *Pending) Buffer() []int16 { return p.samples }

// Set marks the first n samples of Buffer as pending.
func (p *Pending) Set(n int) {
	p.n = n
	utils.Int16ToBytesLE(p.pcm, p.samples[:n])
}

// Bytes is the pending block as little-endian PCM.
func (p *Pending) Bytes() []byte { return p.pcm[:2*p.n] }

func (p *Pending) Clear() { p.n = 0 }
