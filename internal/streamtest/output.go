// SPDX-License-Identifier: EPL-2.0

package streamtest

import (
	"errors"
	"sync"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

// MockOutput records what a driver pushes. Free space shrinks on every push
// and only grows through Release, which stands in for the hardware drain.
type MockOutput struct {
	mtx sync.Mutex

	free    int
	stopped bool

	// PushErr, when set, fails every push without consuming space.
	PushErr error
	// StartErr, when set, is returned by Start.
	StartErr error

	Format     audio.Format
	StartCalls int
	StopCalls  int
	Pushes     [][]byte
}

func NewMockOutput(free int) *MockOutput {
	return &MockOutput{free: free}
}

func (o *MockOutput) Start(f audio.Format) error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.StartCalls++
	o.Format = f
	return o.StartErr
}

func (o *MockOutput) Available() int {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return o.free
}

func (o *MockOutput) Push(data []byte) error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	switch {
	case o.stopped:
		return audio.ErrStopped
	case o.PushErr != nil:
		return o.PushErr
	case len(data) > o.free:
		return audio.ErrOverflow
	}

	o.free -= len(data)
	o.Pushes = append(o.Pushes, append([]byte(nil), data...))
	return nil
}

func (o *MockOutput) Stop() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.StopCalls++
	if o.stopped {
		return errors.New("mock output: stopped twice")
	}
	o.stopped = true
	return nil
}

// Release frees n bytes as if the hardware had drained them.
func (o *MockOutput) Release(n int) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.free += n
}

// Samples decodes every pushed block back into int16 samples, in push order.
func (o *MockOutput) Samples() []int16 {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	var out []int16
	for _, p := range o.Pushes {
		s := make([]int16, len(p)/2)
		utils.BytesLEToInt16(s, p)
		out = append(out, s...)
	}
	return out
}

// PushCount returns the number of successful pushes.
func (o *MockOutput) PushCount() int {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return len(o.Pushes)
}
