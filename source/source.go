// SPDX-License-Identifier: EPL-2.0

package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audstream/audio"
)

// DefaultChunkSize is small next to any sensible reservoir so a free-space
// checked admission never fails.
const DefaultChunkSize = 512

// Provider yields compressed input one chunk at a time. The returned slice is
// valid until the next call and never longer than the chunk size.
// Exhaustion is reported as io.EOF.
type Provider interface {
	NextChunk() ([]byte, error)
}

// Memory serves sub-slices of an in-memory buffer. It is finite and cannot
// be restarted.
type Memory struct {
	data  []byte
	chunk int
	off   int
}

// NewMemory splits data into chunks of chunkSize bytes (DefaultChunkSize when
// chunkSize is not positive). data is not copied.
func NewMemory(data []byte, chunkSize int) *Memory {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Memory{data: data, chunk: chunkSize}
}

func (m *Memory) NextChunk() ([]byte, error) {
	if m.off >= len(m.data) {
		return nil, io.EOF
	}

	end := min(m.off+m.chunk, len(m.data))
	b := m.data[m.off:end:end]
	m.off = end

	return b, nil
}

// Remaining is the number of bytes not yet handed out.
func (m *Memory) Remaining() int { return len(m.data) - m.off }

// Reader is a storage-backed provider. Reads fill the caller's buffer as far
// as the underlying reader allows; failures other than end of data are
// wrapped in audio.ErrIO.
type Reader struct {
	r         io.Reader
	buf       []byte
	exhausted bool
	// error to report once the bytes read alongside it were delivered
	pending error
}

func NewReader(r io.Reader, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Reader{r: r, buf: make([]byte, chunkSize)}
}

// Read fills p. A short count with a nil error means the end of data was
// reached; the next call returns io.EOF.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pending != nil {
		err := r.pending
		r.pending = nil
		return 0, err
	}
	if r.exhausted {
		return 0, io.EOF
	}

	n, err := io.ReadFull(r.r, p)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		r.exhausted = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	default:
		err = fmt.Errorf("%w: %w", audio.ErrIO, err)
		if n == 0 {
			return 0, err
		}
		r.pending = err
		return n, nil
	}
}

// Exhausted reports whether the end of data was reached.
func (r *Reader) Exhausted() bool { return r.exhausted }

func (r *Reader) NextChunk() ([]byte, error) {
	n, err := r.Read(r.buf)
	if n > 0 {
		return r.buf[:n], nil
	}

	return nil, err
}

// File is a Reader over an opened file.
type File struct {
	*Reader

	f *os.File
}

// Open opens path for chunked reading.
func Open(path string, chunkSize int) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	return &File{Reader: NewReader(f, chunkSize), f: f}, nil
}

func (f *File) Close() error {
	return f.f.Close()
}
