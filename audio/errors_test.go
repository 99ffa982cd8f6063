// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrOverflow, "write exceeds free space"},
		{ErrParse, "malformed unit header"},
		{ErrDecode, "unit decode failed"},
		{ErrIncompleteUnit, "incomplete unit"},
		{ErrIO, "source read failed"},
		{ErrAlignmentLost, "stream alignment lost"},
		{ErrStopped, "transfer stopped"},
		{ErrUnknownFormat, "unknown format"},
		{ErrShortHeader, "header not fully buffered"},
		{ErrFormatUnknown, "unit format unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("frame at offset 12: %w", ErrParse)
	if !errors.Is(wrapped, ErrParse) {
		t.Error("errors.Is() failed for wrapped ErrParse")
	}
	if errors.Is(wrapped, ErrDecode) {
		t.Error("errors.Is() matched an unrelated sentinel")
	}

	joined := errors.Join(ErrDecode, errors.New("mp3: huffman"))
	if !errors.Is(joined, ErrDecode) {
		t.Error("errors.Is() failed for joined ErrDecode")
	}
}
