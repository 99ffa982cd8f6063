// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrOverflow is returned when a write exceeds the reported free space.
	// Writes are never partially applied.
	ErrOverflow = errors.New("write exceeds free space")

	// ErrParse indicates a missing or malformed unit header.
	ErrParse = errors.New("malformed unit header")

	// ErrDecode indicates that a unit failed to decode.
	ErrDecode = errors.New("unit decode failed")

	// ErrShortHeader means a header may start at the front but is not fully
	// buffered yet. Wrapped together with ErrParse.
	ErrShortHeader = errors.New("header not fully buffered")

	// ErrFormatUnknown is returned for units whose header carries no format
	// before the decoder has learnt one.
	ErrFormatUnknown = errors.New("unit format unknown")

	// ErrIncompleteUnit means the header is aligned but the unit is not fully buffered yet.
	ErrIncompleteUnit = errors.New("incomplete unit")

	// ErrIO wraps source read failures.
	ErrIO = errors.New("source read failed")

	// ErrAlignmentLost is returned when sync cannot be re-established.
	ErrAlignmentLost = errors.New("stream alignment lost")

	// ErrStopped is returned by pushes after the transfer was stopped.
	ErrStopped = errors.New("transfer stopped")

	// ErrUnknownFormat is returned by the registry for unregistered formats.
	ErrUnknownFormat = errors.New("unknown format")
)
