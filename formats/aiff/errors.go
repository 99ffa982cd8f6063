// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrOnlyPCM16bitSupported indicates only 16-bit PCM is supported
	ErrOnlyPCM16bitSupported = errors.New("only 16-bit PCM AIFF is supported")

	// ErrUnsupportedAiffLayout indicates an unsupported AIFF layout
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")

	// ErrNoFormat is returned by Write before SetFormat
	ErrNoFormat = errors.New("aiff sink: format not set")

	// ErrFormatChanged is returned when SetFormat is called again with a
	// different format
	ErrFormatChanged = errors.New("aiff sink: format changed")
)
