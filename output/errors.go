// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	ErrCapacity       = errors.New("ring capacity must be positive")
	ErrAlreadyStarted = errors.New("transfer already started")
	ErrNotOpen        = errors.New("hardware not open")
	ErrBadFormat      = errors.New("unsupported output format")
)
