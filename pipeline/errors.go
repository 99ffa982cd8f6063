// SPDX-License-Identifier: EPL-2.0

package pipeline

import "errors"

var (
	ErrConfig           = errors.New("invalid pipeline config")
	ErrBlockTooLarge    = errors.New("sample block can never fit the output ring")
	ErrMissingComponent = errors.New("pipeline component is nil")
)
