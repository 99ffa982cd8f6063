// SPDX-License-Identifier: EPL-2.0

package reservoir

import "errors"

var (
	ErrCapacity     = errors.New("reservoir capacity too small")
	ErrNilDecoder   = errors.New("reservoir needs a unit decoder")
	ErrUnitTooLarge = errors.New("unit larger than reservoir")
)
