// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"fmt"

	"github.com/ik5/audstream/audio"
)

// All header errors match audio.ErrParse with errors.Is.
var (
	ErrShortHeader      = fmt.Errorf("%w: %w", audio.ErrParse, audio.ErrShortHeader)
	ErrNoSync           = fmt.Errorf("%w: missing sync marker", audio.ErrParse)
	ErrReservedVersion  = fmt.Errorf("%w: reserved MPEG version", audio.ErrParse)
	ErrReservedLayer    = fmt.Errorf("%w: reserved layer", audio.ErrParse)
	ErrFreeBitrate      = fmt.Errorf("%w: free bitrate not supported", audio.ErrParse)
	ErrBadBitrate       = fmt.Errorf("%w: invalid bitrate index", audio.ErrParse)
	ErrReservedRate     = fmt.Errorf("%w: reserved sample rate", audio.ErrParse)
	ErrReservedEmphasis = fmt.Errorf("%w: reserved emphasis", audio.ErrParse)
)
