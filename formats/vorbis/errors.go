// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"

	"github.com/ik5/audstream/audio"
)

// Page header errors match audio.ErrParse with errors.Is.
var (
	ErrShortPage   = fmt.Errorf("%w: %w", audio.ErrParse, audio.ErrShortHeader)
	ErrNoCapture   = fmt.Errorf("%w: missing OggS capture pattern", audio.ErrParse)
	ErrPageVersion = fmt.Errorf("%w: unsupported Ogg page version", audio.ErrParse)
	ErrPageFlags   = fmt.Errorf("%w: reserved Ogg page flags", audio.ErrParse)
	ErrBadIdent    = fmt.Errorf("%w: invalid Vorbis identification header", audio.ErrParse)
)

var (
	ErrChecksum    = errors.New("ogg page checksum mismatch")
	ErrNoStream    = errors.New("page before the Vorbis headers")
	ErrPacketSize  = errors.New("vorbis packet too large")
	ErrShortOutput = errors.New("output buffer smaller than one sample frame")
	ErrMalformed   = errors.New("malformed vorbis packet")
)
