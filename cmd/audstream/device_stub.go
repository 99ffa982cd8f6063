// SPDX-License-Identifier: EPL-2.0

//go:build !malgo

package main

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audstream/output"
)

var errNoDevice = errors.New("built without sound card support, rebuild with -tags malgo")

func newDevice(logrus.FieldLogger) (output.Hardware, error) {
	return nil, errNoDevice
}
