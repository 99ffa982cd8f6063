// SPDX-License-Identifier: EPL-2.0

//go:build malgo

package main

import (
	"github.com/sirupsen/logrus"

	"github.com/ik5/audstream/output"
)

func newDevice(logger logrus.FieldLogger) (output.Hardware, error) {
	return output.NewDevice(logger), nil
}
