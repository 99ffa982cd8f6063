// SPDX-License-Identifier: EPL-2.0

//go:build malgo

package output

import (
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/log"
)

// Device plays the ring on the default playback device. The device data
// callback drains the ring directly and zero-fills underruns.
type Device struct {
	log logrus.FieldLogger

	ctx *malgo.AllocatedContext
	dev *malgo.Device
}

func NewDevice(logger logrus.FieldLogger) *Device {
	return &Device{log: log.OrDiscard(logger)}
}

func (d *Device) Open(format audio.Format, drain func([]byte) int) error {
	if d.dev != nil {
		return ErrAlreadyStarted
	}
	if format.BitDepth != 16 {
		return fmt.Errorf("%w: %d bit", ErrBadFormat, format.BitDepth)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		d.log.Debug(msg)
	})
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(format.Channels)
	cfg.SampleRate = uint32(format.SampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n := drain(out)
			clear(out[n:])
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("init playback device: %w", err)
	}

	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("start playback device: %w", err)
	}

	d.ctx, d.dev = ctx, dev
	d.log.Debug("playback device started")

	return nil
}

func (d *Device) Close() error {
	if d.dev == nil {
		return ErrNotOpen
	}

	err := d.dev.Stop()
	d.dev.Uninit()
	d.dev = nil

	if uerr := d.ctx.Uninit(); uerr != nil && err == nil {
		err = uerr
	}
	d.ctx.Free()
	d.ctx = nil

	return err
}
