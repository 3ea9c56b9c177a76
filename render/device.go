// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// Hosts that render with gogpu implement this (gogpu.App does) and pass it
// to NewFromProvider so plotline shares the host's device instead of
// creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving the
// interface a plotline-local name while staying compatible with the
// gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// halFromProvider extracts the underlying HAL device and queue from a
// device provider. The provider must expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue; gpucontext device
// implementations do.
func halFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("render: provider %T does not expose HAL device access", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, nil, fmt.Errorf("render: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, nil, fmt.Errorf("render: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}
