package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend

	"github.com/gogpu/plotline"
)

// StandaloneDevice owns a Vulkan device created for hosts that do not bring
// their own. Destroy releases the device and instance.
type StandaloneDevice struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

// OpenStandaloneDevice creates a standalone Vulkan device. This is the
// fallback path when the host has no GPU context to share; hosts that render
// with gogpu should pass their existing device instead.
func OpenStandaloneDevice() (*StandaloneDevice, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	plotline.Logger().Info("standalone GPU device opened", "adapter", selected.Info.Name)
	return &StandaloneDevice{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}

// Device returns the HAL device.
func (d *StandaloneDevice) Device() hal.Device { return d.device }

// Queue returns the HAL queue.
func (d *StandaloneDevice) Queue() hal.Queue { return d.queue }

// Destroy releases the device and instance. Safe to call multiple times.
func (d *StandaloneDevice) Destroy() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
