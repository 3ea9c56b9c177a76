// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/plotline"
	"github.com/gogpu/plotline/internal/gpu"
)

// Config controls renderer resource allocation. Zero values select
// defaults: BGRA8Unorm color output, a 5 million vertex capacity, and no
// multisampling.
type Config struct {
	// Format is the color target format the pipeline renders to. It must
	// match the host's surface format when draws are recorded into a host
	// render pass.
	Format gputypes.TextureFormat

	// MaxVertices caps the persistent vertex buffer.
	MaxVertices int

	// SampleCount selects MSAA samples for offscreen rendering.
	SampleCount uint32
}

// Renderer draws antialiased line plots on a GPU device. Create one per
// device with New, NewFromProvider, or NewStandalone, and release it with
// Destroy.
type Renderer struct {
	lr     *gpu.LineRenderer
	owned  *gpu.StandaloneDevice
	bounds plotline.Bounds
}

// New creates a renderer on an existing HAL device and queue.
func New(device hal.Device, queue hal.Queue, cfg Config) *Renderer {
	return &Renderer{lr: gpu.NewLineRenderer(device, queue, gpu.Config{
		Format:      cfg.Format,
		MaxVertices: cfg.MaxVertices,
		SampleCount: cfg.SampleCount,
	})}
}

// NewFromProvider creates a renderer sharing the host's GPU device. The
// provider is typically a DeviceHandle implementation such as gogpu.App.
func NewFromProvider(provider any, cfg Config) (*Renderer, error) {
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return New(device, queue, cfg), nil
}

// NewStandalone creates a renderer with its own Vulkan device. Intended for
// offscreen rendering when no host GPU context exists; the device is
// released by Destroy.
func NewStandalone(cfg Config) (*Renderer, error) {
	dev, err := gpu.OpenStandaloneDevice()
	if err != nil {
		return nil, err
	}
	r := New(dev.Device(), dev.Queue(), cfg)
	r.owned = dev
	return r, nil
}

// Destroy releases all GPU resources, including the standalone device when
// the renderer owns one. Safe to call multiple times.
func (r *Renderer) Destroy() {
	r.lr.Destroy()
	if r.owned != nil {
		r.owned.Destroy()
		r.owned = nil
	}
}

// Prepare uploads per-frame state. The view bounds uniform is written on
// every call; vertexData is uploaded only when dirty is true, so pan and
// zoom cost a 16-byte write regardless of point count.
func (r *Renderer) Prepare(bounds plotline.Bounds, vertexData []byte, dirty bool) error {
	r.bounds = bounds
	return r.lr.Prepare(bounds, vertexData, dirty)
}

// RecordDraws records the prepared line strips into a render pass owned by
// the host. The pass's color target format must match Config.Format.
func (r *Renderer) RecordDraws(rp hal.RenderPassEncoder) {
	r.lr.RecordDraws(rp)
}

// RenderFrame renders the prepared line strips offscreen into target.
func (r *Renderer) RenderFrame(target *plotline.RenderTarget) error {
	return r.lr.RenderFrame(target)
}

// RenderPlot prepares and renders a plot in one call. Vertex data is
// rebuilt and re-uploaded only when the plot is dirty.
func (r *Renderer) RenderPlot(p *plotline.Plot, target *plotline.RenderTarget) error {
	dirty := p.Dirty()
	if err := r.Prepare(p.Bounds(), p.VertexData(), dirty); err != nil {
		return err
	}
	return r.RenderFrame(target)
}

// VertexCount returns the number of vertices uploaded by the last Prepare.
func (r *Renderer) VertexCount() uint32 {
	return r.lr.VertexCount()
}
