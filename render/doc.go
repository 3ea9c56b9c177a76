// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the GPU integration layer for plotline.
//
// This package defines how plotline obtains a GPU device and exposes the
// line renderer to hosts.
//
// # Key Principle
//
// plotline RECEIVES a GPU device from the host application when one exists.
// Hosts that already render with gogpu share their device via DeviceHandle
// or a HAL provider, so plot rendering adds no device creation overhead and
// draws can be recorded into the host's own render passes. Standalone use
// (offscreen rendering, tests, CLI tools) is served by NewStandalone, which
// opens a Vulkan device owned by the renderer.
//
// # Usage
//
// Standalone offscreen rendering:
//
//	r, err := render.NewStandalone(render.Config{})
//	if err != nil { ... }
//	defer r.Destroy()
//
//	plot := plotline.NewPlot(bounds)
//	plot.AddSeries(plotline.Series{Points: pts, Color: plotline.RGB(0, 0.5, 1)})
//
//	target := plotline.NewRenderTarget(800, 600)
//	if err := r.RenderPlot(plot, target); err != nil { ... }
//
// Embedded in a host render pass:
//
//	r, err := render.New(device, queue, render.Config{})
//	...
//	r.Prepare(plot.Bounds(), plot.VertexData(), plot.Dirty())
//	r.RecordDraws(rp)
package render
