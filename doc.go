// Package plotline renders very large 2D line plots on the GPU.
//
// # Overview
//
// plotline draws antialiased, constant-screen-width polylines with millions
// of points at interactive frame rates. The data-space-to-screen transform
// runs in the vertex shader, driven by a 16-byte view uniform: panning and
// zooming update only that uniform, never the vertex buffer. A dataset is
// uploaded once and stays resident on the GPU until it changes.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/plotline"
//	    "github.com/gogpu/plotline/render"
//	)
//
//	p := plotline.NewPlot(plotline.Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1})
//	p.AddSeries(plotline.Series{Points: points, Color: plotline.RGB(0.9, 0.3, 0.2)})
//	p.FitBounds(0.05, 0.05)
//
//	r, err := render.NewStandalone(render.Config{})
//	// handle err
//	defer r.Destroy()
//
//	target := plotline.NewRenderTarget(1280, 720)
//	err = r.RenderPlot(p, target)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Vertex, Bounds, Series, Plot, RenderTarget
//   - render: GPU renderer surface, device sharing with host applications
//   - Internal: gpu (WGSL pipeline, buffers, offscreen targets)
//
// # Line Geometry
//
// A polyline is encoded as a triangle strip: every data point appears twice,
// with unit normals of opposite sign. The vertex stage widens the strip along
// the normals after mapping data coordinates to clip space, so line width is
// constant in screen pixels at any zoom level. The fragment stage feathers
// alpha against the interpolated normal length for antialiased edges. See
// BuildStrip for how normals and joins are computed.
//
// # Hosts
//
// plotline does not own a window and does not decide when to redraw. A host
// either calls Renderer.RenderFrame for offscreen pixels, or records draws
// into its own render pass via Renderer.RecordDraws and shares its GPU
// device through render.DeviceHandle.
package plotline

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
