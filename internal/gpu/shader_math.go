package gpu

import (
	"github.com/gogpu/plotline"
	"golang.org/x/image/math/f32"
)

// This file mirrors the math in shaders/line.wgsl on the CPU so that the
// vertex remap and edge feathering can be tested without a GPU.

// TransformVertex applies the vertex stage of the line shader: remap the
// data space position into clip space using bounds, then displace along the
// normal by LineWidth.
func TransformVertex(pos, normal f32.Vec2, b plotline.Bounds) f32.Vec2 {
	x := 2.0*(pos[0]-b.XMin)/b.Width() - 1.0
	y := 2.0*(pos[1]-b.YMin)/b.Height() - 1.0
	return f32.Vec2{
		x + normal[0]*LineWidth,
		y + normal[1]*LineWidth,
	}
}

// FeatherAlpha applies the fragment stage edge fade for an interpolated
// normal of length d. It returns 1 at the centerline band and falls to 0 at
// the strip edge with a Hermite ramp.
func FeatherAlpha(d float32) float32 {
	t := (1.0 - d) / Feather
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3.0 - 2.0*t)
}
