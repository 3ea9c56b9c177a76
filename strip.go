package plotline

import (
	"math"

	"golang.org/x/image/math/f32"
)

// BuildStrip converts a polyline into triangle strip vertices with a uniform
// color. Each data point yields two vertices: one displaced along the unit
// normal at that point and one along its inverse. The normal at an interior
// point is the normalized average of the normals of the two adjacent
// segments, which keeps joins watertight without a separate miter pass.
//
// Polylines with fewer than two points produce no vertices. Zero-length
// segments are skipped when computing directions so that repeated points do
// not inject NaN normals into the buffer.
func BuildStrip(points []f32.Vec2, color RGBA) []Vertex {
	return appendStrip(nil, points, uniformColor(color))
}

// BuildStripColors is BuildStrip with one color per point. The two vertices
// emitted for point i carry colors[i]. It panics when the slice lengths
// differ, matching the contract of the per-point color variant throughout
// this package.
func BuildStripColors(points []f32.Vec2, colors []RGBA) []Vertex {
	if len(points) != len(colors) {
		panic("plotline: points and colors length mismatch")
	}
	return appendStrip(nil, points, func(i int) f32.Vec4 { return colors[i].Vec4() })
}

// AppendStrip appends the strip vertices for points to dst, joining it to any
// previous strip content with degenerate triangles. Multiple polylines can be
// packed into one buffer and drawn with a single triangle strip draw call:
// the duplicated first and last vertices collapse the bridging triangles to
// zero area so nothing is visible between strips.
func AppendStrip(dst []Vertex, points []f32.Vec2, color RGBA) []Vertex {
	return appendStripJoined(dst, points, uniformColor(color))
}

// AppendStripColors is AppendStrip with one color per point.
func AppendStripColors(dst []Vertex, points []f32.Vec2, colors []RGBA) []Vertex {
	if len(points) != len(colors) {
		panic("plotline: points and colors length mismatch")
	}
	return appendStripJoined(dst, points, func(i int) f32.Vec4 { return colors[i].Vec4() })
}

func uniformColor(c RGBA) func(int) f32.Vec4 {
	v := c.Vec4()
	return func(int) f32.Vec4 { return v }
}

func appendStripJoined(dst []Vertex, points []f32.Vec2, colorAt func(int) f32.Vec4) []Vertex {
	if len(points) < 2 {
		return dst
	}
	if len(dst) > 0 {
		// Bridge the previous strip to this one with degenerate triangles:
		// repeat the previous strip's last vertex, then the first vertex the
		// new strip is about to emit.
		first := Vertex{Position: points[0], Normal: normalAt(points, 0), Color: colorAt(0)}
		dst = append(dst, dst[len(dst)-1], first)
	}
	return appendStrip(dst, points, colorAt)
}

func appendStrip(dst []Vertex, points []f32.Vec2, colorAt func(int) f32.Vec4) []Vertex {
	n := len(points)
	if n < 2 {
		return dst
	}
	if cap(dst)-len(dst) < 2*n {
		grown := make([]Vertex, len(dst), len(dst)+2*n)
		copy(grown, dst)
		dst = grown
	}
	for i := 0; i < n; i++ {
		nrm := normalAt(points, i)
		c := colorAt(i)
		dst = append(dst,
			Vertex{Position: points[i], Normal: nrm, Color: c},
			Vertex{Position: points[i], Normal: f32.Vec2{-nrm[0], -nrm[1]}, Color: c},
		)
	}
	return dst
}

// normalAt computes the unit normal of the polyline at point i. Endpoints use
// the normal of their single adjacent segment; interior points average the
// two segment normals and renormalize.
func normalAt(points []f32.Vec2, i int) f32.Vec2 {
	var nx, ny float32
	if i > 0 {
		sx, sy := segmentNormal(points[i-1], points[i])
		nx += sx
		ny += sy
	}
	if i < len(points)-1 {
		sx, sy := segmentNormal(points[i], points[i+1])
		nx += sx
		ny += sy
	}
	l := float32(math.Hypot(float64(nx), float64(ny)))
	if l == 0 {
		// All adjacent segments are zero length. Any unit vector works; the
		// two displaced vertices still collapse the strip to the point.
		return f32.Vec2{0, 1}
	}
	return f32.Vec2{nx / l, ny / l}
}

// segmentNormal returns the unit vector perpendicular to the segment a->b,
// or (0, 0) for a zero-length segment.
func segmentNormal(a, b f32.Vec2) (float32, float32) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return 0, 0
	}
	return -dy / l, dx / l
}
