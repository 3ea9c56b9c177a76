package plotline

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"
)

// ErrDegenerateBounds is returned when a bounds rectangle has zero or
// negative extent on either axis. Such bounds cannot be mapped to clip space.
var ErrDegenerateBounds = errors.New("plotline: degenerate bounds (zero or negative extent)")

// Bounds is an axis-aligned rectangle in data space. It selects the visible
// region of a plot: points inside map to clip space [-1, 1] on both axes,
// points outside fall beyond the clip volume and are discarded by the GPU.
type Bounds struct {
	XMin, XMax float32
	YMin, YMax float32
}

// Validate reports whether b spans a positive area.
func (b Bounds) Validate() error {
	if b.XMax <= b.XMin || b.YMax <= b.YMin {
		return fmt.Errorf("%w: x=[%g, %g] y=[%g, %g]", ErrDegenerateBounds, b.XMin, b.XMax, b.YMin, b.YMax)
	}
	return nil
}

// Width returns the horizontal extent of b.
func (b Bounds) Width() float32 { return b.XMax - b.XMin }

// Height returns the vertical extent of b.
func (b Bounds) Height() float32 { return b.YMax - b.YMin }

// Expand grows b by the given fractions of its extent on each side.
// Expand(0.05, 0.05) adds a 5% margin all around, which keeps strokes at the
// data extremes from being clipped at the viewport edge.
func (b Bounds) Expand(fx, fy float32) Bounds {
	dx := b.Width() * fx
	dy := b.Height() * fy
	return Bounds{
		XMin: b.XMin - dx,
		XMax: b.XMax + dx,
		YMin: b.YMin - dy,
		YMax: b.YMax + dy,
	}
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	out := b
	if o.XMin < out.XMin {
		out.XMin = o.XMin
	}
	if o.XMax > out.XMax {
		out.XMax = o.XMax
	}
	if o.YMin < out.YMin {
		out.YMin = o.YMin
	}
	if o.YMax > out.YMax {
		out.YMax = o.YMax
	}
	return out
}

// BoundsOf computes the tight bounding rectangle of the given points.
// It returns an error when points is empty.
func BoundsOf(points []f32.Vec2) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, errors.New("plotline: bounds of empty point set")
	}
	b := Bounds{
		XMin: points[0][0], XMax: points[0][0],
		YMin: points[0][1], YMax: points[0][1],
	}
	for _, p := range points[1:] {
		if p[0] < b.XMin {
			b.XMin = p[0]
		}
		if p[0] > b.XMax {
			b.XMax = p[0]
		}
		if p[1] < b.YMin {
			b.YMin = p[1]
		}
		if p[1] > b.YMax {
			b.YMax = p[1]
		}
	}
	return b, nil
}
