package plotline

import "golang.org/x/image/math/f32"

// Series is one polyline in a plot. Points are in data space and rendered in
// slice order. Color applies to the whole series unless per-point Colors are
// set, in which case Colors must have the same length as Points.
type Series struct {
	Points []f32.Vec2
	Color  RGBA
	Colors []RGBA
}

// appendVertices appends the triangle strip encoding of s to dst.
func (s *Series) appendVertices(dst []Vertex) []Vertex {
	if s.Colors != nil {
		return AppendStripColors(dst, s.Points, s.Colors)
	}
	return AppendStrip(dst, s.Points, s.Color)
}
