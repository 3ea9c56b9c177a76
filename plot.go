package plotline

import "golang.org/x/image/math/f32"

// Plot is a collection of line series plus the visible data region. It keeps
// a cached vertex encoding so that repeated renders with unchanged data skip
// the strip rebuild and, downstream, the GPU vertex upload. Changing the
// bounds alone never marks the plot dirty: the remap lives in a small uniform
// and costs nothing to update every frame.
//
// Plot is not safe for concurrent use.
type Plot struct {
	series []Series
	bounds Bounds

	vertices []Vertex
	staging  []byte
	dirty    bool
}

// NewPlot returns an empty plot with the given visible bounds.
func NewPlot(bounds Bounds) *Plot {
	return &Plot{bounds: bounds, dirty: true}
}

// AddSeries appends a series to the plot and marks the vertex data dirty.
func (p *Plot) AddSeries(s Series) {
	p.series = append(p.series, s)
	p.dirty = true
}

// SetSeries replaces the series at index i.
func (p *Plot) SetSeries(i int, s Series) {
	p.series[i] = s
	p.dirty = true
}

// SeriesCount returns the number of series in the plot.
func (p *Plot) SeriesCount() int { return len(p.series) }

// Bounds returns the visible data region.
func (p *Plot) Bounds() Bounds { return p.bounds }

// SetBounds pans or zooms the view. This is cheap: vertex data is untouched.
func (p *Plot) SetBounds(b Bounds) { p.bounds = b }

// FitBounds sets the view to the union of all series extents plus the given
// margin fractions. Plots with no points are left unchanged.
func (p *Plot) FitBounds(fx, fy float32) {
	var all []f32.Vec2
	for i := range p.series {
		all = append(all, p.series[i].Points...)
	}
	b, err := BoundsOf(all)
	if err != nil {
		return
	}
	p.bounds = b.Expand(fx, fy)
}

// Dirty reports whether vertex data changed since the last call to
// VertexData or Vertices.
func (p *Plot) Dirty() bool { return p.dirty }

// MarkDirty forces a vertex rebuild on the next render. Callers that mutate
// series point slices in place must call this, since the plot cannot observe
// those writes.
func (p *Plot) MarkDirty() { p.dirty = true }

// Vertices returns the triangle strip vertices for all series, rebuilding
// them only when dirty. The returned slice is owned by the plot.
func (p *Plot) Vertices() []Vertex {
	p.rebuild()
	return p.vertices
}

// VertexData returns the GPU byte encoding of Vertices. The returned slice is
// owned by the plot and reused across rebuilds.
func (p *Plot) VertexData() []byte {
	p.rebuild()
	return p.staging
}

// VertexCount returns the number of strip vertices the plot encodes.
func (p *Plot) VertexCount() int {
	p.rebuild()
	return len(p.vertices)
}

func (p *Plot) rebuild() {
	if !p.dirty {
		return
	}
	p.vertices = p.vertices[:0]
	for i := range p.series {
		p.vertices = p.series[i].appendVertices(p.vertices)
	}
	p.staging = p.staging[:0]
	p.staging = AppendVertices(p.staging, p.vertices)
	p.dirty = false
}
