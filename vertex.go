package plotline

import (
	"encoding/binary"
	"math"

	"golang.org/x/image/math/f32"
)

// VertexStride is the byte stride per vertex in the line render pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	normal   (vec2<f32>) = 8 bytes  (location 1)
//	color    (vec4<f32>) = 16 bytes (location 2)
//
// Total = 32 bytes per vertex.
const VertexStride = 32

// Vertex is one entry in a line strip vertex buffer.
//
// Position is in data space (arbitrary units, unbounded range). Normal is a
// unit vector perpendicular to the line direction at this point; each logical
// data point appears as two consecutive vertices whose normals are additive
// inverses, so that widening along the normal in the vertex shader produces
// a filled triangle strip. Color is straight-alpha RGBA in [0, 1].
type Vertex struct {
	Position f32.Vec2
	Normal   f32.Vec2
	Color    f32.Vec4
}

// AppendVertex appends the 32-byte GPU encoding of v to dst and returns the
// extended slice.
func AppendVertex(dst []byte, v Vertex) []byte {
	var buf [VertexStride]byte
	putVertex(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendVertices appends the GPU encoding of all vertices to dst and returns
// the extended slice. The result grows by len(vs)*VertexStride bytes.
func AppendVertices(dst []byte, vs []Vertex) []byte {
	need := len(vs) * VertexStride
	if cap(dst)-len(dst) < need {
		grown := make([]byte, len(dst), len(dst)+need)
		copy(grown, dst)
		dst = grown
	}
	for i := range vs {
		dst = AppendVertex(dst, vs[i])
	}
	return dst
}

// EncodeVertices returns the GPU encoding of vs as a fresh byte slice.
func EncodeVertices(vs []Vertex) []byte {
	buf := make([]byte, len(vs)*VertexStride)
	for i := range vs {
		putVertex(buf[i*VertexStride:], vs[i])
	}
	return buf
}

// putVertex writes a single vertex into buf.
// Layout: position (vec2<f32>) + normal (vec2<f32>) + color (vec4<f32>).
func putVertex(buf []byte, v Vertex) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(v.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(v.Color[3]))
}
