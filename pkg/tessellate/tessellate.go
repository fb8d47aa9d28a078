// Package tessellate turns a half-edge mesh into flat buffers for a
// renderer: positions, fan-triangulated indices, face loops, wireframe
// segments and per-vertex normals. Every function here is read-only and
// returns the same output for the same mesh.
package tessellate

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/exp/constraints"

	"github.com/chazu/meshedit/pkg/mesh"
)

// Positions returns the vertex positions as a flat [x0,y0,z0, ...] buffer
// in vertex id order.
func Positions[T constraints.Float](m *mesh.Mesh) []T {
	verts := m.Vertices()
	out := make([]T, 0, len(verts)*3)
	for _, v := range verts {
		out = append(out, T(v.Position.X), T(v.Position.Y), T(v.Position.Z))
	}
	return out
}

// FaceLoops returns the vertex ids of every live face in store order,
// following each face's boundary from its anchor. Faces whose loop cannot
// be walked are skipped.
func FaceLoops(m *mesh.Mesh) [][]uint32 {
	faces := m.Faces()
	out := make([][]uint32, 0, len(faces))
	for _, f := range faces {
		ring, err := m.FaceVertices(f.ID)
		if err != nil {
			continue
		}
		loop := make([]uint32, len(ring))
		for i, v := range ring {
			loop[i] = uint32(v)
		}
		out = append(out, loop)
	}
	return out
}

// TriangleIndices fan-triangulates every face loop as (0, i, i+1), so an
// n-gon contributes n-2 triangles with the face's winding.
func TriangleIndices(m *mesh.Mesh) []uint32 {
	var out []uint32
	for _, loop := range FaceLoops(m) {
		for i := 1; i+1 < len(loop); i++ {
			out = append(out, loop[0], loop[i], loop[i+1])
		}
	}
	return out
}

// Wireframe returns one [a, b] vertex pair per undirected edge, taken from
// the lower-numbered half-edge of each twin pair.
func Wireframe(m *mesh.Mesh) []uint32 {
	out := make([]uint32, 0, 2*m.EdgeCount())
	for _, he := range m.HalfEdges() {
		if he.ID > he.Twin {
			continue
		}
		out = append(out, uint32(he.Origin), uint32(m.Dest(he.ID)))
	}
	return out
}

// VertexNormals returns one unit normal per vertex, the sum of the
// area-weighted normals of the faces around it. A face's weighted normal is
// accumulated over its fan triangles, so every corner of a face receives
// the same contribution. Vertices on no face get the zero vector.
func VertexNormals(m *mesh.Mesh) []v3.Vec {
	verts := m.Vertices()
	normals := make([]v3.Vec, len(verts))
	for _, loop := range FaceLoops(m) {
		var fn v3.Vec
		for i := 1; i+1 < len(loop); i++ {
			tri := sdf.Triangle3{
				verts[loop[0]].Position,
				verts[loop[i]].Position,
				verts[loop[i+1]].Position,
			}
			area := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length() / 2
			if area == 0 {
				continue
			}
			fn = fn.Add(tri.Normal().MulScalar(area))
		}
		for _, v := range loop {
			normals[v] = normals[v].Add(fn)
		}
	}
	for i, n := range normals {
		if n.Length() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}

// Bounds returns the axis-aligned box around every vertex. An empty mesh
// yields the zero box.
func Bounds(m *mesh.Mesh) sdf.Box3 {
	verts := m.Vertices()
	if len(verts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: verts[0].Position, Max: verts[0].Position}
	for _, v := range verts[1:] {
		bb.Min = bb.Min.Min(v.Position)
		bb.Max = bb.Max.Max(v.Position)
	}
	return bb
}

// Option adjusts a Tessellate call.
type Option func(*options)

type options struct {
	normals bool
}

// WithNormals toggles computation of per-vertex normals (on by default).
func WithNormals(on bool) Option {
	return func(o *options) {
		o.normals = on
	}
}

// Tessellate produces a render snapshot of m labelled name. The tessellator
// is read-only and never mutates the mesh.
func Tessellate(m *mesh.Mesh, name string, opts ...Option) *Mesh {
	o := options{normals: true}
	for _, opt := range opts {
		opt(&o)
	}

	out := &Mesh{
		Vertices: Positions[float32](m),
		Indices:  TriangleIndices(m),
		PartName: name,
	}
	if o.normals {
		ns := VertexNormals(m)
		out.Normals = make([]float32, 0, len(ns)*3)
		for _, n := range ns {
			out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return out
}
