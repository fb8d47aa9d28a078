package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FaceLoop walks the boundary of f from its anchor and returns the
// half-edges in next order. It fails with ErrInvalidFace when the face is
// unknown, has no anchor, its loop does not close, or it has fewer than
// three sides.
func (m *Mesh) FaceLoop(f FaceID) ([]HalfEdgeID, error) {
	if !m.hasFace(f) {
		return nil, fmt.Errorf("%s: unknown or removed face: %w", f, ErrInvalidFace)
	}
	anchor := m.faces[f].HalfEdge
	if !m.hasHalfEdge(anchor) {
		return nil, fmt.Errorf("%s: no anchor half-edge: %w", f, ErrInvalidFace)
	}

	var loop []HalfEdgeID
	h := anchor
	for {
		loop = append(loop, h)
		if len(loop) > len(m.halfEdges) {
			return nil, fmt.Errorf("%s: boundary loop does not return to %s: %w", f, anchor, ErrInvalidFace)
		}
		h = m.halfEdges[h].Next
		if !m.hasHalfEdge(h) {
			return nil, fmt.Errorf("%s: boundary loop is open: %w", f, ErrInvalidFace)
		}
		if h == anchor {
			break
		}
	}
	if len(loop) < 3 {
		return nil, fmt.Errorf("%s: %d boundary vertices, need at least 3: %w", f, len(loop), ErrInvalidFace)
	}
	return loop, nil
}

// FaceVertices returns the origins of the boundary half-edges of f, in
// loop order.
func (m *Mesh) FaceVertices(f FaceID) ([]VertexID, error) {
	loop, err := m.FaceLoop(f)
	if err != nil {
		return nil, err
	}
	ring := make([]VertexID, len(loop))
	for i, h := range loop {
		ring[i] = m.halfEdges[h].Origin
	}
	return ring, nil
}

// FaceCentroid returns the arithmetic mean of the boundary positions of f.
func (m *Mesh) FaceCentroid(f FaceID) (v3.Vec, error) {
	ring, err := m.FaceVertices(f)
	if err != nil {
		return v3.Vec{}, err
	}
	var c v3.Vec
	for _, v := range ring {
		c = c.Add(m.vertices[v].Position)
	}
	return c.DivScalar(float64(len(ring))), nil
}

// FaceNormal returns the unit normal of f using Newell's method, which
// tolerates slightly non-planar polygons. Degenerate faces yield the zero
// vector.
func (m *Mesh) FaceNormal(f FaceID) (v3.Vec, error) {
	ring, err := m.FaceVertices(f)
	if err != nil {
		return v3.Vec{}, err
	}
	var n v3.Vec
	for i, v := range ring {
		a := m.vertices[v].Position
		b := m.vertices[ring[(i+1)%len(ring)]].Position
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if n.Length() == 0 {
		return v3.Vec{}, nil
	}
	return n.Normalize(), nil
}
