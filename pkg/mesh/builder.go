package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// AddVertex inserts a vertex at p. When weld is set and an existing vertex
// lies within tolerance of p (Euclidean distance), that vertex is returned
// instead and the mesh is left unchanged.
func (m *Mesh) AddVertex(p v3.Vec, weld bool, tolerance float64) VertexID {
	if weld {
		if id, ok := m.findWeld(p, tolerance); ok {
			return id
		}
	}
	return m.newVertex(p)
}

// AddEdge returns the half-edge running from v1 to v2. If the undirected
// edge already exists its v1→v2 side is returned; otherwise a new twin pair
// is created and each endpoint without an anchor gets one.
func (m *Mesh) AddEdge(v1, v2 VertexID) (HalfEdgeID, error) {
	if !m.hasVertex(v1) {
		return NoHalfEdge, fmt.Errorf("AddEdge(%s, %s): %w", v1, v2, ErrUnknownVertex)
	}
	if !m.hasVertex(v2) {
		return NoHalfEdge, fmt.Errorf("AddEdge(%s, %s): %w", v1, v2, ErrUnknownVertex)
	}
	if v1 == v2 {
		return NoHalfEdge, fmt.Errorf("AddEdge(%s, %s): %w", v1, v2, ErrDegenerateEdge)
	}
	if h, ok := m.FindEdge(v1, v2); ok {
		return h, nil
	}
	return m.newEdgePair(v1, v2), nil
}

// AddFace closes loop into a new face. The half-edges must be free (no
// face), distinct, at least three, and each must end where the next one
// starts. On success next/prev are wired around the loop and every member
// points at the new face, whose anchor is loop[0].
func (m *Mesh) AddFace(loop []HalfEdgeID) (FaceID, error) {
	if err := m.checkLoop(loop); err != nil {
		return NoFace, fmt.Errorf("AddFace: %w", err)
	}

	n := len(loop)
	for i, h := range loop {
		m.link(h, loop[(i+1)%n])
	}
	f := m.newFace(loop[0])
	for _, h := range loop {
		m.halfEdges[h].Face = f
	}
	return f, nil
}

func (m *Mesh) checkLoop(loop []HalfEdgeID) error {
	n := len(loop)
	if n < 3 {
		return fmt.Errorf("%d half-edges, need at least 3: %w", n, ErrInvalidLoop)
	}
	seen := make(map[HalfEdgeID]struct{}, n)
	for _, h := range loop {
		if !m.hasHalfEdge(h) {
			return fmt.Errorf("%s: %w", h, ErrUnknownHalfEdge)
		}
		if _, dup := seen[h]; dup {
			return fmt.Errorf("%s appears twice: %w", h, ErrInvalidLoop)
		}
		seen[h] = struct{}{}
		if f := m.halfEdges[h].Face; f != NoFace {
			return fmt.Errorf("%s bounds %s: %w", h, f, ErrEdgeInUse)
		}
	}
	for i, h := range loop {
		next := loop[(i+1)%n]
		if m.Dest(h) != m.halfEdges[next].Origin {
			return fmt.Errorf("%s ends at %s but %s starts at %s: %w",
				h, m.Dest(h), next, m.halfEdges[next].Origin, ErrInvalidLoop)
		}
	}
	return nil
}

// AddPolygon creates (or reuses) the edges around the vertex ring and closes
// them into a face. All checks run before the first edge is created, so a
// rejected polygon leaves the mesh unchanged.
func (m *Mesh) AddPolygon(ring []VertexID) (FaceID, error) {
	n := len(ring)
	if n < 3 {
		return NoFace, fmt.Errorf("AddPolygon: %d vertices, need at least 3: %w", n, ErrInvalidLoop)
	}
	for i, v := range ring {
		w := ring[(i+1)%n]
		if !m.hasVertex(v) {
			return NoFace, fmt.Errorf("AddPolygon: %s: %w", v, ErrUnknownVertex)
		}
		if v == w {
			return NoFace, fmt.Errorf("AddPolygon: repeated %s: %w", v, ErrDegenerateEdge)
		}
		if h, ok := m.FindEdge(v, w); ok && m.halfEdges[h].Face != NoFace {
			return NoFace, fmt.Errorf("AddPolygon: %s→%s bounds %s: %w", v, w, m.halfEdges[h].Face, ErrEdgeInUse)
		}
	}

	loop := make([]HalfEdgeID, n)
	for i, v := range ring {
		h, err := m.AddEdge(v, ring[(i+1)%n])
		if err != nil {
			return NoFace, fmt.Errorf("AddPolygon: %w", err)
		}
		loop[i] = h
	}
	return m.AddFace(loop)
}

// RemoveFace drops the face record and clears the face pointer of every
// boundary half-edge that still refers to it. The half-edges stay in the
// mesh with their next/prev links; the caller is expected to reassign them.
func (m *Mesh) RemoveFace(f FaceID) error {
	if !m.hasFace(f) {
		return fmt.Errorf("RemoveFace(%s): %w", f, ErrInvalidFace)
	}
	anchor := m.faces[f].HalfEdge
	if m.hasHalfEdge(anchor) {
		h := anchor
		for i := 0; i <= len(m.halfEdges); i++ {
			if m.halfEdges[h].Face == f {
				m.halfEdges[h].Face = NoFace
			}
			h = m.halfEdges[h].Next
			if h == anchor || !m.hasHalfEdge(h) {
				break
			}
		}
	}
	m.detachFace(f)
	return nil
}
