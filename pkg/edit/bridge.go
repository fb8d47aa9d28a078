package edit

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshedit/pkg/mesh"
)

// ring is the boundary of a face captured before the face is removed.
type ring struct {
	face      mesh.FaceID
	edges     []mesh.HalfEdgeID // edges[i] runs verts[i] → verts[i+1]
	verts     []mesh.VertexID
	positions []v3.Vec
}

func readRing(m *mesh.Mesh, f mesh.FaceID) (*ring, error) {
	loop, err := m.FaceLoop(f)
	if err != nil {
		return nil, err
	}
	r := &ring{
		face:      f,
		edges:     loop,
		verts:     make([]mesh.VertexID, len(loop)),
		positions: make([]v3.Vec, len(loop)),
	}
	for i, h := range loop {
		he, _ := m.HalfEdge(h)
		r.verts[i] = he.Origin
		r.positions[i], _ = m.Position(he.Origin)
	}
	return r, nil
}

func (r *ring) centroid() v3.Vec {
	var c v3.Vec
	for _, p := range r.positions {
		c = c.Add(p)
	}
	return c.DivScalar(float64(len(r.positions)))
}

// bridge replaces r.face with a cap face through the given positions and one
// quad per boundary edge:
//
//	side_i = [edges_i, verts_{i+1}→cap_{i+1}, cap_{i+1}→cap_i, cap_i→verts_i]
//
// The connecting edges go through AddEdge, so neighbouring quads share one
// twin pair. Net change: +n vertices, +n faces, +4n half-edges.
func bridge(m *mesh.Mesh, r *ring, positions []v3.Vec, tolerance float64) (mesh.FaceID, []mesh.FaceID, []mesh.VertexID, error) {
	n := len(r.verts)

	if err := m.RemoveFace(r.face); err != nil {
		return mesh.NoFace, nil, nil, err
	}

	capVerts := make([]mesh.VertexID, n)
	for i, p := range positions {
		capVerts[i] = m.AddVertex(p, false, tolerance)
	}
	capFace, err := m.AddPolygon(capVerts)
	if err != nil {
		return mesh.NoFace, nil, nil, fmt.Errorf("cap face: %w", err)
	}
	capLoop, err := m.FaceLoop(capFace)
	if err != nil {
		return mesh.NoFace, nil, nil, fmt.Errorf("cap face: %w", err)
	}

	sides := make([]mesh.FaceID, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		up, err := m.AddEdge(r.verts[j], capVerts[j])
		if err != nil {
			return mesh.NoFace, nil, nil, fmt.Errorf("side %d: %w", i, err)
		}
		down, err := m.AddEdge(capVerts[i], r.verts[i])
		if err != nil {
			return mesh.NoFace, nil, nil, fmt.Errorf("side %d: %w", i, err)
		}
		sides[i], err = m.AddFace([]mesh.HalfEdgeID{r.edges[i], up, m.Twin(capLoop[i]), down})
		if err != nil {
			return mesh.NoFace, nil, nil, fmt.Errorf("side %d: %w", i, err)
		}
	}
	return capFace, sides, capVerts, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
