package edit

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshedit/pkg/mesh"
)

// ExtrusionResult holds the elements created by Extrude.
type ExtrusionResult struct {
	TopFace     mesh.FaceID     `json:"topFace"`
	SideFaces   []mesh.FaceID   `json:"sideFaces"`
	NewVertices []mesh.VertexID `json:"newVertices"`
}

// Extrude pushes face f out along direction by distance. The face is
// replaced by a translated copy (the top face) joined to the original
// boundary by one quad per edge. The top face keeps the winding of f, and the
// side quads reuse the original boundary half-edges, so no half-edge is
// destroyed.
//
// direction need not be unit length. A negative distance extrudes inward.
// tolerance is passed through to vertex creation; new vertices are never
// welded.
func Extrude(m *mesh.Mesh, f mesh.FaceID, direction v3.Vec, distance, tolerance float64) (*ExtrusionResult, error) {
	if !isFinite(distance) {
		return nil, fmt.Errorf("Extrude(%s): distance %v: %w", f, distance, ErrInvalidDistance)
	}
	length := direction.Length()
	if length == 0 || !isFinite(length) {
		return nil, fmt.Errorf("Extrude(%s): direction %v: %w", f, direction, ErrDegenerateDirection)
	}
	r, err := readRing(m, f)
	if err != nil {
		return nil, fmt.Errorf("Extrude(%s): %w", f, err)
	}

	offset := direction.MulScalar(distance / length)
	top := make([]v3.Vec, len(r.positions))
	for i, p := range r.positions {
		top[i] = p.Add(offset)
	}

	topFace, sides, verts, err := bridge(m, r, top, tolerance)
	if err != nil {
		return nil, fmt.Errorf("Extrude(%s): %w", f, err)
	}
	return &ExtrusionResult{
		TopFace:     topFace,
		SideFaces:   sides,
		NewVertices: verts,
	}, nil
}
