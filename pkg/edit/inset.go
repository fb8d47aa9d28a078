package edit

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshedit/pkg/mesh"
)

// InsetResult holds the elements created by Inset.
type InsetResult struct {
	InsetFace   mesh.FaceID     `json:"insetFace"`
	SideFaces   []mesh.FaceID   `json:"sideFaces"`
	NewVertices []mesh.VertexID `json:"newVertices"`
}

// Inset shrinks face f toward its centroid. Every boundary vertex gets a
// copy moved distance units along the line to the centroid; the copies form
// the inset face and one quad per original edge fills the border.
//
// The inset is rejected with ErrDegenerateInset when any vertex lies within
// tolerance of the centroid or when distance would reach or pass it.
func Inset(m *mesh.Mesh, f mesh.FaceID, distance, tolerance float64) (*InsetResult, error) {
	if !isFinite(distance) {
		return nil, fmt.Errorf("Inset(%s): distance %v: %w", f, distance, ErrInvalidDistance)
	}
	r, err := readRing(m, f)
	if err != nil {
		return nil, fmt.Errorf("Inset(%s): %w", f, err)
	}

	c := r.centroid()
	inner := make([]v3.Vec, len(r.positions))
	for i, p := range r.positions {
		toCenter := c.Sub(p)
		d := toCenter.Length()
		if d == 0 || !(d > tolerance) {
			return nil, fmt.Errorf("Inset(%s): %s is %g from the centroid: %w", f, r.verts[i], d, ErrDegenerateInset)
		}
		if distance >= d {
			return nil, fmt.Errorf("Inset(%s): distance %g reaches the centroid from %s: %w", f, distance, r.verts[i], ErrDegenerateInset)
		}
		inner[i] = p.Add(toCenter.MulScalar(distance / d))
	}

	insetFace, sides, verts, err := bridge(m, r, inner, tolerance)
	if err != nil {
		return nil, fmt.Errorf("Inset(%s): %w", f, err)
	}
	return &InsetResult{
		InsetFace:   insetFace,
		SideFaces:   sides,
		NewVertices: verts,
	}, nil
}
