package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// cubeFaces lists the corner indices of each cube face, wound so that every
// normal points outward. Corner i has coordinates (i&1, i>>1&1, i>>2&1)
// scaled to ±size/2. Order: bottom, front, right, back, left, top.
var cubeFaces = [6][4]int{
	{0, 1, 5, 4},
	{4, 5, 7, 6},
	{1, 3, 7, 5},
	{0, 2, 3, 1},
	{0, 4, 6, 2},
	{2, 6, 7, 3},
}

// NewCube builds a closed, axis-aligned cube of edge length size centred on
// the origin: 8 vertices, 12 edges and 6 quad faces.
func NewCube(size float64) (*Mesh, error) {
	m := New()
	h := size / 2

	var corners [8]VertexID
	for i := range corners {
		p := v3.Vec{X: -h, Y: -h, Z: -h}
		if i&1 != 0 {
			p.X = h
		}
		if i&2 != 0 {
			p.Y = h
		}
		if i&4 != 0 {
			p.Z = h
		}
		corners[i] = m.AddVertex(p, false, 0)
	}

	for _, quad := range cubeFaces {
		ring := make([]VertexID, len(quad))
		for i, c := range quad {
			ring[i] = corners[c]
		}
		if _, err := m.AddPolygon(ring); err != nil {
			return nil, fmt.Errorf("cube: %w", err)
		}
	}
	return m, nil
}
