package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// maxCell bounds grid coordinates so they fit an int64 exactly.
const maxCell = 1 << 52

type cellKey [3]int64

// weldGrid is a uniform hash grid with cell size equal to the weld
// tolerance. A point within tolerance of p always sits in one of the 27
// cells around p's cell. Points whose cell coordinates overflow are kept in
// loose and scanned linearly.
type weldGrid struct {
	cell  float64
	cells map[cellKey][]VertexID
	loose []VertexID
}

func newWeldGrid(cell float64) *weldGrid {
	return &weldGrid{
		cell:  cell,
		cells: make(map[cellKey][]VertexID),
	}
}

func (g *weldGrid) key(p v3.Vec) (cellKey, bool) {
	var k cellKey
	for i, c := range [3]float64{p.X, p.Y, p.Z} {
		f := math.Floor(c / g.cell)
		if math.IsNaN(f) || math.Abs(f) > maxCell {
			return cellKey{}, false
		}
		k[i] = int64(f)
	}
	return k, true
}

func (g *weldGrid) insert(id VertexID, p v3.Vec) {
	k, ok := g.key(p)
	if !ok {
		g.loose = append(g.loose, id)
		return
	}
	g.cells[k] = append(g.cells[k], id)
}

// findWeld returns the vertex closest to p within tolerance, preferring the
// lowest id on ties. The grid is rebuilt when the tolerance changes.
func (m *Mesh) findWeld(p v3.Vec, tolerance float64) (VertexID, bool) {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		return m.scanWeld(p, tolerance)
	}
	if m.weld == nil || m.weld.cell != tolerance {
		m.weld = newWeldGrid(tolerance)
		for _, v := range m.vertices {
			m.weld.insert(v.ID, v.Position)
		}
	}

	best, bestDist := NoVertex, math.Inf(1)
	consider := func(id VertexID) {
		d := m.vertices[id].Position.Sub(p).Length()
		if d > tolerance {
			return
		}
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}

	if k, ok := m.weld.key(p); ok {
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, id := range m.weld.cells[cellKey{k[0] + dx, k[1] + dy, k[2] + dz}] {
						consider(id)
					}
				}
			}
		}
	}
	for _, id := range m.weld.loose {
		consider(id)
	}
	return best, best != NoVertex
}

// scanWeld is the linear fallback for tolerances the grid cannot use.
func (m *Mesh) scanWeld(p v3.Vec, tolerance float64) (VertexID, bool) {
	if math.IsNaN(tolerance) {
		return NoVertex, false
	}
	best, bestDist := NoVertex, math.Inf(1)
	for _, v := range m.vertices {
		d := v.Position.Sub(p).Length()
		if d <= tolerance && d < bestDist {
			best, bestDist = v.ID, d
		}
	}
	return best, best != NoVertex
}
