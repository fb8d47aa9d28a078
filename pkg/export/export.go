// Package export turns a half-edge mesh into triangle soups for files and
// flat-shaded rendering, using the sdfx render package.
package export

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/meshedit/pkg/mesh"
	"github.com/chazu/meshedit/pkg/tessellate"
)

// ErrEmptyMesh is returned when there is nothing to write.
var ErrEmptyMesh = errors.New("export: mesh has no faces")

// Triangles fan-triangulates every live face in store order. The winding
// of each triangle follows its face.
func Triangles(m *mesh.Mesh) []*sdf.Triangle3 {
	verts := m.Vertices()
	var out []*sdf.Triangle3
	for _, loop := range tessellate.FaceLoops(m) {
		for i := 1; i+1 < len(loop); i++ {
			out = append(out, &sdf.Triangle3{
				verts[loop[0]].Position,
				verts[loop[i]].Position,
				verts[loop[i+1]].Position,
			})
		}
	}
	return out
}

// Flat returns an unindexed snapshot with three vertices per triangle, each
// carrying its triangle's normal, for renderers that want hard edges.
func Flat(m *mesh.Mesh, name string) *tessellate.Mesh {
	triangles := Triangles(m)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &tessellate.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		PartName: name,
	}
}

// SaveSTL writes the fan triangulation of m as a binary STL file.
func SaveSTL(m *mesh.Mesh, path string) error {
	triangles := Triangles(m)
	if len(triangles) == 0 {
		return ErrEmptyMesh
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
