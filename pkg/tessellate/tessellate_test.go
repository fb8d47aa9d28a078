package tessellate_test

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshedit/pkg/edit"
	"github.com/chazu/meshedit/pkg/mesh"
	"github.com/chazu/meshedit/pkg/tessellate"
)

// newCube returns a closed cube of the given size centred on the origin.
func newCube(t *testing.T, size float64) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewCube(size)
	if err != nil {
		t.Fatalf("NewCube failed: %v", err)
	}
	return m
}

// newQuad returns a single open unit square in the XY plane.
func newQuad(t *testing.T) *mesh.Mesh {
	t.Helper()
	m := mesh.New()
	var ring []mesh.VertexID
	for _, p := range []v3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}} {
		ring = append(ring, m.AddVertex(p, false, 0))
	}
	if _, err := m.AddPolygon(ring); err != nil {
		t.Fatalf("AddPolygon failed: %v", err)
	}
	return m
}

func TestCubeSnapshot(t *testing.T) {
	m := newCube(t, 2)

	snap := tessellate.Tessellate(m, "cube")
	if snap.IsEmpty() {
		t.Fatal("snapshot should not be empty")
	}
	if snap.PartName != "cube" {
		t.Errorf("expected PartName %q, got %q", "cube", snap.PartName)
	}
	if snap.VertexCount() != 8 {
		t.Errorf("expected 8 vertices, got %d", snap.VertexCount())
	}
	if snap.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", snap.TriangleCount())
	}
	if len(snap.Normals) != len(snap.Vertices) {
		t.Errorf("expected %d normal floats, got %d", len(snap.Vertices), len(snap.Normals))
	}

	// Every corner normal points along its own diagonal.
	for i := 0; i < snap.VertexCount(); i++ {
		p := v3.Vec{X: float64(snap.Vertices[i*3]), Y: float64(snap.Vertices[i*3+1]), Z: float64(snap.Vertices[i*3+2])}
		n := v3.Vec{X: float64(snap.Normals[i*3]), Y: float64(snap.Normals[i*3+1]), Z: float64(snap.Normals[i*3+2])}
		if d := n.Dot(p.Normalize()); math.Abs(d-1) > 1e-6 {
			t.Errorf("vertex %d: normal %v not aligned with %v (dot %.6f)", i, n, p, d)
		}
	}
}

func TestTessellateWithoutNormals(t *testing.T) {
	snap := tessellate.Tessellate(newCube(t, 1), "bare", tessellate.WithNormals(false))
	if snap.Normals != nil {
		t.Errorf("expected no normals, got %d floats", len(snap.Normals))
	}
	if snap.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", snap.TriangleCount())
	}
}

func TestTriangleIndicesFan(t *testing.T) {
	m := newQuad(t)

	got := tessellate.TriangleIndices(m)
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPositionsGeneric(t *testing.T) {
	m := newQuad(t)

	p64 := tessellate.Positions[float64](m)
	p32 := tessellate.Positions[float32](m)
	if len(p64) != 12 || len(p32) != 12 {
		t.Fatalf("expected 12 floats, got %d and %d", len(p64), len(p32))
	}
	for i := range p64 {
		if float32(p64[i]) != p32[i] {
			t.Errorf("index %d: float64 %v vs float32 %v", i, p64[i], p32[i])
		}
	}
	if p64[3] != 1 || p64[7] != 1 {
		t.Errorf("unexpected positions %v", p64)
	}
}

func TestFaceLoopsAndWireframe(t *testing.T) {
	m := newCube(t, 1)

	loops := tessellate.FaceLoops(m)
	if len(loops) != 6 {
		t.Fatalf("expected 6 loops, got %d", len(loops))
	}
	for i, loop := range loops {
		if len(loop) != 4 {
			t.Errorf("loop %d: expected 4 vertices, got %d", i, len(loop))
		}
	}

	wire := tessellate.Wireframe(m)
	if len(wire) != 24 {
		t.Fatalf("expected 12 segments, got %d indices", len(wire))
	}
	seen := map[[2]uint32]bool{}
	for i := 0; i < len(wire); i += 2 {
		a, b := wire[i], wire[i+1]
		if a > b {
			a, b = b, a
		}
		if seen[[2]uint32{a, b}] {
			t.Errorf("segment %d-%d listed twice", a, b)
		}
		seen[[2]uint32{a, b}] = true
	}
}

func TestExtrudedSnapshot(t *testing.T) {
	m := newCube(t, 2)
	top, _ := m.FaceAt(5)
	if _, err := edit.Extrude(m, top, v3.Vec{Y: 1}, 5, 1e-10); err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}

	if n := len(tessellate.TriangleIndices(m)); n != 60 {
		t.Errorf("expected 60 triangle indices, got %d", n)
	}
	if n := len(tessellate.FaceLoops(m)); n != 10 {
		t.Errorf("expected 10 face loops, got %d", n)
	}
	if n := len(tessellate.Wireframe(m)); n != 40 {
		t.Errorf("expected 20 segments, got %d indices", n/2)
	}

	bb := tessellate.Bounds(m)
	want := [2]v3.Vec{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 6, Z: 1}}
	if bb.Min != want[0] || bb.Max != want[1] {
		t.Errorf("expected bounds %v, got %v-%v", want, bb.Min, bb.Max)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	m := newCube(t, 3)
	a := tessellate.Tessellate(m, "a")
	b := tessellate.Tessellate(m, "a")
	if len(a.Indices) != len(b.Indices) || len(a.Vertices) != len(b.Vertices) {
		t.Fatal("repeated tessellation differs")
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs: %d vs %d", i, a.Indices[i], b.Indices[i])
		}
	}
	if errs := mesh.Validate(m); len(errs) != 0 {
		t.Errorf("tessellation disturbed the mesh: %v", errs)
	}
}

func TestEmptyMesh(t *testing.T) {
	m := mesh.New()

	snap := tessellate.Tessellate(m, "empty")
	if !snap.IsEmpty() {
		t.Fatal("snapshot should be empty")
	}
	if len(tessellate.TriangleIndices(m)) != 0 {
		t.Error("expected no triangles")
	}
	bb := tessellate.Bounds(m)
	if bb.Min != (v3.Vec{}) || bb.Max != (v3.Vec{}) {
		t.Errorf("expected zero box, got %v", bb)
	}
}
