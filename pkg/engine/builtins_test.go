package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/meshedit/pkg/mesh"
	"github.com/chazu/meshedit/pkg/tessellate"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(cube :size 2)`,
			expect: `(cube "__kw_size" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(inset f :distance 1 :tolerance 1)`,
			expect: `(inset f "__kw_distance" 1 "__kw_tolerance" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(face-count)`,
			expect: `(face_count)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 0 -1 0)`,
			expect: `(vec3 0 -1 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:weld-tolerance`,
			expect: `"__kw_weld-tolerance"`,
		},
		{
			name:   "backtick text untouched",
			input:  "(obj `v -1 0 0\nf 1 -2 -1`)",
			expect: "(obj `v -1 0 0\nf 1 -2 -1`)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalMesh evaluates source and fails the test on any error.
func evalMesh(t *testing.T, source string) *mesh.Mesh {
	t.Helper()
	m, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if m == nil {
		t.Fatal("expected non-nil mesh")
	}
	return m
}

// evalErrors evaluates source and returns its eval errors, failing the test
// if there are none.
func evalErrors(t *testing.T, source string) []EvalError {
	t.Helper()
	m, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if m != nil {
		t.Error("expected nil mesh on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func TestCube(t *testing.T) {
	m := evalMesh(t, `(cube :size 2)`)

	if m.VertexCount() != 8 {
		t.Errorf("expected 8 vertices, got %d", m.VertexCount())
	}
	if m.FaceCount() != 6 {
		t.Errorf("expected 6 faces, got %d", m.FaceCount())
	}
	if m.HalfEdgeCount() != 24 {
		t.Errorf("expected 24 half-edges, got %d", m.HalfEdgeCount())
	}
	p, _ := m.Position(7)
	if p.X != 1 || p.Y != 1 || p.Z != 1 {
		t.Errorf("expected corner (1,1,1), got %v", p)
	}
}

func TestCubeDefaultSize(t *testing.T) {
	m := evalMesh(t, `(cube)`)
	p, _ := m.Position(7)
	if p.X != 0.5 {
		t.Errorf("expected unit cube, corner x = %g", p.X)
	}
}

func TestExtrudeWithVariable(t *testing.T) {
	source := `
(def d 5)
(cube :size 2)
(def top (extrude (face 5) :direction (vec3 0 1 0) :distance d))
`
	m := evalMesh(t, source)

	if m.VertexCount() != 12 {
		t.Errorf("expected 12 vertices, got %d", m.VertexCount())
	}
	if m.FaceCount() != 10 {
		t.Errorf("expected 10 faces, got %d", m.FaceCount())
	}
	if m.HalfEdgeCount() != 40 {
		t.Errorf("expected 40 half-edges, got %d", m.HalfEdgeCount())
	}
	if n := len(tessellate.TriangleIndices(m)); n != 60 {
		t.Errorf("expected 60 triangle indices, got %d", n)
	}
	bb := tessellate.Bounds(m)
	if bb.Max.Y != 6 {
		t.Errorf("expected top at y=6, got %g", bb.Max.Y)
	}
}

func TestExtrudeDefaultsToFaceNormal(t *testing.T) {
	m := evalMesh(t, `(cube :size 2) (extrude (face 2) :distance 3)`)

	// Face 2 is the +X side.
	bb := tessellate.Bounds(m)
	if bb.Max.X != 4 {
		t.Errorf("expected extrusion to x=4, got %g", bb.Max.X)
	}
}

func TestExtrudeThenInset(t *testing.T) {
	source := `
(cube :size 10)
(def top (extrude (face 5) :direction (vec3 0 1 0) :distance 5 :tolerance 2))
(inset top :distance 1 :tolerance 1)
`
	m := evalMesh(t, source)

	if m.VertexCount() != 16 {
		t.Errorf("expected 16 vertices, got %d", m.VertexCount())
	}
	if m.FaceCount() != 14 {
		t.Errorf("expected 14 faces, got %d", m.FaceCount())
	}
	if errs := mesh.Validate(m); len(errs) != 0 {
		t.Errorf("expected a closed valid mesh, got %v", errs)
	}
}

func TestCountBuiltins(t *testing.T) {
	source := `
(cube :size 2)
(def before (face-count))
(extrude (face 0) :distance 1)
(assert (== before 6))
(assert (== (face-count) 10))
(assert (== (vertex-count) 12))
(assert (== (edge-count) 20))
`
	evalMesh(t, source)
}

const boxOBJ = "`" + `
v 4.726442 1.000000 -1.000000
v 4.726442 -1.000000 -1.000000
v 4.726442 1.000000 1.000000
v 4.726442 -1.000000 1.000000
v -4.726442 1.000000 -1.000000
v -4.726442 -1.000000 -1.000000
v -4.726442 1.000000 1.000000
v -4.726442 -1.000000 1.000000
f 1/1/1 5/2/1 7/3/1 3/4/1
f 4/5/2 3/4/2 7/6/2 8/7/2
f 8/8/3 7/9/3 5/10/3 6/11/3
f 6/12/4 2/13/4 4/5/4 8/14/4
f 2/13/5 1/1/5 3/4/5 4/5/5
f 6/11/6 5/10/6 1/1/6 2/13/6
` + "`"

func TestObjImportAndEdit(t *testing.T) {
	source := `
(obj ` + boxOBJ + `)
(extrude (face 0) :direction (vec3 0 1 0) :distance 5 :tolerance 2)
(inset (face 0) :distance 1 :tolerance 1)
`
	m := evalMesh(t, source)

	if m.VertexCount() != 16 {
		t.Errorf("expected 16 vertices, got %d", m.VertexCount())
	}
	if m.FaceCount() != 14 {
		t.Errorf("expected 14 faces, got %d", m.FaceCount())
	}
}

func TestObjWarningsReported(t *testing.T) {
	source := "(obj `v 0 0 0\nv 1 0 0\nv 0 1 0\nv bad 0 0\nf 1 2 3`)"
	res, err := NewEngine().EvaluateFull(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("eval errors: %v", res.Errors)
	}

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "line 4") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for line 4, got %v", res.Warnings)
	}
	// The single triangle is open, so validation also warns.
	if len(res.Warnings) < 2 {
		t.Errorf("expected import and validation warnings, got %v", res.Warnings)
	}
}

func TestVec3(t *testing.T) {
	m := evalMesh(t, `(cube :size 2) (extrude (face 5) :direction (vec3 0 0.5 0) :distance 1.5)`)

	bb := tessellate.Bounds(m)
	if math.Abs(bb.Max.Y-2.5) > 1e-12 {
		t.Errorf("expected top at y=2.5, got %g", bb.Max.Y)
	}
}

func TestVec3WrongArity(t *testing.T) {
	errs := evalErrors(t, `(vec3 1 2)`)
	if !strings.Contains(errs[0].Message, "vec3") {
		t.Errorf("expected error to mention vec3, got %q", errs[0].Message)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"face out of range", `(cube) (face 6)`, "out of range"},
		{"face on empty mesh", `(face 0)`, "out of range"},
		{"face needs integer", `(cube) (face 1.5)`, "expected integer"},
		{"extrude zero direction", `(cube) (extrude (face 0) :direction (vec3 0 0 0) :distance 1)`, "degenerate"},
		{"extrude missing distance", `(cube) (extrude (face 0))`, "distance"},
		{"extrude removed face", `(cube) (def f (face 0)) (extrude f :distance 1) (extrude f :distance 1)`, "invalid face"},
		{"inset too far", `(cube :size 1) (inset (face 0) :distance 1)`, "collapse"},
		{"inset needs face", `(inset 3 :distance 1)`, "face reference"},
		{"cube negative size", `(cube :size -1)`, "positive"},
		{"obj needs text", `(obj 5)`, "expected string"},
		{"count takes no args", `(face-count 1)`, "no arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalErrors(t, tt.source)
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, errs[0].Message)
			}
		})
	}
}

func TestEmptySourceStillWorks(t *testing.T) {
	m := evalMesh(t, "")
	if m.FaceCount() != 0 {
		t.Errorf("expected empty mesh, got %d faces", m.FaceCount())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	m := evalMesh(t, `(def x (+ 1 2)) (cube :size x)`)
	p, _ := m.Position(7)
	if p.X != 1.5 {
		t.Errorf("expected size 3 cube, corner x = %g", p.X)
	}
}
