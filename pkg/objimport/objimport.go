// Package objimport builds a half-edge mesh from a minimal OBJ description.
//
// Only two record types are read:
//
//	v x y z          vertex position (extra components ignored)
//	f i1 i2 i3 ...   polygon, 1-based or negative vertex indices
//
// Face tokens may carry texture and normal references (i/t/n, i//n); only
// the first field is used. A # starts a comment that runs to the end of the
// line. Blank lines and every other record type are skipped. Vertices closer than the weld tolerance are merged before
// the mesh is built, so faces that share a position share their edges.
package objimport

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshedit/pkg/logging"
	"github.com/chazu/meshedit/pkg/mesh"
)

// DefaultTolerance is the weld tolerance used when a non-positive one is
// supplied.
const DefaultTolerance = 1e-10

// ErrMalformedRecord indicates a v or f record whose fields cannot be parsed
// or whose indices fall outside the vertex list.
var ErrMalformedRecord = errors.New("objimport: malformed record")

// Warning is a problem with a single input line. The import carries on past
// it.
type Warning struct {
	Line int   `json:"line"`
	Err  error `json:"-"`
}

func (w Warning) Error() string {
	return fmt.Sprintf("line %d: %v", w.Line, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Report summarises an import.
type Report struct {
	Records  int       `json:"records"`  // well-formed v records read
	Welded   int       `json:"welded"`   // v records merged into an earlier position
	Faces    int       `json:"faces"`    // faces created
	Dropped  int       `json:"dropped"`  // f records with fewer than three indices
	Warnings []Warning `json:"-"`
}

func (r *Report) warn(line int, err error) {
	r.Warnings = append(r.Warnings, Warning{Line: line, Err: err})
}

type faceRecord struct {
	line    int
	indices []int // resolved, 0-based; positive references may still be out of range
}

// Import parses text into a new mesh.
func Import(text string, tolerance float64) (*mesh.Mesh, *Report, error) {
	m := mesh.New()
	r, err := Parse(m, text, tolerance)
	if err != nil {
		return nil, r, err
	}
	return m, r, nil
}

// Parse clears m and rebuilds it from text. Malformed records and faces
// that cannot be added without breaking the mesh are skipped and listed in
// the report; the returned error is reserved for failures reading the text.
func Parse(m *mesh.Mesh, text string, tolerance float64) (*Report, error) {
	if !(tolerance > 0) {
		tolerance = DefaultTolerance
	}
	m.Clear()
	rep := &Report{}
	log := logging.With("component", "objimport")

	// A malformed v record keeps its slot so later indices stay aligned.
	var positions []v3.Vec
	var valid []bool
	var faces []faceRecord

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		content, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(content)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseVertex(fields[1:])
			if err != nil {
				rep.warn(line, err)
			} else {
				rep.Records++
			}
			positions = append(positions, p)
			valid = append(valid, err == nil)
		case "f":
			idx, err := parseFace(fields[1:], len(positions))
			if err != nil {
				rep.warn(line, err)
				continue
			}
			if len(idx) < 3 {
				rep.Dropped++
				continue
			}
			faces = append(faces, faceRecord{line: line, indices: idx})
		}
	}
	if err := sc.Err(); err != nil {
		return rep, fmt.Errorf("objimport: reading input: %w", err)
	}
	canon := weldIndex(positions, valid, tolerance)
	for i, c := range canon {
		if c != i {
			rep.Welded++
		}
	}

	// Vertices are created on first reference, in face order.
	ids := make(map[int]mesh.VertexID)
	vertexFor := func(i int) mesh.VertexID {
		c := canon[i]
		if id, ok := ids[c]; ok {
			return id
		}
		id := m.AddVertex(positions[c], true, tolerance)
		ids[c] = id
		return id
	}

	for _, fr := range faces {
		ring, err := resolveRing(fr, valid)
		if err != nil {
			rep.warn(fr.line, err)
			continue
		}
		verts := make([]mesh.VertexID, len(ring))
		for i, idx := range ring {
			verts[i] = vertexFor(idx)
		}
		if v, ok := repeated(verts); ok {
			rep.warn(fr.line, fmt.Errorf("face visits %s twice after welding", v))
			continue
		}
		if _, err := m.AddPolygon(verts); err != nil {
			rep.warn(fr.line, err)
			continue
		}
		rep.Faces++
	}

	sort.SliceStable(rep.Warnings, func(i, j int) bool {
		return rep.Warnings[i].Line < rep.Warnings[j].Line
	})
	log.Debug("import finished",
		"records", rep.Records, "welded", rep.Welded,
		"vertices", m.VertexCount(), "faces", rep.Faces,
		"dropped", rep.Dropped, "warnings", len(rep.Warnings))
	for _, w := range rep.Warnings {
		log.Warn("skipped record", "line", w.Line, "err", w.Err)
	}
	return rep, nil
}

func parseVertex(fields []string) (v3.Vec, error) {
	if len(fields) < 3 {
		return v3.Vec{}, fmt.Errorf("vertex needs 3 coordinates, got %d: %w", len(fields), ErrMalformedRecord)
	}
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return v3.Vec{}, fmt.Errorf("vertex coordinate %q: %w", fields[i], ErrMalformedRecord)
		}
		c[i] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFace converts face tokens to 0-based indices. Negative indices are
// relative to the seen vertices so far and are resolved here; positive ones
// are checked against the final vertex count later.
func parseFace(fields []string, seen int) ([]int, error) {
	idx := make([]int, 0, len(fields))
	for _, tok := range fields {
		head, _, _ := strings.Cut(tok, "/")
		n, err := strconv.Atoi(head)
		switch {
		case err != nil:
			return nil, fmt.Errorf("face index %q: %w", tok, ErrMalformedRecord)
		case n > 0:
			idx = append(idx, n-1)
		case n < 0 && seen+n >= 0:
			idx = append(idx, seen+n)
		default:
			return nil, fmt.Errorf("face index %d with %d vertices: %w", n, seen, ErrMalformedRecord)
		}
	}
	return idx, nil
}

func resolveRing(fr faceRecord, valid []bool) ([]int, error) {
	for _, i := range fr.indices {
		if i >= len(valid) {
			return nil, fmt.Errorf("face index %d with %d vertices: %w", i+1, len(valid), ErrMalformedRecord)
		}
		if !valid[i] {
			return nil, fmt.Errorf("face index %d names a malformed vertex: %w", i+1, ErrMalformedRecord)
		}
	}
	return fr.indices, nil
}

func repeated(verts []mesh.VertexID) (mesh.VertexID, bool) {
	seen := make(map[mesh.VertexID]struct{}, len(verts))
	for _, v := range verts {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return mesh.NoVertex, false
}

// weldIndex maps every valid position to the index of the first valid
// position sharing its rounded coordinates. Rounding uses the power of ten at
// or below the tolerance, so positions that agree to that many decimals
// collapse. Invalid slots map to themselves.
func weldIndex(positions []v3.Vec, valid []bool, tolerance float64) []int {
	scale := math.Pow(10, math.Ceil(-math.Log10(tolerance)))
	first := make(map[[3]float64]int, len(positions))
	canon := make([]int, len(positions))
	for i, p := range positions {
		if !valid[i] {
			canon[i] = i
			continue
		}
		k := [3]float64{
			math.Round(p.X * scale),
			math.Round(p.Y * scale),
			math.Round(p.Z * scale),
		}
		if j, ok := first[k]; ok {
			canon[i] = j
			continue
		}
		first[k] = i
		canon[i] = i
	}
	return canon
}
