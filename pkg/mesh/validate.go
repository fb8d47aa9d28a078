package mesh

import "fmt"

// ValidationSeverity indicates whether a finding breaks a structural
// invariant or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant broken
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ElementKind names the arena a finding refers to.
type ElementKind int

const (
	ElementMesh ElementKind = iota
	ElementVertex
	ElementHalfEdge
	ElementFace
)

func (k ElementKind) String() string {
	switch k {
	case ElementMesh:
		return "mesh"
	case ElementVertex:
		return "vertex"
	case ElementHalfEdge:
		return "half-edge"
	case ElementFace:
		return "face"
	default:
		return "unknown"
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Element  ElementKind        // which arena
	ID       int                // index in that arena, -1 for mesh-level findings
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Element == ElementMesh {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s %d: %s", e.Severity, e.Element, e.ID, e.Message)
}

// Validate checks the structural invariants of m and returns every finding.
// An empty slice means the mesh is a consistent closed 2-manifold; open
// meshes produce warnings only. Validate never mutates the mesh.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateHalfEdges(m)...)
	errs = append(errs, validateFaces(m)...)
	errs = append(errs, validateVertices(m)...)
	errs = append(errs, validateEdgeTable(m)...)
	return errs
}

// HasErrors reports whether errs contains an error-severity finding.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func halfEdgeError(h HalfEdgeID, format string, args ...interface{}) ValidationError {
	return ValidationError{
		Element:  ElementHalfEdge,
		ID:       int(h),
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// validateHalfEdges checks twin symmetry, origin references and next/prev
// reciprocity for every half-edge.
func validateHalfEdges(m *Mesh) []ValidationError {
	var errs []ValidationError
	boundary := 0

	for _, he := range m.halfEdges {
		h := he.ID
		if !m.hasVertex(he.Origin) {
			errs = append(errs, halfEdgeError(h, "origin %s does not exist", he.Origin))
		}

		switch {
		case !m.hasHalfEdge(he.Twin):
			errs = append(errs, halfEdgeError(h, "twin %s does not exist", he.Twin))
		case he.Twin == h:
			errs = append(errs, halfEdgeError(h, "is its own twin"))
		case m.halfEdges[he.Twin].Twin != h:
			errs = append(errs, halfEdgeError(h, "twin %s points back at %s", he.Twin, m.halfEdges[he.Twin].Twin))
		case m.halfEdges[he.Twin].Origin == he.Origin:
			errs = append(errs, halfEdgeError(h, "twin %s shares origin %s", he.Twin, he.Origin))
		}

		if he.Next != NoHalfEdge {
			if !m.hasHalfEdge(he.Next) {
				errs = append(errs, halfEdgeError(h, "next %s does not exist", he.Next))
			} else if m.halfEdges[he.Next].Prev != h {
				errs = append(errs, halfEdgeError(h, "prev(next) is %s", m.halfEdges[he.Next].Prev))
			}
		}
		if he.Prev != NoHalfEdge {
			if !m.hasHalfEdge(he.Prev) {
				errs = append(errs, halfEdgeError(h, "prev %s does not exist", he.Prev))
			} else if m.halfEdges[he.Prev].Next != h {
				errs = append(errs, halfEdgeError(h, "next(prev) is %s", m.halfEdges[he.Prev].Next))
			}
		}

		if he.Face == NoFace {
			boundary++
			continue
		}
		if !m.hasFace(he.Face) {
			errs = append(errs, halfEdgeError(h, "face %s does not exist", he.Face))
			continue
		}
		if he.Next == NoHalfEdge || he.Prev == NoHalfEdge {
			errs = append(errs, halfEdgeError(h, "bounds %s but is not linked", he.Face))
		}
	}

	if boundary > 0 {
		errs = append(errs, ValidationError{
			Element:  ElementMesh,
			ID:       -1,
			Message:  fmt.Sprintf("%d boundary half-edges, mesh is open", boundary),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateFaces walks every face loop and checks closure, membership and
// that no half-edge claims the face from outside its loop.
func validateFaces(m *Mesh) []ValidationError {
	var errs []ValidationError

	claimed := make(map[FaceID]int)
	for _, he := range m.halfEdges {
		if he.Face != NoFace {
			claimed[he.Face]++
		}
	}

	for _, f := range m.faces {
		if f == nil {
			continue
		}
		fail := func(format string, args ...interface{}) {
			errs = append(errs, ValidationError{
				Element:  ElementFace,
				ID:       int(f.ID),
				Message:  fmt.Sprintf(format, args...),
				Severity: SeverityError,
			})
		}

		if !m.hasHalfEdge(f.HalfEdge) {
			fail("anchor %s does not exist", f.HalfEdge)
			continue
		}
		if m.halfEdges[f.HalfEdge].Face != f.ID {
			fail("anchor %s belongs to %s", f.HalfEdge, m.halfEdges[f.HalfEdge].Face)
			continue
		}

		loop, err := m.FaceLoop(f.ID)
		if err != nil {
			fail("%v", err)
			continue
		}
		for _, h := range loop {
			if m.halfEdges[h].Face != f.ID {
				fail("loop member %s belongs to %s", h, m.halfEdges[h].Face)
			}
		}
		if claimed[f.ID] != len(loop) {
			fail("%d half-edges claim the face but its loop has %d", claimed[f.ID], len(loop))
		}
	}
	return errs
}

// validateVertices checks that every anchor originates at its vertex.
func validateVertices(m *Mesh) []ValidationError {
	var errs []ValidationError
	isolated := 0
	for _, v := range m.vertices {
		switch {
		case v.HalfEdge == NoHalfEdge:
			isolated++
		case !m.hasHalfEdge(v.HalfEdge):
			errs = append(errs, ValidationError{
				Element: ElementVertex, ID: int(v.ID),
				Message:  fmt.Sprintf("anchor %s does not exist", v.HalfEdge),
				Severity: SeverityError,
			})
		case m.halfEdges[v.HalfEdge].Origin != v.ID:
			errs = append(errs, ValidationError{
				Element: ElementVertex, ID: int(v.ID),
				Message:  fmt.Sprintf("anchor %s originates at %s", v.HalfEdge, m.halfEdges[v.HalfEdge].Origin),
				Severity: SeverityError,
			})
		}
	}
	if isolated > 0 {
		errs = append(errs, ValidationError{
			Element:  ElementMesh,
			ID:       -1,
			Message:  fmt.Sprintf("%d isolated vertices", isolated),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateEdgeTable checks that the undirected edge table agrees with the
// half-edge arena, so no vertex pair is joined twice.
func validateEdgeTable(m *Mesh) []ValidationError {
	var errs []ValidationError
	if 2*len(m.edges) != len(m.halfEdges) {
		errs = append(errs, ValidationError{
			Element:  ElementMesh,
			ID:       -1,
			Message:  fmt.Sprintf("%d edges registered for %d half-edges", len(m.edges), len(m.halfEdges)),
			Severity: SeverityError,
		})
	}
	for k, h := range m.edges {
		if !m.hasHalfEdge(h) {
			errs = append(errs, halfEdgeError(h, "registered for edge %s-%s but does not exist", k.a, k.b))
			continue
		}
		if makeEdgeKey(m.halfEdges[h].Origin, m.Dest(h)) != k {
			errs = append(errs, halfEdgeError(h, "registered for edge %s-%s but joins %s-%s",
				k.a, k.b, m.halfEdges[h].Origin, m.Dest(h)))
		}
	}
	return errs
}
