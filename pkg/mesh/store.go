package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh owns the vertex, half-edge and face arenas. Ids are indices into
// those arenas and are never reused until Clear. Removed faces leave a nil
// tombstone so that ids of later faces stay stable.
type Mesh struct {
	vertices  []Vertex
	halfEdges []HalfEdge
	faces     []*Face
	liveFaces int

	// edges maps each undirected edge to one of its two half-edges.
	edges map[edgeKey]HalfEdgeID

	weld *weldGrid
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{
		edges: make(map[edgeKey]HalfEdgeID),
	}
}

// Clear empties the mesh. Every previously issued id becomes invalid.
func (m *Mesh) Clear() {
	m.vertices = nil
	m.halfEdges = nil
	m.faces = nil
	m.liveFaces = 0
	m.edges = make(map[edgeKey]HalfEdgeID)
	m.weld = nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// HalfEdgeCount returns the number of half-edges.
func (m *Mesh) HalfEdgeCount() int {
	return len(m.halfEdges)
}

// EdgeCount returns the number of undirected edges.
func (m *Mesh) EdgeCount() int {
	return len(m.edges)
}

// FaceCount returns the number of live faces.
func (m *Mesh) FaceCount() int {
	return m.liveFaces
}

func (m *Mesh) hasVertex(id VertexID) bool {
	return id >= 0 && int(id) < len(m.vertices)
}

func (m *Mesh) hasHalfEdge(id HalfEdgeID) bool {
	return id >= 0 && int(id) < len(m.halfEdges)
}

func (m *Mesh) hasFace(id FaceID) bool {
	return id >= 0 && int(id) < len(m.faces) && m.faces[id] != nil
}

// Vertex returns a copy of the vertex record.
func (m *Mesh) Vertex(id VertexID) (Vertex, bool) {
	if !m.hasVertex(id) {
		return Vertex{}, false
	}
	return m.vertices[id], true
}

// HalfEdge returns a copy of the half-edge record.
func (m *Mesh) HalfEdge(id HalfEdgeID) (HalfEdge, bool) {
	if !m.hasHalfEdge(id) {
		return HalfEdge{}, false
	}
	return m.halfEdges[id], true
}

// Face returns a copy of the face record. Removed faces report false.
func (m *Mesh) Face(id FaceID) (Face, bool) {
	if !m.hasFace(id) {
		return Face{}, false
	}
	return *m.faces[id], true
}

// Position returns the position of a vertex.
func (m *Mesh) Position(id VertexID) (v3.Vec, bool) {
	if !m.hasVertex(id) {
		return v3.Vec{}, false
	}
	return m.vertices[id].Position, true
}

// Vertices returns all vertices in store order.
func (m *Mesh) Vertices() []Vertex {
	out := make([]Vertex, len(m.vertices))
	copy(out, m.vertices)
	return out
}

// HalfEdges returns all half-edges in store order.
func (m *Mesh) HalfEdges() []HalfEdge {
	out := make([]HalfEdge, len(m.halfEdges))
	copy(out, m.halfEdges)
	return out
}

// Faces returns the live faces in store order.
func (m *Mesh) Faces() []Face {
	out := make([]Face, 0, m.liveFaces)
	for _, f := range m.faces {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// FaceAt returns the id of the i-th live face in store order.
func (m *Mesh) FaceAt(i int) (FaceID, bool) {
	if i < 0 || i >= m.liveFaces {
		return NoFace, false
	}
	for _, f := range m.faces {
		if f == nil {
			continue
		}
		if i == 0 {
			return f.ID, true
		}
		i--
	}
	return NoFace, false
}

// Twin returns the opposite half-edge of h.
func (m *Mesh) Twin(h HalfEdgeID) HalfEdgeID {
	if !m.hasHalfEdge(h) {
		return NoHalfEdge
	}
	return m.halfEdges[h].Twin
}

// Dest returns the vertex h points to, which is the origin of its twin.
func (m *Mesh) Dest(h HalfEdgeID) VertexID {
	t := m.Twin(h)
	if !m.hasHalfEdge(t) {
		return NoVertex
	}
	return m.halfEdges[t].Origin
}

// FindEdge returns the half-edge running from v1 to v2, if that edge exists.
func (m *Mesh) FindEdge(v1, v2 VertexID) (HalfEdgeID, bool) {
	h, ok := m.edges[makeEdgeKey(v1, v2)]
	if !ok {
		return NoHalfEdge, false
	}
	if m.halfEdges[h].Origin != v1 {
		h = m.halfEdges[h].Twin
	}
	return h, true
}

// ---------------------------------------------------------------------------
// Low-level mutators. These keep ids and twin pointers consistent but leave
// next/prev/face wiring to the builder.
// ---------------------------------------------------------------------------

func (m *Mesh) newVertex(p v3.Vec) VertexID {
	id := VertexID(len(m.vertices))
	m.vertices = append(m.vertices, Vertex{ID: id, Position: p, HalfEdge: NoHalfEdge})
	if m.weld != nil {
		m.weld.insert(id, p)
	}
	return id
}

// newEdgePair allocates the half-edges v1→v2 and v2→v1, registers the
// undirected edge and returns the v1→v2 side.
func (m *Mesh) newEdgePair(v1, v2 VertexID) HalfEdgeID {
	h := HalfEdgeID(len(m.halfEdges))
	t := h + 1
	m.halfEdges = append(m.halfEdges,
		HalfEdge{ID: h, Origin: v1, Twin: t, Next: NoHalfEdge, Prev: NoHalfEdge, Face: NoFace},
		HalfEdge{ID: t, Origin: v2, Twin: h, Next: NoHalfEdge, Prev: NoHalfEdge, Face: NoFace},
	)
	m.edges[makeEdgeKey(v1, v2)] = h
	if m.vertices[v1].HalfEdge == NoHalfEdge {
		m.vertices[v1].HalfEdge = h
	}
	if m.vertices[v2].HalfEdge == NoHalfEdge {
		m.vertices[v2].HalfEdge = t
	}
	return h
}

func (m *Mesh) newFace(anchor HalfEdgeID) FaceID {
	id := FaceID(len(m.faces))
	m.faces = append(m.faces, &Face{ID: id, HalfEdge: anchor})
	m.liveFaces++
	return id
}

// link makes b follow a.
func (m *Mesh) link(a, b HalfEdgeID) {
	m.halfEdges[a].Next = b
	m.halfEdges[b].Prev = a
}

func (m *Mesh) detachFace(id FaceID) {
	m.faces[id] = nil
	m.liveFaces--
}
