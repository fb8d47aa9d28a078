package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertexID indexes a vertex in its owning Mesh.
type VertexID int

// HalfEdgeID indexes a half-edge in its owning Mesh.
type HalfEdgeID int

// FaceID indexes a face in its owning Mesh.
type FaceID int

// Sentinels for absent references.
const (
	NoVertex   VertexID   = -1
	NoHalfEdge HalfEdgeID = -1
	NoFace     FaceID     = -1
)

func (id VertexID) String() string {
	if id == NoVertex {
		return "v<none>"
	}
	return fmt.Sprintf("v%d", int(id))
}

func (id HalfEdgeID) String() string {
	if id == NoHalfEdge {
		return "h<none>"
	}
	return fmt.Sprintf("h%d", int(id))
}

func (id FaceID) String() string {
	if id == NoFace {
		return "f<none>"
	}
	return fmt.Sprintf("f%d", int(id))
}

// Vertex is a mesh corner. HalfEdge is an arbitrary outgoing half-edge used
// as a traversal anchor, or NoHalfEdge for an isolated vertex.
type Vertex struct {
	ID       VertexID   `json:"id"`
	Position v3.Vec     `json:"position"`
	HalfEdge HalfEdgeID `json:"half_edge"`
}

// HalfEdge is one directed side of an undirected edge. It points away from
// Origin and bounds Face, which is NoFace for boundary half-edges.
type HalfEdge struct {
	ID     HalfEdgeID `json:"id"`
	Origin VertexID   `json:"origin"`
	Twin   HalfEdgeID `json:"twin"`
	Next   HalfEdgeID `json:"next"`
	Prev   HalfEdgeID `json:"prev"`
	Face   FaceID     `json:"face"`
}

// IsBoundary reports whether the half-edge has no face.
func (h HalfEdge) IsBoundary() bool {
	return h.Face == NoFace
}

// Face is a polygon whose boundary loop starts at HalfEdge.
type Face struct {
	ID       FaceID     `json:"id"`
	HalfEdge HalfEdgeID `json:"half_edge"`
}

// edgeKey identifies an undirected edge by its sorted endpoint pair.
type edgeKey struct {
	a, b VertexID
}

func makeEdgeKey(v1, v2 VertexID) edgeKey {
	if v2 < v1 {
		v1, v2 = v2, v1
	}
	return edgeKey{a: v1, b: v2}
}
