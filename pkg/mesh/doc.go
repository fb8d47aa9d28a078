// Package mesh implements a half-edge polygon mesh stored as an arena of
// vertices, half-edges and faces addressed by stable integer ids.
//
// The Mesh type carries both the low-level store (id allocation, attach and
// detach of records) and the builder primitives (AddVertex, AddEdge, AddFace,
// RemoveFace) that keep the structural invariants intact after every call:
//
//   - twin(twin(h)) == h
//   - next(prev(h)) == h and prev(next(h)) == h for linked half-edges
//   - a face's next-cycle closes after exactly its vertex count, and every
//     member half-edge points back at the face
//   - a vertex's anchor half-edge originates at that vertex
//   - a half-edge without a face is a boundary edge and never a face anchor
//
// A Mesh is not safe for concurrent mutation. Read-only queries may run in
// parallel with each other but never alongside a mutation.
package mesh
