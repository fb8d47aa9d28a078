package mesh

import "errors"

// ErrInvalidFace indicates a face that is unknown, removed, missing its
// anchor half-edge, or whose boundary loop is broken or shorter than three.
var ErrInvalidFace = errors.New("mesh: invalid face")

// ErrInvalidLoop indicates a half-edge sequence that cannot be closed into a
// face: too short, repeated members, or consecutive half-edges that do not
// meet end to start.
var ErrInvalidLoop = errors.New("mesh: invalid boundary loop")

// ErrUnknownVertex indicates a vertex id outside the mesh.
var ErrUnknownVertex = errors.New("mesh: unknown vertex")

// ErrUnknownHalfEdge indicates a half-edge id outside the mesh.
var ErrUnknownHalfEdge = errors.New("mesh: unknown half-edge")

// ErrDegenerateEdge indicates an edge request whose endpoints coincide.
var ErrDegenerateEdge = errors.New("mesh: degenerate edge")

// ErrEdgeInUse indicates a half-edge that already bounds a face and so
// cannot join another one.
var ErrEdgeInUse = errors.New("mesh: half-edge already bounds a face")
