package edit

import "errors"

// ErrDegenerateDirection indicates an extrusion direction that has zero
// length or a non-finite component and so cannot be normalised.
var ErrDegenerateDirection = errors.New("edit: degenerate extrusion direction")

// ErrDegenerateInset indicates an inset that would collapse the face: a
// boundary vertex already sits within tolerance of the centroid, or the
// requested distance reaches past it.
var ErrDegenerateInset = errors.New("edit: inset would collapse the face")

// ErrInvalidDistance indicates a NaN or infinite distance argument.
var ErrInvalidDistance = errors.New("edit: invalid distance")
