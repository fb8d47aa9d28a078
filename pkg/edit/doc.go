// Package edit implements topological edit operations on a half-edge mesh.
//
// Both editors replace a single face with a new cap face surrounded by one
// quad per original boundary edge. All arguments are checked before the mesh
// is touched, so a returned error always leaves the mesh as it was.
package edit
