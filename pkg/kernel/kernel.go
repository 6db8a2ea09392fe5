// Package kernel defines the implicit-surface service the mesher renders
// through. A backend turns a stream of (center, radius) primitives into one
// smoothly blended solid and polygonizes it at a requested resolution.
package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// DefaultCells is the marching cubes cell count along the longest axis.
const DefaultCells = 200

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max v3.Vec)
}

// Kernel is the implicit-surface backend.
type Kernel interface {
	// Sphere creates a sphere primitive.
	Sphere(center v3.Vec, radius float64) (Solid, error)

	// Blend joins solids. A positive k rounds the seams over that distance;
	// zero is a sharp union.
	Blend(solids []Solid, k float64) (Solid, error)

	// ToMesh polygonizes a solid with cells marching cubes cells along its
	// longest axis.
	ToMesh(s Solid, cells int) (*Mesh, error)

	// SaveSTL polygonizes a solid and writes it as binary STL.
	SaveSTL(path string, s Solid, cells int) error
}
