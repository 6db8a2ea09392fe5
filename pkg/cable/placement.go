package cable

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Placement is the object-level transform of a model: scale, then rotation
// (Euler angles in degrees, applied X then Y then Z), then translation.
type Placement struct {
	Location v3.Vec `json:"location"`
	Rotation v3.Vec `json:"rotation"`
	Scale    v3.Vec `json:"scale"`
}

// Identity returns the placement that leaves coordinates unchanged.
func Identity() Placement {
	return Placement{Scale: v3.Vec{X: 1, Y: 1, Z: 1}}
}

// World returns the local-to-world matrix. A zero scale vector is treated
// as unit scale so the zero Placement is usable.
func (p Placement) World() sdf.M44 {
	scale := p.Scale
	if scale == (v3.Vec{}) {
		scale = v3.Vec{X: 1, Y: 1, Z: 1}
	}
	rad := math.Pi / 180.0
	rot := sdf.RotateZ(p.Rotation.Z * rad).Mul(sdf.RotateY(p.Rotation.Y * rad)).Mul(sdf.RotateX(p.Rotation.X * rad))
	return sdf.Translate3d(p.Location).Mul(rot).Mul(sdf.Scale3d(scale))
}

// ToWorld maps a local position to world space.
func (p Placement) ToWorld(v v3.Vec) v3.Vec {
	return p.World().MulPosition(v)
}

// ToLocal maps a world position back to local space.
func (p Placement) ToLocal(v v3.Vec) v3.Vec {
	return p.World().Inverse().MulPosition(v)
}
