package morph

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RootParent is the parent id carried by a point with no parent.
const RootParent = -1

// Type enumerates the standard SWC structure identifiers.
type Type int

const (
	TypeUndefined      Type = iota // 0
	TypeSoma                       // 1
	TypeAxon                       // 2
	TypeDendrite                   // 3
	TypeApicalDendrite             // 4
	TypeFork                       // 5
	TypeEnd                        // 6
	TypeCustom                     // 7
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeSoma:
		return "soma"
	case TypeAxon:
		return "axon"
	case TypeDendrite:
		return "dendrite"
	case TypeApicalDendrite:
		return "apical_dendrite"
	case TypeFork:
		return "fork"
	case TypeEnd:
		return "end"
	case TypeCustom:
		return "custom"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Radius is a node radius that may be unset. The zero value is unset.
type Radius struct {
	v   float64
	set bool
}

// Unset returns a radius with no value.
func Unset() Radius { return Radius{} }

// R returns a set radius.
func R(v float64) Radius { return Radius{v: v, set: true} }

// RadiusFromStored decodes a stored value where any negative number means
// "not yet assigned".
func RadiusFromStored(v float64) Radius {
	if v < 0 || math.IsNaN(v) {
		return Unset()
	}
	return R(v)
}

// IsSet reports whether the radius carries a value.
func (r Radius) IsSet() bool { return r.set }

// Or returns the radius value, or def when unset.
func (r Radius) Or(def float64) float64 {
	if !r.set {
		return def
	}
	return r.v
}

func (r Radius) String() string {
	if !r.set {
		return "unset"
	}
	return fmt.Sprintf("%g", r.v)
}

// Point is one node of an SWC skeleton.
type Point struct {
	ID     int
	Type   Type
	Pos    v3.Vec
	Radius Radius
	Parent int // RootParent for roots
}

// IsRoot reports whether the point carries the root parent sentinel.
func (p Point) IsRoot() bool {
	return p.Parent == RootParent
}

// Sample returns the point as a position plus radius, using def for an
// unset radius.
func (p Point) Sample(def float64) Sample {
	return Sample{Pos: p.Pos, Radius: p.Radius.Or(def)}
}

// Segment is a parent-to-child pair of point snapshots.
type Segment struct {
	Parent Point
	Child  Point
}

// Sample is a position with a radius, the unit consumed by the surface builder.
type Sample struct {
	Pos    v3.Vec
	Radius float64
}

// IsFinite reports whether every component of the sample is finite.
func (s Sample) IsFinite() bool {
	for _, f := range []float64{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Radius} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
