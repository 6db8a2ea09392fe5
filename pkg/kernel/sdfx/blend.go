package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
)

type ball struct {
	center v3.Vec
	radius float64
}

func (b ball) distance(p v3.Vec) float64 {
	return p.Sub(b.center).Length() - b.radius
}

// blendSolid is a smooth union of spheres. A neuron surface is thousands of
// spheres, so the field is evaluated through an r-tree instead of folding
// over every primitive.
type blendSolid struct {
	balls []ball
	k     float64
}

// BoundingBox returns the box enclosing every sphere, grown by the blend
// distance.
func (b *blendSolid) BoundingBox() (min, max v3.Vec) {
	for i, s := range b.balls {
		r := v3.Vec{X: s.radius, Y: s.radius, Z: s.radius}
		lo, hi := s.center.Sub(r), s.center.Add(r)
		if i == 0 {
			min, max = lo, hi
			continue
		}
		min, max = min.Min(lo), max.Max(hi)
	}
	pad := v3.Vec{X: b.k, Y: b.k, Z: b.k}
	return min.Sub(pad), max.Add(pad)
}

// indexEntry stores one sphere's search box in the r-tree.
type indexEntry struct {
	ball
	where rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.where }

// indexedField evaluates the smooth union exactly wherever a sphere is
// within margin, and reports margin elsewhere. Marching cubes only
// interpolates across cells that contain the surface, so margin only has to
// exceed a cell diagonal.
type indexedField struct {
	tree   *rtreego.Rtree
	min    sdf.MinFunc
	margin float64
	bb     sdf.Box3
}

// index builds the evaluated field for a mesh of cells along the longest
// axis.
func (b *blendSolid) index(cells int) (sdf.SDF3, error) {
	lo, hi := b.BoundingBox()
	bb := sdf.Box3{Min: lo, Max: hi}
	size := bb.Size()
	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	cell := longest / float64(cells)
	margin := 3*cell + b.k

	f := &indexedField{
		tree:   rtreego.NewTree(3, 25, 50),
		min:    math.Min,
		margin: margin,
		bb:     bb,
	}
	if b.k > 0 {
		f.min = sdf.PolyMin(b.k)
	}
	for _, s := range b.balls {
		reach := s.radius + margin
		corner := rtreego.Point{s.center.X - reach, s.center.Y - reach, s.center.Z - reach}
		where, err := rtreego.NewRect(corner, []float64{2 * reach, 2 * reach, 2 * reach})
		if err != nil {
			return nil, err
		}
		f.tree.Insert(&indexEntry{ball: s, where: where})
	}
	return f, nil
}

// Evaluate returns the blended signed distance at p.
func (f *indexedField) Evaluate(p v3.Vec) float64 {
	const eps = 1e-9
	probe, err := rtreego.NewRect(rtreego.Point{p.X, p.Y, p.Z}, []float64{eps, eps, eps})
	if err != nil {
		return f.margin
	}
	hits := f.tree.SearchIntersect(probe)
	if len(hits) == 0 {
		return f.margin
	}
	d := hits[0].(*indexEntry).distance(p)
	for _, h := range hits[1:] {
		d = f.min(d, h.(*indexEntry).distance(p))
	}
	return math.Min(d, f.margin)
}

// BoundingBox returns the bounding box of the field.
func (f *indexedField) BoundingBox() sdf.Box3 { return f.bb }
