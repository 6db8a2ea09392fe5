// Package sdfx is the kernel backend built on github.com/deadsy/sdfx signed
// distance fields and its marching cubes renderer.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/swcmesher/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. Spheres also keep
// their parameters so blends of many spheres can be indexed.
type sdfxSolid struct {
	s      sdf.SDF3
	sphere *ball
}

func (s *sdfxSolid) BoundingBox() (min, max v3.Vec) {
	bb := s.s.BoundingBox()
	return bb.Min, bb.Max
}

// SdfxKernel is stateless; the zero value is ready to use.
type SdfxKernel struct{}

func New() *SdfxKernel {
	return &SdfxKernel{}
}

func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok || ss == nil {
		return nil, fmt.Errorf("sdfx: solid %T was not made by this kernel", s)
	}
	return ss, nil
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Sphere creates a sphere centered at c.
func (k *SdfxKernel) Sphere(c v3.Vec, radius float64) (kernel.Solid, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("sdfx: sphere radius must be positive and finite, got %g", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return &sdfxSolid{
		s:      sdf.Transform3D(s, sdf.Translate3d(c)),
		sphere: &ball{center: c, radius: radius},
	}, nil
}

// Blend joins solids with a polynomial smooth minimum over distance k, or
// a sharp union when k is zero. A blend made only of spheres is evaluated
// through a spatial index at meshing time.
func (k *SdfxKernel) Blend(solids []kernel.Solid, blend float64) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, errors.New("sdfx: blend of no solids")
	}
	if blend < 0 || math.IsNaN(blend) {
		return nil, fmt.Errorf("sdfx: blend distance must not be negative, got %g", blend)
	}
	parts := make([]*sdfxSolid, len(solids))
	balls := make([]ball, 0, len(solids))
	for i, s := range solids {
		ss, err := unwrap(s)
		if err != nil {
			return nil, err
		}
		parts[i] = ss
		if ss.sphere != nil {
			balls = append(balls, *ss.sphere)
		}
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	if len(balls) == len(parts) {
		return &blendSolid{balls: balls, k: blend}, nil
	}

	sdfs := make([]sdf.SDF3, len(parts))
	for i, p := range parts {
		sdfs[i] = p.s
	}
	u := sdf.Union3D(sdfs...)
	if blend > 0 {
		if us, ok := u.(*sdf.UnionSDF3); ok {
			us.SetMin(sdf.PolyMin(blend))
		}
	}
	return wrap(u), nil
}

// sdf3 resolves a solid to the field that is polygonized.
func sdf3(s kernel.Solid, cells int) (sdf.SDF3, error) {
	if b, ok := s.(*blendSolid); ok {
		return b.index(cells)
	}
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return ss.s, nil
}

func meshCells(cells int) int {
	if cells <= 0 {
		return kernel.DefaultCells
	}
	return cells
}

func triangles(s kernel.Solid, cells int) ([]*sdf.Triangle3, error) {
	cells = meshCells(cells)
	f, err := sdf3(s, cells)
	if err != nil {
		return nil, err
	}
	renderer := render.NewMarchingCubesUniform(cells)
	return render.ToTriangles(f, renderer), nil
}

// ToMesh polygonizes s with marching cubes. Triangles do not share
// vertices; each corner carries its face normal.
func (k *SdfxKernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	tris, err := triangles(s, cells)
	if err != nil {
		return nil, err
	}
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Normals:  make([]float32, 0, len(tris)*9),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	for _, tri := range tris {
		n := tri.Normal()
		for _, c := range tri {
			m.Indices = append(m.Indices, uint32(m.VertexCount()))
			m.Vertices = append(m.Vertices, float32(c.X), float32(c.Y), float32(c.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return m, nil
}

// SaveSTL writes the polygonized solid to path as binary STL.
func (k *SdfxKernel) SaveSTL(path string, s kernel.Solid, cells int) error {
	tris, err := triangles(s, cells)
	if err != nil {
		return err
	}
	if len(tris) == 0 {
		return errors.New("sdfx: surface produced no triangles")
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save stl: %w", err)
	}
	return nil
}
