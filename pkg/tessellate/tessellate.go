// Package tessellate turns morphology branches into a polygonized
// implicit surface: branches become sphere chains, the chains become one
// blended solid, and the solid is meshed by a geometry kernel.
package tessellate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chazu/swcmesher/pkg/kernel"
	"github.com/chazu/swcmesher/pkg/morph"
	"github.com/chazu/swcmesher/pkg/surface"
)

// DefaultName is the scene name given to generated surfaces.
const DefaultName = "Neuron"

// ErrNoSpheres is returned when the branches produce no surface primitives.
var ErrNoSpheres = errors.New("tessellate: branches produced no spheres")

// Options controls surface generation.
type Options struct {
	Surface surface.Config
	Blend   float64 // smooth-union distance; 0 is a sharp union
	Cells   int     // marching cubes cells along the longest axis
	Name    string
	Logger  *log.Logger
}

// DefaultOptions returns unit scales, a sharp union and the kernel's default
// resolution.
func DefaultOptions() Options {
	return Options{
		Surface: surface.DefaultConfig(),
		Cells:   kernel.DefaultCells,
		Name:    DefaultName,
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Solid builds the blended solid for the branches and returns it together
// with the number of spheres it is made of.
func Solid(branches []morph.Branch, k kernel.Kernel, opts Options) (kernel.Solid, int, error) {
	spheres, err := surface.Build(branches, opts.Surface)
	if err != nil {
		return nil, 0, err
	}
	if len(spheres) == 0 {
		return nil, 0, ErrNoSpheres
	}
	opts.logger().Debug("built sphere chains", "branches", len(branches), "spheres", len(spheres))

	solids := make([]kernel.Solid, len(spheres))
	for i, s := range spheres {
		solids[i], err = k.Sphere(s.Center, s.Radius)
		if err != nil {
			return nil, 0, fmt.Errorf("tessellate: sphere %d: %w", i, err)
		}
	}
	solid, err := k.Blend(solids, opts.Blend)
	if err != nil {
		return nil, 0, fmt.Errorf("tessellate: blend: %w", err)
	}
	return solid, len(spheres), nil
}

// Tessellate produces the triangle mesh of the branches' surface. The
// branches are never modified.
func Tessellate(branches []morph.Branch, k kernel.Kernel, opts Options) (*kernel.Mesh, error) {
	solid, n, err := Solid(branches, k, opts)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid, opts.Cells)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed: %w", err)
	}
	mesh.Name = opts.Name
	if mesh.Name == "" {
		mesh.Name = DefaultName
	}
	opts.logger().Info("tessellated surface", "name", mesh.Name, "spheres", n, "triangles", mesh.TriangleCount())
	return mesh, nil
}

// WriteSTL polygonizes the branches' surface straight to an STL file and
// returns the path written. ".stl" is appended when missing.
func WriteSTL(path string, branches []morph.Branch, k kernel.Kernel, opts Options) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".stl") {
		path += ".stl"
	}
	solid, n, err := Solid(branches, k, opts)
	if err != nil {
		return "", err
	}
	if err := k.SaveSTL(path, solid, opts.Cells); err != nil {
		return "", err
	}
	opts.logger().Info("wrote surface", "path", path, "spheres", n)
	return path, nil
}
