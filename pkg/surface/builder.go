// Package surface turns morphology branches into chains of overlapping
// spheres whose smooth union approximates the neuron's membrane.
package surface

import (
	"fmt"
	"math"

	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// degenerateLength replaces a zero segment length.
const degenerateLength = 0.01

// stabilityDivisor bounds radii from below at length/stabilityDivisor.
const stabilityDivisor = 1000

// MaxSegmentSpheres caps the spheres one segment emits. Once half the
// radius is shorter than length/MaxSegmentSpheres the step is held there.
const MaxSegmentSpheres = 4096

// Sphere is one implicit-surface primitive.
type Sphere struct {
	Center v3.Vec
	Radius float64
}

// Config controls sphere generation.
type Config struct {
	DataScale       float64 // applied to coordinates and radii
	RadiusScale     float64 // applied to each emitted radius
	MinForcedRadius float64 // endpoint radii are raised to at least this
	CapEnds         bool    // also emit a sphere at every segment's far end
}

// DefaultConfig returns unit scales, no forced radius and no end caps.
func DefaultConfig() Config {
	return Config{DataScale: 1, RadiusScale: 1}
}

func (c Config) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"data scale", c.DataScale},
		{"radius scale", c.RadiusScale},
		{"minimum radius", c.MinForcedRadius},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("surface: %s is not finite", f.name)
		}
	}
	if c.DataScale <= 0 {
		return fmt.Errorf("surface: data scale must be positive, got %g", c.DataScale)
	}
	if c.RadiusScale <= 0 {
		return fmt.Errorf("surface: radius scale must be positive, got %g", c.RadiusScale)
	}
	if c.MinForcedRadius < 0 {
		return fmt.Errorf("surface: minimum radius must not be negative, got %g", c.MinForcedRadius)
	}
	return nil
}

// Build emits spheres for every consecutive entry pair of every branch.
// Input is checked up front: entries that are not numbers and non-finite
// values are rejected before anything is emitted.
func Build(branches []morph.Branch, cfg Config) ([]Sphere, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	samples := make([][]morph.Sample, len(branches))
	for bi, b := range branches {
		samples[bi] = make([]morph.Sample, len(b))
		for ei, e := range b {
			s, ok := e.Sample()
			if !ok {
				return nil, fmt.Errorf("surface: branch %d entry %d: fields %v are not numbers", bi, ei, e.Fields)
			}
			if !s.IsFinite() {
				return nil, fmt.Errorf("surface: branch %d entry %d: non-finite value", bi, ei)
			}
			samples[bi][ei] = s
		}
	}

	var out []Sphere
	for _, chain := range samples {
		for i := 1; i < len(chain); i++ {
			out = appendSegment(out, chain[i-1], chain[i], cfg)
		}
	}
	return out, nil
}

// appendSegment walks from a to b, emitting a sphere and then advancing by
// half of the emitted radius until the walked length reaches the segment
// length. Consecutive centers are therefore closer than either radius,
// except where the step is held at length/MaxSegmentSpheres.
func appendSegment(out []Sphere, a, b morph.Sample, cfg Config) []Sphere {
	p1 := a.Pos.MulScalar(cfg.DataScale)
	p2 := b.Pos.MulScalar(cfg.DataScale)
	r1 := a.Radius * cfg.DataScale
	r2 := b.Radius * cfg.DataScale

	d := p2.Sub(p1)
	length := d.Length()
	if length <= 0 {
		length = degenerateLength
	}
	r1 = clampRadius(r1, length, cfg.MinForcedRadius)
	r2 = clampRadius(r2, length, cfg.MinForcedRadius)
	dr := r2 - r1
	minStep := length / MaxSegmentSpheres

	for walked := 0.0; walked < length; {
		t := walked / length
		r := (r1 + t*dr) * cfg.RadiusScale
		out = append(out, Sphere{Center: p1.Add(d.MulScalar(t)), Radius: r})
		walked += max(r/2, minStep)
	}
	if cfg.CapEnds {
		out = append(out, Sphere{Center: p2, Radius: r2 * cfg.RadiusScale})
	}
	return out
}

func clampRadius(r, length, minForced float64) float64 {
	if floor := length / stabilityDivisor; r < floor {
		r = floor
	}
	if r < minForced {
		r = minForced
	}
	return r
}

// Bounds returns the box enclosing every sphere. ok is false for no spheres.
func Bounds(spheres []Sphere) (min, max v3.Vec, ok bool) {
	for i, s := range spheres {
		r := v3.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
		lo, hi := s.Center.Sub(r), s.Center.Add(r)
		if i == 0 {
			min, max = lo, hi
			continue
		}
		min, max = min.Min(lo), max.Max(hi)
	}
	return min, max, len(spheres) > 0
}
