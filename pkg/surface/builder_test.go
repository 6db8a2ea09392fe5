package surface

import (
	"math"
	"testing"

	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func sample(x, y, z, r float64) morph.Entry {
	return morph.SampleEntry(morph.Sample{Pos: v3.Vec{X: x, Y: y, Z: z}, Radius: r})
}

func TestBuildConstantRadius(t *testing.T) {
	branches := []morph.Branch{{sample(0, 0, 0, 2), sample(0, 0, 10, 2)}}
	got, err := Build(branches, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i, s := range got {
		if s.Radius != 2 {
			t.Errorf("sphere %d radius = %g, want 2", i, s.Radius)
		}
		if math.Abs(s.Center.Z-float64(i)) > 1e-9 {
			t.Errorf("sphere %d z = %g, want %d", i, s.Center.Z, i)
		}
	}
}

func TestBuildScales(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantCount int
		wantR     float64
		wantLastZ float64
	}{
		{"radius scale", Config{DataScale: 1, RadiusScale: 2}, 5, 4, 8},
		{"data scale", Config{DataScale: 2, RadiusScale: 1}, 10, 4, 18},
		{"forced radius", Config{DataScale: 1, RadiusScale: 1, MinForcedRadius: 5}, 4, 5, 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branches := []morph.Branch{{sample(0, 0, 0, 2), sample(0, 0, 10, 2)}}
			got, err := Build(branches, tt.cfg)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("len = %d, want %d", len(got), tt.wantCount)
			}
			if got[0].Radius != tt.wantR {
				t.Errorf("radius = %g, want %g", got[0].Radius, tt.wantR)
			}
			if last := got[len(got)-1].Center.Z; math.Abs(last-tt.wantLastZ) > 1e-9 {
				t.Errorf("last z = %g, want %g", last, tt.wantLastZ)
			}
		})
	}
}

func TestBuildOverlap(t *testing.T) {
	segments := []morph.Branch{
		{sample(0, 0, 0, 0.5), sample(3, 4, 0, 3)},
		{sample(3, 4, 0, 3), sample(3, 4, 20, 0.1)},
		{sample(-1, -1, -1, 1), sample(1, 1, 1, 1)},
	}
	for _, scale := range []float64{0.25, 1, 3} {
		for si, seg := range segments {
			got, err := Build([]morph.Branch{seg}, Config{DataScale: 1, RadiusScale: scale})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			for i := 1; i < len(got); i++ {
				prev, cur := got[i-1], got[i]
				d := cur.Center.Sub(prev.Center).Length()
				if math.Abs(d-prev.Radius/2) > 1e-9 {
					t.Errorf("scale %g segment %d: step %d = %g, want %g", scale, si, i, d, prev.Radius/2)
				}
			}
		}
	}
}

func TestBuildNeverCapsEndpoint(t *testing.T) {
	branches := []morph.Branch{{sample(0, 0, 0, 1), sample(7, 0, 0, 1)}}
	got, err := Build(branches, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, s := range got {
		if s.Center.X >= 7 {
			t.Errorf("sphere at x=%g reaches the endpoint", s.Center.X)
		}
	}

	cfg := DefaultConfig()
	cfg.CapEnds = true
	capped, err := Build(branches, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(capped) != len(got)+1 {
		t.Fatalf("capped len = %d, want %d", len(capped), len(got)+1)
	}
	if end := capped[len(capped)-1]; end.Center.X != 7 || end.Radius != 1 {
		t.Errorf("cap = %+v, want center x=7 radius 1", end)
	}
}

func TestBuildDegenerateSegment(t *testing.T) {
	branches := []morph.Branch{{sample(1, 1, 1, 1), sample(1, 1, 1, 1)}}
	got, err := Build(branches, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Center != (v3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("center = %v", got[0].Center)
	}
}

func TestBuildZeroRadiusTerminates(t *testing.T) {
	branches := []morph.Branch{{sample(0, 0, 0, 0), sample(10, 0, 0, 0)}}
	got, err := Build(branches, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Radii are floored at length/1000, so at most 2000 steps.
	if len(got) == 0 || len(got) > 2001 {
		t.Fatalf("len = %d, want in (0, 2001]", len(got))
	}
	if got[0].Radius != 0.01 {
		t.Errorf("radius = %g, want 0.01", got[0].Radius)
	}
}

func TestBuildSphereCountCapped(t *testing.T) {
	branches := []morph.Branch{{sample(0, 0, 0, 1), sample(10, 0, 0, 1)}}
	tests := []struct {
		scale float64
		want  int
	}{
		{1, 20},
		{0.25, 80},
		{1e-4, MaxSegmentSpheres},
		{1e-9, MaxSegmentSpheres},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.RadiusScale = tt.scale
		got, err := Build(branches, cfg)
		if err != nil {
			t.Fatalf("scale %g: Build: %v", tt.scale, err)
		}
		if len(got) != tt.want {
			t.Errorf("scale %g: len = %d, want %d", tt.scale, len(got), tt.want)
		}
	}
}

func TestBuildSkipsSingleEntryBranches(t *testing.T) {
	got, err := Build([]morph.Branch{{sample(0, 0, 0, 1)}, {}}, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	good := morph.Branch{sample(0, 0, 0, 1), sample(1, 0, 0, 1)}
	tests := []struct {
		name     string
		branches []morph.Branch
		cfg      Config
	}{
		{"text fields", []morph.Branch{{morph.NewEntry([]string{"A", "B", "C", "D"}), sample(1, 0, 0, 1)}}, DefaultConfig()},
		{"nan", []morph.Branch{{sample(math.NaN(), 0, 0, 1), sample(1, 0, 0, 1)}}, DefaultConfig()},
		{"inf radius", []morph.Branch{{sample(0, 0, 0, math.Inf(1)), sample(1, 0, 0, 1)}}, DefaultConfig()},
		{"zero radius scale", []morph.Branch{good}, Config{DataScale: 1}},
		{"negative data scale", []morph.Branch{good}, Config{DataScale: -1, RadiusScale: 1}},
		{"nan forced radius", []morph.Branch{good}, Config{DataScale: 1, RadiusScale: 1, MinForcedRadius: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.branches, tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBounds(t *testing.T) {
	if _, _, ok := Bounds(nil); ok {
		t.Error("Bounds(nil) ok = true")
	}
	min, max, ok := Bounds([]Sphere{
		{Center: v3.Vec{}, Radius: 1},
		{Center: v3.Vec{X: 10}, Radius: 2},
	})
	if !ok {
		t.Fatal("ok = false")
	}
	if min != (v3.Vec{X: -1, Y: -2, Z: -2}) || max != (v3.Vec{X: 12, Y: 2, Z: 2}) {
		t.Errorf("bounds = %v %v", min, max)
	}
}
