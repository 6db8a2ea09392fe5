package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	src := `
workspace = "cells.db"

[import]
segment_limit = 50

[surface]
radius_scale = 1.5
blend = 0.25
cap_ends = true
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"workspace", cfg.Workspace, "cells.db"},
		{"segment limit", cfg.Import.SegmentLimit, 50},
		{"scale keeps default", cfg.Import.Scale, 1.0},
		{"radius scale", cfg.Surface.RadiusScale, 1.5},
		{"resolution keeps default", cfg.Surface.Resolution, Default().Surface.Resolution},
		{"blend", cfg.Surface.Blend, 0.25},
		{"cap ends", cfg.Surface.CapEnds, true},
		{"sphere radius keeps default", cfg.Edit.NewSphereRadius, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	opts := cfg.TessellateOptions()
	if opts.Blend != 0.25 || opts.Cells != cfg.Surface.Resolution || !opts.Surface.CapEnds {
		t.Errorf("TessellateOptions = %+v", opts)
	}
	if cfg.ParseOptions().SegmentLimit != 50 {
		t.Errorf("ParseOptions = %+v", cfg.ParseOptions())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"zero scale", "[import]\nscale = 0\n", "import.scale"},
		{"negative limit", "[import]\nsegment_limit = -1\n", "segment_limit"},
		{"zero resolution", "[surface]\nresolution = 0\n", "resolution"},
		{"negative blend", "[surface]\nblend = -1.0\n", "blend"},
		{"zero sphere radius", "[edit]\nnew_sphere_radius = 0.0\n", "new_sphere_radius"},
		{"syntax", "[surface\n", FileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.src), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	cfg.Workspace = "x.db"
	cfg.Surface.MinForcedRadius = 0.2
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("got %+v, want %+v", got, cfg)
	}
}
