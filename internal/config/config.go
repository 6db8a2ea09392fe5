// Package config loads swcmesh.toml, the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/chazu/swcmesher/pkg/kernel"
	"github.com/chazu/swcmesher/pkg/surface"
	"github.com/chazu/swcmesher/pkg/swc"
	"github.com/chazu/swcmesher/pkg/tessellate"
)

// FileName is the default config file looked up in the working directory.
const FileName = "swcmesh.toml"

// Config is the full settings file.
type Config struct {
	// Workspace is the SQLite file holding the cable models.
	Workspace string        `toml:"workspace"`
	Import    ImportConfig  `toml:"import"`
	Surface   SurfaceConfig `toml:"surface"`
	Edit      EditConfig    `toml:"edit"`
}

// ImportConfig controls reading morphology files.
type ImportConfig struct {
	Scale        float64 `toml:"scale"`         // multiplies surface coordinates and radii
	SegmentLimit int     `toml:"segment_limit"` // 0 reads everything
}

// SurfaceConfig controls implicit-surface generation.
type SurfaceConfig struct {
	RadiusScale     float64 `toml:"radius_scale"`
	Resolution      int     `toml:"resolution"` // marching cubes cells on the longest axis
	MinForcedRadius float64 `toml:"min_forced_radius"`
	Blend           float64 `toml:"blend"` // smooth-union distance
	CapEnds         bool    `toml:"cap_ends"`
}

// EditConfig controls model editing.
type EditConfig struct {
	// NewSphereRadius replaces unset radii for spheres and export.
	NewSphereRadius float64 `toml:"new_sphere_radius"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Workspace: ".swcmesh.db",
		Import:    ImportConfig{Scale: 1},
		Surface: SurfaceConfig{
			RadiusScale: 1,
			Resolution:  kernel.DefaultCells,
		},
		Edit: EditConfig{NewSphereRadius: 1},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects settings no operation can use.
func (c Config) Validate() error {
	switch {
	case c.Import.Scale <= 0:
		return fmt.Errorf("import.scale must be positive, got %g", c.Import.Scale)
	case c.Import.SegmentLimit < 0:
		return fmt.Errorf("import.segment_limit must not be negative, got %d", c.Import.SegmentLimit)
	case c.Surface.RadiusScale <= 0:
		return fmt.Errorf("surface.radius_scale must be positive, got %g", c.Surface.RadiusScale)
	case c.Surface.Resolution <= 0:
		return fmt.Errorf("surface.resolution must be positive, got %d", c.Surface.Resolution)
	case c.Surface.MinForcedRadius < 0:
		return fmt.Errorf("surface.min_forced_radius must not be negative, got %g", c.Surface.MinForcedRadius)
	case c.Surface.Blend < 0:
		return fmt.Errorf("surface.blend must not be negative, got %g", c.Surface.Blend)
	case c.Edit.NewSphereRadius <= 0:
		return fmt.Errorf("edit.new_sphere_radius must be positive, got %g", c.Edit.NewSphereRadius)
	}
	return nil
}

// ParseOptions returns the parser options.
func (c Config) ParseOptions() swc.Options {
	return swc.Options{SegmentLimit: c.Import.SegmentLimit}
}

// SurfaceOptions returns the sphere builder settings.
func (c Config) SurfaceOptions() surface.Config {
	return surface.Config{
		DataScale:       c.Import.Scale,
		RadiusScale:     c.Surface.RadiusScale,
		MinForcedRadius: c.Surface.MinForcedRadius,
		CapEnds:         c.Surface.CapEnds,
	}
}

// TessellateOptions returns the full meshing settings.
func (c Config) TessellateOptions() tessellate.Options {
	opts := tessellate.DefaultOptions()
	opts.Surface = c.SurfaceOptions()
	opts.Blend = c.Surface.Blend
	opts.Cells = c.Surface.Resolution
	return opts
}
