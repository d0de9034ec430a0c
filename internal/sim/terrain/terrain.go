// Package terrain supplies ground heights to the placement pipeline. Both the
// authoritative world and predicting clients build their sampler from the
// same seed, so a footprint validated client-side sees the same slopes the
// server will re-check at commit time.
package terrain

import "github.com/aquilax/go-perlin"

// Sampler answers point height queries on the ground plane.
type Sampler interface {
	HeightAt(x, z float64) float64
}

// Heightfield is a deterministic perlin-noise terrain.
type Heightfield struct {
	noise     *perlin.Perlin
	amplitude float64
	scale     float64
}

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// NewHeightfield builds a sampler for the given world seed. amplitude is the
// peak-to-valley height range; scale stretches the noise over world units.
func NewHeightfield(seed int64, amplitude, scale float64) *Heightfield {
	if amplitude < 0 {
		amplitude = 0
	}
	if scale <= 0 {
		scale = 64
	}
	return &Heightfield{
		noise:     perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		amplitude: amplitude,
		scale:     scale,
	}
}

func (h *Heightfield) HeightAt(x, z float64) float64 {
	return h.noise.Noise2D(x/h.scale, z/h.scale) * h.amplitude
}

// Flat is a constant-height sampler, mostly for tests.
type Flat struct {
	Height float64
}

func (f Flat) HeightAt(x, z float64) float64 { return f.Height }

// Ramp rises linearly along +X. Grade is the height gained per world unit,
// so a 4-wide footprint on Grade 0.5 spans 2 units of height.
type Ramp struct {
	Grade float64
}

func (r Ramp) HeightAt(x, z float64) float64 { return r.Grade * x }
