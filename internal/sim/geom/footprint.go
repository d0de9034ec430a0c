package geom

import (
	"fmt"
	"math"
)

// YawStepRad is the rotation quantum. All building yaws are multiples of it.
const YawStepRad = math.Pi / 4

// QuantizeYaw snaps yaw to the nearest multiple of 45 degrees and normalizes
// it into [0, 2pi).
func QuantizeYaw(yaw float64) float64 {
	step := math.Round(yaw / YawStepRad)
	q := step * YawStepRad
	q = math.Mod(q, 2*math.Pi)
	if q < 0 {
		q += 2 * math.Pi
	}
	return q
}

// YawIndex maps a quantized yaw to one of the 8 wire rotation slots (0..7).
func YawIndex(yaw float64) int {
	i := int(math.Round(QuantizeYaw(yaw)/YawStepRad)) % 8
	if i < 0 {
		i += 8
	}
	return i
}

// Footprint is the rectangular ground-plane extent of a building, construction
// site, or ghost. Half holds half-extents (width/2, height/2, depth/2).
type Footprint struct {
	Center Vec3    `json:"center"`
	Half   Vec3    `json:"half"`
	Yaw    float64 `json:"yaw"`
	Owner  string  `json:"owner,omitempty"`
}

func (f Footprint) Validate() error {
	if f.Half.X <= 0 || f.Half.Z <= 0 {
		return fmt.Errorf("footprint: non-positive extents %gx%g", f.Half.X*2, f.Half.Z*2)
	}
	return nil
}

// Width is the full extent along the local X axis, Depth along local Z.
func (f Footprint) Width() float64 { return f.Half.X * 2 }

func (f Footprint) Depth() float64 { return f.Half.Z * 2 }

// BoundsHalf returns the half-extents of the world-axis-aligned box that
// encloses the footprint at its quantized yaw. For quarter turns this is exact
// (axes swap); for the diagonal slots it is the enclosing box of the rotated
// rectangle.
func (f Footprint) BoundsHalf() (hx, hz float64) {
	yaw := QuantizeYaw(f.Yaw)
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	hx = math.Abs(f.Half.X*cos) + math.Abs(f.Half.Z*sin)
	hz = math.Abs(f.Half.X*sin) + math.Abs(f.Half.Z*cos)
	return hx, hz
}

// Overlaps reports whether the enclosing bounds of two footprints intersect.
// margin > 0 grows this footprint's bounds on every side; margin < 0 shrinks
// them, which lets flush-touching neighbors pass as non-overlapping.
func (f Footprint) Overlaps(o Footprint, margin float64) bool {
	ahx, ahz := f.BoundsHalf()
	bhx, bhz := o.BoundsHalf()
	if math.Abs(f.Center.X-o.Center.X) >= ahx+bhx+margin {
		return false
	}
	if math.Abs(f.Center.Z-o.Center.Z) >= ahz+bhz+margin {
		return false
	}
	return true
}

// SideMidpoints returns the ground-plane midpoints of the four sides of the
// enclosing bounds, in N, S, E, W order. Y is carried over from the center.
func (f Footprint) SideMidpoints() [4]Vec3 {
	hx, hz := f.BoundsHalf()
	c := f.Center
	return [4]Vec3{
		{c.X, c.Y, c.Z - hz},
		{c.X, c.Y, c.Z + hz},
		{c.X + hx, c.Y, c.Z},
		{c.X - hx, c.Y, c.Z},
	}
}
