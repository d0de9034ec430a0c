package placement

import (
	"math"

	"rampart.gg/internal/sim/geom"
)

// AlignToGrid rounds the ground-plane coordinates of p to the nearest lattice
// point of the given cell size relative to origin. Y is untouched; the
// terrain collaborator resolves it. Aligning an aligned point is a no-op.
func AlignToGrid(p geom.Vec3, cell float64, origin geom.Vec3) geom.Vec3 {
	if cell <= 0 {
		return p
	}
	return geom.Vec3{
		X: origin.X + math.Round((p.X-origin.X)/cell)*cell,
		Y: p.Y,
		Z: origin.Z + math.Round((p.Z-origin.Z)/cell)*cell,
	}
}
