package placement

import (
	"sort"

	"rampart.gg/internal/sim/geom"
)

// Priority bases. Edges beat corners at equal distance; distance breaks ties
// within a class.
const (
	priorityBaseEdge   = 0.0
	priorityBaseCorner = 1.0
)

// SnapCandidates generates the 8 flush positions (4 edges, 4 corners) of the
// ghost against every target and returns them sorted ascending by priority.
// The sort is stable, so candidates with identical priority keep generation
// order and repeated calls with identical inputs produce identical output.
func SnapCandidates(ghost geom.Footprint, targets []Target, distanceWeight float64) []SnapPoint {
	if distanceWeight <= 0 {
		distanceWeight = 1
	}
	ghx, ghz := ghost.BoundsHalf()
	out := make([]SnapPoint, 0, len(targets)*8)
	for _, t := range targets {
		thx, thz := t.Fp.BoundsHalf()
		c := t.Fp.Center
		dx := thx + ghx
		dz := thz + ghz
		cands := [8]struct {
			typ SnapType
			pos geom.Vec3
		}{
			{EdgeN, geom.Vec3{X: c.X, Y: c.Y, Z: c.Z - dz}},
			{EdgeS, geom.Vec3{X: c.X, Y: c.Y, Z: c.Z + dz}},
			{EdgeE, geom.Vec3{X: c.X + dx, Y: c.Y, Z: c.Z}},
			{EdgeW, geom.Vec3{X: c.X - dx, Y: c.Y, Z: c.Z}},
			{CornerNE, geom.Vec3{X: c.X + dx, Y: c.Y, Z: c.Z - dz}},
			{CornerNW, geom.Vec3{X: c.X - dx, Y: c.Y, Z: c.Z - dz}},
			{CornerSE, geom.Vec3{X: c.X + dx, Y: c.Y, Z: c.Z + dz}},
			{CornerSW, geom.Vec3{X: c.X - dx, Y: c.Y, Z: c.Z + dz}},
		}
		for _, cand := range cands {
			dist := geom.DistXZ(ghost.Center, cand.pos)
			base := priorityBaseEdge
			if cand.typ.IsCorner() {
				base = priorityBaseCorner
			}
			out = append(out, SnapPoint{
				Pos:      cand.pos,
				Type:     cand.typ,
				TargetID: t.ID,
				Distance: dist,
				Priority: base + dist/distanceWeight,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
