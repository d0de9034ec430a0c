package placement

import (
	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/terrain"
)

type FailReason string

const (
	ReasonNone        FailReason = ""
	ReasonSlope       FailReason = "SLOPE"
	ReasonObstructed  FailReason = "OBSTRUCTED"
	ReasonUnreachable FailReason = "UNREACHABLE"
)

// ObstacleIndex answers volumetric overlap queries against the building and
// construction-site layer. exclude lists entity ids that must not count as
// blockers (the active snap target while previewing).
type ObstacleIndex interface {
	Overlaps(fp geom.Footprint, margin float64, exclude map[string]struct{}) (blockerID string, overlaps bool)
}

// WalkableMesh is the navigation collaborator.
type WalkableMesh interface {
	NearestWalkable(p geom.Vec3) (geom.Vec3, bool)
}

type Result struct {
	OK      bool
	Reason  FailReason
	Blocker string // entity id for ReasonObstructed
}

// overlapTolerance forgives sub-centimeter intrusion so a ghost lerping onto
// a flush snap position never flickers red from float rounding.
const overlapTolerance = -0.01

// Validator combines the slope, obstacle, and traversability checks. All
// three must pass. Client-side it is advisory (an invalid ghost renders red
// but may still be confirmed); the server runs the same checks at commit.
type Validator struct {
	Terrain   terrain.Sampler
	Obstacles ObstacleIndex
	Nav       WalkableMesh

	MaxSlopeRatio   float64
	WalkableEpsilon float64
}

// Check validates the footprint at its current position. excludeIDs are
// passed through to the obstacle layer.
func (v *Validator) Check(fp geom.Footprint, excludeIDs ...string) Result {
	if err := fp.Validate(); err != nil {
		return Result{Reason: ReasonObstructed}
	}

	if v.Terrain != nil && v.MaxSlopeRatio > 0 {
		min := v.Terrain.HeightAt(fp.Center.X, fp.Center.Z)
		max := min
		for _, m := range fp.SideMidpoints() {
			h := v.Terrain.HeightAt(m.X, m.Z)
			if h < min {
				min = h
			}
			if h > max {
				max = h
			}
		}
		if max-min > fp.Width()*v.MaxSlopeRatio {
			return Result{Reason: ReasonSlope}
		}
	}

	if v.Obstacles != nil {
		var exclude map[string]struct{}
		if len(excludeIDs) > 0 {
			exclude = make(map[string]struct{}, len(excludeIDs))
			for _, id := range excludeIDs {
				if id != "" {
					exclude[id] = struct{}{}
				}
			}
		}
		if blocker, hit := v.Obstacles.Overlaps(fp, overlapTolerance, exclude); hit {
			return Result{Reason: ReasonObstructed, Blocker: blocker}
		}
	}

	if v.Nav != nil && v.WalkableEpsilon > 0 {
		w, ok := v.Nav.NearestWalkable(fp.Center)
		if !ok || geom.DistXZ(fp.Center, w) > v.WalkableEpsilon {
			return Result{Reason: ReasonUnreachable}
		}
	}

	return Result{OK: true}
}
