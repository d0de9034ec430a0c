// Package placement is the client-side ghost pipeline: snap-point detection,
// grid alignment, multi-stage validation, and the hysteresis state machine
// that keeps the preview stable near snap boundaries. Everything here is
// deterministic and frame-rate independent; the server re-validates on
// commit, so nothing in this package has authority.
package placement

import (
	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/tuning"
)

type SnapType string

const (
	EdgeN    SnapType = "EDGE_N"
	EdgeS    SnapType = "EDGE_S"
	EdgeE    SnapType = "EDGE_E"
	EdgeW    SnapType = "EDGE_W"
	CornerNE SnapType = "CORNER_NE"
	CornerNW SnapType = "CORNER_NW"
	CornerSE SnapType = "CORNER_SE"
	CornerSW SnapType = "CORNER_SW"
)

func (t SnapType) IsCorner() bool {
	switch t {
	case CornerNE, CornerNW, CornerSE, CornerSW:
		return true
	}
	return false
}

// SnapPoint is a candidate position that puts the ghost flush against a
// target footprint. Lower Priority is preferred.
type SnapPoint struct {
	Pos      geom.Vec3
	Type     SnapType
	TargetID string
	Distance float64
	Priority float64
}

// Target is a footprint the ghost may snap against, typically a same-owner
// building or construction site.
type Target struct {
	ID string
	Fp geom.Footprint
}

// Config mirrors the placement block of the tuning file. Clients fill it from
// WELCOME world params so prediction matches the server.
type Config struct {
	GridCell           float64
	SnapDistance       float64
	UnsnapDistance     float64
	SnapRampRate       float64
	SnapSearchRadius   float64
	SnapDistanceWeight float64
	MaxSlopeRatio      float64
	WalkableEpsilon    float64
}

func ConfigFromTuning(p tuning.Placement) Config {
	return Config{
		GridCell:           p.GridCell,
		SnapDistance:       p.SnapDistance,
		UnsnapDistance:     p.UnsnapDistance,
		SnapRampRate:       p.SnapRampRate,
		SnapSearchRadius:   p.SnapSearchRadius,
		SnapDistanceWeight: p.SnapDistanceWeight,
		MaxSlopeRatio:      p.MaxSlopeRatio,
		WalkableEpsilon:    p.WalkableEpsilon,
	}
}
