package placement

import "rampart.gg/internal/sim/geom"

// GhostSession is the transient, locally-owned preview of a not-yet-committed
// building. It exists only while a placement UI session is active and is
// never persisted or shared.
type GhostSession struct {
	BuildingType string
	Footprint    geom.Footprint

	Snapping bool
	Active   *SnapPoint
	Weight   float64

	// Chain mode accumulates wall-style segments; confirm appends instead of
	// submitting, and a separate finish input flushes the whole run.
	Chain    bool
	Segments []geom.Footprint
}
