package placement

import "rampart.gg/internal/sim/geom"

type SnapState int

const (
	StateFree SnapState = iota
	StateSnapped
)

func (s SnapState) String() string {
	if s == StateSnapped {
		return "SNAPPED"
	}
	return "FREE"
}

// SnapController wraps the detector with hysteresis and smoothing. Engaging
// requires a candidate within SnapDistance; releasing requires the cursor to
// leave UnsnapDistance of the active snap position. The gap between the two
// keeps the ghost from oscillating when the cursor jitters at the boundary.
type SnapController struct {
	cfg    Config
	state  SnapState
	active *SnapPoint
	weight float64
}

func NewSnapController(cfg Config) *SnapController {
	return &SnapController{cfg: cfg}
}

func (c *SnapController) State() SnapState { return c.state }

// Active returns the engaged snap point, or nil when FREE.
func (c *SnapController) Active() *SnapPoint { return c.active }

func (c *SnapController) Weight() float64 { return c.weight }

// Reset returns the controller to FREE. Called when a new ghost session
// begins.
func (c *SnapController) Reset() {
	c.state = StateFree
	c.active = nil
	c.weight = 0
}

// Update advances the state machine one step. cursor is the raw projected
// cursor position, fallback the grid-aligned (or raw) position used when not
// snapping and as the lerp source while the smoothing weight ramps in. ghost
// supplies the preview extents; its center is taken to be cursor. The
// returned position has the caller's Y convention: re-resolve height after.
func (c *SnapController) Update(cursor, fallback geom.Vec3, ghost geom.Footprint, targets []Target, dt float64) geom.Vec3 {
	if c.state == StateSnapped {
		if c.active == nil || geom.DistXZ(cursor, c.active.Pos) > c.cfg.UnsnapDistance {
			c.Reset()
		}
	}

	if c.state == StateFree {
		g := ghost
		g.Center = cursor
		for _, cand := range SnapCandidates(g, targets, c.cfg.SnapDistanceWeight) {
			if cand.Distance <= c.cfg.SnapDistance {
				cand := cand
				c.state = StateSnapped
				c.active = &cand
				c.weight = 0
				break
			}
		}
	}

	if c.state != StateSnapped {
		return fallback
	}

	c.weight += c.cfg.SnapRampRate * dt
	if c.weight > 1 {
		c.weight = 1
	}
	return geom.Lerp(fallback, c.active.Pos, c.weight)
}
