package placement

import (
	"fmt"
	"math"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/terrain"
)

// TargetSource discovers snap targets near a point: same-owner buildings and
// construction sites within the search radius, in stable order.
type TargetSource interface {
	TargetsNear(owner string, center geom.Vec3, radius float64) []Target
}

// GhostView is what the renderer needs each frame: where the ghost sits and
// whether it would commit cleanly.
type GhostView struct {
	Pos     geom.Vec3
	Yaw     float64
	Valid   bool
	Reason  FailReason
	Snapped bool
	Snap    *SnapPoint
	// ChainLen counts accumulated segments in chain mode.
	ChainLen int
}

// Coordinator drives the active GhostSession: snap vs. grid vs. raw position
// each update, validation, rotation, and confirm/finish into wire requests.
// It is owned by exactly one local actor and holds no authority.
type Coordinator struct {
	cfg   Config
	owner string

	terrain terrain.Sampler
	targets TargetSource
	valid   *Validator
	snap    *SnapController

	sess    *GhostSession
	view    GhostView
	nextReq int
}

func NewCoordinator(cfg Config, owner string, ter terrain.Sampler, targets TargetSource, valid *Validator) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		owner:   owner,
		terrain: ter,
		targets: targets,
		valid:   valid,
		snap:    NewSnapController(cfg),
	}
}

// Begin starts a ghost session for the given building type. size is the full
// footprint extent. Any previous session is discarded.
func (c *Coordinator) Begin(buildingType string, size [3]float64, chain bool) {
	c.snap.Reset()
	c.sess = &GhostSession{
		BuildingType: buildingType,
		Footprint: geom.Footprint{
			Half:  geom.Vec3{X: size[0] / 2, Y: size[1] / 2, Z: size[2] / 2},
			Owner: c.owner,
		},
		Chain: chain,
	}
	c.view = GhostView{}
}

func (c *Coordinator) Active() bool { return c.sess != nil }

// Session exposes the live session for rendering. Callers must not mutate it.
func (c *Coordinator) Session() *GhostSession { return c.sess }

func (c *Coordinator) View() GhostView { return c.view }

// Update advances the ghost by one frame: snap controller first, grid
// alignment as the fallback, terrain height resolution, then validation.
func (c *Coordinator) Update(cursor geom.Vec3, dt float64) GhostView {
	if c.sess == nil {
		return GhostView{}
	}

	var targets []Target
	if c.targets != nil {
		targets = c.targets.TargetsNear(c.owner, cursor, c.cfg.SnapSearchRadius)
	}
	fallback := AlignToGrid(cursor, c.cfg.GridCell, geom.Vec3{})
	pos := c.snap.Update(cursor, fallback, c.sess.Footprint, targets, dt)
	if c.terrain != nil {
		pos.Y = c.terrain.HeightAt(pos.X, pos.Z)
	}

	c.sess.Footprint.Center = pos
	c.sess.Snapping = c.snap.State() == StateSnapped
	c.sess.Active = c.snap.Active()
	c.sess.Weight = c.snap.Weight()

	c.view = GhostView{
		Pos:      pos,
		Yaw:      c.sess.Footprint.Yaw,
		Snapped:  c.sess.Snapping,
		Snap:     c.sess.Active,
		ChainLen: len(c.sess.Segments),
	}
	if c.valid != nil {
		exclude := ""
		if c.sess.Active != nil {
			exclude = c.sess.Active.TargetID
		}
		res := c.valid.Check(c.sess.Footprint, exclude)
		c.view.Valid = res.OK
		c.view.Reason = res.Reason
	} else {
		c.view.Valid = true
	}
	return c.view
}

// Rotate turns the ghost by steps * 45 degrees and refreshes validity.
func (c *Coordinator) Rotate(steps int) {
	if c.sess == nil {
		return
	}
	c.sess.Footprint.Yaw = geom.QuantizeYaw(c.sess.Footprint.Yaw + float64(steps)*geom.YawStepRad)
	c.view.Yaw = c.sess.Footprint.Yaw
	if c.valid != nil {
		exclude := ""
		if c.sess.Active != nil {
			exclude = c.sess.Active.TargetID
		}
		res := c.valid.Check(c.sess.Footprint, exclude)
		c.view.Valid = res.OK
		c.view.Reason = res.Reason
	}
}

// Confirm commits the current ghost. In normal mode it returns a single
// request and immediately restarts a session of the same type, supporting
// rapid successive placement. In chain mode it appends a segment and returns
// nil; FinishChain flushes the run.
func (c *Coordinator) Confirm(builders []string, queue bool) []protocol.PlacementReq {
	if c.sess == nil {
		return nil
	}
	if c.sess.Chain {
		c.appendChainSegment()
		c.view.ChainLen = len(c.sess.Segments)
		return nil
	}

	req := c.requestFor(c.sess.Footprint, builders, queue)
	size := [3]float64{c.sess.Footprint.Width(), c.sess.Footprint.Half.Y * 2, c.sess.Footprint.Depth()}
	buildingType := c.sess.BuildingType
	c.Begin(buildingType, size, false)
	return []protocol.PlacementReq{req}
}

// appendChainSegment extends the chain toward the current ghost position. The
// first segment sits exactly at the ghost; later segments step one footprint
// length from the previous segment's endpoint along the 45-degree-quantized
// cursor direction.
func (c *Coordinator) appendChainSegment() {
	cur := c.sess.Footprint
	if len(c.sess.Segments) == 0 {
		c.sess.Segments = append(c.sess.Segments, cur)
		return
	}
	prev := c.sess.Segments[len(c.sess.Segments)-1]
	d := cur.Center.Sub(prev.Center)
	if math.Hypot(d.X, d.Z) < 1e-6 {
		return
	}
	yaw := geom.QuantizeYaw(math.Atan2(d.Z, d.X))
	step := cur.Width()
	next := cur
	next.Yaw = yaw
	next.Center = geom.Vec3{
		X: prev.Center.X + math.Cos(yaw)*step,
		Z: prev.Center.Z + math.Sin(yaw)*step,
	}
	if c.terrain != nil {
		next.Center.Y = c.terrain.HeightAt(next.Center.X, next.Center.Z)
	}
	c.sess.Segments = append(c.sess.Segments, next)
}

// FinishChain flushes the accumulated chain as a batch of requests and ends
// the session. Builders ride on every segment; segments after the first force
// the queue flag so one crew builds the run in order.
func (c *Coordinator) FinishChain(builders []string, queue bool) []protocol.PlacementReq {
	if c.sess == nil || !c.sess.Chain {
		return nil
	}
	segs := c.sess.Segments
	out := make([]protocol.PlacementReq, 0, len(segs))
	for i, fp := range segs {
		q := queue
		if i > 0 {
			q = true
		}
		out = append(out, c.requestFor(fp, builders, q))
	}
	c.sess = nil
	c.snap.Reset()
	c.view = GhostView{}
	return out
}

// Cancel discards the ghost with no side effects; nothing was committed.
func (c *Coordinator) Cancel() {
	c.sess = nil
	c.snap.Reset()
	c.view = GhostView{}
}

func (c *Coordinator) requestFor(fp geom.Footprint, builders []string, queue bool) protocol.PlacementReq {
	c.nextReq++
	return protocol.PlacementReq{
		ID:               fmt.Sprintf("PL%d", c.nextReq),
		BuildingType:     c.sess.BuildingType,
		Position:         fp.Center.ToArray(),
		Rotation:         geom.QuantizeYaw(fp.Yaw),
		FootprintSize:    [3]float64{fp.Width(), fp.Half.Y * 2, fp.Depth()},
		AssignedBuilders: builders,
		Queue:            queue,
	}
}
