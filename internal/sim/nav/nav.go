// Package nav is the traversability collaborator of the placement pipeline.
// It keeps a coarse walkability grid derived from terrain slope and from the
// footprints of committed buildings, and answers nearest-walkable-point
// queries for the validator.
package nav

import (
	"math"

	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/terrain"
)

// Mesh answers nearest-walkable queries. The second return is false when no
// walkable point exists within the search horizon.
type Mesh interface {
	NearestWalkable(p geom.Vec3) (geom.Vec3, bool)
}

type cellKey struct{ cx, cz int }

// Grid is a uniform walkability grid centered on the origin. Cells are
// walkable unless their local slope exceeds maxSlope or a footprint blocks
// them.
type Grid struct {
	sampler  terrain.Sampler
	cell     float64
	radius   int // grid extends [-radius, radius] cells on both axes
	maxSlope float64

	blocked map[cellKey]int // refcount: overlapping footprints may share cells
}

func NewGrid(sampler terrain.Sampler, cell float64, radius int, maxSlope float64) *Grid {
	if cell <= 0 {
		cell = 1
	}
	if radius <= 0 {
		radius = 256
	}
	return &Grid{
		sampler:  sampler,
		cell:     cell,
		radius:   radius,
		maxSlope: maxSlope,
		blocked:  map[cellKey]int{},
	}
}

func (g *Grid) cellAt(x, z float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cell)),
		cz: int(math.Floor(z / g.cell)),
	}
}

func (g *Grid) cellCenter(k cellKey) geom.Vec3 {
	x := (float64(k.cx) + 0.5) * g.cell
	z := (float64(k.cz) + 0.5) * g.cell
	var y float64
	if g.sampler != nil {
		y = g.sampler.HeightAt(x, z)
	}
	return geom.Vec3{X: x, Y: y, Z: z}
}

// Block marks every cell covered by the footprint bounds as non-walkable.
func (g *Grid) Block(fp geom.Footprint) { g.adjust(fp, 1) }

// Unblock releases the cells claimed by a previous Block with the same bounds.
func (g *Grid) Unblock(fp geom.Footprint) { g.adjust(fp, -1) }

func (g *Grid) adjust(fp geom.Footprint, delta int) {
	hx, hz := fp.BoundsHalf()
	lo := g.cellAt(fp.Center.X-hx, fp.Center.Z-hz)
	hi := g.cellAt(fp.Center.X+hx, fp.Center.Z+hz)
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cz := lo.cz; cz <= hi.cz; cz++ {
			k := cellKey{cx, cz}
			g.blocked[k] += delta
			if g.blocked[k] <= 0 {
				delete(g.blocked, k)
			}
		}
	}
}

func (g *Grid) walkable(k cellKey) bool {
	if k.cx < -g.radius || k.cx > g.radius || k.cz < -g.radius || k.cz > g.radius {
		return false
	}
	if g.blocked[k] > 0 {
		return false
	}
	if g.sampler == nil || g.maxSlope <= 0 {
		return true
	}
	c := g.cellCenter(k)
	h := g.cell / 2
	min, max := c.Y, c.Y
	for _, d := range [4][2]float64{{h, 0}, {-h, 0}, {0, h}, {0, -h}} {
		v := g.sampler.HeightAt(c.X+d[0], c.Z+d[1])
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return (max-min)/g.cell <= g.maxSlope
}

// navSearchRings bounds the outward ring search; beyond it the query reports
// no walkable point rather than scanning the whole grid.
const navSearchRings = 16

// NearestWalkable finds the closest walkable cell center to p, scanning
// outward ring by ring. Within a ring the cell whose center is truly nearest
// wins, so results do not depend on map iteration order.
func (g *Grid) NearestWalkable(p geom.Vec3) (geom.Vec3, bool) {
	start := g.cellAt(p.X, p.Z)
	for ring := 0; ring <= navSearchRings; ring++ {
		best := geom.Vec3{}
		bestDist := math.Inf(1)
		found := false
		for cx := start.cx - ring; cx <= start.cx+ring; cx++ {
			for cz := start.cz - ring; cz <= start.cz+ring; cz++ {
				onEdge := cx == start.cx-ring || cx == start.cx+ring ||
					cz == start.cz-ring || cz == start.cz+ring
				if !onEdge {
					continue
				}
				k := cellKey{cx, cz}
				if !g.walkable(k) {
					continue
				}
				c := g.cellCenter(k)
				d := geom.DistXZ(p, c)
				if d < bestDist {
					best, bestDist, found = c, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return geom.Vec3{}, false
}
