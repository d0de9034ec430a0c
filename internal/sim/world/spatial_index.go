package world

import (
	"math"
	"sort"

	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/placement"
)

type cellKey struct{ cx, cz int }

type indexEntry struct {
	id    string
	fp    geom.Footprint
	order uint64 // insertion order, used to keep query results deterministic
}

// SpatialIndex is a uniform-grid footprint index over buildings and
// construction sites. It backs both the obstacle check of the validator and
// snap-target discovery, with results ordered by insertion so identical
// worlds answer identically.
type SpatialIndex struct {
	cell      float64
	cells     map[cellKey][]string
	entries   map[string]*indexEntry
	nextOrder uint64
}

func NewSpatialIndex(cell float64) *SpatialIndex {
	if cell <= 0 {
		cell = 8
	}
	return &SpatialIndex{
		cell:    cell,
		cells:   map[cellKey][]string{},
		entries: map[string]*indexEntry{},
	}
}

func (s *SpatialIndex) cellAt(x, z float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / s.cell)),
		cz: int(math.Floor(z / s.cell)),
	}
}

func (s *SpatialIndex) cellsFor(fp geom.Footprint) []cellKey {
	hx, hz := fp.BoundsHalf()
	lo := s.cellAt(fp.Center.X-hx, fp.Center.Z-hz)
	hi := s.cellAt(fp.Center.X+hx, fp.Center.Z+hz)
	out := make([]cellKey, 0, (hi.cx-lo.cx+1)*(hi.cz-lo.cz+1))
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cz := lo.cz; cz <= hi.cz; cz++ {
			out = append(out, cellKey{cx, cz})
		}
	}
	return out
}

func (s *SpatialIndex) Insert(id string, fp geom.Footprint) {
	s.Remove(id)
	s.nextOrder++
	s.entries[id] = &indexEntry{id: id, fp: fp, order: s.nextOrder}
	for _, k := range s.cellsFor(fp) {
		s.cells[k] = append(s.cells[k], id)
	}
}

func (s *SpatialIndex) Remove(id string) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	for _, k := range s.cellsFor(e.fp) {
		ids := s.cells[k]
		for i, v := range ids {
			if v == id {
				s.cells[k] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(s.cells[k]) == 0 {
			delete(s.cells, k)
		}
	}
	delete(s.entries, id)
}

func (s *SpatialIndex) Get(id string) (geom.Footprint, bool) {
	e, ok := s.entries[id]
	if !ok {
		return geom.Footprint{}, false
	}
	return e.fp, true
}

func (s *SpatialIndex) Len() int { return len(s.entries) }

// candidates gathers the distinct entries whose cells intersect the query
// area, ordered by insertion.
func (s *SpatialIndex) candidates(center geom.Vec3, radius float64) []*indexEntry {
	lo := s.cellAt(center.X-radius, center.Z-radius)
	hi := s.cellAt(center.X+radius, center.Z+radius)
	seen := map[string]struct{}{}
	var out []*indexEntry
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cz := lo.cz; cz <= hi.cz; cz++ {
			for _, id := range s.cells[cellKey{cx, cz}] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, s.entries[id])
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

// Overlaps reports the first indexed footprint intersecting fp, skipping ids
// in exclude. It satisfies the obstacle interface of the validator.
func (s *SpatialIndex) Overlaps(fp geom.Footprint, margin float64, exclude map[string]struct{}) (string, bool) {
	hx, hz := fp.BoundsHalf()
	radius := math.Max(hx, hz) + s.cell
	for _, e := range s.candidates(fp.Center, radius) {
		if _, skip := exclude[e.id]; skip {
			continue
		}
		if fp.Overlaps(e.fp, margin) {
			return e.id, true
		}
	}
	return "", false
}

// TargetsNear lists the owner's structures within radius of center as snap
// targets, in insertion order.
func (s *SpatialIndex) TargetsNear(owner string, center geom.Vec3, radius float64) []placement.Target {
	var out []placement.Target
	for _, e := range s.candidates(center, radius) {
		if e.fp.Owner != owner {
			continue
		}
		if geom.DistXZ(e.fp.Center, center) > radius {
			continue
		}
		out = append(out, placement.Target{ID: e.id, Fp: e.fp})
	}
	return out
}
