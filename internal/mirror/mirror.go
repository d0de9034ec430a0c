// Package mirror keeps a client-side copy of the placement-relevant world
// state. The server's WELCOME carries the terrain seed and placement tuning,
// so a mirror rebuilt from it runs the exact ghost pipeline the server will
// re-check at commit time.
package mirror

import (
	"encoding/json"
	"fmt"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/nav"
	"rampart.gg/internal/sim/placement"
	"rampart.gg/internal/sim/terrain"
)

type structure struct {
	id string
	fp geom.Footprint
}

// Mirror consumes the server message stream and answers the queries the
// ghost pipeline needs: snap targets, obstacles, and walkability.
type Mirror struct {
	PlayerID string
	Params   protocol.WorldParams

	Tick      uint64
	Resources map[string]int
	Catalog   map[string]protocol.BuildingDef
	Units     []protocol.UnitObs

	terrain *terrain.Heightfield
	navgrid *nav.Grid

	structures []structure // buildings then sites, in wire order
}

func New() *Mirror {
	return &Mirror{
		Resources: map[string]int{},
		Catalog:   map[string]protocol.BuildingDef{},
	}
}

// Apply routes one raw server message into the mirror. Unknown types are
// ignored so protocol additions do not break older clients.
func (m *Mirror) Apply(raw []byte) error {
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		return err
	}
	switch base.Type {
	case protocol.TypeWelcome:
		var msg protocol.WelcomeMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		m.applyWelcome(msg)
	case protocol.TypeCatalog:
		var msg protocol.CatalogMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		m.applyCatalog(msg)
	case protocol.TypeState:
		var msg protocol.StateMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		m.applyState(msg)
	}
	return nil
}

func (m *Mirror) applyWelcome(msg protocol.WelcomeMsg) {
	m.PlayerID = msg.PlayerID
	m.Params = msg.WorldParams
	m.terrain = terrain.NewHeightfield(msg.WorldParams.Seed, msg.WorldParams.TerrainAmplitude, msg.WorldParams.TerrainScale)
	m.navgrid = nav.NewGrid(m.terrain, msg.WorldParams.GridCell, msg.WorldParams.BoundaryR, msg.WorldParams.MaxSlopeRatio)
	for res, n := range msg.Resources {
		m.Resources[res] = n
	}
}

func (m *Mirror) applyCatalog(msg protocol.CatalogMsg) {
	for _, def := range msg.Buildings {
		m.Catalog[def.Type] = def
	}
}

func (m *Mirror) applyState(msg protocol.StateMsg) {
	m.Tick = msg.Tick
	m.Resources = msg.Resources
	m.Units = msg.Units

	if m.navgrid != nil {
		for _, s := range m.structures {
			m.navgrid.Unblock(s.fp)
		}
	}
	m.structures = m.structures[:0]
	for _, b := range msg.Buildings {
		m.structures = append(m.structures, structure{id: b.ID, fp: obsFootprint(b.Position, b.Rotation, b.Size, b.Owner)})
	}
	for _, s := range msg.Sites {
		m.structures = append(m.structures, structure{id: s.ID, fp: obsFootprint(s.Position, s.Rotation, s.Size, s.Owner)})
	}
	if m.navgrid != nil {
		for _, s := range m.structures {
			m.navgrid.Block(s.fp)
		}
	}
}

func obsFootprint(pos [3]float64, rot float64, size [3]float64, owner string) geom.Footprint {
	return geom.Footprint{
		Center: geom.FromArray(pos),
		Half:   geom.Vec3{X: size[0] / 2, Y: size[1] / 2, Z: size[2] / 2},
		Yaw:    rot,
		Owner:  owner,
	}
}

func (m *Mirror) Terrain() terrain.Sampler { return m.terrain }

// OwnBuilders lists the ids of the player's build-capable units.
func (m *Mirror) OwnBuilders() []string {
	var out []string
	for _, u := range m.Units {
		if u.Owner == m.PlayerID && u.CanBuild {
			out = append(out, u.ID)
		}
	}
	return out
}

// TargetsNear implements the coordinator's target source over the mirrored
// structure list, preserving wire order.
func (m *Mirror) TargetsNear(owner string, center geom.Vec3, radius float64) []placement.Target {
	var out []placement.Target
	for _, s := range m.structures {
		if s.fp.Owner != owner {
			continue
		}
		if geom.DistXZ(s.fp.Center, center) > radius {
			continue
		}
		out = append(out, placement.Target{ID: s.id, Fp: s.fp})
	}
	return out
}

// Overlaps implements the validator's obstacle index.
func (m *Mirror) Overlaps(fp geom.Footprint, margin float64, exclude map[string]struct{}) (string, bool) {
	for _, s := range m.structures {
		if _, skip := exclude[s.id]; skip {
			continue
		}
		if fp.Overlaps(s.fp, margin) {
			return s.id, true
		}
	}
	return "", false
}

// NewCoordinator wires a ghost-session coordinator against the mirror. Call
// after WELCOME has been applied.
func (m *Mirror) NewCoordinator() (*placement.Coordinator, error) {
	if m.terrain == nil {
		return nil, fmt.Errorf("mirror: no WELCOME applied yet")
	}
	cfg := placement.Config{
		GridCell:           m.Params.GridCell,
		SnapDistance:       m.Params.SnapDistance,
		UnsnapDistance:     m.Params.UnsnapDistance,
		SnapRampRate:       m.Params.SnapRampRate,
		SnapSearchRadius:   m.Params.SnapSearchRadius,
		SnapDistanceWeight: m.Params.SnapDistanceWeight,
		MaxSlopeRatio:      m.Params.MaxSlopeRatio,
		WalkableEpsilon:    m.Params.WalkableEpsilon,
	}
	valid := &placement.Validator{
		Terrain:         m.terrain,
		Obstacles:       m,
		Nav:             m.navgrid,
		MaxSlopeRatio:   cfg.MaxSlopeRatio,
		WalkableEpsilon: cfg.WalkableEpsilon,
	}
	return placement.NewCoordinator(cfg, m.PlayerID, m.terrain, m, valid), nil
}
