package world

import (
	"fmt"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
)

// handlePlacement is the authoritative commit pipeline: catalog lookup,
// server-side re-validation, atomic spend, then site creation. A request that
// fails produces an ACTION_RESULT for the requester and changes nothing.
func (w *World) handlePlacement(p *Player, req protocol.PlacementReq, nowTick uint64) {
	def, ok := w.cfg.Buildings[req.BuildingType]
	if !ok {
		p.AddEvent(actionResult(nowTick, req.ID, false, protocol.ErrBadRequest, "unknown building type"))
		return
	}

	// The catalog, not the request, decides the footprint extents. Position
	// and rotation come from the client; height is re-resolved server-side.
	fp := geom.Footprint{
		Center: geom.FromArray(req.Position),
		Half:   geom.Vec3{X: def.Size[0] / 2, Y: def.Size[1] / 2, Z: def.Size[2] / 2},
		Yaw:    geom.QuantizeYaw(req.Rotation),
		Owner:  p.ID,
	}
	fp.Center.Y = w.terrain.HeightAt(fp.Center.X, fp.Center.Z)

	if res := w.valid.Check(fp); !res.OK {
		w.audit(nowTick, p.ID, "PLACEMENT_STALE", req.ID, string(res.Reason))
		p.AddEvent(actionResult(nowTick, req.ID, false, protocol.ErrStale, string(res.Reason)))
		return
	}

	if !w.ledger.TrySpend(p.ID, def.Cost) {
		p.AddEvent(actionResult(nowTick, req.ID, false, protocol.ErrNoResource, "cannot afford "+req.BuildingType))
		return
	}

	siteID := fmt.Sprintf("S%d", w.nextSiteNum.Add(1))
	site := &Site{
		ID:         siteID,
		Owner:      p.ID,
		Type:       req.BuildingType,
		Fp:         fp,
		Cost:       def.Cost,
		Threshold:  def.WorkUnits,
		State:      SiteIdle,
		PlacedTick: nowTick,
	}
	w.sites[siteID] = site
	w.index.Insert(siteID, fp)
	w.navgrid.Block(fp)

	// Assign builders. A unit the requester does not own, or one that cannot
	// build, is skipped and audited; the placement itself stands.
	for _, uid := range req.AssignedBuilders {
		u := w.units[uid]
		if u == nil || u.Owner != p.ID || !u.CanBuild {
			w.audit(nowTick, p.ID, "ASSIGN_REJECTED", req.ID, "unit "+uid)
			continue
		}
		w.assignUnit(u, siteID, req.Queue)
	}

	w.broadcast(protocol.Event{
		"t":             nowTick,
		"type":          protocol.EventBuildingPlaced,
		"site_id":       siteID,
		"building_type": site.Type,
		"owner":         site.Owner,
		"position":      fp.Center.ToArray(),
		"rotation":      fp.Yaw,
	})
	p.AddEvent(protocol.Event{
		"t":       nowTick,
		"type":    protocol.EventActionResult,
		"ref":     req.ID,
		"ok":      true,
		"site_id": siteID,
	})
}

// assignUnit points a builder at a site. With queue set the site lines up
// behind the current job; otherwise it preempts it (the interrupted job stays
// queued, nothing is lost).
func (w *World) assignUnit(u *Unit, siteID string, queue bool) {
	if u.SiteID == siteID {
		return
	}
	if queue && u.SiteID != "" {
		u.Queue = append(u.Queue, siteID)
		return
	}
	if u.SiteID != "" {
		u.Queue = append([]string{u.SiteID}, u.Queue...)
	}
	u.SiteID = siteID
}

func (w *World) unassignUnit(u *Unit, siteID string) {
	if u.SiteID == siteID {
		w.advanceQueue(u)
		return
	}
	for i, id := range u.Queue {
		if id == siteID {
			u.Queue = append(u.Queue[:i], u.Queue[i+1:]...)
			return
		}
	}
}

func (w *World) advanceQueue(u *Unit) {
	u.SiteID = ""
	for len(u.Queue) > 0 {
		next := u.Queue[0]
		u.Queue = u.Queue[1:]
		if w.sites[next] != nil {
			u.SiteID = next
			return
		}
	}
}
