package world

import (
	"fmt"
	"math"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
)

type SiteState string

const (
	SiteAccumulating SiteState = "ACCUMULATING"
	SiteIdle         SiteState = "IDLE"
	SiteComplete     SiteState = "COMPLETE"
	SiteCancelled    SiteState = "CANCELLED"
)

// Site is an in-progress building. Progress counts work units toward
// Threshold; with no builder in range the site idles and progress freezes.
type Site struct {
	ID    string
	Owner string
	Type  string
	Fp    geom.Footprint

	Cost      map[string]int
	Threshold float64
	Progress  float64
	State     SiteState

	PlacedTick uint64
}

// workReach is how far from the footprint boundary a builder still counts as
// working the site.
func (w *World) workReach(fp geom.Footprint) float64 {
	hx, hz := fp.BoundsHalf()
	return w.cfg.WorkRange + math.Max(hx, hz)
}

// activeBuilders lists the units currently contributing work: assigned to the
// site and within work range, in id order.
func (w *World) activeBuilders(site *Site) []string {
	reach := w.workReach(site.Fp)
	var out []string
	for _, id := range sortedKeys(w.units) {
		u := w.units[id]
		if u.SiteID != site.ID {
			continue
		}
		if geom.DistXZ(u.Pos, site.Fp.Center) <= reach {
			out = append(out, id)
		}
	}
	return out
}

// assignedBuilders lists every unit whose current job is the site, in range
// or not.
func (w *World) assignedBuilders(siteID string) []string {
	var out []string
	for _, id := range sortedKeys(w.units) {
		if w.units[id].SiteID == siteID {
			out = append(out, id)
		}
	}
	return out
}

// buildRate is the per-second work contribution of n builders. Diminishing
// returns: four builders work twice as fast as one, not four times.
func (w *World) buildRate(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Sqrt(float64(n)) * w.cfg.BaseBuildRate
}

func (w *World) systemConstruction(nowTick uint64, dt float64) {
	for _, id := range sortedKeys(w.sites) {
		site := w.sites[id]
		if site == nil {
			continue
		}
		n := len(w.activeBuilders(site))
		if n == 0 {
			site.State = SiteIdle
			continue
		}
		site.State = SiteAccumulating
		site.Progress += w.buildRate(n) * dt
		if site.Progress >= site.Threshold {
			site.Progress = site.Threshold
			w.completeSite(site, nowTick)
		}
	}
}

func (w *World) completeSite(site *Site, nowTick uint64) {
	site.State = SiteComplete

	buildingID := fmt.Sprintf("B%d", w.nextBuildingNum.Add(1))
	w.buildings[buildingID] = &Building{
		ID:    buildingID,
		Owner: site.Owner,
		Type:  site.Type,
		Fp:    site.Fp,
	}
	// The footprint stays blocked on the nav grid; only the index identity
	// changes from site to building.
	w.index.Remove(site.ID)
	w.index.Insert(buildingID, site.Fp)
	delete(w.sites, site.ID)

	for _, id := range sortedKeys(w.units) {
		u := w.units[id]
		if u.SiteID == site.ID {
			w.advanceQueue(u)
		}
	}

	w.broadcast(protocol.Event{
		"t":             nowTick,
		"type":          protocol.EventSiteCompleted,
		"site_id":       site.ID,
		"building_id":   buildingID,
		"building_type": site.Type,
		"owner":         site.Owner,
	})
}

// refundFor computes the partial refund at cancellation: per resource,
// floor(cost * (1 - progress/threshold)).
func refundFor(cost map[string]int, progress, threshold float64) map[string]int {
	frac := 0.0
	if threshold > 0 {
		frac = progress / threshold
	}
	if frac > 1 {
		frac = 1
	}
	out := make(map[string]int, len(cost))
	for res, n := range cost {
		out[res] = int(math.Floor(float64(n) * (1 - frac)))
	}
	return out
}

func (w *World) cancelSite(site *Site, nowTick uint64) {
	site.State = SiteCancelled

	refund := refundFor(site.Cost, site.Progress, site.Threshold)
	w.ledger.Deposit(site.Owner, refund)

	w.index.Remove(site.ID)
	w.navgrid.Unblock(site.Fp)
	delete(w.sites, site.ID)

	for _, id := range sortedKeys(w.units) {
		u := w.units[id]
		if u.SiteID == site.ID {
			w.advanceQueue(u)
			continue
		}
		w.unassignUnit(u, site.ID)
	}

	w.broadcast(protocol.Event{
		"t":       nowTick,
		"type":    protocol.EventSiteCancelled,
		"site_id": site.ID,
		"owner":   site.Owner,
		"refund":  refund,
	})
}
