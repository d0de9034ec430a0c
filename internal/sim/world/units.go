package world

import "rampart.gg/internal/sim/geom"

// systemUnits walks each builder toward its current site until it is within
// work range. Movement is straight-line; sites never move.
func (w *World) systemUnits(dt float64) {
	for _, id := range sortedKeys(w.units) {
		u := w.units[id]
		if u.SiteID == "" {
			continue
		}
		site := w.sites[u.SiteID]
		if site == nil {
			w.advanceQueue(u)
			continue
		}
		reach := w.workReach(site.Fp)
		dist := geom.DistXZ(u.Pos, site.Fp.Center)
		if dist <= reach {
			continue
		}
		step := w.cfg.UnitSpeed * dt
		if step > dist-reach {
			step = dist - reach
		}
		d := site.Fp.Center.Sub(u.Pos)
		scale := step / dist
		u.Pos.X += d.X * scale
		u.Pos.Z += d.Z * scale
		u.Pos.Y = w.terrain.HeightAt(u.Pos.X, u.Pos.Z)
	}
}
