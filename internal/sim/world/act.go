package world

import "rampart.gg/internal/protocol"

func (w *World) applyAct(p *Player, act protocol.ActMsg, nowTick uint64) {
	for _, req := range act.Placements {
		w.handlePlacement(p, req, nowTick)
	}
	for _, req := range act.Assign {
		w.handleAssign(p, req, nowTick)
	}
	for _, siteID := range act.CancelSites {
		w.handleCancel(p, siteID, nowTick)
	}
}

func actionResult(tick uint64, ref string, ok bool, code, msg string) protocol.Event {
	ev := protocol.Event{
		"t":    tick,
		"type": protocol.EventActionResult,
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		ev["code"] = code
	}
	if msg != "" {
		ev["msg"] = msg
	}
	return ev
}

// handleAssign edits the builder roster of an existing site. Per-unit
// ownership failures are skipped and audited rather than failing the whole
// request.
func (w *World) handleAssign(p *Player, req protocol.AssignReq, nowTick uint64) {
	site := w.sites[req.SiteID]
	if site == nil {
		p.AddEvent(actionResult(nowTick, req.ID, false, protocol.ErrInvalidTarget, "site not found"))
		return
	}
	if site.Owner != p.ID {
		p.AddEvent(actionResult(nowTick, req.ID, false, protocol.ErrNoPermission, "not your site"))
		return
	}

	for _, uid := range req.Add {
		u := w.units[uid]
		if u == nil || u.Owner != p.ID || !u.CanBuild {
			w.audit(nowTick, p.ID, "ASSIGN_REJECTED", req.ID, "unit "+uid)
			continue
		}
		w.assignUnit(u, site.ID, req.Queue)
	}
	for _, uid := range req.Remove {
		u := w.units[uid]
		if u == nil || u.Owner != p.ID {
			w.audit(nowTick, p.ID, "ASSIGN_REJECTED", req.ID, "unit "+uid)
			continue
		}
		w.unassignUnit(u, site.ID)
	}
	p.AddEvent(actionResult(nowTick, req.ID, true, "", "ok"))
}

func (w *World) handleCancel(p *Player, siteID string, nowTick uint64) {
	site := w.sites[siteID]
	if site == nil {
		p.AddEvent(actionResult(nowTick, siteID, false, protocol.ErrInvalidTarget, "site not found"))
		return
	}
	if site.Owner != p.ID {
		w.audit(nowTick, p.ID, "CANCEL_REJECTED", siteID, "not owner")
		p.AddEvent(actionResult(nowTick, siteID, false, protocol.ErrNoPermission, "not your site"))
		return
	}
	w.cancelSite(site, nowTick)
	p.AddEvent(actionResult(nowTick, siteID, true, "", "cancelled"))
}
