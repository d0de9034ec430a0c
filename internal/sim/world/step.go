package world

import (
	"encoding/json"

	"rampart.gg/internal/protocol"
)

func (w *World) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	nowTick := w.tick.Load()
	dt := 1.0 / float64(w.cfg.TickRateHz)

	// Apply leaves and joins deterministically at the tick boundary.
	for _, id := range leaves {
		w.handleLeave(id)
	}
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
	}

	// Apply actions in server receive order (the inbox order).
	for _, env := range actions {
		p := w.players[env.PlayerID]
		if p == nil {
			continue
		}
		env.Act.PlayerID = env.PlayerID // trust session identity
		w.applyAct(p, env.Act, nowTick)
	}

	w.systemUnits(dt)
	w.systemConstruction(nowTick, dt)

	if w.cfg.ProgressBroadcastTicks > 0 && nowTick%uint64(w.cfg.ProgressBroadcastTicks) == 0 {
		w.broadcastProgress(nowTick)
	}

	// Flush: per-client STATE plus any queued events.
	for _, id := range sortedKeys(w.players) {
		p := w.players[id]
		cl := w.clients[id]
		if cl == nil {
			p.events = nil
			continue
		}
		state := w.buildState(id, nowTick)
		if b, err := json.Marshal(state); err == nil {
			sendLatest(cl.Out, b)
		}
		if len(p.events) > 0 {
			ev := protocol.EventMsg{
				Type:            protocol.TypeEvent,
				ProtocolVersion: protocol.Version,
				Tick:            nowTick,
				Events:          p.events,
			}
			if b, err := json.Marshal(ev); err == nil {
				sendLatest(cl.Out, b)
			}
		}
		p.events = nil
	}

	w.tick.Add(1)
}

// broadcast queues an event for every player.
func (w *World) broadcast(ev protocol.Event) {
	for _, id := range sortedKeys(w.players) {
		w.players[id].AddEvent(ev)
	}
}

func (w *World) broadcastProgress(nowTick uint64) {
	for _, id := range sortedKeys(w.sites) {
		site := w.sites[id]
		if site.State != SiteAccumulating {
			continue
		}
		w.broadcast(protocol.Event{
			"t":         nowTick,
			"type":      protocol.EventConstructionProgress,
			"site_id":   site.ID,
			"progress":  site.Progress,
			"threshold": site.Threshold,
			"builders":  len(w.activeBuilders(site)),
		})
	}
}

func (w *World) buildState(playerID string, tick uint64) protocol.StateMsg {
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Buildings:       make([]protocol.BuildingObs, 0, len(w.buildings)),
		Sites:           make([]protocol.SiteObs, 0, len(w.sites)),
		Units:           make([]protocol.UnitObs, 0, len(w.units)),
		Resources:       w.ledger.Balance(playerID),
	}
	for _, id := range sortedKeys(w.buildings) {
		b := w.buildings[id]
		msg.Buildings = append(msg.Buildings, protocol.BuildingObs{
			ID:       b.ID,
			Type:     b.Type,
			Owner:    b.Owner,
			Position: b.Fp.Center.ToArray(),
			Rotation: b.Fp.Yaw,
			Size:     [3]float64{b.Fp.Width(), b.Fp.Half.Y * 2, b.Fp.Depth()},
		})
	}
	for _, id := range sortedKeys(w.sites) {
		s := w.sites[id]
		msg.Sites = append(msg.Sites, protocol.SiteObs{
			ID:        s.ID,
			Type:      s.Type,
			Owner:     s.Owner,
			Position:  s.Fp.Center.ToArray(),
			Rotation:  s.Fp.Yaw,
			Size:      [3]float64{s.Fp.Width(), s.Fp.Half.Y * 2, s.Fp.Depth()},
			Progress:  s.Progress,
			Threshold: s.Threshold,
			Builders:  w.assignedBuilders(s.ID),
		})
	}
	for _, id := range sortedKeys(w.units) {
		u := w.units[id]
		msg.Units = append(msg.Units, protocol.UnitObs{
			ID:         u.ID,
			Owner:      u.Owner,
			Position:   u.Pos.ToArray(),
			CanBuild:   u.CanBuild,
			Selectable: u.Selectable,
		})
	}
	return msg
}
