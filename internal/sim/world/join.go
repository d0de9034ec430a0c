package world

import (
	"fmt"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
)

func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	if name == "" {
		name = "player"
	}

	idNum := w.nextPlayerNum.Add(1)
	playerID := fmt.Sprintf("P%d", idNum)

	p := &Player{ID: playerID, Name: name}
	w.players[playerID] = p
	w.ledger.Ensure(playerID, w.cfg.StartingResources)
	if out != nil {
		w.clients[playerID] = &clientState{Out: out}
	}

	// Spawn the starter crew in a short row, offset per player so crews from
	// different players do not stack.
	base := geom.Vec3{X: float64(idNum) * 20, Z: float64(idNum) * -20}
	for i := 0; i < w.cfg.StarterBuilders; i++ {
		uid := fmt.Sprintf("U%d", w.nextUnitNum.Add(1))
		pos := geom.Vec3{X: base.X + float64(i)*2, Z: base.Z}
		pos.Y = w.terrain.HeightAt(pos.X, pos.Z)
		w.units[uid] = &Unit{
			ID:         uid,
			Owner:      playerID,
			Pos:        pos,
			CanBuild:   true,
			Selectable: true,
		}
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        playerID,
		WorldParams:     w.worldParams(),
		CatalogDigest:   w.catalog.Digest,
		Resources:       w.ledger.Balance(playerID),
	}

	return JoinResponse{
		Welcome: welcome,
		Catalog: w.catalog,
		State:   w.buildState(playerID, w.tick.Load()),
	}
}

func (w *World) handleLeave(playerID string) {
	delete(w.clients, playerID)
}
