// Command bot is a scripted client that exercises the full placement flow:
// it mirrors the world from the server stream, runs the ghost pipeline to
// place a house, drags a wall chain off it, and reports construction events
// until everything completes.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"rampart.gg/internal/mirror"
	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/placement"
)

type phase int

const (
	phaseHouse phase = iota
	phaseWalls
	phaseWait
	phaseDone
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	m := mirror.New()
	var coord *placement.Coordinator
	state := phaseHouse
	pendingSites := map[string]bool{}

	for state != phaseDone {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %v", err)
			return
		}
		if err := m.Apply(msg); err != nil {
			continue
		}
		base, _ := protocol.DecodeBase(msg)
		switch base.Type {
		case protocol.TypeWelcome:
			logger.Printf("WELCOME player_id=%s seed=%d", m.PlayerID, m.Params.Seed)
			coord, err = m.NewCoordinator()
			if err != nil {
				logger.Fatalf("coordinator: %v", err)
			}

		case protocol.TypeState:
			if coord == nil {
				continue
			}
			switch state {
			case phaseHouse:
				if reqs := placeHouse(m, coord); reqs != nil {
					sendAct(conn, m, reqs)
					state = phaseWalls
				}
			case phaseWalls:
				if reqs := placeWallChain(m, coord); reqs != nil {
					sendAct(conn, m, reqs)
					state = phaseWait
				}
			}

		case protocol.TypeEvent:
			var ev protocol.EventMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			for _, e := range ev.Events {
				switch e["type"] {
				case protocol.EventActionResult:
					if e["ok"] == true {
						if id, _ := e["site_id"].(string); id != "" {
							pendingSites[id] = true
							logger.Printf("committed site %s", id)
						}
					} else {
						logger.Printf("rejected ref=%v code=%v msg=%v", e["ref"], e["code"], e["msg"])
					}
				case protocol.EventConstructionProgress:
					logger.Printf("progress site=%v %.1f/%.1f builders=%v",
						e["site_id"], e["progress"], e["threshold"], e["builders"])
				case protocol.EventSiteCompleted:
					id, _ := e["site_id"].(string)
					delete(pendingSites, id)
					logger.Printf("completed site=%s building=%v", id, e["building_id"])
					if state == phaseWait && len(pendingSites) == 0 {
						logger.Printf("all construction finished")
						state = phaseDone
					}
				case protocol.EventSiteCancelled:
					id, _ := e["site_id"].(string)
					delete(pendingSites, id)
				}
			}
		}
	}
}

// placeHouse runs the ghost pipeline on open ground near the spawn crew and
// confirms once the preview validates.
func placeHouse(m *mirror.Mirror, coord *placement.Coordinator) []protocol.PlacementReq {
	def, ok := m.Catalog["house"]
	if !ok || len(m.Units) == 0 {
		return nil
	}
	anchor := crewAnchor(m)
	coord.Begin("house", def.Size, false)

	cursor := geom.Vec3{X: anchor.X + 8, Z: anchor.Z}
	view := settle(coord, cursor)
	if !view.Valid {
		coord.Cancel()
		return nil
	}
	reqs := coord.Confirm(m.OwnBuilders(), false)
	coord.Cancel()
	return reqs
}

// placeWallChain drags three wall segments east from beside the house site.
func placeWallChain(m *mirror.Mirror, coord *placement.Coordinator) []protocol.PlacementReq {
	def, ok := m.Catalog["wall"]
	if !ok || !def.Chainable {
		return nil
	}
	anchor := crewAnchor(m)
	coord.Begin("wall", def.Size, true)

	start := geom.Vec3{X: anchor.X - 6, Z: anchor.Z + 6}
	if view := settle(coord, start); !view.Valid {
		coord.Cancel()
		return nil
	}
	coord.Confirm(nil, false)
	for i := 1; i <= 2; i++ {
		cursor := geom.Vec3{X: start.X + float64(i)*def.Size[0], Z: start.Z}
		settle(coord, cursor)
		coord.Confirm(nil, false)
	}
	return coord.FinishChain(m.OwnBuilders(), false)
}

// settle advances the ghost until the snap smoothing converges.
func settle(coord *placement.Coordinator, cursor geom.Vec3) placement.GhostView {
	var view placement.GhostView
	for i := 0; i < 30; i++ {
		view = coord.Update(cursor, 0.1)
	}
	return view
}

func crewAnchor(m *mirror.Mirror) geom.Vec3 {
	for _, u := range m.Units {
		if u.Owner == m.PlayerID {
			return geom.FromArray(u.Position)
		}
	}
	return geom.Vec3{}
}

func sendAct(conn *websocket.Conn, m *mirror.Mirror, reqs []protocol.PlacementReq) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            m.Tick,
		PlayerID:        m.PlayerID,
		Placements:      reqs,
	}
	_ = conn.WriteJSON(act)
}
