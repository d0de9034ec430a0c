package world

import (
	"encoding/json"
	"testing"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/tuning"
)

type capturedAudit struct {
	entries []AuditEntry
}

func (c *capturedAudit) WriteAudit(e AuditEntry) error {
	c.entries = append(c.entries, e)
	return nil
}

// newTestWorld builds a world on near-flat terrain so placements anywhere
// near the origin validate.
func newTestWorld(t *testing.T, mutate func(*tuning.Tuning)) *World {
	t.Helper()
	cfg := tuning.Default()
	cfg.TerrainAmplitude = 0.01
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg)
}

// joinTestPlayer runs a join through a full tick and returns the player id
// plus the client channel carrying its STATE/EVENT stream.
func joinTestPlayer(t *testing.T, w *World, name string) (string, chan []byte) {
	t.Helper()
	out := make(chan []byte, 64)
	resp := make(chan JoinResponse, 1)
	w.StepOnce([]JoinRequest{{Name: name, Out: out, Resp: resp}}, nil, nil)
	select {
	case r := <-resp:
		drain(out)
		return r.Welcome.PlayerID, out
	default:
		t.Fatalf("join produced no response")
		return "", nil
	}
}

func drain(out chan []byte) []protocol.Event {
	var events []protocol.Event
	for {
		select {
		case raw := <-out:
			base, err := protocol.DecodeBase(raw)
			if err != nil || base.Type != protocol.TypeEvent {
				continue
			}
			var msg protocol.EventMsg
			if json.Unmarshal(raw, &msg) == nil {
				events = append(events, msg.Events...)
			}
		default:
			return events
		}
	}
}

// stepAndCollect advances one tick with the given actions and returns the
// events delivered to out.
func stepAndCollect(w *World, out chan []byte, actions ...ActionEnvelope) []protocol.Event {
	w.StepOnce(nil, nil, actions)
	return drain(out)
}

func findEvent(events []protocol.Event, kind string) (protocol.Event, bool) {
	for _, ev := range events {
		if ev["type"] == kind {
			return ev, true
		}
	}
	return nil, false
}

func actFor(playerID string, placements ...protocol.PlacementReq) ActionEnvelope {
	return ActionEnvelope{
		PlayerID: playerID,
		Act: protocol.ActMsg{
			Type:            protocol.TypeAct,
			ProtocolVersion: protocol.Version,
			PlayerID:        playerID,
			Placements:      placements,
		},
	}
}

func housePlacement(id string, x, z float64, builders ...string) protocol.PlacementReq {
	return protocol.PlacementReq{
		ID:               id,
		BuildingType:     "house",
		Position:         [3]float64{x, 0, z},
		FootprintSize:    [3]float64{4, 3, 4},
		AssignedBuilders: builders,
	}
}
