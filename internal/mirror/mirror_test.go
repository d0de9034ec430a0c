package mirror

import (
	"encoding/json"
	"testing"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
)

func welcomeRaw(t *testing.T) []byte {
	t.Helper()
	msg := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        "P1",
		WorldParams: protocol.WorldParams{
			TickRateHz:             10,
			Seed:                   42,
			BoundaryR:              256,
			TerrainAmplitude:       0.01,
			TerrainScale:           96,
			GridCell:               1,
			SnapDistance:           3,
			UnsnapDistance:         4.5,
			SnapRampRate:           8,
			SnapSearchRadius:       24,
			SnapDistanceWeight:     10,
			MaxSlopeRatio:          0.3,
			WalkableEpsilon:        2,
			ProgressBroadcastTicks: 5,
		},
		Resources: map[string]int{"wood": 200},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func stateRaw(t *testing.T, msg protocol.StateMsg) []byte {
	t.Helper()
	msg.Type = protocol.TypeState
	msg.ProtocolVersion = protocol.Version
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestMirror_AppliesWelcomeAndState(t *testing.T) {
	m := New()
	if err := m.Apply(welcomeRaw(t)); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if m.PlayerID != "P1" || m.Resources["wood"] != 200 {
		t.Fatalf("welcome not applied: %+v", m)
	}

	raw := stateRaw(t, protocol.StateMsg{
		Tick: 9,
		Buildings: []protocol.BuildingObs{
			{ID: "B1", Owner: "P1", Position: [3]float64{18, 0, 10}, Size: [3]float64{8, 4, 8}},
		},
		Units: []protocol.UnitObs{
			{ID: "U1", Owner: "P1", CanBuild: true},
			{ID: "U2", Owner: "P1", CanBuild: false},
			{ID: "U3", Owner: "P2", CanBuild: true},
		},
		Resources: map[string]int{"wood": 150},
	})
	if err := m.Apply(raw); err != nil {
		t.Fatalf("state: %v", err)
	}
	if m.Tick != 9 || m.Resources["wood"] != 150 {
		t.Fatalf("state not applied: tick=%d res=%v", m.Tick, m.Resources)
	}
	if got := m.OwnBuilders(); len(got) != 1 || got[0] != "U1" {
		t.Fatalf("own builders = %v, want [U1]", got)
	}
	if got := m.TargetsNear("P1", geom.Vec3{X: 10, Z: 10}, 24); len(got) != 1 || got[0].ID != "B1" {
		t.Fatalf("targets = %v, want B1", got)
	}
}

func TestMirror_CoordinatorSnapsToMirroredBuilding(t *testing.T) {
	m := New()
	if err := m.Apply(welcomeRaw(t)); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	raw := stateRaw(t, protocol.StateMsg{
		Tick: 1,
		Buildings: []protocol.BuildingObs{
			{ID: "B1", Owner: "P1", Position: [3]float64{18, 0, 10}, Size: [3]float64{8, 4, 8}},
		},
		Resources: map[string]int{"wood": 200},
	})
	if err := m.Apply(raw); err != nil {
		t.Fatalf("state: %v", err)
	}

	c, err := m.NewCoordinator()
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	c.Begin("house", [3]float64{4, 3, 4}, false)
	var view struct {
		Snapped bool
		X, Z    float64
	}
	for i := 0; i < 20; i++ {
		v := c.Update(geom.Vec3{X: 10, Z: 10}, 0.1)
		view.Snapped, view.X, view.Z = v.Snapped, v.Pos.X, v.Pos.Z
	}
	if !view.Snapped || view.X != 12 || view.Z != 10 {
		t.Fatalf("ghost settled at (%g,%g) snapped=%v, want (12,10) snapped", view.X, view.Z, view.Snapped)
	}
}

func TestMirror_CoordinatorBeforeWelcomeFails(t *testing.T) {
	if _, err := New().NewCoordinator(); err == nil {
		t.Fatalf("coordinator built without world params")
	}
}

func TestMirror_StateReplacesStructures(t *testing.T) {
	m := New()
	if err := m.Apply(welcomeRaw(t)); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	first := stateRaw(t, protocol.StateMsg{
		Tick:  1,
		Sites: []protocol.SiteObs{{ID: "S1", Owner: "P1", Position: [3]float64{5, 0, 5}, Size: [3]float64{4, 3, 4}}},
	})
	if err := m.Apply(first); err != nil {
		t.Fatalf("state 1: %v", err)
	}
	if _, hit := m.Overlaps(obsFootprint([3]float64{5, 0, 5}, 0, [3]float64{4, 3, 4}, "P1"), 0, nil); !hit {
		t.Fatalf("site not mirrored as obstacle")
	}

	// Site cancelled server-side: next snapshot no longer lists it.
	second := stateRaw(t, protocol.StateMsg{Tick: 2})
	if err := m.Apply(second); err != nil {
		t.Fatalf("state 2: %v", err)
	}
	if _, hit := m.Overlaps(obsFootprint([3]float64{5, 0, 5}, 0, [3]float64{4, 3, 4}, "P1"), 0, nil); hit {
		t.Fatalf("stale structure still blocks after snapshot replacement")
	}
}
