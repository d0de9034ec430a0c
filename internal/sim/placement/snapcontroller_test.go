package placement

import (
	"math"
	"testing"

	"rampart.gg/internal/sim/geom"
)

func snapCfg() Config {
	return Config{
		GridCell:           1,
		SnapDistance:       3,
		UnsnapDistance:     4.5,
		SnapRampRate:       8,
		SnapSearchRadius:   24,
		SnapDistanceWeight: 10,
	}
}

func wallTargets() []Target {
	return []Target{
		{ID: "B1", Fp: geom.Footprint{Center: geom.Vec3{X: 18, Z: 10}, Half: geom.Vec3{X: 4, Y: 2, Z: 4}}},
	}
}

func TestSnapController_EngagesWithinSnapDistance(t *testing.T) {
	c := NewSnapController(snapCfg())
	ghost := ghost4x4At(10, 10)
	cursor := geom.Vec3{X: 10, Z: 10} // west edge point (12,10) is 2 away

	c.Update(cursor, cursor, ghost, wallTargets(), 0.016)
	if c.State() != StateSnapped {
		t.Fatalf("state = %s, want SNAPPED", c.State())
	}
	if a := c.Active(); a == nil || a.Type != EdgeW || a.TargetID != "B1" {
		t.Fatalf("active = %+v, want B1 EDGE_W", c.Active())
	}
}

func TestSnapController_HysteresisHoldsInsideBand(t *testing.T) {
	cfg := snapCfg()
	c := NewSnapController(cfg)
	ghost := ghost4x4At(10, 10)
	targets := wallTargets()

	c.Update(geom.Vec3{X: 10, Z: 10}, geom.Vec3{X: 10, Z: 10}, ghost, targets, 0.016)
	if c.State() != StateSnapped {
		t.Fatalf("setup: expected SNAPPED")
	}

	// Sweep the whole band (SNAP_DISTANCE, UNSNAP_DISTANCE]; every position
	// must hold the snap.
	for d := cfg.SnapDistance + 0.1; d <= cfg.UnsnapDistance+1e-9; d += 0.1 {
		cursor := geom.Vec3{X: 12 - d, Z: 10}
		c.Update(cursor, cursor, ghost, targets, 0.016)
		if c.State() != StateSnapped {
			t.Fatalf("released inside hysteresis band at d=%g", d)
		}
	}

	// One step past the band releases.
	cursor := geom.Vec3{X: 12 - cfg.UnsnapDistance - 0.1, Z: 10}
	c.Update(cursor, cursor, ghost, targets, 0.016)
	if c.State() != StateFree {
		t.Fatalf("still snapped at d=%g", cfg.UnsnapDistance+0.1)
	}
}

func TestSnapController_WeightConvergesToSnapPosition(t *testing.T) {
	cfg := snapCfg()
	cfg.SnapRampRate = 1 // slow ramp to observe the lerp
	c := NewSnapController(cfg)
	ghost := ghost4x4At(10, 10)
	targets := wallTargets()
	cursor := geom.Vec3{X: 10, Z: 10}

	pos := c.Update(cursor, cursor, ghost, targets, 0.25)
	if c.Weight() != 0.25 {
		t.Fatalf("weight = %g after one step, want 0.25", c.Weight())
	}
	want := geom.Lerp(cursor, geom.Vec3{X: 12, Z: 10}, 0.25)
	if math.Abs(pos.X-want.X) > 1e-9 || math.Abs(pos.Z-want.Z) > 1e-9 {
		t.Fatalf("pos = %v, want %v", pos, want)
	}

	for i := 0; i < 10; i++ {
		pos = c.Update(cursor, cursor, ghost, targets, 0.25)
	}
	if c.Weight() != 1 {
		t.Fatalf("weight = %g, want 1", c.Weight())
	}
	if pos.X != 12 || pos.Z != 10 {
		t.Fatalf("settled pos = %v, want (12,_,10)", pos)
	}
}

func TestSnapController_FreeReturnsFallback(t *testing.T) {
	c := NewSnapController(snapCfg())
	ghost := ghost4x4At(100, 100)
	cursor := geom.Vec3{X: 100, Z: 100}
	fallback := geom.Vec3{X: 101, Z: 99}
	got := c.Update(cursor, fallback, ghost, wallTargets(), 0.016)
	if c.State() != StateFree {
		t.Fatalf("snapped to a target 90+ units away")
	}
	if got != fallback {
		t.Fatalf("free position = %v, want fallback %v", got, fallback)
	}
}

func TestSnapController_ResetReturnsToFree(t *testing.T) {
	c := NewSnapController(snapCfg())
	ghost := ghost4x4At(10, 10)
	cursor := geom.Vec3{X: 10, Z: 10}
	c.Update(cursor, cursor, ghost, wallTargets(), 0.016)
	if c.State() != StateSnapped {
		t.Fatalf("setup: expected SNAPPED")
	}
	c.Reset()
	if c.State() != StateFree || c.Active() != nil || c.Weight() != 0 {
		t.Fatalf("reset left residue: state=%s active=%v weight=%g", c.State(), c.Active(), c.Weight())
	}
}
