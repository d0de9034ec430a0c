package world

import (
	"testing"

	"rampart.gg/internal/sim/geom"
)

func fpAt(x, z, hx, hz float64, owner string) geom.Footprint {
	return geom.Footprint{
		Center: geom.Vec3{X: x, Z: z},
		Half:   geom.Vec3{X: hx, Y: 1, Z: hz},
		Owner:  owner,
	}
}

func TestSpatialIndex_OverlapsAndExclude(t *testing.T) {
	idx := NewSpatialIndex(8)
	idx.Insert("B1", fpAt(10, 10, 2, 2, "P1"))

	probe := fpAt(11, 10, 2, 2, "P1")
	if id, hit := idx.Overlaps(probe, 0, nil); !hit || id != "B1" {
		t.Fatalf("overlap missed: id=%q hit=%v", id, hit)
	}
	if _, hit := idx.Overlaps(probe, 0, map[string]struct{}{"B1": {}}); hit {
		t.Fatalf("excluded id still reported")
	}
	if _, hit := idx.Overlaps(fpAt(30, 30, 2, 2, "P1"), 0, nil); hit {
		t.Fatalf("distant probe reported overlap")
	}
}

func TestSpatialIndex_RemoveClears(t *testing.T) {
	idx := NewSpatialIndex(8)
	idx.Insert("S1", fpAt(0, 0, 4, 4, "P1"))
	idx.Remove("S1")
	if idx.Len() != 0 {
		t.Fatalf("index not empty after remove")
	}
	if _, hit := idx.Overlaps(fpAt(0, 0, 4, 4, "P1"), 0, nil); hit {
		t.Fatalf("removed footprint still blocks")
	}
}

func TestSpatialIndex_TargetsNearFiltersOwnerAndRadius(t *testing.T) {
	idx := NewSpatialIndex(8)
	idx.Insert("B1", fpAt(5, 0, 2, 2, "P1"))
	idx.Insert("B2", fpAt(8, 0, 2, 2, "P2"))
	idx.Insert("B3", fpAt(100, 0, 2, 2, "P1"))

	got := idx.TargetsNear("P1", geom.Vec3{}, 24)
	if len(got) != 1 || got[0].ID != "B1" {
		t.Fatalf("targets = %v, want only B1", got)
	}
}

func TestSpatialIndex_QueryOrderIsInsertionOrder(t *testing.T) {
	idx := NewSpatialIndex(8)
	idx.Insert("C", fpAt(0, 0, 1, 1, "P1"))
	idx.Insert("A", fpAt(2, 0, 1, 1, "P1"))
	idx.Insert("B", fpAt(4, 0, 1, 1, "P1"))

	got := idx.TargetsNear("P1", geom.Vec3{}, 24)
	if len(got) != 3 || got[0].ID != "C" || got[1].ID != "A" || got[2].ID != "B" {
		t.Fatalf("order = %v, want C A B", got)
	}

	// Re-inserting moves an entry to the back.
	idx.Insert("C", fpAt(0, 0, 1, 1, "P1"))
	got = idx.TargetsNear("P1", geom.Vec3{}, 24)
	if got[len(got)-1].ID != "C" {
		t.Fatalf("re-insert did not refresh order: %v", got)
	}
}
