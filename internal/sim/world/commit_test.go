package world

import (
	"testing"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/tuning"
)

func TestPlacement_CommitCreatesSiteAndDebits(t *testing.T) {
	w := newTestWorld(t, nil)
	pid, out := joinTestPlayer(t, w, "alice")

	events := stepAndCollect(w, out, actFor(pid, housePlacement("PL1", 10, 10)))

	res, ok := findEvent(events, protocol.EventActionResult)
	if !ok || res["ok"] != true {
		t.Fatalf("no ok ACTION_RESULT: %v", events)
	}
	siteID, _ := res["site_id"].(string)
	if siteID == "" {
		t.Fatalf("result carries no site_id: %v", res)
	}
	if _, ok := findEvent(events, protocol.EventBuildingPlaced); !ok {
		t.Fatalf("no BUILDING_PLACED broadcast")
	}
	site := w.sites[siteID]
	if site == nil || site.Type != "house" || site.Owner != pid {
		t.Fatalf("site not created: %+v", site)
	}
	if got := w.ledger.Balance(pid)["wood"]; got != 150 {
		t.Fatalf("wood = %d after spending 50 of 200", got)
	}
	if _, ok := w.index.Get(siteID); !ok {
		t.Fatalf("site footprint not indexed")
	}
}

func TestPlacement_RejectedWhenUnaffordable(t *testing.T) {
	w := newTestWorld(t, func(cfg *tuning.Tuning) {
		cfg.StartingResources = map[string]int{"wood": 40, "stone": 100}
	})
	pid, out := joinTestPlayer(t, w, "alice")

	events := stepAndCollect(w, out, actFor(pid, housePlacement("PL1", 10, 10)))

	res, ok := findEvent(events, protocol.EventActionResult)
	if !ok || res["ok"] != false || res["code"] != protocol.ErrNoResource {
		t.Fatalf("want E_NO_RESOURCE rejection, got %v", events)
	}
	if len(w.sites) != 0 {
		t.Fatalf("rejected placement created a site")
	}
	if got := w.ledger.Balance(pid)["wood"]; got != 40 {
		t.Fatalf("rejected placement touched the balance: wood = %d", got)
	}
}

func TestPlacement_AtomicAcrossBatch(t *testing.T) {
	w := newTestWorld(t, func(cfg *tuning.Tuning) {
		cfg.StartingResources = map[string]int{"wood": 80}
	})
	pid, out := joinTestPlayer(t, w, "alice")

	// Funds cover one house, not two. The second request in the same batch
	// must fail cleanly.
	events := stepAndCollect(w, out, actFor(pid,
		housePlacement("PL1", 10, 10),
		housePlacement("PL2", 40, 40),
	))

	oks, fails := 0, 0
	for _, ev := range events {
		if ev["type"] != protocol.EventActionResult {
			continue
		}
		if ev["ok"] == true {
			oks++
		} else {
			fails++
			if ev["code"] != protocol.ErrNoResource {
				t.Fatalf("second failure code = %v", ev["code"])
			}
		}
	}
	if oks != 1 || fails != 1 {
		t.Fatalf("got %d ok / %d failed results, want 1/1", oks, fails)
	}
	if len(w.sites) != 1 {
		t.Fatalf("%d sites after partial-funds batch", len(w.sites))
	}
	if got := w.ledger.Balance(pid)["wood"]; got != 30 {
		t.Fatalf("wood = %d, want 30", got)
	}
}

func TestPlacement_StaleWhenObstructed(t *testing.T) {
	w := newTestWorld(t, nil)
	pid, out := joinTestPlayer(t, w, "alice")

	stepAndCollect(w, out, actFor(pid, housePlacement("PL1", 10, 10)))

	// Second house overlapping the first: the client's view was stale.
	events := stepAndCollect(w, out, actFor(pid, housePlacement("PL2", 11, 10)))
	res, ok := findEvent(events, protocol.EventActionResult)
	if !ok || res["ok"] != false || res["code"] != protocol.ErrStale {
		t.Fatalf("want E_STALE, got %v", events)
	}
	if len(w.sites) != 1 {
		t.Fatalf("overlapping placement created a site")
	}
	if got := w.ledger.Balance(pid)["wood"]; got != 150 {
		t.Fatalf("stale placement debited resources: wood = %d", got)
	}
}

func TestPlacement_FlushAgainstExistingSiteAllowed(t *testing.T) {
	w := newTestWorld(t, nil)
	pid, out := joinTestPlayer(t, w, "alice")

	stepAndCollect(w, out, actFor(pid, housePlacement("PL1", 10, 10)))
	// Snap result: edge-flush placement 4 units east shares a boundary but
	// no volume.
	events := stepAndCollect(w, out, actFor(pid, housePlacement("PL2", 14, 10)))
	res, ok := findEvent(events, protocol.EventActionResult)
	if !ok || res["ok"] != true {
		t.Fatalf("flush placement rejected: %v", events)
	}
	if len(w.sites) != 2 {
		t.Fatalf("%d sites, want 2", len(w.sites))
	}
}

func TestPlacement_ForeignBuilderSkippedButPlacementStands(t *testing.T) {
	w := newTestWorld(t, nil)
	audit := &capturedAudit{}
	w.SetAuditLogger(audit)
	p1, out1 := joinTestPlayer(t, w, "alice")
	p2, _ := joinTestPlayer(t, w, "bob")

	var own, foreign string
	for _, id := range sortedKeys(w.units) {
		u := w.units[id]
		if u.Owner == p1 && own == "" {
			own = id
		}
		if u.Owner == p2 && foreign == "" {
			foreign = id
		}
	}

	events := stepAndCollect(w, out1, actFor(p1, housePlacement("PL1", 10, 10, foreign, own)))
	res, ok := findEvent(events, protocol.EventActionResult)
	if !ok || res["ok"] != true {
		t.Fatalf("placement with a foreign builder failed outright: %v", events)
	}
	siteID := res["site_id"].(string)

	if got := w.assignedBuilders(siteID); len(got) != 1 || got[0] != own {
		t.Fatalf("assigned = %v, want only %s", got, own)
	}
	if w.units[foreign].SiteID != "" {
		t.Fatalf("foreign unit was commandeered")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "ASSIGN_REJECTED" {
		t.Fatalf("ownership violation not audited: %+v", audit.entries)
	}
}

func TestPlacement_UnknownTypeRejected(t *testing.T) {
	w := newTestWorld(t, nil)
	pid, out := joinTestPlayer(t, w, "alice")

	req := housePlacement("PL1", 10, 10)
	req.BuildingType = "ziggurat"
	events := stepAndCollect(w, out, actFor(pid, req))
	res, ok := findEvent(events, protocol.EventActionResult)
	if !ok || res["ok"] != false || res["code"] != protocol.ErrBadRequest {
		t.Fatalf("want E_BAD_REQUEST, got %v", events)
	}
}
