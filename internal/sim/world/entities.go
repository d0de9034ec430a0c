package world

import (
	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
)

type Player struct {
	ID   string
	Name string

	events []protocol.Event
}

// AddEvent queues an event for delivery at the end of the current tick.
func (p *Player) AddEvent(ev protocol.Event) {
	p.events = append(p.events, ev)
}

// Unit is a worker. SiteID is the construction site it currently serves;
// Queue holds sites it will serve next, in order.
type Unit struct {
	ID    string
	Owner string
	Pos   geom.Vec3

	CanBuild   bool
	Selectable bool

	SiteID string
	Queue  []string
}

// Building is a completed, immovable structure. Its footprint stays in the
// spatial index and on the nav grid for the rest of the match.
type Building struct {
	ID    string
	Owner string
	Type  string
	Fp    geom.Footprint
}
