package world

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"sort"
	"sync/atomic"

	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/nav"
	"rampart.gg/internal/sim/placement"
	"rampart.gg/internal/sim/terrain"
	"rampart.gg/internal/sim/tuning"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Catalog protocol.CatalogMsg
	State   protocol.StateMsg
}

type ActionEnvelope struct {
	PlayerID string
	Act      protocol.ActMsg
}

// AuditLogger records server-side rejections and ownership violations.
// Implemented in internal/auditlog.
type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Ref    string `json:"ref,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type clientState struct {
	Out chan []byte
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg     tuning.Tuning
	catalog protocol.CatalogMsg

	tick atomic.Uint64

	terrain *terrain.Heightfield
	navgrid *nav.Grid
	index   *SpatialIndex
	valid   *placement.Validator

	players   map[string]*Player
	units     map[string]*Unit
	buildings map[string]*Building
	sites     map[string]*Site
	ledger    *Ledger
	clients   map[string]*clientState

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextPlayerNum   atomic.Uint64
	nextUnitNum     atomic.Uint64
	nextSiteNum     atomic.Uint64
	nextBuildingNum atomic.Uint64

	auditLogger AuditLogger
	logger      *log.Logger
}

func New(cfg tuning.Tuning) *World {
	ter := terrain.NewHeightfield(cfg.Seed, cfg.TerrainAmplitude, cfg.TerrainScale)
	grid := nav.NewGrid(ter, cfg.Placement.GridCell, cfg.BoundaryR, cfg.Placement.MaxSlopeRatio)
	index := NewSpatialIndex(8)

	w := &World{
		cfg:     cfg,
		catalog: buildCatalog(cfg),
		terrain: ter,
		navgrid: grid,
		index:   index,
		valid: &placement.Validator{
			Terrain:         ter,
			Obstacles:       index,
			Nav:             grid,
			MaxSlopeRatio:   cfg.Placement.MaxSlopeRatio,
			WalkableEpsilon: cfg.Placement.WalkableEpsilon,
		},
		players:   map[string]*Player{},
		units:     map[string]*Unit{},
		buildings: map[string]*Building{},
		sites:     map[string]*Site{},
		ledger:    NewLedger(),
		clients:   map[string]*clientState{},
		inbox:     make(chan ActionEnvelope, 1024),
		join:      make(chan JoinRequest, 64),
		leave:     make(chan string, 64),
		stop:      make(chan struct{}),
		logger:    log.Default(),
	}
	return w
}

func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }
func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) TickRateHz() int { return w.cfg.TickRateHz }

// Catalog returns the wire catalog built at construction time.
func (w *World) Catalog() protocol.CatalogMsg { return w.catalog }

func buildCatalog(cfg tuning.Tuning) protocol.CatalogMsg {
	defs := make([]protocol.BuildingDef, 0, len(cfg.Buildings))
	for _, name := range cfg.BuildingTypes() {
		b := cfg.Buildings[name]
		defs = append(defs, protocol.BuildingDef{
			Type:      name,
			Size:      b.Size,
			Cost:      b.Cost,
			WorkUnits: b.WorkUnits,
			Chainable: b.Chainable,
		})
	}
	raw, _ := json.Marshal(defs)
	sum := sha256.Sum256(raw)
	return protocol.CatalogMsg{
		Type:            protocol.TypeCatalog,
		ProtocolVersion: protocol.Version,
		Digest:          hex.EncodeToString(sum[:]),
		Buildings:       defs,
	}
}

func (w *World) worldParams() protocol.WorldParams {
	p := w.cfg.Placement
	return protocol.WorldParams{
		TickRateHz:             w.cfg.TickRateHz,
		Seed:                   w.cfg.Seed,
		BoundaryR:              w.cfg.BoundaryR,
		TerrainAmplitude:       w.cfg.TerrainAmplitude,
		TerrainScale:           w.cfg.TerrainScale,
		GridCell:               p.GridCell,
		SnapDistance:           p.SnapDistance,
		UnsnapDistance:         p.UnsnapDistance,
		SnapRampRate:           p.SnapRampRate,
		SnapSearchRadius:       p.SnapSearchRadius,
		SnapDistanceWeight:     p.SnapDistanceWeight,
		MaxSlopeRatio:          p.MaxSlopeRatio,
		WalkableEpsilon:        p.WalkableEpsilon,
		ProgressBroadcastTicks: w.cfg.ProgressBroadcastTicks,
	}
}

func (w *World) audit(tick uint64, actor, action, ref, detail string) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:   tick,
		Actor:  actor,
		Action: action,
		Ref:    ref,
		Detail: detail,
	})
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
