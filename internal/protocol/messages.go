package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	PlayerID        string         `json:"player_id"`
	SessionID       string         `json:"session_id"`
	WorldParams     WorldParams    `json:"world_params"`
	CatalogDigest   string         `json:"catalog_digest"`
	Resources       map[string]int `json:"resources,omitempty"`
}

// WorldParams carries everything a client needs to run the prediction
// pipeline with the server's numbers: shared terrain seed plus the placement
// tuning the ghost session obeys.
type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Seed       int64 `json:"seed"`
	BoundaryR  int   `json:"world_boundary_r"`

	TerrainAmplitude float64 `json:"terrain_amplitude"`
	TerrainScale     float64 `json:"terrain_scale"`

	GridCell           float64 `json:"grid_cell"`
	SnapDistance       float64 `json:"snap_distance"`
	UnsnapDistance     float64 `json:"unsnap_distance"`
	SnapRampRate       float64 `json:"snap_ramp_rate"`
	SnapSearchRadius   float64 `json:"snap_search_radius"`
	SnapDistanceWeight float64 `json:"snap_distance_weight"`
	MaxSlopeRatio      float64 `json:"max_slope_ratio"`
	WalkableEpsilon    float64 `json:"walkable_epsilon"`

	ProgressBroadcastTicks int `json:"progress_broadcast_ticks"`
}

// CATALOG (server -> client): the building catalog as one part.
type CatalogMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Digest          string        `json:"digest"` // sha256 hex
	Buildings       []BuildingDef `json:"buildings"`
}

type BuildingDef struct {
	Type      string         `json:"type"`
	Size      [3]float64     `json:"size"` // full extents (w, h, d)
	Cost      map[string]int `json:"cost"`
	WorkUnits float64        `json:"work_units"`
	Chainable bool           `json:"chainable,omitempty"`
}

// STATE (server -> client on join): full world snapshot scoped to what the
// placement pipeline needs.
type StateMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Tick            uint64         `json:"tick"`
	Buildings       []BuildingObs  `json:"buildings"`
	Sites           []SiteObs      `json:"sites"`
	Units           []UnitObs      `json:"units"`
	Resources       map[string]int `json:"resources"`
}

type BuildingObs struct {
	ID       string     `json:"id"`
	Type     string     `json:"building_type"`
	Owner    string     `json:"owner"`
	Position [3]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
	Size     [3]float64 `json:"size"`
}

type SiteObs struct {
	ID        string     `json:"id"`
	Type      string     `json:"building_type"`
	Owner     string     `json:"owner"`
	Position  [3]float64 `json:"position"`
	Rotation  float64    `json:"rotation"`
	Size      [3]float64 `json:"size"`
	Progress  float64    `json:"progress"`
	Threshold float64    `json:"threshold"`
	Builders  []string   `json:"builders,omitempty"`
}

type UnitObs struct {
	ID         string     `json:"id"`
	Owner      string     `json:"owner"`
	Position   [3]float64 `json:"position"`
	CanBuild   bool       `json:"can_build"`
	Selectable bool       `json:"selectable"`
}

// ACT (client -> server): batched commands, applied in receive order at the
// next tick boundary.
type ActMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Tick            uint64         `json:"tick"`
	PlayerID        string         `json:"player_id"`
	Placements      []PlacementReq `json:"placements,omitempty"`
	Assign          []AssignReq    `json:"assign,omitempty"`
	CancelSites     []string       `json:"cancel_sites,omitempty"`
}

// PlacementReq is the wire form of a confirmed ghost. Rotation is radians,
// one of the 8 quantized values.
type PlacementReq struct {
	ID               string     `json:"id"`
	BuildingType     string     `json:"building_type"`
	Position         [3]float64 `json:"position"`
	Rotation         float64    `json:"rotation"`
	FootprintSize    [3]float64 `json:"footprint_size"`
	AssignedBuilders []string   `json:"assigned_builders,omitempty"`
	Queue            bool       `json:"queue"`
}

// AssignReq adds or removes builders on an existing construction site.
type AssignReq struct {
	ID     string   `json:"id"`
	SiteID string   `json:"site_id"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
	Queue  bool     `json:"queue"`
}

// EVENT (server -> client)
type EventMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Events          []Event `json:"events"`
}

type Event map[string]interface{}

// Event kinds carried in the "type" key of an Event.
const (
	EventActionResult         = "ACTION_RESULT"
	EventBuildingPlaced       = "BUILDING_PLACED"
	EventConstructionProgress = "CONSTRUCTION_PROGRESS"
	EventSiteCompleted        = "SITE_COMPLETED"
	EventSiteCancelled        = "SITE_CANCELLED"
)
