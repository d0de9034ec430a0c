// Package tuning holds the numeric knobs shared by the authoritative world
// and predicting clients. The server loads tuning.yaml once at boot and
// advertises the placement-relevant values in WELCOME so both sides run the
// ghost pipeline with identical numbers.
package tuning

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`
	BoundaryR  int   `yaml:"world_boundary_r"`

	TerrainAmplitude float64 `yaml:"terrain_amplitude"`
	TerrainScale     float64 `yaml:"terrain_scale"`

	Placement Placement `yaml:"placement"`

	BaseBuildRate          float64 `yaml:"base_build_rate"`
	WorkRange              float64 `yaml:"work_range"`
	UnitSpeed              float64 `yaml:"unit_speed"`
	StarterBuilders        int     `yaml:"starter_builders"`
	ProgressBroadcastTicks int     `yaml:"progress_broadcast_ticks"`

	StartingResources map[string]int `yaml:"starting_resources"`

	Buildings map[string]Building `yaml:"buildings"`
}

// Placement tunes the client-side ghost pipeline. SnapDistance engages the
// snap state machine; UnsnapDistance releases it, and the gap between the two
// is the hysteresis band.
type Placement struct {
	GridCell           float64 `yaml:"grid_cell"`
	SnapDistance       float64 `yaml:"snap_distance"`
	UnsnapDistance     float64 `yaml:"unsnap_distance"`
	SnapRampRate       float64 `yaml:"snap_ramp_rate"`
	SnapSearchRadius   float64 `yaml:"snap_search_radius"`
	SnapDistanceWeight float64 `yaml:"snap_distance_weight"`
	MaxSlopeRatio      float64 `yaml:"max_slope_ratio"`
	WalkableEpsilon    float64 `yaml:"walkable_epsilon"`
}

type Building struct {
	// Size is the full footprint extent (width, height, depth).
	Size [3]float64 `yaml:"size"`
	// Cost is debited atomically at commit time.
	Cost map[string]int `yaml:"cost"`
	// WorkUnits is the completion threshold of the construction site.
	WorkUnits float64 `yaml:"work_units"`
	// Chainable buildings support linear (wall-style) placement sessions.
	Chainable bool `yaml:"chainable"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Default returns the built-in tuning used when no tuning.yaml is supplied.
func Default() Tuning {
	var t Tuning
	t.ApplyDefaults()
	return t
}

func (t *Tuning) ApplyDefaults() {
	if t.TickRateHz <= 0 {
		t.TickRateHz = 10
	}
	if t.Seed == 0 {
		t.Seed = 1337
	}
	if t.BoundaryR <= 0 {
		t.BoundaryR = 256
	}
	if t.TerrainAmplitude <= 0 {
		t.TerrainAmplitude = 6
	}
	if t.TerrainScale <= 0 {
		t.TerrainScale = 96
	}
	p := &t.Placement
	if p.GridCell <= 0 {
		p.GridCell = 1
	}
	if p.SnapDistance <= 0 {
		p.SnapDistance = 3
	}
	if p.UnsnapDistance <= p.SnapDistance {
		p.UnsnapDistance = p.SnapDistance * 1.5
	}
	if p.SnapRampRate <= 0 {
		p.SnapRampRate = 8
	}
	if p.SnapSearchRadius <= 0 {
		p.SnapSearchRadius = 24
	}
	if p.SnapDistanceWeight <= 0 {
		p.SnapDistanceWeight = 10
	}
	if p.MaxSlopeRatio <= 0 {
		p.MaxSlopeRatio = 0.3
	}
	if p.WalkableEpsilon <= 0 {
		p.WalkableEpsilon = 2
	}
	if t.BaseBuildRate <= 0 {
		t.BaseBuildRate = 1
	}
	if t.WorkRange <= 0 {
		t.WorkRange = 3
	}
	if t.UnitSpeed <= 0 {
		t.UnitSpeed = 2
	}
	if t.StarterBuilders <= 0 {
		t.StarterBuilders = 3
	}
	if t.ProgressBroadcastTicks <= 0 {
		t.ProgressBroadcastTicks = 5
	}
	if t.StartingResources == nil {
		t.StartingResources = map[string]int{"wood": 200, "stone": 100}
	}
	if t.Buildings == nil {
		t.Buildings = map[string]Building{
			"house": {
				Size:      [3]float64{4, 3, 4},
				Cost:      map[string]int{"wood": 50},
				WorkUnits: 30,
			},
			"depot": {
				Size:      [3]float64{8, 4, 8},
				Cost:      map[string]int{"wood": 80, "stone": 40},
				WorkUnits: 60,
			},
			"wall": {
				Size:      [3]float64{2, 2, 1},
				Cost:      map[string]int{"stone": 5},
				WorkUnits: 6,
				Chainable: true,
			},
		}
	}
}

func (t *Tuning) validate() error {
	if t.Placement.UnsnapDistance <= t.Placement.SnapDistance {
		return fmt.Errorf("tuning: unsnap_distance %g must exceed snap_distance %g",
			t.Placement.UnsnapDistance, t.Placement.SnapDistance)
	}
	for name, b := range t.Buildings {
		if b.Size[0] <= 0 || b.Size[2] <= 0 {
			return fmt.Errorf("tuning: building %q has degenerate size %v", name, b.Size)
		}
		if b.WorkUnits <= 0 {
			return fmt.Errorf("tuning: building %q has non-positive work_units", name)
		}
	}
	return nil
}

// BuildingTypes lists catalog keys in stable order for wire payloads.
func (t *Tuning) BuildingTypes() []string {
	out := make([]string, 0, len(t.Buildings))
	for k := range t.Buildings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
