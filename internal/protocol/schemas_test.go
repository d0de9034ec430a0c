package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	actSchema := compile("act.schema.json")
	eventSchema := compile("event.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"cmdr"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "player_id":"P1",
	  "session_id":"8b7e8d0e-45a1-4c6b-9d3a-000000000001",
	  "catalog_digest":"deadbeef",
	  "resources":{"wood":200,"stone":100},
	  "world_params":{
	    "tick_rate_hz":10,
	    "seed":1337,
	    "world_boundary_r":256,
	    "terrain_amplitude":6,
	    "terrain_scale":96,
	    "grid_cell":1,
	    "snap_distance":3,
	    "unsnap_distance":4.5,
	    "snap_ramp_rate":8,
	    "snap_search_radius":24,
	    "snap_distance_weight":10,
	    "max_slope_ratio":0.3,
	    "walkable_epsilon":2,
	    "progress_broadcast_ticks":5
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "tick":12,
	  "player_id":"P1",
	  "placements":[{
	    "id":"PL1",
	    "building_type":"house",
	    "position":[12,0.4,10],
	    "rotation":1.5707963267948966,
	    "footprint_size":[4,3,4],
	    "assigned_builders":["U1","U2"],
	    "queue":false
	  }],
	  "assign":[{"id":"AS1","site_id":"S1","add":["U3"],"queue":true}],
	  "cancel_sites":["S2"]
	}`), &act)
	validate(actSchema, act)

	var event any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENT",
	  "protocol_version":"1.0",
	  "tick":13,
	  "events":[
	    {"t":13,"type":"ACTION_RESULT","ref":"PL1","ok":true},
	    {"t":13,"type":"BUILDING_PLACED","site_id":"S3","building_type":"house","position":[12,0.4,10],"rotation":0},
	    {"t":13,"type":"CONSTRUCTION_PROGRESS","site_id":"S3","fraction":0.25}
	  ]
	}`), &event)
	validate(eventSchema, event)
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "act.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var missingSize any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "tick":0,
	  "player_id":"P1",
	  "placements":[{"id":"PL1","building_type":"house","position":[0,0,0],"rotation":0,"queue":false}]
	}`), &missingSize)
	if err := s.Validate(missingSize); err == nil {
		t.Fatalf("placement without footprint_size accepted")
	}

	var shortVec any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "tick":0,
	  "player_id":"P1",
	  "placements":[{"id":"PL1","building_type":"house","position":[0,0],"rotation":0,"footprint_size":[4,3,4],"queue":false}]
	}`), &shortVec)
	if err := s.Validate(shortVec); err == nil {
		t.Fatalf("two-component position accepted")
	}
}
