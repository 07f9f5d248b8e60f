package observerproto_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"swarmsearch.ai/internal/observerproto"
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

	subscribeSchema := compile("subscribe.schema.json")
	bootstrapSchema := compile("bootstrap.schema.json")
	snapshotSchema := compile("snapshot.schema.json")

	var subscribe any
	_ = json.Unmarshal([]byte(`{
	  "type":"SUBSCRIBE",
	  "protocol_version":"1.0",
	  "snapshot_every":2
	}`), &subscribe)
	validate(subscribeSchema, subscribe)

	var bootstrap any
	_ = json.Unmarshal([]byte(`{
	  "protocol_version":"1.0",
	  "tick":12,
	  "scenario":{
	    "grid_w":20,
	    "grid_h":20,
	    "agents":5,
	    "targets":3,
	    "byzantine_index":0,
	    "comm_range":5,
	    "sensor_range":2,
	    "epsilon":2,
	    "step_budget":100,
	    "tick_rate_hz":10,
	    "seed":1337
	  }
	}`), &bootstrap)
	validate(bootstrapSchema, bootstrap)

	var snapshot any
	_ = json.Unmarshal([]byte(`{
	  "type":"SNAPSHOT",
	  "protocol_version":"1.0",
	  "tick":42,
	  "agents":[{
	    "id":0,
	    "pos":[3,4],
	    "byzantine":true,
	    "traveled":42,
	    "beliefs":[{"target":0,"pos":[2,2],"confidence":2,"source":"CONSENSUS","updated_tick":40}],
	    "trail":[[2,4],[3,4]]
	  }],
	  "targets":[{"id":0,"pos":[2,2]}],
	  "ratio":1.8,
	  "located":1
	}`), &snapshot)
	validate(snapshotSchema, snapshot)
}

func TestSchemas_MarshaledMessagesValidate(t *testing.T) {
	snapshotSchema, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "snapshot.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ratio := 2.5
	msg := observerproto.SnapshotMsg{
		Type:            observerproto.TypeSnapshot,
		ProtocolVersion: observerproto.Version,
		Tick:            7,
		Agents: []observerproto.AgentState{{
			ID:        1,
			Pos:       [2]int{5, 6},
			Byzantine: false,
			Traveled:  7,
			Beliefs: []observerproto.BeliefState{{
				Target: 2, Pos: [2]int{10, 15}, Confidence: 3, Source: "OBSERVED", UpdatedTick: 6,
			}},
			Trail: [][2]int{{4, 6}, {5, 6}},
		}},
		Targets: []observerproto.TargetState{{ID: 2, Pos: [2]int{10, 15}}},
		Ratio:   &ratio,
		Located: 1,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := snapshotSchema.Validate(v); err != nil {
		t.Fatalf("produced message violates its schema: %v", err)
	}
}

func TestDecodeBase_RoutesByType(t *testing.T) {
	m, err := observerproto.DecodeBase([]byte(`{"type":"SUBSCRIBE","protocol_version":"1.0"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != observerproto.TypeSubscribe || m.ProtocolVersion != observerproto.Version {
		t.Fatalf("decoded: %+v", m)
	}
}
