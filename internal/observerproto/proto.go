// Package observerproto defines the read-only wire messages streamed to
// display/metrics consumers. Observers never influence the simulation;
// they may connect, skip, or repeat at their own cadence.
package observerproto

import "encoding/json"

const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeSnapshot  = "SNAPSHOT"
)

// SUBSCRIBE (observer -> server)
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SnapshotEvery   int    `json:"snapshot_every,omitempty"`
}

// BootstrapResponse describes the running scenario.
type BootstrapResponse struct {
	ProtocolVersion string         `json:"protocol_version"`
	Tick            uint64         `json:"tick"`
	Scenario        ScenarioParams `json:"scenario"`
}

type ScenarioParams struct {
	GridW          int   `json:"grid_w"`
	GridH          int   `json:"grid_h"`
	Agents         int   `json:"agents"`
	Targets        int   `json:"targets"`
	ByzantineIndex int   `json:"byzantine_index"`
	CommRange      int   `json:"comm_range"`
	SensorRange    int   `json:"sensor_range"`
	Epsilon        int   `json:"epsilon"`
	StepBudget     int   `json:"step_budget"`
	TickRateHz     int   `json:"tick_rate_hz"`
	Seed           int64 `json:"seed"`
}

// SNAPSHOT (server -> observer): one frozen per-tick view.
type SnapshotMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Agents          []AgentState  `json:"agents"`
	Targets         []TargetState `json:"targets"`
	Ratio           *float64      `json:"ratio,omitempty"`
	Located         int           `json:"located"`
}

type AgentState struct {
	ID        int           `json:"id"`
	Pos       [2]int        `json:"pos"`
	Byzantine bool          `json:"byzantine"`
	Traveled  int           `json:"traveled"`
	Beliefs   []BeliefState `json:"beliefs"`
	Trail     [][2]int      `json:"trail,omitempty"`
}

type BeliefState struct {
	Target      int    `json:"target"`
	Pos         [2]int `json:"pos"`
	Confidence  int    `json:"confidence"`
	Source      string `json:"source"`
	UpdatedTick uint64 `json:"updated_tick"`
}

type TargetState struct {
	ID  int    `json:"id"`
	Pos [2]int `json:"pos"`
}

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
