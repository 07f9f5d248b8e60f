package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the scenario configuration loaded from tuning.yaml.
// Zero values fall back to defaults when the sim config is built.
type Tuning struct {
	GridW int `yaml:"grid_w"`
	GridH int `yaml:"grid_h"`

	Agents  int `yaml:"agents"`
	Targets int `yaml:"targets"`

	// ByzantineIndex designates the lying agent; -1 disables it.
	ByzantineIndex  *int   `yaml:"byzantine_index"`
	ByzantineOffset []int  `yaml:"byzantine_offset"`
	CommRange       int    `yaml:"comm_range"`
	SensorRange     int    `yaml:"sensor_range"`
	Epsilon         int    `yaml:"epsilon"`
	StepBudget      int    `yaml:"step_budget"`
	TickRateHz      int    `yaml:"tick_rate_hz"`
	Seed            int64  `yaml:"seed"`
	TargetMotion    string `yaml:"target_motion"` // STATIC or RANDOM_WALK
	TargetMoveEvery int    `yaml:"target_move_every_ticks"`
	TrailLen        int    `yaml:"trail_len"`
	SnapshotEvery   int    `yaml:"snapshot_every_ticks"`

	// Optional fixed layouts; row format [x, y]. When omitted, starts
	// are derived from the seed.
	AgentStarts  [][]int `yaml:"agent_starts"`
	TargetStarts [][]int `yaml:"target_starts"`
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
	return t, nil
}

// Defaults is the canonical demo scenario: 20x20 grid, 5 agents with
// agent 0 Byzantine, 3 targets, 100-tick budget.
func Defaults() Tuning {
	byz := 0
	return Tuning{
		GridW:           20,
		GridH:           20,
		Agents:          5,
		Targets:         3,
		ByzantineIndex:  &byz,
		ByzantineOffset: []int{3, 3},
		CommRange:       5,
		SensorRange:     2,
		Epsilon:         2,
		StepBudget:      100,
		TickRateHz:      10,
		Seed:            1337,
		TargetMotion:    "RANDOM_WALK",
		TargetMoveEvery: 5,
		TrailLen:        20,
		SnapshotEvery:   1,
	}
}
