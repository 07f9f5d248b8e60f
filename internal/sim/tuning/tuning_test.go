package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	data := []byte(`
grid_w: 30
grid_h: 25
agents: 7
targets: 4
byzantine_index: -1
byzantine_offset: [2, -2]
comm_range: 6
sensor_range: 3
epsilon: 1
step_budget: 200
seed: 99
target_motion: STATIC
agent_starts:
  - [1, 2]
  - [3, 4]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.GridW != 30 || tune.GridH != 25 {
		t.Fatalf("grid: %dx%d", tune.GridW, tune.GridH)
	}
	if tune.Agents != 7 || tune.Targets != 4 {
		t.Fatalf("counts: agents=%d targets=%d", tune.Agents, tune.Targets)
	}
	if tune.ByzantineIndex == nil || *tune.ByzantineIndex != -1 {
		t.Fatalf("byzantine index: %v", tune.ByzantineIndex)
	}
	if len(tune.ByzantineOffset) != 2 || tune.ByzantineOffset[1] != -2 {
		t.Fatalf("byzantine offset: %v", tune.ByzantineOffset)
	}
	if tune.TargetMotion != "STATIC" {
		t.Fatalf("motion: %q", tune.TargetMotion)
	}
	if len(tune.AgentStarts) != 2 || tune.AgentStarts[1][0] != 3 {
		t.Fatalf("agent starts: %v", tune.AgentStarts)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

func TestDefaults_DemoScenario(t *testing.T) {
	d := Defaults()
	if d.GridW != 20 || d.GridH != 20 {
		t.Fatalf("grid: %dx%d", d.GridW, d.GridH)
	}
	if d.Agents != 5 || d.Targets != 3 {
		t.Fatalf("counts: agents=%d targets=%d", d.Agents, d.Targets)
	}
	if d.ByzantineIndex == nil || *d.ByzantineIndex != 0 {
		t.Fatalf("agent 0 should be the liar by default")
	}
	if d.StepBudget != 100 {
		t.Fatalf("step budget: %d", d.StepBudget)
	}
}

func TestDefaultConfigFile_Loads(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if tune.Agents != 5 || tune.Targets != 3 {
		t.Fatalf("shipped config: agents=%d targets=%d", tune.Agents, tune.Targets)
	}
	if len(tune.AgentStarts) != tune.Agents {
		t.Fatalf("shipped config: %d agent starts for %d agents", len(tune.AgentStarts), tune.Agents)
	}
	if len(tune.TargetStarts) != tune.Targets {
		t.Fatalf("shipped config: %d target starts for %d targets", len(tune.TargetStarts), tune.Targets)
	}
}
