package swarm

import (
	"testing"

	"swarmsearch.ai/internal/sim/grid"
)

func demoConfig() Config {
	return Config{
		GridW:           20,
		GridH:           20,
		AgentCount:      5,
		TargetCount:     3,
		ByzantineIndex:  0,
		ByzantineOffset: grid.Vec2i{X: 3, Y: 3},
		CommRange:       5,
		SensorRange:     2,
		Epsilon:         2,
		StepBudget:      100,
		Seed:            1337,
		Motion:          grid.MotionStatic,
		AgentStarts: []grid.Vec2i{
			{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 12, Y: 13}, {X: 8, Y: 17}, {X: 16, Y: 5},
		},
		TargetStarts: []grid.Vec2i{
			{X: 2, Y: 2}, {X: 10, Y: 15}, {X: 18, Y: 4},
		},
	}
}

func TestScenario_AllTargetsLocatedWithinBudget(t *testing.T) {
	s, err := New(demoConfig())
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	for !s.Done() {
		s.StepOnce()
	}

	snap := s.ExportSnapshot(s.CurrentTick() - 1)
	if len(snap.Located) != 3 {
		t.Fatalf("located %d of 3 targets: %v", len(snap.Located), snap.Located)
	}
	for tid, tick := range snap.Located {
		if tick > 40 {
			t.Fatalf("target %d located only at tick %d", tid, tick)
		}
	}
}

func TestScenario_RatioDefinedAndPositive(t *testing.T) {
	s, err := New(demoConfig())
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	for !s.Done() {
		s.StepOnce()
	}

	snap := s.ExportSnapshot(s.CurrentTick() - 1)
	if !snap.RatioValid {
		t.Fatalf("competitive ratio undefined after finds")
	}
	if snap.Ratio < 1.0 {
		t.Fatalf("realized distance below the offline optimum: %v", snap.Ratio)
	}
	if snap.Ratio > 1000 {
		t.Fatalf("implausible ratio: %v", snap.Ratio)
	}
}

func TestScenario_HonestBeliefsConvergeToTruth(t *testing.T) {
	cfg := demoConfig()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	for !s.Done() {
		s.StepOnce()
	}

	snap := s.ExportSnapshot(s.CurrentTick() - 1)
	truth := map[int]grid.Vec2i{}
	for _, tgt := range snap.Targets {
		truth[tgt.ID] = tgt.Pos
	}

	epsSq := cfg.Epsilon * cfg.Epsilon
	for _, a := range snap.Agents {
		if a.Byzantine {
			continue
		}
		for tid, b := range a.Beliefs {
			if d := grid.DistSq(b.Pos, truth[tid]); d > epsSq {
				t.Fatalf("agent %d holds a fabricated-looking belief for target %d: %v (truth %v)",
					a.ID, tid, b.Pos, truth[tid])
			}
		}
	}
}

func TestScenario_ByzantineDisabled(t *testing.T) {
	cfg := demoConfig()
	cfg.ByzantineIndex = -1
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	for !s.Done() {
		s.StepOnce()
	}

	snap := s.ExportSnapshot(s.CurrentTick() - 1)
	for _, a := range snap.Agents {
		if a.Byzantine {
			t.Fatalf("agent %d flagged byzantine with index -1", a.ID)
		}
	}
	if len(snap.Located) != 3 {
		t.Fatalf("all-honest fleet located %d of 3", len(snap.Located))
	}
}

func TestScenario_TraveledIsMonotonic(t *testing.T) {
	s, err := New(demoConfig())
	if err != nil {
		t.Fatalf("sim: %v", err)
	}

	prev := make([]int, 5)
	for i := 0; i < 100; i++ {
		s.StepOnce()
		snap := s.ExportSnapshot(s.CurrentTick() - 1)
		for j, a := range snap.Agents {
			if a.Traveled < prev[j] {
				t.Fatalf("agent %d traveled decreased: %d -> %d", j, prev[j], a.Traveled)
			}
			if a.Pos.X < 0 || a.Pos.X >= 20 || a.Pos.Y < 0 || a.Pos.Y >= 20 {
				t.Fatalf("agent %d left the grid: %v", j, a.Pos)
			}
			prev[j] = a.Traveled
		}
	}
}
