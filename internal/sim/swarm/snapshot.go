package swarm

import (
	"swarmsearch.ai/internal/sim/belief"
	"swarmsearch.ai/internal/sim/grid"
)

// Snapshot is the frozen per-tick view handed to metrics reporting and
// display layers. Everything is deep-copied; holding one never aliases
// live sim state.
type Snapshot struct {
	Tick    uint64
	Agents  []AgentSnapshot
	Targets []grid.Target

	Ratio      float64
	RatioValid bool

	// Located maps target id to the tick it was first observed.
	Located map[int]uint64
}

type AgentSnapshot struct {
	ID        int
	Pos       grid.Vec2i
	Start     grid.Vec2i
	Byzantine bool
	Traveled  int
	Beliefs   map[int]belief.Belief
	Trail     []grid.Vec2i
}

// ExportSnapshot builds the read-only view for the given tick. Must be
// called from the sim loop goroutine (or between StepOnce calls).
func (s *Sim) ExportSnapshot(nowTick uint64) Snapshot {
	snap := Snapshot{
		Tick:    nowTick,
		Agents:  make([]AgentSnapshot, len(s.agents)),
		Targets: s.world.Targets(),
		Located: map[int]uint64{},
	}
	for i, a := range s.agents {
		trail := make([]grid.Vec2i, len(a.trail))
		copy(trail, a.trail)
		snap.Agents[i] = AgentSnapshot{
			ID:        a.ID,
			Pos:       a.Pos,
			Start:     a.Start,
			Byzantine: a.Byzantine,
			Traveled:  a.Traveled,
			Beliefs:   a.Beliefs.Snapshot(),
			Trail:     trail,
		}
	}
	for _, tid := range s.eval.FoundTargetIDs() {
		if t, ok := s.eval.FoundTick(tid); ok {
			snap.Located[tid] = t
		}
	}
	snap.Ratio, snap.RatioValid = s.eval.Ratio()
	return snap
}
