package swarm

import (
	"fmt"

	"swarmsearch.ai/internal/sim/grid"
	"swarmsearch.ai/internal/sim/mathx"
	"swarmsearch.ai/internal/sim/tuning"
)

type Config struct {
	GridW int
	GridH int

	AgentCount  int
	TargetCount int

	// ByzantineIndex designates the agent whose outgoing claims are
	// fabricated; -1 disables Byzantine behavior entirely.
	ByzantineIndex  int
	ByzantineOffset grid.Vec2i

	CommRange   int
	SensorRange int
	Epsilon     int
	StepBudget  int
	TickRateHz  int
	Seed        int64

	Motion          grid.Motion
	TargetMoveEvery int
	TrailLen        int
	SnapshotEvery   int

	// Optional fixed layouts. When empty, starts derive from the seed.
	AgentStarts  []grid.Vec2i
	TargetStarts []grid.Vec2i
}

// FromTuning maps a loaded tuning file onto a Config.
func FromTuning(t tuning.Tuning) Config {
	c := Config{
		GridW:           t.GridW,
		GridH:           t.GridH,
		AgentCount:      t.Agents,
		TargetCount:     t.Targets,
		ByzantineIndex:  0,
		CommRange:       t.CommRange,
		SensorRange:     t.SensorRange,
		Epsilon:         t.Epsilon,
		StepBudget:      t.StepBudget,
		TickRateHz:      t.TickRateHz,
		Seed:            t.Seed,
		Motion:          grid.Motion(t.TargetMotion),
		TargetMoveEvery: t.TargetMoveEvery,
		TrailLen:        t.TrailLen,
		SnapshotEvery:   t.SnapshotEvery,
	}
	if t.ByzantineIndex != nil {
		c.ByzantineIndex = *t.ByzantineIndex
	}
	if len(t.ByzantineOffset) == 2 {
		c.ByzantineOffset = grid.Vec2i{X: t.ByzantineOffset[0], Y: t.ByzantineOffset[1]}
	}
	c.AgentStarts = pairsToVecs(t.AgentStarts)
	c.TargetStarts = pairsToVecs(t.TargetStarts)
	return c
}

func pairsToVecs(rows [][]int) []grid.Vec2i {
	if len(rows) == 0 {
		return nil
	}
	out := make([]grid.Vec2i, 0, len(rows))
	for _, r := range rows {
		if len(r) != 2 {
			continue
		}
		out = append(out, grid.Vec2i{X: r[0], Y: r[1]})
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.GridW <= 0 {
		c.GridW = 20
	}
	if c.GridH <= 0 {
		c.GridH = 20
	}
	if c.AgentCount == 0 {
		c.AgentCount = 5
	}
	if c.TargetCount == 0 {
		c.TargetCount = 3
	}
	if c.ByzantineOffset == (grid.Vec2i{}) {
		c.ByzantineOffset = grid.Vec2i{X: 3, Y: 3}
	}
	if c.CommRange == 0 {
		c.CommRange = 5
	}
	if c.SensorRange == 0 {
		c.SensorRange = 2
	}
	if c.Epsilon == 0 {
		c.Epsilon = 2
	}
	if c.StepBudget <= 0 {
		c.StepBudget = 100
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.Motion == "" {
		c.Motion = grid.MotionRandomWalk
	}
	if c.TargetMoveEvery <= 0 {
		c.TargetMoveEvery = 5
	}
	if c.TrailLen <= 0 {
		c.TrailLen = 20
	}
	if c.SnapshotEvery <= 0 {
		c.SnapshotEvery = 1
	}
	if len(c.AgentStarts) == 0 {
		c.AgentStarts = seededStarts(c.Seed, 0x5EED, c.AgentCount, c.GridW, c.GridH)
	}
	if len(c.TargetStarts) == 0 {
		c.TargetStarts = seededStarts(c.Seed, 0xCAFE, c.TargetCount, c.GridW, c.GridH)
	}
}

func seededStarts(seed int64, salt, n, w, h int) []grid.Vec2i {
	out := make([]grid.Vec2i, n)
	for i := 0; i < n; i++ {
		out[i] = grid.Vec2i{
			X: int(mathx.Hash3(seed, salt, i, 1) % uint64(w)),
			Y: int(mathx.Hash3(seed, salt, i, 2) % uint64(h)),
		}
	}
	return out
}

// validate rejects configurations under which the consensus invariants
// cannot be stated meaningfully. These are the only fatal errors in the
// system; everything after construction is total.
func (c *Config) validate() error {
	if c.GridW <= 0 || c.GridH <= 0 {
		return fmt.Errorf("grid dimensions must be positive: %dx%d", c.GridW, c.GridH)
	}
	if c.AgentCount <= 0 {
		return fmt.Errorf("agent count must be positive: %d", c.AgentCount)
	}
	if c.TargetCount <= 0 {
		return fmt.Errorf("target count must be positive: %d", c.TargetCount)
	}
	if c.ByzantineIndex < -1 || c.ByzantineIndex >= c.AgentCount {
		return fmt.Errorf("byzantine index %d out of agent range [0,%d)", c.ByzantineIndex, c.AgentCount)
	}
	if c.CommRange < 0 {
		return fmt.Errorf("communication range must not be negative: %d", c.CommRange)
	}
	if c.SensorRange < 0 {
		return fmt.Errorf("sensor range must not be negative: %d", c.SensorRange)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative: %d", c.Epsilon)
	}
	if c.StepBudget <= 0 {
		return fmt.Errorf("step budget must be positive: %d", c.StepBudget)
	}
	if len(c.AgentStarts) != c.AgentCount {
		return fmt.Errorf("agent starts: want %d, got %d", c.AgentCount, len(c.AgentStarts))
	}
	if len(c.TargetStarts) != c.TargetCount {
		return fmt.Errorf("target starts: want %d, got %d", c.TargetCount, len(c.TargetStarts))
	}
	switch c.Motion {
	case grid.MotionStatic, grid.MotionRandomWalk:
	default:
		return fmt.Errorf("unknown target motion: %q", c.Motion)
	}
	return nil
}
