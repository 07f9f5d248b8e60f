package swarm

import (
	"swarmsearch.ai/internal/sim/belief"
	"swarmsearch.ai/internal/sim/grid"
	"swarmsearch.ai/internal/sim/mathx"
	"swarmsearch.ai/internal/sim/search"
)

// Agent is one fleet member. Its position and belief store are mutated
// only by the sim loop goroutine; cross-agent influence flows solely
// through consensus claims.
type Agent struct {
	ID        int
	Byzantine bool

	Start grid.Vec2i
	Pos   grid.Vec2i

	Beliefs *belief.Store

	// Traveled accumulates one unit per moved cell, monotonically.
	Traveled int

	cursor      *search.Cursor
	waypoint    grid.Vec2i
	hasWaypoint bool

	// trail is presentation-only history, append-only and capped.
	trail []grid.Vec2i
}

func newAgent(id int, start grid.Vec2i, byzantine bool) *Agent {
	return &Agent{
		ID:        id,
		Byzantine: byzantine,
		Start:     start,
		Pos:       start,
		Beliefs:   belief.NewStore(),
		cursor:    search.NewCursor(start),
	}
}

// resetSearch restarts the spiral at the agent's current position.
func (a *Agent) resetSearch() {
	a.cursor.Reset(a.Pos)
	a.hasWaypoint = false
}

// nearestBelief picks the closest believed target position, lower id
// winning ties.
func (a *Agent) nearestBelief() (targetID int, ok bool) {
	best := -1
	bestD := 0
	for _, tid := range a.Beliefs.TargetIDs() {
		b, _ := a.Beliefs.Get(tid)
		d := grid.DistSq(a.Pos, b.Pos)
		if best < 0 || d < bestD {
			best = tid
			bestD = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// stepToward moves one cell Manhattan-greedy toward dst, x axis first.
func (a *Agent) stepToward(dst grid.Vec2i) {
	dx := mathx.SignInt(dst.X - a.Pos.X)
	dy := mathx.SignInt(dst.Y - a.Pos.Y)
	switch {
	case dx != 0:
		a.Pos.X += dx
		a.Traveled++
	case dy != 0:
		a.Pos.Y += dy
		a.Traveled++
	}
}

func (a *Agent) pushTrail(max int) {
	a.trail = append(a.trail, a.Pos)
	if len(a.trail) > max {
		a.trail = a.trail[len(a.trail)-max:]
	}
}
