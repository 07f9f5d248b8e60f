// Package metrics computes the fleet's competitive ratio from read-only
// per-tick data. It observes, never steers: nothing in the core depends
// on its output.
package metrics

import (
	"math"
	"sort"

	"swarmsearch.ai/internal/sim/grid"
)

type findRecord struct {
	Tick      uint64
	Pos       grid.Vec2i
	FleetDist int
}

// Evaluator tracks when each target was first located and the fleet
// distance spent getting there.
type Evaluator struct {
	starts []grid.Vec2i
	found  map[int]findRecord
}

func NewEvaluator(agentStarts []grid.Vec2i) *Evaluator {
	starts := make([]grid.Vec2i, len(agentStarts))
	copy(starts, agentStarts)
	return &Evaluator{starts: starts, found: map[int]findRecord{}}
}

// RecordFind registers the first direct observation of a target.
// Later calls for the same target are ignored.
func (e *Evaluator) RecordFind(targetID int, tick uint64, pos grid.Vec2i, fleetDist int) {
	if _, ok := e.found[targetID]; ok {
		return
	}
	e.found[targetID] = findRecord{Tick: tick, Pos: pos, FleetDist: fleetDist}
}

// FoundTick reports when a target was first located, if it has been.
func (e *Evaluator) FoundTick(targetID int) (uint64, bool) {
	r, ok := e.found[targetID]
	return r.Tick, ok
}

// FoundCount returns how many targets have been located so far.
func (e *Evaluator) FoundCount() int { return len(e.found) }

// FoundTargetIDs returns the located target ids, sorted.
func (e *Evaluator) FoundTargetIDs() []int {
	ids := make([]int, 0, len(e.found))
	for id := range e.found {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Ratio returns the running competitive ratio: realized fleet distance
// up to each target's find, over the optimal offline distance (best
// agent start straight to the find point). ok is false while the ratio
// is undefined: nothing located yet, or a zero-distance denominator.
func (e *Evaluator) Ratio() (ratio float64, ok bool) {
	if len(e.found) == 0 {
		return 0, false
	}
	var actual float64
	var optimal float64
	for _, r := range e.found {
		actual += float64(r.FleetDist)
		optimal += e.optimalTo(r.Pos)
	}
	if optimal <= 0 {
		return 0, false
	}
	return actual / optimal, true
}

func (e *Evaluator) optimalTo(pos grid.Vec2i) float64 {
	best := math.Inf(1)
	for _, s := range e.starts {
		if d := math.Sqrt(float64(grid.DistSq(s, pos))); d < best {
			best = d
		}
	}
	return best
}
