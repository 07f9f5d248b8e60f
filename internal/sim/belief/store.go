// Package belief holds one agent's per-target position estimates.
// A Store is exclusively owned and mutated by its agent; peers can
// influence it only through claims that win a consensus vote.
package belief

import (
	"sort"

	"swarmsearch.ai/internal/sim/grid"
)

// Source records a belief's provenance.
type Source string

const (
	SourceObserved  Source = "OBSERVED"  // own sensor reading
	SourceConsensus Source = "CONSENSUS" // majority-vote adoption
)

type Belief struct {
	Pos         grid.Vec2i `json:"pos"`
	Confidence  int        `json:"confidence"`
	Source      Source     `json:"source"`
	UpdatedTick uint64     `json:"updated_tick"`
}

// Store maps target identity to the currently trusted estimate. Every
// target id is a valid key; absence means "no trusted belief yet".
type Store struct {
	m map[int]Belief
}

func NewStore() *Store {
	return &Store{m: map[int]Belief{}}
}

func (s *Store) Get(targetID int) (Belief, bool) {
	b, ok := s.m[targetID]
	return b, ok
}

func (s *Store) Len() int { return len(s.m) }

// TargetIDs returns the ids with a trusted belief, sorted for
// deterministic iteration.
func (s *Store) TargetIDs() []int {
	ids := make([]int, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Observe records a direct sensor reading. A self-observation carries
// confidence 1: it is one vote in later consensus rounds, not a veto.
func (s *Store) Observe(targetID int, pos grid.Vec2i, tick uint64) {
	s.m[targetID] = Belief{Pos: pos, Confidence: 1, Source: SourceObserved, UpdatedTick: tick}
}

// Adopt replaces the estimate with a majority-vote winner.
func (s *Store) Adopt(targetID int, pos grid.Vec2i, confidence int, tick uint64) {
	s.m[targetID] = Belief{Pos: pos, Confidence: confidence, Source: SourceConsensus, UpdatedTick: tick}
}

// Drop discards a falsified estimate (the agent sensed the believed
// cell and the target was not there).
func (s *Store) Drop(targetID int) {
	delete(s.m, targetID)
}

// Snapshot returns a copy safe to hand to read-only observers.
func (s *Store) Snapshot() map[int]Belief {
	out := make(map[int]Belief, len(s.m))
	for id, b := range s.m {
		out[id] = b
	}
	return out
}
