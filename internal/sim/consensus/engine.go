// Package consensus runs the per-tick claim exchange and majority-vote
// filtering between agents in communication range. It is the only part
// of the system aware that one participant may lie: fabrication happens
// at send time, and receivers get no hint about who is Byzantine.
// Robustness must come from the vote alone.
package consensus

import (
	"sort"

	"swarmsearch.ai/internal/sim/belief"
	"swarmsearch.ai/internal/sim/grid"
	"swarmsearch.ai/internal/sim/mathx"
)

// Claim is one agent's reported position for one target. Claims are
// ephemeral: built during an exchange, consumed by the receiving vote,
// never persisted.
type Claim struct {
	TargetID int
	Pos      grid.Vec2i
	Reporter int
	Tick     uint64
}

// Reporter is one agent's consensus-facing state for a single round.
// The engine reads Pos/Observed and mutates only Store.
type Reporter struct {
	ID        int
	Pos       grid.Vec2i
	Byzantine bool
	Store     *belief.Store

	// Observed holds this tick's direct sensor readings. Each entry
	// counts as exactly one vote alongside peer claims.
	Observed map[int]grid.Vec2i
}

// Update describes a belief replaced by a winning vote.
type Update struct {
	AgentID    int
	TargetID   int
	Pos        grid.Vec2i
	Confidence int
	HadPrev    bool
	PrevPos    grid.Vec2i
}

type Engine struct {
	commRange int
	epsilon   int
	width     int
	height    int
	fakeOff   grid.Vec2i
}

func NewEngine(commRange, epsilon, width, height int, byzantineOffset grid.Vec2i) *Engine {
	return &Engine{
		commRange: commRange,
		epsilon:   epsilon,
		width:     width,
		height:    height,
		fakeOff:   byzantineOffset,
	}
}

// Exchange runs one consensus round over all reporters. Claims are
// materialized for every in-range unordered pair before any vote is
// applied, so adoptions never cascade within a tick.
func (e *Engine) Exchange(tick uint64, reporters []*Reporter) []Update {
	inbox := make([]map[int][]Claim, len(reporters))
	for i := range inbox {
		inbox[i] = map[int][]Claim{}
	}

	for i := 0; i < len(reporters); i++ {
		for j := i + 1; j < len(reporters); j++ {
			if !grid.WithinRadius(reporters[i].Pos, reporters[j].Pos, e.commRange) {
				continue
			}
			e.send(tick, reporters[i], inbox[j])
			e.send(tick, reporters[j], inbox[i])
		}
	}

	var updates []Update
	for i, r := range reporters {
		updates = append(updates, e.vote(tick, r, inbox[i])...)
	}
	return updates
}

// send appends the sender's claims for every target it holds any belief
// for. A Byzantine sender substitutes a fabricated position into every
// claim; its own store stays truthful.
func (e *Engine) send(tick uint64, from *Reporter, to map[int][]Claim) {
	for _, tid := range from.Store.TargetIDs() {
		b, _ := from.Store.Get(tid)
		pos := b.Pos
		if from.Byzantine {
			pos = grid.Vec2i{
				X: mathx.ClampInt(pos.X+e.fakeOff.X, 0, e.width-1),
				Y: mathx.ClampInt(pos.Y+e.fakeOff.Y, 0, e.height-1),
			}
		}
		to[tid] = append(to[tid], Claim{TargetID: tid, Pos: pos, Reporter: from.ID, Tick: tick})
	}
}

// vote applies majority filtering per target: claims within epsilon of
// each other share a bucket; a bucket needs at least two votes and
// strictly more than every rival to replace the belief. Ties keep the
// existing belief so a Byzantine claim can never force an update by
// merely matching the plurality.
func (e *Engine) vote(tick uint64, r *Reporter, claims map[int][]Claim) []Update {
	tids := make([]int, 0, len(claims))
	for tid := range claims {
		tids = append(tids, tid)
	}
	sort.Ints(tids)

	var updates []Update
	for _, tid := range tids {
		votes := make([]Claim, 0, len(claims[tid])+1)
		if obs, ok := r.Observed[tid]; ok {
			votes = append(votes, Claim{TargetID: tid, Pos: obs, Reporter: r.ID, Tick: tick})
		}
		cs := claims[tid]
		sort.Slice(cs, func(a, b int) bool { return cs[a].Reporter < cs[b].Reporter })
		votes = append(votes, cs...)

		win, ok := e.winner(votes)
		if !ok {
			continue
		}
		u := Update{AgentID: r.ID, TargetID: tid, Pos: win.pos, Confidence: win.size}
		if prev, had := r.Store.Get(tid); had {
			u.HadPrev = true
			u.PrevPos = prev.Pos
		}
		r.Store.Adopt(tid, win.pos, win.size, tick)
		updates = append(updates, u)
	}
	return updates
}

type bucket struct {
	rep  grid.Vec2i
	sumX int
	sumY int
	size int
}

type winnerBucket struct {
	pos  grid.Vec2i
	size int
}

func (e *Engine) winner(votes []Claim) (winnerBucket, bool) {
	var buckets []bucket
	epsSq := e.epsilon * e.epsilon
	for _, v := range votes {
		placed := false
		for i := range buckets {
			if grid.DistSq(v.Pos, buckets[i].rep) <= epsSq {
				buckets[i].sumX += v.Pos.X
				buckets[i].sumY += v.Pos.Y
				buckets[i].size++
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{rep: v.Pos, sumX: v.Pos.X, sumY: v.Pos.Y, size: 1})
		}
	}

	best := -1
	tied := false
	for i := range buckets {
		switch {
		case best < 0 || buckets[i].size > buckets[best].size:
			best = i
			tied = false
		case buckets[i].size == buckets[best].size:
			tied = true
		}
	}
	// Quorum: a lone voice (including our own sensor) is not consensus.
	if best < 0 || tied || buckets[best].size < 2 {
		return winnerBucket{}, false
	}
	b := buckets[best]
	return winnerBucket{
		pos:  grid.Vec2i{X: roundDiv(b.sumX, b.size), Y: roundDiv(b.sumY, b.size)},
		size: b.size,
	}, true
}

// roundDiv rounds sum/n to the nearest integer; positions are never
// negative after clamping.
func roundDiv(sum, n int) int {
	return (2*sum + n) / (2 * n)
}
