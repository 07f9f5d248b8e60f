package grid

import (
	"swarmsearch.ai/internal/sim/mathx"
)

// Vec2i is a cell coordinate on the grid, x rightward, y downward.
type Vec2i struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vec2i) Add(o Vec2i) Vec2i { return Vec2i{X: v.X + o.X, Y: v.Y + o.Y} }

// DistSq is the squared Euclidean distance. Radius checks compare
// DistSq against radius*radius so the core never touches floats.
func DistSq(a, b Vec2i) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

func Manhattan(a, b Vec2i) int {
	return mathx.AbsInt(a.X-b.X) + mathx.AbsInt(a.Y-b.Y)
}

func Chebyshev(a, b Vec2i) int {
	dx := mathx.AbsInt(a.X - b.X)
	dy := mathx.AbsInt(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// WithinRadius reports whether b is within Euclidean distance r of a.
func WithinRadius(a, b Vec2i, r int) bool {
	if r < 0 {
		return false
	}
	return DistSq(a, b) <= r*r
}

// Motion selects the target motion rule.
type Motion string

const (
	MotionStatic     Motion = "STATIC"
	MotionRandomWalk Motion = "RANDOM_WALK"
)

// Target is a customer to be located. Its position is owned exclusively
// by the World and mutated only in Advance.
type Target struct {
	ID  int   `json:"id"`
	Pos Vec2i `json:"pos"`
}

// World owns the grid geometry and target motion. It has no agent
// awareness and never fails: Advance is total over the step count.
type World struct {
	w, h      int
	seed      int64
	motion    Motion
	moveEvery int

	targets []Target
	tick    uint64
}

func NewWorld(w, h int, seed int64, motion Motion, moveEvery int, starts []Vec2i) *World {
	if moveEvery <= 0 {
		moveEvery = 1
	}
	targets := make([]Target, len(starts))
	for i, p := range starts {
		targets[i] = Target{ID: i, Pos: clamp(p, w, h)}
	}
	return &World{w: w, h: h, seed: seed, motion: motion, moveEvery: moveEvery, targets: targets}
}

func (w *World) Width() int  { return w.w }
func (w *World) Height() int { return w.h }

// Clamp confines p to [0,W) x [0,H).
func (w *World) Clamp(p Vec2i) Vec2i { return clamp(p, w.w, w.h) }

func clamp(p Vec2i, w, h int) Vec2i {
	return Vec2i{X: mathx.ClampInt(p.X, 0, w-1), Y: mathx.ClampInt(p.Y, 0, h-1)}
}

// Advance moves every target by one rule-defined step, clamped to the
// grid bounds. Random-walk displacement derives from a seed hash over
// (target, tick) so identical seeds replay identically.
func (w *World) Advance() {
	w.tick++
	if w.motion != MotionRandomWalk {
		return
	}
	if w.tick%uint64(w.moveEvery) != 0 {
		return
	}
	for i := range w.targets {
		n := mathx.Hash3(w.seed, w.targets[i].ID, int(w.tick), 0)
		dx := int(n%3) - 1
		dy := int((n/3)%3) - 1
		w.targets[i].Pos = clamp(w.targets[i].Pos.Add(Vec2i{X: dx, Y: dy}), w.w, w.h)
	}
}

// Targets returns a copy of the current target list.
func (w *World) Targets() []Target {
	out := make([]Target, len(w.targets))
	copy(out, w.targets)
	return out
}

// TargetsWithin returns ground-truth targets observable from pos with
// the given sensor radius. This is the only trusted-by-construction
// information source in the system.
func (w *World) TargetsWithin(pos Vec2i, sensorRadius int) []Target {
	var out []Target
	for _, t := range w.targets {
		if WithinRadius(pos, t.Pos, sensorRadius) {
			out = append(out, t)
		}
	}
	return out
}
