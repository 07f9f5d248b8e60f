// Package search implements the spiral pattern an agent walks while it
// has no trustworthy belief about a target's position.
package search

import (
	"swarmsearch.ai/internal/sim/grid"
)

// Corner-turn order: right, down, left, up.
var spiralDirs = [4]grid.Vec2i{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}

// Cursor walks an outward square spiral anchored at a fixed cell.
// The walk is purely counter-driven: the n-th call to Next always
// yields the same lattice point for the same anchor, which keeps
// seeded runs reproducible. The spiral visits every cell of a
// Chebyshev ring before entering the next one.
type Cursor struct {
	anchor grid.Vec2i
	pos    grid.Vec2i

	dir        int
	armLen     int
	stepsInArm int
	turns      int
	steps      int
}

func NewCursor(anchor grid.Vec2i) *Cursor {
	c := &Cursor{}
	c.Reset(anchor)
	return c
}

// Reset restarts the spiral at radius 0 around a new anchor. Used when
// a pursued belief is invalidated: searching resumes from wherever the
// agent currently is instead of detouring back to the stale spiral.
func (c *Cursor) Reset(anchor grid.Vec2i) {
	c.anchor = anchor
	c.pos = anchor
	c.dir = 0
	c.armLen = 1
	c.stepsInArm = 0
	c.turns = 0
	c.steps = 0
}

func (c *Cursor) Anchor() grid.Vec2i { return c.anchor }

// Steps returns the number of lattice points emitted since the last reset.
func (c *Cursor) Steps() int { return c.steps }

// Next advances the cursor by one lattice point. Points may lie outside
// the grid; callers skip those.
func (c *Cursor) Next() grid.Vec2i {
	c.pos = c.pos.Add(spiralDirs[c.dir])
	c.steps++
	c.stepsInArm++
	if c.stepsInArm >= c.armLen {
		c.stepsInArm = 0
		c.dir = (c.dir + 1) % 4
		c.turns++
		// Arm length grows every second turn: 1,1,2,2,3,3,...
		if c.turns%2 == 0 {
			c.armLen++
		}
	}
	return c.pos
}

// NextWithin advances the cursor until it yields a point inside
// [0,w) x [0,h), skipping off-grid points. It reports false once the
// spiral radius exceeds the whole grid, meaning every reachable cell
// has already been offered and the caller should reset.
func (c *Cursor) NextWithin(w, h int) (grid.Vec2i, bool) {
	maxRadius := w + h
	for {
		p := c.Next()
		if p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h {
			return p, true
		}
		if grid.Chebyshev(p, c.anchor) > maxRadius {
			return grid.Vec2i{}, false
		}
	}
}
