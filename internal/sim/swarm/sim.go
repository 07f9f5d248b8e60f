package swarm

import (
	"context"
	"sync/atomic"
	"time"

	"swarmsearch.ai/internal/sim/consensus"
	"swarmsearch.ai/internal/sim/grid"
	"swarmsearch.ai/internal/sim/metrics"
)

// TickLogger receives one entry per completed tick (may be nil).
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick       uint64  `json:"tick"`
	Digest     string  `json:"digest"`
	Located    int     `json:"located"`
	Ratio      float64 `json:"ratio,omitempty"`
	RatioValid bool    `json:"ratio_valid,omitempty"`
}

// Sim is the single-threaded authoritative simulation. All state must
// be accessed only from the sim loop goroutine; observers get deep
// copies.
type Sim struct {
	cfg    Config
	world  *grid.World
	agents []*Agent
	engine *consensus.Engine
	eval   *metrics.Evaluator

	tick atomic.Uint64

	observers map[string]*observerSession
	obsJoin   chan ObserverJoinRequest
	obsLeave  chan string
	stop      chan struct{}

	tickLogger TickLogger
}

func New(cfg Config) (*Sim, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	world := grid.NewWorld(cfg.GridW, cfg.GridH, cfg.Seed, cfg.Motion, cfg.TargetMoveEvery, cfg.TargetStarts)

	agents := make([]*Agent, cfg.AgentCount)
	starts := make([]grid.Vec2i, cfg.AgentCount)
	for i := range agents {
		start := world.Clamp(cfg.AgentStarts[i])
		agents[i] = newAgent(i, start, i == cfg.ByzantineIndex)
		starts[i] = start
	}

	return &Sim{
		cfg:       cfg,
		world:     world,
		agents:    agents,
		engine:    consensus.NewEngine(cfg.CommRange, cfg.Epsilon, cfg.GridW, cfg.GridH, cfg.ByzantineOffset),
		eval:      metrics.NewEvaluator(starts),
		observers: map[string]*observerSession{},
		obsJoin:   make(chan ObserverJoinRequest, 16),
		obsLeave:  make(chan string, 16),
		stop:      make(chan struct{}),
	}, nil
}

func (s *Sim) Config() Config             { return s.cfg }
func (s *Sim) CurrentTick() uint64        { return s.tick.Load() }
func (s *Sim) SetTickLogger(l TickLogger) { s.tickLogger = l }
func (s *Sim) Done() bool                 { return s.tick.Load() >= uint64(s.cfg.StepBudget) }

// Run drives the tick loop until the step budget is exhausted. The
// budget is the only core termination trigger; ctx covers external
// shutdown.
func (s *Sim) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.obsJoin:
			s.handleObserverJoin(req)
		case id := <-s.obsLeave:
			s.handleObserverLeave(id)
		case <-ticker.C:
			s.step()
			if s.Done() {
				return nil
			}
		}
	}
}

func (s *Sim) Stop() { close(s.stop) }

// StepOnce advances the sim by a single tick with the same ordering as
// Run. Intended for deterministic replays and tests.
func (s *Sim) StepOnce() (tick uint64, digest string) {
	tick = s.tick.Load()
	s.step()
	return tick, s.stateDigest(tick)
}

// step executes one lock-step tick: target motion, then observation
// for every agent, then one consensus pass over all agents, then
// movement. Consensus always sees this tick's observations from every
// agent, never a mix of ticks.
func (s *Sim) step() {
	nowTick := s.tick.Load()

	s.world.Advance()

	observed := make([]map[int]grid.Vec2i, len(s.agents))
	for i, a := range s.agents {
		observed[i] = s.observe(a, nowTick)
	}

	reporters := make([]*consensus.Reporter, len(s.agents))
	for i, a := range s.agents {
		reporters[i] = &consensus.Reporter{
			ID:        a.ID,
			Pos:       a.Pos,
			Byzantine: a.Byzantine,
			Store:     a.Beliefs,
			Observed:  observed[i],
		}
	}
	updates := s.engine.Exchange(nowTick, reporters)

	// A vote that moved a pursued estimate restarts that agent's spiral
	// from where it stands now, not from the stale anchor.
	epsSq := s.cfg.Epsilon * s.cfg.Epsilon
	for _, u := range updates {
		if u.HadPrev && grid.DistSq(u.Pos, u.PrevPos) > epsSq {
			s.agents[u.AgentID].resetSearch()
		}
	}

	for _, a := range s.agents {
		s.move(a)
		a.pushTrail(s.cfg.TrailLen)
	}

	digest := s.stateDigest(nowTick)
	if s.tickLogger != nil {
		entry := TickLogEntry{Tick: nowTick, Digest: digest, Located: s.eval.FoundCount()}
		if ratio, ok := s.eval.Ratio(); ok {
			entry.Ratio = ratio
			entry.RatioValid = true
		}
		_ = s.tickLogger.WriteTick(entry)
	}

	if len(s.observers) > 0 && nowTick%uint64(s.cfg.SnapshotEvery) == 0 {
		s.broadcastSnapshot(nowTick)
	}

	s.tick.Add(1)
}

// observe runs one agent's sensing phase: record ground truth within
// sensor range, and drop any believed position the sensor can see but
// does not corroborate.
func (s *Sim) observe(a *Agent, nowTick uint64) map[int]grid.Vec2i {
	obs := map[int]grid.Vec2i{}
	for _, t := range s.world.TargetsWithin(a.Pos, s.cfg.SensorRange) {
		obs[t.ID] = t.Pos
		a.Beliefs.Observe(t.ID, t.Pos, nowTick)
		s.eval.RecordFind(t.ID, nowTick, t.Pos, s.fleetDistance())
	}
	for _, tid := range a.Beliefs.TargetIDs() {
		if _, seen := obs[tid]; seen {
			continue
		}
		b, _ := a.Beliefs.Get(tid)
		if grid.WithinRadius(a.Pos, b.Pos, s.cfg.SensorRange) {
			a.Beliefs.Drop(tid)
			a.resetSearch()
		}
	}
	return obs
}

// move advances one agent: direct pursuit of the nearest believed
// target when any belief is trusted, spiral search otherwise.
func (s *Sim) move(a *Agent) {
	if tid, ok := a.nearestBelief(); ok {
		b, _ := a.Beliefs.Get(tid)
		if a.Pos != b.Pos {
			a.stepToward(b.Pos)
		}
		return
	}

	if !a.hasWaypoint || a.Pos == a.waypoint {
		p, ok := a.cursor.NextWithin(s.cfg.GridW, s.cfg.GridH)
		if !ok {
			// Spiral exhausted the grid; start over from here.
			a.resetSearch()
			p, ok = a.cursor.NextWithin(s.cfg.GridW, s.cfg.GridH)
			if !ok {
				return
			}
		}
		a.waypoint = p
		a.hasWaypoint = true
	}
	a.stepToward(a.waypoint)
}

func (s *Sim) fleetDistance() int {
	total := 0
	for _, a := range s.agents {
		total += a.Traveled
	}
	return total
}
