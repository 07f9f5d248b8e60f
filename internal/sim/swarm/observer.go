package swarm

import (
	"encoding/json"
	"sort"

	"swarmsearch.ai/internal/observerproto"
	"swarmsearch.ai/internal/sim/belief"
)

// ObserverJoinRequest attaches a read-only snapshot consumer. Out
// receives marshaled SNAPSHOT messages; slow consumers lose frames,
// never stall the sim.
type ObserverJoinRequest struct {
	SessionID string
	Out       chan []byte
}

type observerSession struct {
	out chan []byte
}

func (s *Sim) ObserverJoin() chan<- ObserverJoinRequest { return s.obsJoin }
func (s *Sim) ObserverLeave() chan<- string             { return s.obsLeave }

func (s *Sim) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.Out == nil {
		return
	}
	s.observers[req.SessionID] = &observerSession{out: req.Out}
}

func (s *Sim) handleObserverLeave(id string) {
	delete(s.observers, id)
}

func (s *Sim) broadcastSnapshot(nowTick uint64) {
	msg := snapshotMsg(s.ExportSnapshot(nowTick))
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, sess := range s.observers {
		sendLatest(sess.out, b)
	}
}

// sendLatest prefers fresh frames: when the channel is full the oldest
// pending frame is dropped to make room.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func snapshotMsg(snap Snapshot) observerproto.SnapshotMsg {
	msg := observerproto.SnapshotMsg{
		Type:            observerproto.TypeSnapshot,
		ProtocolVersion: observerproto.Version,
		Tick:            snap.Tick,
		Agents:          make([]observerproto.AgentState, len(snap.Agents)),
		Targets:         make([]observerproto.TargetState, len(snap.Targets)),
		Located:         len(snap.Located),
	}
	if snap.RatioValid {
		r := snap.Ratio
		msg.Ratio = &r
	}
	for i, a := range snap.Agents {
		st := observerproto.AgentState{
			ID:        a.ID,
			Pos:       [2]int{a.Pos.X, a.Pos.Y},
			Byzantine: a.Byzantine,
			Traveled:  a.Traveled,
			Beliefs:   make([]observerproto.BeliefState, 0, len(a.Beliefs)),
			Trail:     make([][2]int, len(a.Trail)),
		}
		for j, p := range a.Trail {
			st.Trail[j] = [2]int{p.X, p.Y}
		}
		for _, tid := range sortedBeliefIDs(a.Beliefs) {
			b := a.Beliefs[tid]
			st.Beliefs = append(st.Beliefs, observerproto.BeliefState{
				Target:      tid,
				Pos:         [2]int{b.Pos.X, b.Pos.Y},
				Confidence:  b.Confidence,
				Source:      string(b.Source),
				UpdatedTick: b.UpdatedTick,
			})
		}
		msg.Agents[i] = st
	}
	for i, t := range snap.Targets {
		msg.Targets[i] = observerproto.TargetState{ID: t.ID, Pos: [2]int{t.Pos.X, t.Pos.Y}}
	}
	return msg
}

func sortedBeliefIDs(m map[int]belief.Belief) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
