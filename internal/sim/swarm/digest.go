package swarm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// stateDigest hashes all decision-relevant state for a tick. Two runs
// with identical configs must produce identical digest sequences; the
// replay tool leans on this.
func (s *Sim) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, uint64(s.cfg.Seed))

	for _, t := range s.world.Targets() {
		digestWriteI64(h, &tmp, int64(t.Pos.X))
		digestWriteI64(h, &tmp, int64(t.Pos.Y))
	}

	for _, a := range s.agents {
		digestWriteI64(h, &tmp, int64(a.Pos.X))
		digestWriteI64(h, &tmp, int64(a.Pos.Y))
		digestWriteU64(h, &tmp, uint64(a.Traveled))
		for _, tid := range a.Beliefs.TargetIDs() {
			b, _ := a.Beliefs.Get(tid)
			digestWriteU64(h, &tmp, uint64(tid))
			digestWriteI64(h, &tmp, int64(b.Pos.X))
			digestWriteI64(h, &tmp, int64(b.Pos.Y))
			digestWriteU64(h, &tmp, uint64(b.Confidence))
			h.Write([]byte(b.Source))
			digestWriteU64(h, &tmp, b.UpdatedTick)
		}
	}

	for _, tid := range s.eval.FoundTargetIDs() {
		found, _ := s.eval.FoundTick(tid)
		digestWriteU64(h, &tmp, uint64(tid))
		digestWriteU64(h, &tmp, found)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hash.Hash, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}
