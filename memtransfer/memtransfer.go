// Package memtransfer implements the wire-level batching primitive the
// Driver uses to move bytes to and from DPU memory: entries are grouped by
// rank so that a single driver call can fan a write or read out to every
// DPU in that rank in one shot.
package memtransfer

import "github.com/nimbus-dpu/dpucluster/dpu"

// Entry describes one DPU's participation in a batched transfer: the byte
// offset within the DPU's memory and the buffer to copy to (write) or into
// (read).
type Entry struct {
	Offset uint32
	Bytes  []byte
}

// RankEntries is the set of per-DPU entries belonging to one rank.
type RankEntries map[dpu.ID]*Entry

// Transfer is a MemoryTransfer: a write or read batch addressed by rank,
// and within each rank by DpuId. The driver may reorder entries within a
// rank but never across ranks.
type Transfer struct {
	ranks map[uint8]RankEntries
}

// New returns an empty Transfer.
func New() *Transfer {
	return &Transfer{ranks: make(map[uint8]RankEntries)}
}

// Add registers one DPU's participation in the transfer. bytes is not
// copied; callers must keep it alive and unmodified until the driver call
// using this Transfer returns.
func (t *Transfer) Add(id dpu.ID, offset uint32, bytes []byte) {
	rank, ok := t.ranks[id.Rank]
	if !ok {
		rank = make(RankEntries)
		t.ranks[id.Rank] = rank
	}
	rank[id] = &Entry{Offset: offset, Bytes: bytes}
}

// Ranks returns the per-rank entry groups, in no particular order. Callers
// (drivers) are expected to issue one batched call per rank.
func (t *Transfer) Ranks() map[uint8]RankEntries {
	return t.ranks
}

// Len reports the total number of DPU entries across all ranks.
func (t *Transfer) Len() int {
	n := 0
	for _, r := range t.ranks {
		n += len(r)
	}
	return n
}
