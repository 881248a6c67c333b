// Package dpu defines the identity of a single accelerator core within a
// cluster and a small bookkeeping type for reserving DPUs to owners.
package dpu

import "fmt"

// ID identifies a single DPU by its physical coordinates: the rank it
// belongs to, the slice (control interface) within that rank, and its
// member position within the slice. ID is comparable and therefore usable
// directly as a map key or channel payload.
type ID struct {
	Rank   uint8
	Slice  uint8
	Member uint8
}

// New returns the ID for the given coordinates.
func New(rank, slice, member uint8) ID {
	return ID{Rank: rank, Slice: slice, Member: member}
}

// Less reports whether id sorts before other under the total,
// lexicographic (rank, slice, member) ordering.
func (id ID) Less(other ID) bool {
	if id.Rank != other.Rank {
		return id.Rank < other.Rank
	}
	if id.Slice != other.Slice {
		return id.Slice < other.Slice
	}
	return id.Member < other.Member
}

// Members returns the (rank, slice, member) triple.
func (id ID) Members() (rank, slice, member uint8) {
	return id.Rank, id.Slice, id.Member
}

func (id ID) String() string {
	return fmt.Sprintf("dpu(%d.%d.%d)", id.Rank, id.Slice, id.Member)
}

// ProcessID identifies the host-side owner of a DPU reservation.
type ProcessID uint64

// AllocationInfo records which process currently owns a reserved DPU.
type AllocationInfo struct {
	Owner ProcessID
}

// Mapping tracks the reservation state of a fixed pool of DPUs. It is not
// used on the execution pipeline's hot path (groups are fixed at pipeline
// construction) but is the bookkeeping primitive that cluster construction
// uses to hand out the DPUs a Cluster is built from.
type Mapping struct {
	reserved  map[ID]AllocationInfo
	available []ID
}

// NewMapping returns a Mapping in which every DPU in dpus is available.
func NewMapping(dpus []ID) *Mapping {
	return &Mapping{
		reserved:  make(map[ID]AllocationInfo, len(dpus)),
		available: append([]ID(nil), dpus...),
	}
}

// Reserve hands out the next available DPU to owner, in the order the pool
// was constructed with, or reports ok=false if none remain.
func (m *Mapping) Reserve(owner ProcessID) (id ID, ok bool) {
	if len(m.available) == 0 {
		return ID{}, false
	}
	id = m.available[0]
	m.available = m.available[1:]
	m.reserved[id] = AllocationInfo{Owner: owner}
	return id, true
}

// Release returns dpu to the available pool, reporting the allocation info
// that was recorded for it, or ok=false if it was not reserved.
func (m *Mapping) Release(id ID) (info AllocationInfo, ok bool) {
	info, ok = m.reserved[id]
	if !ok {
		return AllocationInfo{}, false
	}
	delete(m.reserved, id)
	m.available = append(m.available, id)
	return info, true
}
