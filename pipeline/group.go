package pipeline

import (
	"sort"

	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/dpu"
)

// GroupPolicy selects how a Cluster's DPUs are partitioned into DpuGroups.
type GroupPolicy int

const (
	// PerSlice groups all slices at a given (rank, member) position
	// together, letting one input-memory transfer fan out across slices
	// via the driver's transfer-matrix primitive. This is the default.
	PerSlice GroupPolicy = iota
	// PerDpu puts every DPU in its own group: maximum parallelism of
	// distinct programs, minimum batch width.
	PerDpu
)

// buildGroups partitions c's DPUs into DpuGroups according to policy, in a
// deterministic order so tests can reason about which group a given input
// lands in.
func buildGroups(c *cluster.Cluster, policy GroupPolicy) []DpuGroup {
	switch policy {
	case PerDpu:
		return buildPerDpuGroups(c)
	default:
		return buildPerSliceGroups(c)
	}
}

func buildPerDpuGroups(c *cluster.Cluster) []DpuGroup {
	var groups []DpuGroup
	var id GroupId
	for r := 0; r < c.NrRanks(); r++ {
		for s := 0; s < c.NrSlices(); s++ {
			for m := 0; m < c.NrMembers(); m++ {
				d := c.At(r, s, m)
				groups = append(groups, newGroup(id, []dpu.ID{d}))
				id++
			}
		}
	}
	return groups
}

func buildPerSliceGroups(c *cluster.Cluster) []DpuGroup {
	var groups []DpuGroup
	var id GroupId
	for r := 0; r < c.NrRanks(); r++ {
		for m := 0; m < c.NrMembers(); m++ {
			var dpus []dpu.ID
			for s := 0; s < c.NrSlices(); s++ {
				dpus = append(dpus, c.At(r, s, m))
			}
			sort.Slice(dpus, func(i, j int) bool { return dpus[i].Less(dpus[j]) })
			groups = append(groups, newGroup(id, dpus))
			id++
		}
	}
	return groups
}

func newGroup(id GroupId, dpus []dpu.ID) DpuGroup {
	return DpuGroup{ID: id, Dpus: dpus, Active: append([]dpu.ID(nil), dpus...)}
}
