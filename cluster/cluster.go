// Package cluster binds a clusterdriver.Driver to the subset of DPUs a
// particular caller has reserved, handing the pipeline package an
// already-validated handle that pairs the driver with its reserved
// rank/slice/member grid.
package cluster

import (
	"fmt"
	"sort"

	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/dpu"
)

// Configuration describes the shape of Cluster a caller wants built:
// how many ranks, slices per rank and members per slice to reserve, drawn
// from whatever topology the underlying Driver reports.
type Configuration struct {
	NrRanks   int
	NrSlices  int
	NrMembers int
}

// NrDpus returns the total DPU count this configuration requests.
func (c Configuration) NrDpus() int {
	return c.NrRanks * c.NrSlices * c.NrMembers
}

// NotEnoughResourcesError reports that fewer DPUs were available than a
// Configuration required.
type NotEnoughResourcesError struct {
	Requested int
	Available int
}

func (e *NotEnoughResourcesError) Error() string {
	return fmt.Sprintf("cluster: not enough resources: requested %d dpus, %d available", e.Requested, e.Available)
}

// Cluster is a validated, reserved handle onto a subset of a Driver's DPUs,
// arranged into the rank/slice/member grid a Configuration described.
type Cluster struct {
	driver  clusterdriver.Driver
	mapping *dpu.Mapping
	owner   dpu.ProcessID
	grid    [][][]dpu.ID // [rank][slice][member]
}

// Create reserves cfg.NrDpus() DPUs from driver's topology and arranges them
// into a rank/slice/member grid, in ascending dpu.ID order, failing with
// *NotEnoughResourcesError if the driver does not manage enough DPUs. This
// is a build-time failure: it never occurs once a Cluster exists.
func Create(driver clusterdriver.Driver, owner dpu.ProcessID, cfg Configuration) (*Cluster, error) {
	all := append([]dpu.ID(nil), driver.Topology()...)
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })

	needed := cfg.NrDpus()
	if len(all) < needed {
		return nil, &NotEnoughResourcesError{Requested: needed, Available: len(all)}
	}

	mapping := dpu.NewMapping(all)
	grid := make([][][]dpu.ID, cfg.NrRanks)
	idx := 0
	for r := 0; r < cfg.NrRanks; r++ {
		grid[r] = make([][]dpu.ID, cfg.NrSlices)
		for s := 0; s < cfg.NrSlices; s++ {
			grid[r][s] = make([]dpu.ID, cfg.NrMembers)
			for m := 0; m < cfg.NrMembers; m++ {
				id, ok := mapping.Reserve(owner)
				if !ok {
					return nil, &NotEnoughResourcesError{Requested: needed, Available: idx}
				}
				grid[r][s][m] = id
				idx++
			}
		}
	}

	return &Cluster{driver: driver, mapping: mapping, owner: owner, grid: grid}, nil
}

// Driver returns the underlying clusterdriver.Driver.
func (c *Cluster) Driver() clusterdriver.Driver { return c.driver }

// At returns the DPU ID occupying the given rank/slice/member position.
func (c *Cluster) At(rank, slice, member int) dpu.ID {
	return c.grid[rank][slice][member]
}

// NrRanks, NrSlices and NrMembers report this Cluster's grid dimensions.
func (c *Cluster) NrRanks() int   { return len(c.grid) }
func (c *Cluster) NrSlices() int  { return len(c.grid[0]) }
func (c *Cluster) NrMembers() int { return len(c.grid[0][0]) }

// All returns every DPU this Cluster reserved, in rank-major, then-slice,
// then-member order.
func (c *Cluster) All() []dpu.ID {
	out := make([]dpu.ID, 0, c.NrRanks()*c.NrSlices()*c.NrMembers())
	for _, rank := range c.grid {
		for _, slice := range rank {
			out = append(out, slice...)
		}
	}
	return out
}

// Release returns every DPU this Cluster reserved back to the available
// pool of the Cluster's own dpu.Mapping.
func (c *Cluster) Release() {
	for _, id := range c.All() {
		c.mapping.Release(id)
	}
}
