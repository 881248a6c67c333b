// Package simdriver provides a deterministic, in-process implementation of
// clusterdriver.Driver for tests and for cmd/dpu-pipeline. It never
// touches real hardware: each DPU is modeled as a byte-addressable memory
// buffer and a fixed transform function applied at Boot.
package simdriver

import (
	"context"
	"sync"

	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/dpu"
	"github.com/nimbus-dpu/dpucluster/memtransfer"
	"github.com/nimbus-dpu/dpucluster/program"
	"github.com/nimbus-dpu/dpucluster/view"
)

// Transform computes the bytes a DPU writes to outOffset, given the bytes
// found at inOffset after the most recent CopyToMemory. The zero Transform
// (nil) defaults to Identity.
type Transform func(in []byte) []byte

// Identity adds 2 to every input byte: the simulator's stand-in for a
// fixed DPU program that copies input+2 to output.
func Identity(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b + 2
	}
	return out
}

type dpuMemory struct {
	mu  sync.Mutex
	mem map[uint32][]byte
}

// Driver is an in-memory clusterdriver.Driver implementation.
type Driver struct {
	mu        sync.Mutex
	topology  []dpu.ID
	mem       map[dpu.ID]*dpuMemory
	transform Transform
	inOffset  uint32
	outOffset uint32

	faultOnce map[dpu.ID]bool // DPUs that should report Fault on the next FetchStatus
}

// New returns a Driver managing nrRanks*nrSlices*nrMembers DPUs, applying
// transform (default Identity) to data written at inOffset and exposing the
// result for readback at outOffset.
func New(nrRanks, nrSlices, nrMembers int, transform Transform, inOffset, outOffset uint32) *Driver {
	if transform == nil {
		transform = Identity
	}
	d := &Driver{
		mem:       make(map[dpu.ID]*dpuMemory),
		transform: transform,
		inOffset:  inOffset,
		outOffset: outOffset,
		faultOnce: make(map[dpu.ID]bool),
	}
	for r := 0; r < nrRanks; r++ {
		for s := 0; s < nrSlices; s++ {
			for m := 0; m < nrMembers; m++ {
				id := dpu.New(uint8(r), uint8(s), uint8(m))
				d.topology = append(d.topology, id)
				d.mem[id] = &dpuMemory{mem: make(map[uint32][]byte)}
			}
		}
	}
	return d
}

// InjectFault arranges for FetchStatus to report id as faulted exactly
// once, the next time it is queried.
func (d *Driver) InjectFault(id dpu.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faultOnce[id] = true
}

func (d *Driver) dpus(v view.View) []dpu.ID {
	if v.IsAll() {
		return append([]dpu.ID(nil), d.topology...)
	}
	id, _ := v.DPU()
	return []dpu.ID{id}
}

// Load is a no-op that always succeeds: simdriver's transform is fixed and
// does not depend on the program image's contents.
func (d *Driver) Load(ctx context.Context, v view.View, p *program.Program) error {
	return nil
}

// CopyToMemory writes every entry in t into its target DPU's buffer.
func (d *Driver) CopyToMemory(ctx context.Context, t *memtransfer.Transfer) error {
	for _, rank := range t.Ranks() {
		for id, entry := range rank {
			dm, ok := d.mem[id]
			if !ok {
				return clusterdriver.Wrap(clusterdriver.InvalidCommandInState, nil)
			}
			dm.mu.Lock()
			buf := make([]byte, len(entry.Bytes))
			copy(buf, entry.Bytes)
			dm.mem[entry.Offset] = buf
			dm.mu.Unlock()
		}
	}
	return nil
}

// CopyFromMemory fills every entry in t from its source DPU's buffer.
func (d *Driver) CopyFromMemory(ctx context.Context, t *memtransfer.Transfer) error {
	for _, rank := range t.Ranks() {
		for id, entry := range rank {
			dm, ok := d.mem[id]
			if !ok {
				return clusterdriver.Wrap(clusterdriver.InvalidCommandInState, nil)
			}
			dm.mu.Lock()
			copy(entry.Bytes, dm.mem[entry.Offset])
			dm.mu.Unlock()
		}
	}
	return nil
}

// Boot applies the driver's transform to every selected DPU's input buffer,
// writing the result to the output offset.
func (d *Driver) Boot(ctx context.Context, v view.View) error {
	for _, id := range d.dpus(v) {
		dm := d.mem[id]
		dm.mu.Lock()
		in := dm.mem[d.inOffset]
		dm.mem[d.outOffset] = d.transform(in)
		dm.mu.Unlock()
	}
	return nil
}

// FetchStatus reports Fault for any DPU with a pending injected fault
// (consuming it), else Idle.
func (d *Driver) FetchStatus(ctx context.Context, v view.View) (clusterdriver.RunStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var faulted []dpu.ID
	for _, id := range d.dpus(v) {
		if d.faultOnce[id] {
			faulted = append(faulted, id)
			delete(d.faultOnce, id)
		}
	}
	if len(faulted) > 0 {
		return clusterdriver.Fault(faulted), nil
	}
	return clusterdriver.Idle(), nil
}

// NrOfDpus returns the total number of DPUs this driver manages.
func (d *Driver) NrOfDpus() int { return len(d.topology) }

// Topology returns every DPU ID this driver manages.
func (d *Driver) Topology() []dpu.ID {
	return append([]dpu.ID(nil), d.topology...)
}

var _ clusterdriver.Driver = (*Driver)(nil)
