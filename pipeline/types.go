// Package pipeline implements the five-stage, thread-per-stage engine that
// streams work items through a DPU cluster in either the Simple or
// Persistent execution model. It is generic over the caller's work-item
// type I, caller key type K and, for the persistent model, fragment id type
// D, so each pipeline instance monomorphizes to zero-overhead code and only
// the transfer function and iterators are erased behind capability
// interfaces at the channel boundary.
package pipeline

import "github.com/nimbus-dpu/dpucluster/dpu"

// GroupId identifies a DpuGroup for the lifetime of a pipeline.
type GroupId uint32

// DpuGroup is a batch of DPUs that runs one job in lockstep. Active is the
// subset of Dpus actually in use: for the simple model Active always equals
// Dpus, but for the persistent model it narrows to the DPUs that received a
// pinned fragment. Downstream stages operate on Active, never Dpus.
type DpuGroup struct {
	ID     GroupId
	Dpus   []dpu.ID
	Active []dpu.ID
}

// InputMemoryTransfer describes one input payload destined for a DPU's
// working memory.
type InputMemoryTransfer struct {
	Offset uint32
	Bytes  []byte
}

// OutputMemoryTransfer describes where and how much a DPU's result
// occupies in working memory.
type OutputMemoryTransfer struct {
	Offset uint32
	Length uint32
}

// MemoryTransfers is one work item's full memory description: an ordered
// list of inputs (all written to the item's DPU, entry j in the Loader's
// j-th transfer matrix), a
// single output descriptor, and the caller's opaque key, echoed unchanged
// in the result.
type MemoryTransfers[K any] struct {
	Inputs []InputMemoryTransfer
	Output OutputMemoryTransfer
	Key    K
}

// batchEntry pairs one DPU's worth of a GroupJob's aligned input/output
// descriptors, keyed by the DPU in the group that the entry belongs to.
type batchEntry[K any] struct {
	dpu    dpu.ID
	inputs []InputMemoryTransfer
	key    K
	output OutputMemoryTransfer
}

// groupBatch is what S2 ships to S3: a group together with the aligned,
// per-DPU input and output descriptors the Loader needs.
type groupBatch[K any] struct {
	group   DpuGroup
	entries []batchEntry[K]
}

// GroupJob is what S3 ships to S4: the group plus, per DPU that received
// an item in the batch, the output descriptor and caller key to echo back
// once the job finishes.
type GroupJob[K any] struct {
	Group   DpuGroup
	Outputs []keyedOutput[K]
}

type keyedOutput[K any] struct {
	dpu    dpu.ID
	key    K
	output OutputMemoryTransfer
}

// finishedJob is what S4 ships to S5 once a job's DPUs have all gone idle.
type finishedJob[K any] struct {
	group   DpuGroup
	outputs []keyedOutput[K]
}

// OutputResult is one (key, bytes) pair or an error, delivered on the
// output channel in no guaranteed cross-DPU order.
type OutputResult[K any] struct {
	Key   K
	Bytes []byte
	Err   PipelineError
}
