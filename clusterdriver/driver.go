// Package clusterdriver defines the capability contract a DPU cluster
// driver implements. The pipeline package depends only on this interface;
// simdriver provides a deterministic in-memory implementation for tests and
// cmd/dpu-pipeline, and production code would supply one backed by the real
// hardware FFI layer.
package clusterdriver

import (
	"context"

	"github.com/nimbus-dpu/dpucluster/dpu"
	"github.com/nimbus-dpu/dpucluster/memtransfer"
	"github.com/nimbus-dpu/dpucluster/program"
	"github.com/nimbus-dpu/dpucluster/view"
)

// Driver is the capability surface the pipeline requires from a DPU
// cluster. Load, Boot and FetchStatus take a view.View selecting which DPUs
// the call addresses; the memory copies address DPUs through the entries of
// their memtransfer.Transfer. Implementations must be internally thread-safe for
// independent operations on disjoint DPUs: the pipeline's stages issue
// CopyToMemory, Boot, FetchStatus and CopyFromMemory concurrently.
//
//go:generate mockgen -destination=../pipeline/mocks/driver.go -package=mocks github.com/nimbus-dpu/dpucluster/clusterdriver Driver
type Driver interface {
	// Load installs p into the memory of every DPU selected by v.
	Load(ctx context.Context, v view.View, p *program.Program) error

	// CopyToMemory writes t's entries into DPU working memory.
	CopyToMemory(ctx context.Context, t *memtransfer.Transfer) error

	// CopyFromMemory reads DPU working memory into t's entries in place.
	CopyFromMemory(ctx context.Context, t *memtransfer.Transfer) error

	// Boot starts execution on every DPU selected by v.
	Boot(ctx context.Context, v view.View) error

	// FetchStatus reports the merged RunStatus of every DPU selected by v.
	FetchStatus(ctx context.Context, v view.View) (RunStatus, error)

	// NrOfDpus returns the total number of DPUs under this driver's
	// management, independent of any View.
	NrOfDpus() int

	// Topology returns every DPU ID under this driver's management, in
	// ascending dpu.ID order.
	Topology() []dpu.ID
}
