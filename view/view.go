// Package view implements the small view algebra the pipeline uses to
// address the driver. The pipeline itself only ever constructs One and
// All; the richer per-rank/per-slice selection algebra a driver may
// support internally is out of scope here.
package view

import "github.com/nimbus-dpu/dpucluster/dpu"

type kind int

const (
	kindAll kind = iota
	kindOne
)

// View describes which DPUs an operation targets.
type View struct {
	kind kind
	dpu  dpu.ID
}

// All returns a View selecting every DPU in the cluster.
func All() View {
	return View{kind: kindAll}
}

// One returns a View selecting exactly the given DPU.
func One(id dpu.ID) View {
	return View{kind: kindOne, dpu: id}
}

// IsAll reports whether v is the all-DPUs view.
func (v View) IsAll() bool {
	return v.kind == kindAll
}

// DPU returns the single DPU this view selects and true, or the zero ID and
// false if v is not a single-DPU view.
func (v View) DPU() (dpu.ID, bool) {
	if v.kind != kindOne {
		return dpu.ID{}, false
	}
	return v.dpu, true
}
