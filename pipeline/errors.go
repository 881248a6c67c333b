package pipeline

import (
	"fmt"

	"github.com/nimbus-dpu/dpucluster/dpu"
)

// PipelineError is the closed sum type of errors a running pipeline can
// surface on its output channel, discriminated with errors.As.
type PipelineError interface {
	error
	isPipelineError()
}

// InfrastructureError reports that a driver call failed. On the Loader and
// Fetcher error paths exactly one InfrastructureError is raised per failed
// batch, not per item; the remaining items of that batch receive no result
// at all.
type InfrastructureError struct {
	Cause error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("pipeline: infrastructure error: %v", e.Cause)
}
func (e *InfrastructureError) Unwrap() error { return e.Cause }
func (*InfrastructureError) isPipelineError() {}

// ExecutionError reports that a DPU halted on a fault while running.
type ExecutionError struct {
	Dpu dpu.ID
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("pipeline: execution error on %s", e.Dpu)
}
func (*ExecutionError) isPipelineError() {}

// UnknownFragmentID reports that a persistent-model input named a fragment
// id that was never registered.
type UnknownFragmentID struct {
	FragmentID any
}

func (e *UnknownFragmentID) Error() string {
	return fmt.Sprintf("pipeline: unknown fragment id %v", e.FragmentID)
}
func (*UnknownFragmentID) isPipelineError() {}

var (
	_ PipelineError = (*InfrastructureError)(nil)
	_ PipelineError = (*ExecutionError)(nil)
	_ PipelineError = (*UnknownFragmentID)(nil)
)

// ErrUndefinedCluster is returned from Build() when no cluster was
// supplied to the plan.
var ErrUndefinedCluster = fmt.Errorf("pipeline: no cluster supplied to build()")

// NotEnoughResourcesError describes a shortfall of DPUs in pipeline terms.
// It mirrors cluster.NotEnoughResourcesError; neither Build() returns it,
// since a shortfall is reported by cluster.Create before a plan is built.
type NotEnoughResourcesError struct {
	Expected uint32
	Found    uint32
}

func (e *NotEnoughResourcesError) Error() string {
	return fmt.Sprintf("pipeline: not enough resources: expected %d, found %d", e.Expected, e.Found)
}
