package clusterdriver

import "github.com/nimbus-dpu/dpucluster/dpu"

// RunStatus is the lattice Idle <= Running <= Fault that FetchStatus
// reports and that the Tracker stage (S4) merges across the DPUs of a
// group.
type RunStatus struct {
	state  runState
	faults []dpu.ID
}

type runState int

const (
	stateIdle runState = iota
	stateRunning
	stateFault
)

// Idle is the bottom element: no DPU in the queried view is running or
// faulted.
func Idle() RunStatus { return RunStatus{state: stateIdle} }

// Running reports that at least one DPU in the queried view is still
// executing and none has faulted.
func Running() RunStatus { return RunStatus{state: stateRunning} }

// Fault is the top element: at least one DPU in the queried view halted on
// a fault. faults lists which ones.
func Fault(faults []dpu.ID) RunStatus {
	return RunStatus{state: stateFault, faults: append([]dpu.ID(nil), faults...)}
}

// IsIdle, IsRunning and IsFault report which lattice element s occupies.
func (s RunStatus) IsIdle() bool    { return s.state == stateIdle }
func (s RunStatus) IsRunning() bool { return s.state == stateRunning }
func (s RunStatus) IsFault() bool   { return s.state == stateFault }

// Faults returns the DPUs reported faulted, or nil if s is not Fault.
func (s RunStatus) Faults() []dpu.ID {
	return append([]dpu.ID(nil), s.faults...)
}

// Merge combines two statuses observed for (possibly overlapping) DPU
// subsets into the least upper bound: Idle merges away into whatever the
// other side is, Running beats Idle, and Fault beats everything, with two
// Faults concatenating their DPU lists rather than one replacing the
// other. Fault sets accumulate, they never overwrite.
func (s RunStatus) Merge(other RunStatus) RunStatus {
	switch {
	case s.state == stateFault && other.state == stateFault:
		return Fault(append(append([]dpu.ID(nil), s.faults...), other.faults...))
	case s.state == stateFault:
		return s
	case other.state == stateFault:
		return other
	case s.state == stateRunning || other.state == stateRunning:
		return Running()
	default:
		return Idle()
	}
}
