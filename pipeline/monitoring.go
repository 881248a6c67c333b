package pipeline

import (
	"github.com/google/uuid"
	"github.com/nimbus-dpu/dpucluster/dpu"
)

// Stage identifies which pipeline component emitted an Event.
type Stage int

const (
	StagePipeline Stage = iota
	StageInitializer
	StageMapper
	StageLoader
	StageTracker
	StageFetcher
)

func (s Stage) String() string {
	switch s {
	case StagePipeline:
		return "pipeline"
	case StageInitializer:
		return "initializer"
	case StageMapper:
		return "mapper"
	case StageLoader:
		return "loader"
	case StageTracker:
		return "tracker"
	case StageFetcher:
		return "fetcher"
	default:
		return "unknown"
	}
}

// Event is the closed sum type of monitoring notifications the pipeline
// emits. Receivers must treat delivery as fire-and-forget and
// non-blocking; a Monitor implementation that can block the pipeline is a
// bug in that implementation, not a pipeline contract violation.
type Event interface {
	isEvent()
}

type eventBase struct {
	RunID uuid.UUID
	Stage Stage
}

func (eventBase) isEvent() {}

// Initialization is emitted once at Build() with the cluster's rank and
// slice counts and the driver's total DPU count (Driver.NrOfDpus).
type Initialization struct {
	eventBase
	NrRanks, NrSlices, NrDpus int
}

// LoadingProgramBegin/LoadingProgramEnd bracket the optional program load
// issued at Build() time.
type LoadingProgramBegin struct {
	eventBase
	NrInstructions, NrDataBytes int
}
type LoadingProgramEnd struct{ eventBase }

// ProcessBegin/ProcessEnd bracket S1's lifetime.
type ProcessBegin struct{ eventBase }
type ProcessEnd struct{ eventBase }

// NewInput is emitted by S1 for every item pulled from the user iterator.
type NewInput struct{ eventBase }

// GroupSearchBegin/GroupSearchEnd bracket S2 blocking for a free group.
type GroupSearchBegin struct{ eventBase }
type GroupSearchEnd struct {
	eventBase
	Group GroupId
}

// GroupLoadingBegin/GroupLoadingEnd bracket S3's transfer+boot sequence.
type GroupLoadingBegin struct {
	eventBase
	Group GroupId
}
type GroupLoadingEnd struct {
	eventBase
	Group GroupId
}

// JobExecutionTrackingBegin/End bracket S4's tracking of one job.
type JobExecutionTrackingBegin struct {
	eventBase
	Group GroupId
}
type JobExecutionTrackingEnd struct {
	eventBase
	Group GroupId
}

// OutputFetchingBegin/End bracket S5's readback sequence.
type OutputFetchingBegin struct {
	eventBase
	Group GroupId
}
type OutputFetchingEnd struct {
	eventBase
	Group GroupId
}

// OutputFetchingInfo is emitted once per DPU inside an OutputFetching
// bracket, reporting what is being read back from where.
type OutputFetchingInfo struct {
	eventBase
	Group          GroupId
	Dpu            dpu.ID
	Offset, Length uint32
}

// Monitor is the fire-and-forget monitoring sink the pipeline emits Events
// to. Implementations must not block the caller.
//
//go:generate mockgen -destination=mocks/monitor.go -package=mocks github.com/nimbus-dpu/dpucluster/pipeline Monitor
type Monitor interface {
	Emit(Event)
}

// SilentMonitor is the default Monitor: it drops every event.
type SilentMonitor struct{}

// Emit implements Monitor by discarding ev.
func (SilentMonitor) Emit(Event) {}

var _ Monitor = SilentMonitor{}
