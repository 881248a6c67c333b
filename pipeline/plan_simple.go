package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/program"
	"github.com/nimbus-dpu/dpucluster/view"
)

// SimplePlan builds a pipeline for the Simple execution model: every work
// item carries its own complete input payload and any idle DPU may serve
// it.
type SimplePlan[I, K any] struct {
	baseOptions

	iterator   Iterator[I]
	transferFn func(I) MemoryTransfers[K]
}

// NewSimplePlan returns a SimplePlan that will pull work items from it and
// convert each one to its memory description via transferFn.
func NewSimplePlan[I, K any](it Iterator[I], transferFn func(I) MemoryTransfers[K]) *SimplePlan[I, K] {
	return &SimplePlan[I, K]{baseOptions: newBaseOptions(), iterator: it, transferFn: transferFn}
}

// WithCluster supplies the cluster handle to build against. Required.
func (p *SimplePlan[I, K]) WithCluster(c *cluster.Cluster) *SimplePlan[I, K] {
	p.withCluster(c)
	return p
}

// WithProgram supplies a program image to load at Build() time.
func (p *SimplePlan[I, K]) WithProgram(prog *program.Program) *SimplePlan[I, K] {
	p.withProgram(prog)
	return p
}

// WithGroupPolicy overrides the default PerSlice group-formation policy.
func (p *SimplePlan[I, K]) WithGroupPolicy(policy GroupPolicy) *SimplePlan[I, K] {
	p.withGroupPolicy(policy)
	return p
}

// WithMonitor overrides the default SilentMonitor.
func (p *SimplePlan[I, K]) WithMonitor(m Monitor) *SimplePlan[I, K] {
	p.withMonitor(m)
	return p
}

// WithPollInterval overrides the Tracker's default poll interval.
func (p *SimplePlan[I, K]) WithPollInterval(d time.Duration) *SimplePlan[I, K] {
	p.withPollInterval(d)
	return p
}

// WithClock overrides the clock.Clock used for the Tracker's poll sleeps,
// letting tests inject a fake clock.
func (p *SimplePlan[I, K]) WithClock(c clock.Clock) *SimplePlan[I, K] {
	p.withClock(c)
	return p
}

// Build constructs and starts the five stage goroutines and returns the
// Output the caller drains.
func (p *SimplePlan[I, K]) Build() (*Output[K], error) {
	if p.cluster == nil {
		return nil, ErrUndefinedCluster
	}

	runID := uuid.New()
	driver := p.cluster.Driver()

	monitor := p.monitor
	monitor.Emit(Initialization{
		eventBase{RunID: runID, Stage: StagePipeline},
		p.cluster.NrRanks(), p.cluster.NrSlices(), driver.NrOfDpus(),
	})

	if p.program != nil {
		monitor.Emit(LoadingProgramBegin{
			eventBase{RunID: runID, Stage: StagePipeline},
			p.program.NrInstructionBytes(), p.program.NrDataBytes(),
		})
		if err := driver.Load(context.Background(), view.All(), p.program); err != nil {
			return nil, &InfrastructureError{Cause: err}
		}
		monitor.Emit(LoadingProgramEnd{eventBase{RunID: runID, Stage: StagePipeline}})
	}

	groups := buildGroups(p.cluster, p.groupPolicy)

	shutdown := new(atomic.Bool)
	quit := make(chan struct{})
	cs := startCommonStages[K](driver, groups, p.cluster.NrSlices(), p.baseOptions, runID, quit)

	inputCh := make(chan I, boundedCapacity(p.cluster.NrSlices()))
	done1 := make(chan struct{})
	done2 := make(chan struct{})

	go runInitializer(p.iterator, inputCh, shutdown, monitor, runID, quit, done1)
	go runMapperSimple(inputCh, p.transferFn, groups, cs.freeGroupCh, cs.transferCh, monitor, runID, quit, done2)
	closeOutputWhenDrained(cs.outputCh, done2, cs.done3, cs.done4, cs.done5)

	return &Output[K]{
		RunID:     runID,
		resultsCh: cs.outputCh,
		shutdown:  shutdown,
		quit:      quit,
		done:      [5]chan struct{}{done1, done2, cs.done3, cs.done4, cs.done5},
	}, nil
}
