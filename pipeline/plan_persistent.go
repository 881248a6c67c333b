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

// PersistentPlan builds a pipeline for the Persistent execution model: the
// cluster is first loaded with a fixed set of immutable fragments pinned
// to specific DPUs, and each work item names the fragment it targets.
type PersistentPlan[I, K any, D comparable] struct {
	baseOptions

	iterator     Iterator[I]
	itemFn       func(I) (D, MemoryTransfers[K])
	fragmentIter Iterator[FragmentEntry[D]]
}

// NewPersistentPlan returns a PersistentPlan that pins fragments from
// fragmentIter, then pulls work items from it and routes each one via
// itemFn's fragment id.
func NewPersistentPlan[I, K any, D comparable](
	it Iterator[I],
	itemFn func(I) (D, MemoryTransfers[K]),
	fragmentIter Iterator[FragmentEntry[D]],
) *PersistentPlan[I, K, D] {
	return &PersistentPlan[I, K, D]{
		baseOptions:  newBaseOptions(),
		iterator:     it,
		itemFn:       itemFn,
		fragmentIter: fragmentIter,
	}
}

// WithCluster supplies the cluster handle to build against. Required.
func (p *PersistentPlan[I, K, D]) WithCluster(c *cluster.Cluster) *PersistentPlan[I, K, D] {
	p.withCluster(c)
	return p
}

// WithProgram supplies a program image to load at Build() time.
func (p *PersistentPlan[I, K, D]) WithProgram(prog *program.Program) *PersistentPlan[I, K, D] {
	p.withProgram(prog)
	return p
}

// WithGroupPolicy overrides the default PerSlice group-formation policy.
func (p *PersistentPlan[I, K, D]) WithGroupPolicy(policy GroupPolicy) *PersistentPlan[I, K, D] {
	p.withGroupPolicy(policy)
	return p
}

// WithMonitor overrides the default SilentMonitor.
func (p *PersistentPlan[I, K, D]) WithMonitor(m Monitor) *PersistentPlan[I, K, D] {
	p.withMonitor(m)
	return p
}

// WithPollInterval overrides the Tracker's default poll interval.
func (p *PersistentPlan[I, K, D]) WithPollInterval(d time.Duration) *PersistentPlan[I, K, D] {
	p.withPollInterval(d)
	return p
}

// WithClock overrides the clock.Clock used for the Tracker's poll sleeps.
func (p *PersistentPlan[I, K, D]) WithClock(c clock.Clock) *PersistentPlan[I, K, D] {
	p.withClock(c)
	return p
}

// Build constructs and starts the five stage goroutines and returns the
// Output the caller drains. The S2 goroutine pins the fragments
// fragmentIter supplies, one per DPU, before it consumes any work item;
// fragments beyond the number of DPUs are dropped.
func (p *PersistentPlan[I, K, D]) Build() (*Output[K], error) {
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
	go runMapperPersistent[I, K, D](driver, p.fragmentIter, inputCh, p.itemFn, groups, cs.freeGroupCh, cs.transferCh, cs.outputCh, monitor, runID, quit, done2)
	closeOutputWhenDrained(cs.outputCh, done2, cs.done3, cs.done4, cs.done5)

	return &Output[K]{
		RunID:     runID,
		resultsCh: cs.outputCh,
		shutdown:  shutdown,
		quit:      quit,
		done:      [5]chan struct{}{done1, done2, cs.done3, cs.done4, cs.done5},
	}, nil
}
