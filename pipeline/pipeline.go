package pipeline

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nimbus-dpu/dpucluster/clusterdriver"
)

// boundedCapacity sizes the bounded input/output channels at twice the
// slice count, the backpressure valve between the user iterator and the
// cluster on one side and the result consumer on the other.
func boundedCapacity(nrSlices int) int {
	n := 2 * nrSlices
	if n < 2 {
		n = 2
	}
	return n
}

// send delivers v on ch unless quit fires first. Stages use it for every
// send that can block indefinitely once the caller has stopped draining
// results, so that closing quit unwinds them the way a dropped receiver
// would.
func send[T any](ch chan<- T, v T, quit <-chan struct{}) bool {
	select {
	case ch <- v:
		return true
	case <-quit:
		return false
	}
}

// closeOutputWhenDrained closes outputCh once every stage that can send on
// it has exited. Closing from a single place keeps the quit path honest: a
// stage unwound early by quit must never race a send against the close.
func closeOutputWhenDrained[K any](outputCh chan OutputResult[K], dones ...chan struct{}) {
	go func() {
		for _, d := range dones {
			<-d
		}
		close(outputCh)
	}()
}

// commonStages is the set of channels and "done" signals shared by both
// builder types: S3 (Loader), S4 (Tracker) and S5 (Fetcher) only ever need
// the caller key type K, so they are spawned once from shared code and the
// Simple/Persistent plans differ only in how S1/S2 feed the transfer
// channel and drain the free-group channel.
type commonStages[K any] struct {
	transferCh  chan groupBatch[K]
	freeGroupCh chan DpuGroup
	outputCh    chan OutputResult[K]

	done3, done4, done5 chan struct{}
}

func startCommonStages[K any](driver clusterdriver.Driver, groups []DpuGroup, nrSlices int, opts baseOptions, runID uuid.UUID, quit chan struct{}) *commonStages[K] {
	// The "unbounded" mid-pipeline channels are buffered at the fixed
	// group count: at most nrGroups items can be alive across the system,
	// so sends on them never block.
	nrGroups := len(groups)
	if nrGroups == 0 {
		nrGroups = 1
	}

	cs := &commonStages[K]{
		transferCh:  make(chan groupBatch[K], nrGroups),
		freeGroupCh: make(chan DpuGroup, nrGroups),
		outputCh:    make(chan OutputResult[K], boundedCapacity(nrSlices)),
		done3:       make(chan struct{}),
		done4:       make(chan struct{}),
		done5:       make(chan struct{}),
	}

	jobCh := make(chan GroupJob[K], nrGroups)
	finishCh := make(chan finishedJob[K], nrGroups)

	go runLoader(driver, opts.monitor, runID, cs.transferCh, jobCh, cs.outputCh, quit, cs.done3)
	go runTracker(driver, opts.monitor, runID, opts.clock, opts.pollInterval, jobCh, finishCh, cs.freeGroupCh, cs.outputCh, quit, cs.done4)
	go runFetcher(driver, opts.monitor, runID, finishCh, cs.freeGroupCh, cs.outputCh, quit, cs.done5)

	return cs
}

// Output is the finite, lazy result sequence Build() returns. It owns the
// five stage goroutines and the shared shutdown flag; the caller must
// Close it, which gracefully drains and shuts the pipeline down.
type Output[K any] struct {
	RunID uuid.UUID

	resultsCh chan OutputResult[K]
	shutdown  *atomic.Bool
	quit      chan struct{}
	done      [5]chan struct{}

	closed atomic.Bool
}

// Results returns the channel callers range over to consume
// OutputResults. It is closed once the pipeline has fully drained.
func (o *Output[K]) Results() <-chan OutputResult[K] {
	return o.resultsCh
}

// Close requests shutdown and blocks until every stage has exited,
// joining in stage order S1->S5. Items still in flight are dropped
// silently; in-flight driver calls complete normally first.
func (o *Output[K]) Close() {
	if !o.closed.CompareAndSwap(false, true) {
		return
	}
	o.shutdown.Store(true)
	close(o.quit)
	for _, d := range o.done {
		<-d
	}
}
