package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/view"
)

// runTracker is S4: it polls every pending job's DPUs and classifies each
// as still running, finished, or faulted. The pipeline only ever
// constructs single-DPU and all-DPUs views, so a group's status is
// obtained by polling each active DPU individually and merging the
// results under the Idle<=Running<=Fault lattice
// (clusterdriver.RunStatus.Merge), rather than relying on a richer
// view-tree the driver might support internally.
//
// A faulted or error-reporting job is discarded without fetching, but its
// group goes back on the free-group channel: the fault belongs to the
// booted program, not the group's hardware, and holding the group hostage
// would starve the mapper on small clusters.
func runTracker[K any](
	driver clusterdriver.Driver,
	monitor Monitor,
	runID uuid.UUID,
	clk clock.Clock,
	pollInterval time.Duration,
	jobCh <-chan GroupJob[K],
	finishCh chan<- finishedJob[K],
	freeGroupCh chan<- DpuGroup,
	outputCh chan<- OutputResult[K],
	quit <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)
	defer close(finishCh)

	ctx := context.Background()
	pending := make(map[GroupId]GroupJob[K])
	inputClosed := false

	addJob := func(job GroupJob[K]) {
		monitor.Emit(JobExecutionTrackingBegin{eventBase{RunID: runID, Stage: StageTracker}, job.Group.ID})
		pending[job.Group.ID] = job
	}

	for {
		// With nothing pending there is nothing to poll: block for the
		// next job instead of spinning. A closed jobCh with no pending
		// work is the clean-exit condition.
		if len(pending) == 0 {
			if inputClosed {
				return
			}
			job, ok := <-jobCh
			if !ok {
				return
			}
			addJob(job)
		}

	drain:
		for !inputClosed {
			select {
			case job, ok := <-jobCh:
				if !ok {
					inputClosed = true
					break drain
				}
				addJob(job)
			default:
				break drain
			}
		}

		for gid, job := range pending {
			status, err := fetchGroupStatus(ctx, driver, job.Group)
			if err != nil {
				monitor.Emit(JobExecutionTrackingEnd{eventBase{RunID: runID, Stage: StageTracker}, gid})
				if !send(outputCh, OutputResult[K]{Err: &InfrastructureError{Cause: err}}, quit) {
					return
				}
				freeGroupCh <- job.Group
				delete(pending, gid)
				continue
			}

			switch {
			case status.IsRunning():
				continue
			case status.IsFault():
				monitor.Emit(JobExecutionTrackingEnd{eventBase{RunID: runID, Stage: StageTracker}, gid})
				for _, d := range status.Faults() {
					if !send(outputCh, OutputResult[K]{Err: &ExecutionError{Dpu: d}}, quit) {
						return
					}
				}
				freeGroupCh <- job.Group
				delete(pending, gid)
			default: // Idle: finished
				monitor.Emit(JobExecutionTrackingEnd{eventBase{RunID: runID, Stage: StageTracker}, gid})
				finishCh <- finishedJob[K]{group: job.Group, outputs: job.Outputs}
				delete(pending, gid)
			}
		}

		if pollInterval > 0 {
			select {
			case <-clk.After(pollInterval):
			case <-quit:
				return
			}
		}
	}
}

func fetchGroupStatus(ctx context.Context, driver clusterdriver.Driver, group DpuGroup) (clusterdriver.RunStatus, error) {
	merged := clusterdriver.Idle()
	for _, d := range group.Active {
		s, err := driver.FetchStatus(ctx, view.One(d))
		if err != nil {
			return clusterdriver.RunStatus{}, err
		}
		merged = merged.Merge(s)
	}
	return merged, nil
}
