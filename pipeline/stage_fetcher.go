package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/memtransfer"
)

// runFetcher is S5: it reads back a finished group's output memory and
// delivers (key, bytes) results. The group is returned to the free-group
// channel *before* results are sent, so S2 can start the next batch while
// the caller drains. On a driver error the group is NOT returned
// (quarantined), matching the Loader's error policy, and one
// InfrastructureError surfaces for the whole batch.
func runFetcher[K any](
	driver clusterdriver.Driver,
	monitor Monitor,
	runID uuid.UUID,
	finishCh <-chan finishedJob[K],
	freeGroupCh chan<- DpuGroup,
	outputCh chan<- OutputResult[K],
	quit <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)

	ctx := context.Background()

	for job := range finishCh {
		monitor.Emit(OutputFetchingBegin{eventBase{RunID: runID, Stage: StageFetcher}, job.group.ID})

		bufs := make([][]byte, len(job.outputs))
		t := memtransfer.New()
		for i, o := range job.outputs {
			bufs[i] = make([]byte, o.output.Length)
			t.Add(o.dpu, o.output.Offset, bufs[i])
			monitor.Emit(OutputFetchingInfo{eventBase{RunID: runID, Stage: StageFetcher}, job.group.ID, o.dpu, o.output.Offset, o.output.Length})
		}

		err := driver.CopyFromMemory(ctx, t)

		monitor.Emit(OutputFetchingEnd{eventBase{RunID: runID, Stage: StageFetcher}, job.group.ID})

		if err != nil {
			// Dropped results during shutdown are not an error; the
			// fetcher keeps draining finishCh either way so groups keep
			// circulating and upstream stages can unwind.
			send(outputCh, OutputResult[K]{Err: &InfrastructureError{Cause: err}}, quit)
			continue
		}

		freeGroupCh <- job.group

		for i, o := range job.outputs {
			if !send(outputCh, OutputResult[K]{Key: o.key, Bytes: bufs[i]}, quit) {
				break
			}
		}
	}
}
