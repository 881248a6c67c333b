package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/memtransfer"
	"github.com/nimbus-dpu/dpucluster/view"
)

// runLoader is S3: it transfers batched inputs into DPU memory and boots
// each DPU. A driver error on either the transfer or the boot step
// abandons the batch without returning the group to the free pool: a group
// whose failure mode is unknown is quarantined rather than risk reusing
// it. One InfrastructureError surfaces per failed batch, not per item.
func runLoader[K any](driver clusterdriver.Driver, monitor Monitor, runID uuid.UUID, transferCh <-chan groupBatch[K], jobCh chan<- GroupJob[K], outputCh chan<- OutputResult[K], quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(jobCh)

	for batch := range transferCh {
		monitor.Emit(GroupLoadingBegin{eventBase{RunID: runID, Stage: StageLoader}, batch.group.ID})
		job, err := loadBatch(driver, batch)
		monitor.Emit(GroupLoadingEnd{eventBase{RunID: runID, Stage: StageLoader}, batch.group.ID})

		if err != nil {
			if !send(outputCh, OutputResult[K]{Err: &InfrastructureError{Cause: err}}, quit) {
				return
			}
			continue
		}
		jobCh <- job
	}
}

// loadBatch executes the batch's transfer matrices sequentially, then boots
// each DPU through its single-DPU view. Matrix j carries, for each DPU with
// at least j+1 input entries, that DPU's j-th entry; DPUs with shorter
// input lists simply drop out of later matrices.
func loadBatch[K any](driver clusterdriver.Driver, batch groupBatch[K]) (GroupJob[K], error) {
	ctx := context.Background()

	w := 0
	for _, e := range batch.entries {
		if len(e.inputs) > w {
			w = len(e.inputs)
		}
	}

	for j := 0; j < w; j++ {
		t := memtransfer.New()
		for _, e := range batch.entries {
			if j < len(e.inputs) {
				t.Add(e.dpu, e.inputs[j].Offset, e.inputs[j].Bytes)
			}
		}
		if t.Len() == 0 {
			continue
		}
		if err := driver.CopyToMemory(ctx, t); err != nil {
			return GroupJob[K]{}, err
		}
	}

	for _, e := range batch.entries {
		if err := driver.Boot(ctx, view.One(e.dpu)); err != nil {
			return GroupJob[K]{}, err
		}
	}

	outputs := make([]keyedOutput[K], 0, len(batch.entries))
	for _, e := range batch.entries {
		outputs = append(outputs, keyedOutput[K]{dpu: e.dpu, key: e.key, output: e.output})
	}
	return GroupJob[K]{Group: batch.group, Outputs: outputs}, nil
}
