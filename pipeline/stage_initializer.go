package pipeline

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// runInitializer is S1: it owns the user iterator and the downstream
// bounded sender. It checks the shutdown flag before every pull; once it
// breaks (shutdown requested or the iterator is exhausted) it closes
// inputCh, which cascades closure through the rest of the pipeline.
func runInitializer[I any](it Iterator[I], inputCh chan<- I, shutdown *atomic.Bool, monitor Monitor, runID uuid.UUID, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(inputCh)

	monitor.Emit(ProcessBegin{eventBase{RunID: runID, Stage: StageInitializer}})
	defer monitor.Emit(ProcessEnd{eventBase{RunID: runID, Stage: StageInitializer}})

	for {
		if shutdown.Load() {
			return
		}
		if !it.Next() {
			return
		}
		monitor.Emit(NewInput{eventBase{RunID: runID, Stage: StageInitializer}})
		if !send(inputCh, it.Item(), quit) {
			return
		}
	}
}
