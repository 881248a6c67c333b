package pipeline

import "github.com/google/uuid"

// runMapperSimple is S2 for the Simple model: it packs up to n items (n =
// the acquired group's active DPU count) into one batch per group and
// forwards it to S3.
//
// The first item of a prospective batch is pulled before a group is
// acquired. Acquiring first can block indefinitely on the free-group
// channel even after the input stream has already closed (every group
// conserved but none of them needed anymore), which would prevent the
// cascading shutdown close from ever reaching S3. Peeking demand first
// means an exhausted input stream closes transferCh immediately instead of
// deadlocking against a free-group channel no one will ever feed again.
func runMapperSimple[I, K any](
	inputCh <-chan I,
	transferFn func(I) MemoryTransfers[K],
	groups []DpuGroup,
	freeGroupCh <-chan DpuGroup,
	transferCh chan<- groupBatch[K],
	monitor Monitor,
	runID uuid.UUID,
	quit <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)
	defer close(transferCh)

	free := append([]DpuGroup(nil), groups...)

	fetchNextGroup := func() (DpuGroup, bool) {
		if len(free) > 0 {
			last := len(free) - 1
			g := free[last]
			free = free[:last]
			return g, true
		}

		monitor.Emit(GroupSearchBegin{eventBase{RunID: runID, Stage: StageMapper}})
		var g DpuGroup
		select {
		case g2, ok := <-freeGroupCh:
			if !ok {
				return DpuGroup{}, false
			}
			g = g2
		case <-quit:
			return DpuGroup{}, false
		}
		monitor.Emit(GroupSearchEnd{eventBase{RunID: runID, Stage: StageMapper}, g.ID})

		for drained := true; drained; {
			select {
			case g2, ok2 := <-freeGroupCh:
				if !ok2 {
					drained = false
					break
				}
				free = append(free, g2)
			default:
				drained = false
			}
		}
		return g, true
	}

	for {
		first, ok := <-inputCh
		if !ok {
			return
		}

		group, ok := fetchNextGroup()
		if !ok {
			return
		}

		n := len(group.Active)
		entries := make([]batchEntry[K], 0, n)
		item := first
		for i := 0; i < n; i++ {
			if i > 0 {
				next, ok := <-inputCh
				if !ok {
					break
				}
				item = next
			}
			mt := transferFn(item)
			entries = append(entries, batchEntry[K]{
				dpu:    group.Active[i],
				inputs: mt.Inputs,
				key:    mt.Key,
				output: mt.Output,
			})
		}

		transferCh <- groupBatch[K]{group: group, entries: entries}
	}
}
