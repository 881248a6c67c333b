package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/dpu"
	"github.com/nimbus-dpu/dpucluster/memtransfer"
)

// FragmentEntry pairs a fragment id with the bytes to pin to the DPU that
// ends up hosting it, as consumed by a PersistentPlan's fragment iterator.
type FragmentEntry[D any] struct {
	FragmentID D
	Transfer   InputMemoryTransfer
}

type pin struct {
	dpu   dpu.ID
	group GroupId
}

// runMapperPersistent is S2 for the Persistent model. It first loads and
// pins every fragment the fragment iterator supplies (narrowing each
// group's Active set down to only the DPUs that received one), then
// streams steady-state items, routing each to the DPU holding its
// fragment and batching per-DPU slots into groups. Items that arrive
// while their target DPU's slot is taken, or while the group is checked
// out downstream, park in a per-(group, dpu) wait queue; a single queue
// per slot is what preserves per-DPU submission order.
func runMapperPersistent[I, K any, D comparable](
	driver clusterdriver.Driver,
	fragmentIt Iterator[FragmentEntry[D]],
	inputCh <-chan I,
	itemFn func(I) (D, MemoryTransfers[K]),
	groups []DpuGroup,
	freeGroupCh <-chan DpuGroup,
	transferCh chan<- groupBatch[K],
	outputCh chan<- OutputResult[K],
	monitor Monitor,
	runID uuid.UUID,
	quit <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)
	defer close(transferCh)

	groupsByID := make(map[GroupId]*DpuGroup, len(groups))
	localGroups := make([]DpuGroup, len(groups))
	copy(localGroups, groups)
	for i := range localGroups {
		localGroups[i].Active = nil // narrowed below as fragments land
		groupsByID[localGroups[i].ID] = &localGroups[i]
	}

	pinned := make(map[D]pin)
	groupFragmentBytes := make(map[GroupId]*memtransfer.Transfer)

	// Flatten every (group, dpu) slot in order so fragments fill each
	// group's DPUs in turn, group by group in group order.
	type slot struct {
		group *DpuGroup
		dpu   dpu.ID
	}
	var slots []slot
	for gi := range localGroups {
		for _, d := range groups[gi].Dpus {
			slots = append(slots, slot{group: &localGroups[gi], dpu: d})
		}
	}

	slotIdx := 0
	for fragmentIt.Next() {
		if slotIdx >= len(slots) {
			break // more fragments than DPU slots: extras are dropped
		}
		entry := fragmentIt.Item()
		s := slots[slotIdx]
		slotIdx++

		pinned[entry.FragmentID] = pin{dpu: s.dpu, group: s.group.ID}
		s.group.Active = append(s.group.Active, s.dpu)

		t, ok := groupFragmentBytes[s.group.ID]
		if !ok {
			t = memtransfer.New()
			groupFragmentBytes[s.group.ID] = t
		}
		t.Add(s.dpu, entry.Transfer.Offset, entry.Transfer.Bytes)
	}

	// Execute the per-group batched fragment writes. Groups with no
	// assigned fragment are never used thereafter. A group whose fragment
	// write failed never circulates either: items routed to it would
	// otherwise queue against a group that can never come back on the
	// free-group channel, so they are failed eagerly in the loop below.
	activeGroups := make(map[GroupId]*DpuGroup)
	deadGroups := make(map[GroupId]error)
	for gid, t := range groupFragmentBytes {
		g := groupsByID[gid]
		if err := driver.CopyToMemory(context.Background(), t); err != nil {
			if !send(outputCh, OutputResult[K]{Err: &InfrastructureError{Cause: err}}, quit) {
				return
			}
			deadGroups[gid] = err
			continue
		}
		activeGroups[gid] = g
	}

	inProgress := make(map[GroupId]map[dpu.ID]batchEntry[K])
	for gid, g := range activeGroups {
		inProgress[gid] = make(map[dpu.ID]batchEntry[K], len(g.Active))
	}
	waitQueue := make(map[GroupId]map[dpu.ID][]MemoryTransfers[K])

	ship := func(gid GroupId) {
		slotsMap := inProgress[gid]
		delete(inProgress, gid)
		g := activeGroups[gid]
		entries := make([]batchEntry[K], 0, len(slotsMap))
		for _, d := range g.Active {
			if e, ok := slotsMap[d]; ok {
				entries = append(entries, e)
			}
		}
		transferCh <- groupBatch[K]{group: *g, entries: entries}
	}

	deposit := func(gid GroupId, d dpu.ID, mt MemoryTransfers[K]) {
		if slotsMap, ok := inProgress[gid]; ok {
			if _, taken := slotsMap[d]; !taken {
				slotsMap[d] = batchEntry[K]{dpu: d, inputs: mt.Inputs, key: mt.Key, output: mt.Output}
				if len(slotsMap) == len(activeGroups[gid].Active) {
					ship(gid)
				}
				return
			}
		}
		q := waitQueue[gid]
		if q == nil {
			q = make(map[dpu.ID][]MemoryTransfers[K])
			waitQueue[gid] = q
		}
		q[d] = append(q[d], mt)
	}

	anyWaiting := func() bool {
		for _, q := range waitQueue {
			for _, items := range q {
				if len(items) > 0 {
					return true
				}
			}
		}
		return false
	}

	drainFreeGroupNonBlocking := func() {
		for {
			select {
			case g, ok := <-freeGroupCh:
				if !ok {
					return
				}
				admitReturnedGroup(g, inProgress, waitQueue, activeGroups, ship)
			default:
				return
			}
		}
	}

	for {
		item, ok := <-inputCh
		if !ok {
			break
		}
		fragID, mt := itemFn(item)
		p, ok := pinned[fragID]
		if !ok {
			if !send(outputCh, OutputResult[K]{Err: &UnknownFragmentID{FragmentID: fragID}}, quit) {
				return
			}
			continue
		}
		if err, dead := deadGroups[p.group]; dead {
			if !send(outputCh, OutputResult[K]{Err: &InfrastructureError{Cause: err}}, quit) {
				return
			}
			continue
		}
		deposit(p.group, p.dpu, mt)
		if anyWaiting() {
			drainFreeGroupNonBlocking()
		}
	}

	// Input exhausted: ship every partially-filled in-progress group.
	for gid, slotsMap := range inProgress {
		if len(slotsMap) > 0 {
			ship(gid)
		}
	}

	// Then, while wait queues remain non-empty, block on the free-group
	// channel and drain similarly until empty. No more input is coming,
	// so a partially-filled batch ships right away instead of parking to
	// wait for slots that can never fill.
	for anyWaiting() {
		select {
		case g, ok := <-freeGroupCh:
			if !ok {
				return
			}
			admitReturnedGroup(g, inProgress, waitQueue, activeGroups, ship)
			if slotsMap, parked := inProgress[g.ID]; parked && len(slotsMap) > 0 {
				ship(g.ID)
			}
		case <-quit:
			return
		}
	}
}

// admitReturnedGroup handles a group coming back on the free-group channel
// during the persistent mapper's steady state: if nothing waits on it, it
// is parked back in the in-progress table; otherwise one queued transfer
// per waiting DPU is popped into a fresh batch, shipped immediately if
// complete.
func admitReturnedGroup[K any](g DpuGroup, inProgress map[GroupId]map[dpu.ID]batchEntry[K], waitQueue map[GroupId]map[dpu.ID][]MemoryTransfers[K], activeGroups map[GroupId]*DpuGroup, ship func(GroupId)) {
	q := waitQueue[g.ID]
	if len(q) == 0 {
		inProgress[g.ID] = make(map[dpu.ID]batchEntry[K], len(g.Active))
		return
	}

	slotsMap := make(map[dpu.ID]batchEntry[K], len(g.Active))
	for _, d := range g.Active {
		items := q[d]
		if len(items) == 0 {
			continue
		}
		mt := items[0]
		q[d] = items[1:]
		if len(q[d]) == 0 {
			delete(q, d)
		}
		slotsMap[d] = batchEntry[K]{dpu: d, inputs: mt.Inputs, key: mt.Key, output: mt.Output}
	}
	if len(q) == 0 {
		delete(waitQueue, g.ID)
	}

	inProgress[g.ID] = slotsMap
	if len(slotsMap) == len(activeGroups[g.ID].Active) {
		ship(g.ID)
	}
}
