package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/dpu"
	"github.com/nimbus-dpu/dpucluster/pipeline"
	"github.com/nimbus-dpu/dpucluster/program"
	"github.com/nimbus-dpu/dpucluster/simdriver"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(ScenarioSuite))

type ScenarioSuite struct{}

type keyedInput struct {
	key     int
	payload []byte
}

func simpleTransferFn(in keyedInput) pipeline.MemoryTransfers[int] {
	return pipeline.MemoryTransfers[int]{
		Inputs: []pipeline.InputMemoryTransfer{{Offset: 0, Bytes: in.payload}},
		Output: pipeline.OutputMemoryTransfer{Offset: 4, Length: uint32(len(in.payload))},
		Key:    in.key,
	}
}

// TestE1SingleDpuThreeInputs runs the smallest end-to-end case: a 1x1x1
// topology, a fixed identity+2 program, three inputs.
func (s *ScenarioSuite) TestE1SingleDpuThreeInputs(c *gc.C) {
	drv := simdriver.New(1, 1, 1, simdriver.Identity, 0, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 1, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	inputs := []keyedInput{
		{key: 0, payload: []byte{0x01, 0x02}},
		{key: 1, payload: []byte{0x03, 0x04}},
		{key: 2, payload: []byte{0x05, 0x06}},
	}
	it := pipeline.NewSliceIterator(inputs)

	plan := pipeline.NewSimplePlan[keyedInput, int](it, simpleTransferFn).
		WithCluster(cl).
		WithProgram(&program.Program{InstructionSections: []program.Section{{Offset: 0, Bytes: make([]byte, 10)}}}).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	got := map[int][]byte{}
	for r := range out.Results() {
		c.Assert(r.Err, gc.IsNil)
		got[r.Key] = r.Bytes
	}
	out.Close()

	c.Assert(got, gc.HasLen, 3)
	c.Assert(got[0], gc.DeepEquals, []byte{0x03, 0x04})
	c.Assert(got[1], gc.DeepEquals, []byte{0x05, 0x06})
	c.Assert(got[2], gc.DeepEquals, []byte{0x07, 0x08})
}

// TestE2SliceGroupPartialBatch exercises E2: a (1,2,1) topology under
// PerSlice forms one group of two DPUs; three inputs force a short second
// batch.
func (s *ScenarioSuite) TestE2SliceGroupPartialBatch(c *gc.C) {
	drv := simdriver.New(1, 2, 1, simdriver.Identity, 0, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 2, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	inputs := []keyedInput{
		{key: 0, payload: []byte{0x01}},
		{key: 1, payload: []byte{0x02}},
		{key: 2, payload: []byte{0x03}},
	}
	it := pipeline.NewSliceIterator(inputs)

	plan := pipeline.NewSimplePlan[keyedInput, int](it, simpleTransferFn).
		WithCluster(cl).
		WithGroupPolicy(pipeline.PerSlice).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	count := 0
	for r := range out.Results() {
		c.Assert(r.Err, gc.IsNil)
		count++
	}
	out.Close()

	c.Assert(count, gc.Equals, 3)
}

type query struct {
	fragment string
	seq      int
}

type queryKey struct {
	fragment string
	seq      int
}

func persistentItemFn(q query) (string, pipeline.MemoryTransfers[queryKey]) {
	return q.fragment, pipeline.MemoryTransfers[queryKey]{
		Inputs: []pipeline.InputMemoryTransfer{{Offset: 8, Bytes: []byte{byte(q.seq)}}},
		Output: pipeline.OutputMemoryTransfer{Offset: 4, Length: 1},
		Key:    queryKey{fragment: q.fragment, seq: q.seq},
	}
}

// TestE3PersistentFragmentOrdering pins two fragments and submits five
// queries; outputs for a given fragment must preserve submission order,
// while interleaving across fragments is free.
func (s *ScenarioSuite) TestE3PersistentFragmentOrdering(c *gc.C) {
	drv := simdriver.New(1, 2, 1, simdriver.Identity, 8, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 2, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	fragments := []pipeline.FragmentEntry[string]{
		{FragmentID: "F0", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF0}}},
		{FragmentID: "F1", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF1}}},
	}
	fragIt := pipeline.NewSliceIterator(fragments)

	queries := []query{{"F0", 0}, {"F1", 1}, {"F0", 2}, {"F1", 3}, {"F0", 4}}
	it := pipeline.NewSliceIterator(queries)

	plan := pipeline.NewPersistentPlan[query, queryKey, string](it, persistentItemFn, fragIt).
		WithCluster(cl).
		WithGroupPolicy(pipeline.PerDpu).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	perFragment := map[string][]int{}
	for r := range out.Results() {
		c.Assert(r.Err, gc.IsNil)
		// Key fidelity: the echoed key's seq byte went through the
		// simulator's +2 transform.
		c.Assert(r.Bytes, gc.DeepEquals, []byte{byte(r.Key.seq) + 2})
		perFragment[r.Key.fragment] = append(perFragment[r.Key.fragment], r.Key.seq)
	}
	out.Close()

	c.Assert(perFragment["F0"], gc.DeepEquals, []int{0, 2, 4})
	c.Assert(perFragment["F1"], gc.DeepEquals, []int{1, 3})
}

// TestPersistentPartialFinalBatch ends the input stream while one item is
// still queued behind a checked-out group; the final drain must ship it as
// a partial batch rather than park it waiting for slots that can never
// fill.
func (s *ScenarioSuite) TestPersistentPartialFinalBatch(c *gc.C) {
	drv := simdriver.New(1, 2, 1, simdriver.Identity, 8, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 2, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	fragments := []pipeline.FragmentEntry[string]{
		{FragmentID: "F0", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF0}}},
		{FragmentID: "F1", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF1}}},
	}
	fragIt := pipeline.NewSliceIterator(fragments)

	queries := []query{{"F0", 0}, {"F1", 1}, {"F0", 2}}
	it := pipeline.NewSliceIterator(queries)

	plan := pipeline.NewPersistentPlan[query, queryKey, string](it, persistentItemFn, fragIt).
		WithCluster(cl).
		WithGroupPolicy(pipeline.PerSlice).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	var keys []queryKey
	for r := range out.Results() {
		c.Assert(r.Err, gc.IsNil)
		keys = append(keys, r.Key)
	}
	out.Close()

	c.Assert(keys, gc.HasLen, 3)
}

// TestE4DpuFault exercises E4: fetch_status reports a fault for the first
// job; exactly one ExecutionError surfaces and later inputs still
// complete.
func (s *ScenarioSuite) TestE4DpuFault(c *gc.C) {
	drv := simdriver.New(1, 1, 1, simdriver.Identity, 0, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 1, NrMembers: 1})
	c.Assert(err, gc.IsNil)
	drv.InjectFault(dpu.New(0, 0, 0))

	inputs := []keyedInput{
		{key: 0, payload: []byte{0x01, 0x02}},
		{key: 1, payload: []byte{0x03, 0x04}},
	}
	it := pipeline.NewSliceIterator(inputs)

	plan := pipeline.NewSimplePlan[keyedInput, int](it, simpleTransferFn).
		WithCluster(cl).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	var faults, oks int
	for r := range out.Results() {
		if r.Err != nil {
			faults++
			var execErr *pipeline.ExecutionError
			c.Assert(errors.As(r.Err, &execErr), gc.Equals, true)
		} else {
			oks++
		}
	}
	out.Close()

	c.Assert(faults, gc.Equals, 1)
	c.Assert(oks, gc.Equals, 1)
}

// TestE5EarlyCancellation exercises E5: the caller consumes the first
// output and closes Output; Close must return within a bounded time.
func (s *ScenarioSuite) TestE5EarlyCancellation(c *gc.C) {
	drv := simdriver.New(1, 1, 1, simdriver.Identity, 0, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 1, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	inputs := make([]keyedInput, 100)
	for i := range inputs {
		inputs[i] = keyedInput{key: i, payload: []byte{byte(i)}}
	}
	it := pipeline.NewSliceIterator(inputs)

	plan := pipeline.NewSimplePlan[keyedInput, int](it, simpleTransferFn).
		WithCluster(cl).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	<-out.Results()

	done := make(chan struct{})
	go func() {
		out.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.Fatal("Close did not return within the bounded time window")
	}
}

// TestE6UnknownFragment exercises E6: an input names a fragment never
// registered; exactly one UnknownFragmentID surfaces and other inputs
// still complete.
func (s *ScenarioSuite) TestE6UnknownFragment(c *gc.C) {
	drv := simdriver.New(1, 1, 1, simdriver.Identity, 8, 4)
	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 1, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	fragments := []pipeline.FragmentEntry[string]{
		{FragmentID: "F0", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF0}}},
	}
	fragIt := pipeline.NewSliceIterator(fragments)

	queries := []query{{"F0", 0}, {"unknown", 1}}
	it := pipeline.NewSliceIterator(queries)

	plan := pipeline.NewPersistentPlan[query, queryKey, string](it, persistentItemFn, fragIt).
		WithCluster(cl).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	var unknown, ok int
	for r := range out.Results() {
		if r.Err != nil {
			unknown++
			var unkErr *pipeline.UnknownFragmentID
			c.Assert(errors.As(r.Err, &unkErr), gc.Equals, true)
		} else {
			ok++
		}
	}
	out.Close()

	c.Assert(unknown, gc.Equals, 1)
	c.Assert(ok, gc.Equals, 1)
}
