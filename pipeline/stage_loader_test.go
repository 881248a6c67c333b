package pipeline_test

import (
	"errors"

	"github.com/golang/mock/gomock"
	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/dpu"
	"github.com/nimbus-dpu/dpucluster/pipeline"
	"github.com/nimbus-dpu/dpucluster/pipeline/mocks"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(LoaderSuite))

type LoaderSuite struct{}

// TestLoaderBootErrorQuarantinesGroup exercises the Loader's error policy:
// a boot failure surfaces exactly one InfrastructureError and no job ever
// reaches the Tracker; the group is quarantined, never returned to the
// free pool.
func (s *LoaderSuite) TestLoaderBootErrorQuarantinesGroup(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	bootErr := errors.New("boot failed")

	mockDriver := mocks.NewMockDriver(ctrl)
	mockDriver.EXPECT().Topology().Return([]dpu.ID{dpu.New(0, 0, 0)}).AnyTimes()
	mockDriver.EXPECT().NrOfDpus().Return(1).AnyTimes()
	mockDriver.EXPECT().CopyToMemory(gomock.Any(), gomock.Any()).Return(nil)
	mockDriver.EXPECT().Boot(gomock.Any(), gomock.Any()).Return(bootErr)
	// FetchStatus must never be called: the job never reaches the Tracker.
	mockDriver.EXPECT().FetchStatus(gomock.Any(), gomock.Any()).Times(0)

	cl, err := cluster.Create(mockDriver, 1, cluster.Configuration{NrRanks: 1, NrSlices: 1, NrMembers: 1})
	c.Assert(err, gc.IsNil)

	inputs := []keyedInput{{key: 0, payload: []byte{0x01}}}
	it := pipeline.NewSliceIterator(inputs)

	plan := pipeline.NewSimplePlan[keyedInput, int](it, simpleTransferFn).
		WithCluster(cl).
		WithPollInterval(0)

	out, err := plan.Build()
	c.Assert(err, gc.IsNil)

	var results []pipeline.OutputResult[int]
	for r := range out.Results() {
		results = append(results, r)
	}
	out.Close()

	c.Assert(results, gc.HasLen, 1)
	c.Assert(results[0].Err, gc.NotNil)

	var infraErr *pipeline.InfrastructureError
	c.Assert(errors.As(results[0].Err, &infraErr), gc.Equals, true)
}
