package clusterdriver_test

import (
	"testing"

	"github.com/nimbus-dpu/dpucluster/clusterdriver"
	"github.com/nimbus-dpu/dpucluster/dpu"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(StatusSuite))

type StatusSuite struct{}

func (s *StatusSuite) TestMergeIdleIsBottom(c *gc.C) {
	c.Assert(clusterdriver.Idle().Merge(clusterdriver.Idle()).IsIdle(), gc.Equals, true)
	c.Assert(clusterdriver.Idle().Merge(clusterdriver.Running()).IsRunning(), gc.Equals, true)
	c.Assert(clusterdriver.Running().Merge(clusterdriver.Idle()).IsRunning(), gc.Equals, true)
}

func (s *StatusSuite) TestMergeFaultIsTop(c *gc.C) {
	d0 := dpu.New(0, 0, 0)
	fault := clusterdriver.Fault([]dpu.ID{d0})

	c.Assert(clusterdriver.Idle().Merge(fault).IsFault(), gc.Equals, true)
	c.Assert(clusterdriver.Running().Merge(fault).IsFault(), gc.Equals, true)
	c.Assert(fault.Merge(clusterdriver.Running()).Faults(), gc.DeepEquals, []dpu.ID{d0})
}

func (s *StatusSuite) TestMergeFaultsConcatenate(c *gc.C) {
	d0, d1 := dpu.New(0, 0, 0), dpu.New(0, 1, 0)

	merged := clusterdriver.Fault([]dpu.ID{d0}).Merge(clusterdriver.Fault([]dpu.ID{d1}))
	c.Assert(merged.IsFault(), gc.Equals, true)
	c.Assert(merged.Faults(), gc.DeepEquals, []dpu.ID{d0, d1})
}
