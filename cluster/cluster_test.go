package cluster_test

import (
	"testing"

	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/dpu"
	"github.com/nimbus-dpu/dpucluster/simdriver"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(ClusterSuite))

type ClusterSuite struct{}

func (s *ClusterSuite) TestCreateArrangesGridInOrder(c *gc.C) {
	drv := simdriver.New(2, 2, 2, nil, 0, 4)

	cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 2, NrSlices: 2, NrMembers: 2})
	c.Assert(err, gc.IsNil)

	c.Assert(cl.NrRanks(), gc.Equals, 2)
	c.Assert(cl.NrSlices(), gc.Equals, 2)
	c.Assert(cl.NrMembers(), gc.Equals, 2)
	c.Assert(cl.At(0, 0, 0), gc.Equals, dpu.New(0, 0, 0))
	c.Assert(cl.At(0, 0, 1), gc.Equals, dpu.New(0, 0, 1))
	c.Assert(cl.At(1, 1, 1), gc.Equals, dpu.New(1, 1, 1))
	c.Assert(cl.All(), gc.HasLen, 8)
}

func (s *ClusterSuite) TestCreateNotEnoughResources(c *gc.C) {
	drv := simdriver.New(1, 1, 1, nil, 0, 4)

	_, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: 1, NrSlices: 2, NrMembers: 1})
	c.Assert(err, gc.NotNil)

	nerr, ok := err.(*cluster.NotEnoughResourcesError)
	c.Assert(ok, gc.Equals, true)
	c.Assert(nerr.Requested, gc.Equals, 2)
	c.Assert(nerr.Available, gc.Equals, 1)
}
