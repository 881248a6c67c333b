package pipeline

import (
	"time"

	"github.com/juju/clock"
	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/program"
)

// DefaultPollInterval is the Tracker's poll-interval default for
// real-hardware targets. Simulator-backed callers typically pass 0.
const DefaultPollInterval = 10 * time.Millisecond

// baseOptions is the fluent setter surface SimplePlan and PersistentPlan
// share. Go methods cannot add new type parameters beyond their receiver's,
// so the two execution models are expressed as two separate builder types
// embedding baseOptions rather than one struct with a late-bound mode.
type baseOptions struct {
	cluster      *cluster.Cluster
	program      *program.Program
	groupPolicy  GroupPolicy
	monitor      Monitor
	pollInterval time.Duration
	clock        clock.Clock
}

func newBaseOptions() baseOptions {
	return baseOptions{
		groupPolicy:  PerSlice,
		monitor:      SilentMonitor{},
		pollInterval: DefaultPollInterval,
		clock:        clock.WallClock,
	}
}

func (b *baseOptions) withCluster(c *cluster.Cluster) { b.cluster = c }
func (b *baseOptions) withProgram(p *program.Program)  { b.program = p }
func (b *baseOptions) withGroupPolicy(p GroupPolicy)   { b.groupPolicy = p }
func (b *baseOptions) withMonitor(m Monitor) {
	if m != nil {
		b.monitor = m
	}
}
func (b *baseOptions) withPollInterval(d time.Duration) { b.pollInterval = d }
func (b *baseOptions) withClock(c clock.Clock) {
	if c != nil {
		b.clock = c
	}
}
