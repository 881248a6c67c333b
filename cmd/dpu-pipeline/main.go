// Command dpu-pipeline is an example front-end binary that wires a Plan
// end to end against simdriver.Driver's simulator target, demonstrating
// both the Simple and Persistent execution models.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/nimbus-dpu/dpucluster/cluster"
	"github.com/nimbus-dpu/dpucluster/pipeline"
	"github.com/nimbus-dpu/dpucluster/simdriver"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/urfave/cli"
)

var (
	appName = "dpu-pipeline"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

// envDefaults supplies this binary's environment-variable-loaded
// defaults, layered underneath the flags below, the way a deployed
// service (rather than a one-off CLI invocation) typically wants its
// baseline configuration sourced.
type envDefaults struct {
	NrRanks      int           `envconfig:"NR_RANKS" default:"1"`
	NrSlices     int           `envconfig:"NR_SLICES" default:"2"`
	NrMembers    int           `envconfig:"NR_MEMBERS" default:"1"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"0s"`
}

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	var defaults envDefaults
	if err := envconfig.Process("DPU_PIPELINE", &defaults); err != nil {
		defaults = envDefaults{NrRanks: 1, NrSlices: 2, NrMembers: 1}
	}

	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "nr-ranks", Value: defaults.NrRanks, Usage: "Number of ranks the simulator exposes"},
		cli.IntFlag{Name: "nr-slices", Value: defaults.NrSlices, Usage: "Number of slices per rank the simulator exposes"},
		cli.IntFlag{Name: "nr-members", Value: defaults.NrMembers, Usage: "Number of members per slice the simulator exposes"},
		cli.DurationFlag{Name: "poll-interval", Value: defaults.PollInterval, Usage: "Tracker poll interval"},
		cli.StringFlag{Name: "model", Value: "simple", Usage: "Execution model to demonstrate: 'simple', 'persistent' or 'both'"},
		cli.BoolFlag{Name: "tracing", Usage: "Fan events out to a jaeger-backed TracingMonitor alongside the log monitor"},
		cli.BoolFlag{Name: "metrics", Usage: "Fan events out to a PrometheusMonitor alongside the log monitor"},
	}
	app.Action = runMain
	return app
}

func runMain(c *cli.Context) error {
	nrRanks, nrSlices, nrMembers := c.Int("nr-ranks"), c.Int("nr-slices"), c.Int("nr-members")
	pollInterval := c.Duration("poll-interval")

	monitor := pipeline.MultiMonitor{pipeline.NewLogrusMonitor(logger)}
	if c.Bool("tracing") {
		tracer, closer, err := newJaegerTracer()
		if err != nil {
			return err
		}
		defer closer.Close()
		monitor = append(monitor, pipeline.NewTracingMonitor(tracer))
	}
	if c.Bool("metrics") {
		monitor = append(monitor, pipeline.NewPrometheusMonitor(prometheus.DefaultRegisterer))
	}

	runSimple := func() error {
		drv := simdriver.New(nrRanks, nrSlices, nrMembers, simdriver.Identity, 0, 4)
		cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: nrRanks, NrSlices: nrSlices, NrMembers: nrMembers})
		if err != nil {
			return err
		}
		return runSimpleDemo(cl, monitor, pollInterval)
	}
	runPersistent := func() error {
		drv := simdriver.New(nrRanks, nrSlices, nrMembers, simdriver.Identity, 8, 4)
		cl, err := cluster.Create(drv, 1, cluster.Configuration{NrRanks: nrRanks, NrSlices: nrSlices, NrMembers: nrMembers})
		if err != nil {
			return err
		}
		return runPersistentDemo(cl, monitor, pollInterval)
	}

	switch c.String("model") {
	case "persistent":
		return runPersistent()
	case "both":
		// Demonstrating both models in one invocation is the one place
		// this binary can genuinely fail two independent ways; aggregate
		// rather than short-circuit on the first one.
		var result error
		if err := runSimple(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := runPersistent(); err != nil {
			result = multierror.Append(result, err)
		}
		return result
	default:
		return runSimple()
	}
}

type workItem struct {
	key     int
	payload []byte
}

func runSimpleDemo(cl *cluster.Cluster, monitor pipeline.Monitor, pollInterval time.Duration) error {
	items := []workItem{
		{key: 0, payload: []byte{0x01, 0x02}},
		{key: 1, payload: []byte{0x03, 0x04}},
		{key: 2, payload: []byte{0x05, 0x06}},
	}
	it := pipeline.NewSliceIterator(items)

	plan := pipeline.NewSimplePlan[workItem, int](it, func(w workItem) pipeline.MemoryTransfers[int] {
		return pipeline.MemoryTransfers[int]{
			Inputs: []pipeline.InputMemoryTransfer{{Offset: 0, Bytes: w.payload}},
			Output: pipeline.OutputMemoryTransfer{Offset: 4, Length: uint32(len(w.payload))},
			Key:    w.key,
		}
	}).WithCluster(cl).WithMonitor(monitor).WithPollInterval(pollInterval)

	out, err := plan.Build()
	if err != nil {
		return err
	}
	defer out.Close()

	for r := range out.Results() {
		if r.Err != nil {
			logger.WithField("err", r.Err).Warn("item failed")
			continue
		}
		fmt.Printf("key=%d bytes=%x\n", r.Key, r.Bytes)
	}
	return nil
}

type fragmentQuery struct {
	fragment string
}

func runPersistentDemo(cl *cluster.Cluster, monitor pipeline.Monitor, pollInterval time.Duration) error {
	fragments := []pipeline.FragmentEntry[string]{
		{FragmentID: "F0", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF0}}},
		{FragmentID: "F1", Transfer: pipeline.InputMemoryTransfer{Offset: 0, Bytes: []byte{0xF1}}},
	}
	fragIt := pipeline.NewSliceIterator(fragments)

	queries := []fragmentQuery{{"F0"}, {"F1"}, {"F0"}, {"F1"}, {"F0"}}
	it := pipeline.NewSliceIterator(queries)

	plan := pipeline.NewPersistentPlan[fragmentQuery, string, string](it, func(q fragmentQuery) (string, pipeline.MemoryTransfers[string]) {
		return q.fragment, pipeline.MemoryTransfers[string]{
			Inputs: []pipeline.InputMemoryTransfer{{Offset: 8, Bytes: []byte{0x00}}},
			Output: pipeline.OutputMemoryTransfer{Offset: 4, Length: 1},
			Key:    q.fragment,
		}
	}, fragIt).WithCluster(cl).WithGroupPolicy(pipeline.PerDpu).WithMonitor(monitor).WithPollInterval(pollInterval)

	out, err := plan.Build()
	if err != nil {
		return err
	}
	defer out.Close()

	for r := range out.Results() {
		if r.Err != nil {
			logger.WithField("err", r.Err).Warn("query failed")
			continue
		}
		fmt.Printf("fragment=%s bytes=%x\n", r.Key, r.Bytes)
	}
	return nil
}

// newJaegerTracer builds a jaeger-client-go tracer sampling every span.
// The caller closes the returned io.Closer when the run ends.
func newJaegerTracer() (opentracing.Tracer, io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: appName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans: true,
		},
	}
	return cfg.NewTracer()
}
