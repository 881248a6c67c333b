package pipeline

import "github.com/sirupsen/logrus"

// LogrusMonitor logs one structured line per Event via a *logrus.Entry,
// tagging `stage` and `run_id` fields on top of whatever base fields the
// caller's entry already carries.
type LogrusMonitor struct {
	entry *logrus.Entry
}

// NewLogrusMonitor returns a Monitor that logs through entry.
func NewLogrusMonitor(entry *logrus.Entry) *LogrusMonitor {
	return &LogrusMonitor{entry: entry}
}

// Emit implements Monitor.
func (m *LogrusMonitor) Emit(ev Event) {
	fields, runID, stage := eventFields(ev)
	m.entry.WithFields(fields).WithField("run_id", runID).WithField("stage", stage.String()).Debug(eventName(ev))
}

var _ Monitor = (*LogrusMonitor)(nil)

func eventFields(ev Event) (logrus.Fields, string, Stage) {
	switch e := ev.(type) {
	case Initialization:
		return logrus.Fields{"nr_ranks": e.NrRanks, "nr_slices": e.NrSlices, "nr_dpus": e.NrDpus}, e.RunID.String(), e.Stage
	case LoadingProgramBegin:
		return logrus.Fields{"nr_instructions": e.NrInstructions, "nr_data_bytes": e.NrDataBytes}, e.RunID.String(), e.Stage
	case LoadingProgramEnd:
		return logrus.Fields{}, e.RunID.String(), e.Stage
	case ProcessBegin:
		return logrus.Fields{}, e.RunID.String(), e.Stage
	case ProcessEnd:
		return logrus.Fields{}, e.RunID.String(), e.Stage
	case NewInput:
		return logrus.Fields{}, e.RunID.String(), e.Stage
	case GroupSearchBegin:
		return logrus.Fields{}, e.RunID.String(), e.Stage
	case GroupSearchEnd:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case GroupLoadingBegin:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case GroupLoadingEnd:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case JobExecutionTrackingBegin:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case JobExecutionTrackingEnd:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case OutputFetchingBegin:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case OutputFetchingEnd:
		return logrus.Fields{"group": e.Group}, e.RunID.String(), e.Stage
	case OutputFetchingInfo:
		return logrus.Fields{"group": e.Group, "dpu": e.Dpu.String(), "offset": e.Offset, "length": e.Length}, e.RunID.String(), e.Stage
	default:
		return logrus.Fields{}, "", StagePipeline
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case Initialization:
		return "initialization"
	case LoadingProgramBegin:
		return "loading_program_begin"
	case LoadingProgramEnd:
		return "loading_program_end"
	case ProcessBegin:
		return "process_begin"
	case ProcessEnd:
		return "process_end"
	case NewInput:
		return "new_input"
	case GroupSearchBegin:
		return "group_search_begin"
	case GroupSearchEnd:
		return "group_search_end"
	case GroupLoadingBegin:
		return "group_loading_begin"
	case GroupLoadingEnd:
		return "group_loading_end"
	case JobExecutionTrackingBegin:
		return "job_execution_tracking_begin"
	case JobExecutionTrackingEnd:
		return "job_execution_tracking_end"
	case OutputFetchingBegin:
		return "output_fetching_begin"
	case OutputFetchingEnd:
		return "output_fetching_end"
	case OutputFetchingInfo:
		return "output_fetching_info"
	default:
		return "event"
	}
}
