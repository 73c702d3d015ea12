package cluster

import "time"

// StepStatus tags the outcome of a pipeline step.
type StepStatus string

const (
    StepOK          StepStatus = "ok"
    StepRecoverable StepStatus = "recoverable"
    StepFatal       StepStatus = "fatal"
    StepSkipped     StepStatus = "skipped"
)

// Step names, in execution order.
const (
    StepValidate  = "validate"
    StepCreate    = "create-cluster"
    StepQuorum    = "configure-quorum"
    StepGroups    = "group-status"
    StepExportLog = "export-logs"
    StepEvents    = "recent-events"
)

// Steps lists every step in the order the pipeline runs them.
var Steps = []string{StepValidate, StepCreate, StepQuorum, StepGroups, StepExportLog, StepEvents}

// StepResult is the tagged outcome of one step. Err is set for fatal and
// recoverable outcomes; Note carries a human-readable remark (e.g. why a
// step was skipped).
type StepResult struct {
    Step     string
    Status   StepStatus
    Err      error
    Note     string
    Duration time.Duration
}

// Failed reports whether the step ended in either failure tier.
func (r StepResult) Failed() bool {
    return r.Status == StepFatal || r.Status == StepRecoverable
}
