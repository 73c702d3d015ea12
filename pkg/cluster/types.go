package cluster

import "time"

// ValidationStatus is the outcome of a single validation test.
type ValidationStatus string

const (
    StatusPassed  ValidationStatus = "Passed"
    StatusWarning ValidationStatus = "Warning"
    StatusFailed  ValidationStatus = "Failed"
)

// ValidationEntry is one result row produced by the external validator.
type ValidationEntry struct {
    // Name is the node or test the entry refers to.
    Name    string           `json:"name"`
    Status  ValidationStatus `json:"status"`
    Message string           `json:"message"`
}

// GroupStatus is the observed state of a resource group.
type GroupStatus struct {
    Name      string `json:"name"`
    State     string `json:"state"`
    OwnerNode string `json:"ownerNode"`
}

type Severity string

const (
    SeverityError   Severity = "Error"
    SeverityWarning Severity = "Warning"
    SeverityInfo    Severity = "Info"
)

// LogEvent is a single entry from the operational event log.
type LogEvent struct {
    Time     time.Time `json:"time"`
    ID       int       `json:"id"`
    Severity Severity  `json:"severity"`
    Message  string    `json:"message"`
}
