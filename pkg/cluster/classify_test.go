package cluster

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
    in := []ValidationEntry{
        {Name: "Node1", Status: StatusPassed, Message: "ok"},
        {Name: "Network", Status: StatusWarning, Message: "single NIC"},
        {Name: "Node2", Status: StatusFailed, Message: "unreachable"},
        {Name: "Storage", Status: "NotApplicable", Message: "skipped"},
        {Name: "System", Status: StatusFailed, Message: "patch level mismatch"},
    }
    snapshot := append([]ValidationEntry(nil), in...)

    errs, warns := Classify(in)
    require.Len(t, errs, 2)
    require.Len(t, warns, 1)
    assert.Equal(t, "unreachable", errs[0].Message)
    assert.Equal(t, "patch level mismatch", errs[1].Message)
    assert.Equal(t, "single NIC", warns[0].Message)
    assert.Equal(t, snapshot, in, "input must not be modified")

    errs2, warns2 := Classify(in)
    assert.Equal(t, errs, errs2)
    assert.Equal(t, warns, warns2)
}

func TestClassifyEveryEntryAtMostOnce(t *testing.T) {
    statuses := []ValidationStatus{StatusPassed, StatusWarning, StatusFailed, ""}
    var in []ValidationEntry
    for i := 0; i < 40; i++ {
        in = append(in, ValidationEntry{Name: string(rune('a' + i%26)), Status: statuses[i%len(statuses)]})
    }
    errs, warns := Classify(in)
    assert.Len(t, errs, 10)
    assert.Len(t, warns, 10)
    for _, e := range errs { assert.Equal(t, StatusFailed, e.Status) }
    for _, w := range warns { assert.Equal(t, StatusWarning, w.Status) }
}

func TestClassifyEmpty(t *testing.T) {
    errs, warns := Classify(nil)
    assert.Empty(t, errs)
    assert.Empty(t, warns)
}

func TestClassifyEvents(t *testing.T) {
    now := time.Now()
    in := []LogEvent{
        {Time: now, ID: 1069, Severity: SeverityError, Message: "resource failed"},
        {Time: now, ID: 1650, Severity: SeverityInfo, Message: "noise"},
        {Time: now, ID: 1135, Severity: SeverityWarning, Message: "node removed"},
    }
    errs, warns := ClassifyEvents(in)
    require.Len(t, errs, 1)
    require.Len(t, warns, 1)
    assert.Equal(t, 1069, errs[0].ID)
    assert.Equal(t, 1135, warns[0].ID)
}
