package cluster

// Classify partitions validation entries into failures and warnings.
// Entries with any other status are dropped. Input order is preserved and
// the input slice is never modified.
func Classify(entries []ValidationEntry) (errs, warns []ValidationEntry) {
    for _, e := range entries {
        switch e.Status {
        case StatusFailed:
            errs = append(errs, e)
        case StatusWarning:
            warns = append(warns, e)
        }
    }
    return errs, warns
}

// ClassifyEvents splits log events by severity, dropping informational ones.
func ClassifyEvents(events []LogEvent) (errs, warns []LogEvent) {
    for _, ev := range events {
        switch ev.Severity {
        case SeverityError:
            errs = append(errs, ev)
        case SeverityWarning:
            warns = append(warns, ev)
        }
    }
    return errs, warns
}
