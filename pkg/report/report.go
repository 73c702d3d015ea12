// Package report assembles the cluster operations report. Rendering is
// deterministic: the same Data always yields the same text, and the section
// order never depends on content.
package report

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/amirimatin/go-clusterops/pkg/cluster"
)

// Section titles in render order.
const (
    TitleValidation = "Cluster Validation"
    TitleCreation   = "Cluster Creation"
    TitleQuorum     = "Quorum Configuration"
    TitleGroups     = "Cluster Group Status"
    TitleLogExport  = "Cluster Log Export"
    TitleErrors     = "Recent Errors"
    TitleWarnings   = "Recent Warnings"
)

var order = []string{TitleValidation, TitleCreation, TitleQuorum, TitleGroups, TitleLogExport, TitleErrors, TitleWarnings}

// Order returns the section titles in the order they are rendered.
func Order() []string { return append([]string(nil), order...) }

const (
    NoValidationErrors   = "No validation errors found."
    NoValidationWarnings = "No validation warnings found."
    ValidationErrorsHdr  = "Errors found in cluster validation:"
    ValidationWarnHdr    = "Warnings found in cluster validation:"
    NoGroups             = "No cluster groups found."
    NoRecentErrors       = "No recent errors found."
    NoRecentWarnings     = "No recent warnings found."
)

// Data is everything the pipeline collected. Steps is keyed by step name;
// a missing step renders as skipped.
type Data struct {
    GeneratedAt    time.Time
    Spec           cluster.Spec
    Steps          map[string]cluster.StepResult
    Validation     []cluster.ValidationEntry
    Handle         cluster.Handle
    WitnessPath    string
    Groups         []cluster.GroupStatus
    LogDestination string
    LogWindow      time.Duration
    Events         []cluster.LogEvent
}

func (d Data) step(name string) cluster.StepResult {
    if r, ok := d.Steps[name]; ok { return r }
    return cluster.StepResult{Step: name, Status: cluster.StepSkipped}
}

// Section is one titled block of report lines.
type Section struct {
    Title string
    Lines []string
}

// Report is immutable once rendered.
type Report struct {
    header   []string
    sections []Section
}

// Render builds the report from collected data.
func Render(d Data) *Report {
    r := &Report{header: header(d)}
    r.sections = []Section{
        {TitleValidation, validationLines(d)},
        {TitleCreation, creationLines(d)},
        {TitleQuorum, quorumLines(d)},
        {TitleGroups, groupLines(d)},
        {TitleLogExport, logExportLines(d)},
    }
    errs, warns := cluster.ClassifyEvents(d.Events)
    r.sections = append(r.sections,
        Section{TitleErrors, eventLines(d, errs, NoRecentErrors)},
        Section{TitleWarnings, eventLines(d, warns, NoRecentWarnings)},
    )
    return r
}

// Sections returns a copy of the rendered sections.
func (r *Report) Sections() []Section {
    out := make([]Section, len(r.sections))
    for i, s := range r.sections {
        out[i] = Section{Title: s.Title, Lines: append([]string(nil), s.Lines...)}
    }
    return out
}

func (r *Report) String() string {
    var b strings.Builder
    for _, l := range r.header {
        b.WriteString(l)
        b.WriteByte('\n')
    }
    for _, s := range r.sections {
        fmt.Fprintf(&b, "\n== %s ==\n", s.Title)
        for _, l := range s.Lines {
            b.WriteString(l)
            b.WriteByte('\n')
        }
    }
    return b.String()
}

// WriteFile writes the report as UTF-8 text, creating the parent directory.
// The file is replaced atomically so readers never see a partial report.
func (r *Report) WriteFile(path string) error {
    dir := filepath.Dir(path)
    if err := os.MkdirAll(dir, 0o755); err != nil { return fmt.Errorf("report: %w", err) }
    tmp, err := os.CreateTemp(dir, ".report-*")
    if err != nil { return fmt.Errorf("report: %w", err) }
    defer os.Remove(tmp.Name())
    if _, err := tmp.WriteString(r.String()); err != nil {
        tmp.Close()
        return fmt.Errorf("report: write %s: %w", path, err)
    }
    if err := tmp.Close(); err != nil { return fmt.Errorf("report: write %s: %w", path, err) }
    if err := os.Chmod(tmp.Name(), 0o644); err != nil { return fmt.Errorf("report: %w", err) }
    if err := os.Rename(tmp.Name(), path); err != nil { return fmt.Errorf("report: write %s: %w", path, err) }
    return nil
}

func header(d Data) []string {
    return []string{
        "Cluster Operations Report",
        "Generated: " + d.GeneratedAt.UTC().Format(time.RFC3339),
        fmt.Sprintf("Cluster: %s (%s)", d.Spec.Name(), d.Spec.StaticIP()),
        "Nodes: " + strings.Join(d.Spec.Nodes(), ", "),
    }
}

func skipped(r cluster.StepResult) []string {
    if r.Note != "" { return []string{"Skipped: " + r.Note} }
    return []string{"Skipped."}
}

func validationLines(d Data) []string {
    r := d.step(cluster.StepValidate)
    if r.Status == cluster.StepSkipped { return skipped(r) }
    // the validator itself could not run
    if r.Failed() && d.Validation == nil && r.Err != nil {
        return []string{"Cluster validation could not run: " + r.Err.Error()}
    }
    errs, warns := cluster.Classify(d.Validation)
    lines := []string{fmt.Sprintf("Entries checked: %d (failed %d, warnings %d)", len(d.Validation), len(errs), len(warns))}
    if len(errs) == 0 {
        lines = append(lines, NoValidationErrors)
    } else {
        lines = append(lines, ValidationErrorsHdr)
        for _, e := range errs { lines = append(lines, fmt.Sprintf("  - %s: %s", e.Name, e.Message)) }
    }
    if len(warns) == 0 {
        lines = append(lines, NoValidationWarnings)
    } else {
        lines = append(lines, ValidationWarnHdr)
        for _, w := range warns { lines = append(lines, fmt.Sprintf("  - %s: %s", w.Name, w.Message)) }
    }
    return lines
}

func creationLines(d Data) []string {
    r := d.step(cluster.StepCreate)
    switch r.Status {
    case cluster.StepSkipped:
        return skipped(r)
    case cluster.StepOK:
        return []string{fmt.Sprintf("Cluster '%s' created successfully with static address %s on nodes %s.",
            d.Handle.Name, d.Spec.StaticIP(), strings.Join(d.Spec.Nodes(), ", "))}
    }
    return []string{"Cluster creation failed: " + errText(r)}
}

func quorumLines(d Data) []string {
    r := d.step(cluster.StepQuorum)
    switch r.Status {
    case cluster.StepSkipped:
        return skipped(r)
    case cluster.StepOK:
        return []string{fmt.Sprintf("Quorum configured with file share witness %s.", d.WitnessPath)}
    }
    return []string{"Quorum configuration failed: " + errText(r)}
}

func groupLines(d Data) []string {
    r := d.step(cluster.StepGroups)
    switch r.Status {
    case cluster.StepSkipped:
        return skipped(r)
    case cluster.StepOK:
        if len(d.Groups) == 0 { return []string{NoGroups} }
        lines := []string{fmt.Sprintf("%-32s %-12s %s", "Name", "State", "OwnerNode")}
        for _, g := range d.Groups {
            lines = append(lines, fmt.Sprintf("%-32s %-12s %s", g.Name, g.State, g.OwnerNode))
        }
        return lines
    }
    return []string{"Failed to query cluster group status: " + errText(r)}
}

func logExportLines(d Data) []string {
    r := d.step(cluster.StepExportLog)
    switch r.Status {
    case cluster.StepSkipped:
        return skipped(r)
    case cluster.StepOK:
        return []string{fmt.Sprintf("Cluster logs exported to %s (window %s).", d.LogDestination, d.LogWindow)}
    }
    return []string{"Cluster log export failed: " + errText(r)}
}

func eventLines(d Data, events []cluster.LogEvent, none string) []string {
    r := d.step(cluster.StepEvents)
    switch r.Status {
    case cluster.StepSkipped:
        return skipped(r)
    case cluster.StepOK:
        if len(events) == 0 { return []string{none} }
        lines := make([]string, 0, len(events))
        for _, ev := range events {
            ts := "unknown time"
            if !ev.Time.IsZero() { ts = ev.Time.UTC().Format(time.RFC3339) }
            lines = append(lines, fmt.Sprintf("[%s] Event %d: %s", ts, ev.ID, oneLine(ev.Message)))
        }
        return lines
    }
    return []string{"Failed to query recent events: " + errText(r)}
}

// oneLine folds multi-line event text so each event stays on one report line.
func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }

func errText(r cluster.StepResult) string {
    if r.Err != nil { return r.Err.Error() }
    if r.Note != "" { return r.Note }
    return "unknown error"
}
