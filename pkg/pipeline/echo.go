package pipeline

import (
    "fmt"
    "io"
    "time"

    "github.com/fatih/color"

    "github.com/amirimatin/go-clusterops/pkg/cluster"
    "github.com/amirimatin/go-clusterops/pkg/report"
)

// echo prints major steps to the console. Colors are dropped automatically
// when stdout is not a terminal.
type echo struct {
    w      io.Writer
    ok     *color.Color
    warn   *color.Color
    fail   *color.Color
    faint  *color.Color
    header *color.Color
}

func newEcho(w io.Writer) *echo {
    return &echo{
        w:      w,
        ok:     color.New(color.FgGreen),
        warn:   color.New(color.FgYellow),
        fail:   color.New(color.FgRed, color.Bold),
        faint:  color.New(color.Faint),
        header: color.New(color.Bold),
    }
}

func (e *echo) start(step string) {
    fmt.Fprintf(e.w, "==> %s\n", step)
}

func (e *echo) step(r cluster.StepResult) {
    switch r.Status {
    case cluster.StepOK:
        e.ok.Fprintf(e.w, "    %s: ok (%s)\n", r.Step, r.Duration.Round(time.Millisecond))
    case cluster.StepRecoverable:
        e.warn.Fprintf(e.w, "    %s: failed, continuing: %v\n", r.Step, r.Err)
    case cluster.StepFatal:
        e.fail.Fprintf(e.w, "    %s: FAILED: %v\n", r.Step, r.Err)
    default:
        note := r.Note
        if note == "" { note = "skipped" }
        e.faint.Fprintf(e.w, "    %s: skipped (%s)\n", r.Step, note)
    }
}

func (e *echo) report(rep *report.Report, path string) {
    e.header.Fprintf(e.w, "\nReport written to %s\n\n", path)
    e.body(rep)
}

func (e *echo) writeFailed(path string, err error) {
    e.fail.Fprintf(e.w, "\nReport could not be written to %s: %v\n\n", path, err)
}

func (e *echo) body(rep *report.Report) {
    fmt.Fprint(e.w, rep.String())
}
