// Package pipeline drives the cluster operations run: a strictly sequential
// list of steps, each ending in an ok, recoverable or fatal outcome. The
// driver stops at the first fatal outcome and marks the rest as skipped.
package pipeline

import (
    "context"
    "errors"
    "fmt"
    "io"
    "time"

    "go.uber.org/zap"

    "github.com/amirimatin/go-clusterops/pkg/admin"
    "github.com/amirimatin/go-clusterops/pkg/cluster"
    "github.com/amirimatin/go-clusterops/pkg/config"
    "github.com/amirimatin/go-clusterops/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-clusterops/pkg/observability/metrics"
    "github.com/amirimatin/go-clusterops/pkg/observability/tracing"
    "github.com/amirimatin/go-clusterops/pkg/report"
)

// Exit codes returned by Run.
const (
    ExitOK      = 0
    ExitFailure = 1
)

// Options wires the reporter's collaborators.
type Options struct {
    Config  *config.Config
    Admin   admin.Admin
    Logger  *zap.Logger
    Metrics *obsmetrics.Recorder
    // Console receives the step echo and the final report. Nil discards.
    Console io.Writer
    // Now is overridable for deterministic tests.
    Now func() time.Time
    // ValidateOnly stops after the validation step.
    ValidateOnly bool
}

// Result is what a run produced.
type Result struct {
    Report     *report.Report
    Steps      []cluster.StepResult
    ExitCode   int
    StartedAt  time.Time
    FinishedAt time.Time
    // WriteErr is set when the report file could not be written.
    WriteErr error
}

// Reporter runs the pipeline once per call to Run.
type Reporter struct {
    opts Options
    spec cluster.Spec
    log  *zap.Logger
    echo *echo
}

// New validates options and returns a Reporter.
func New(opts Options) (*Reporter, error) {
    if opts.Config == nil { return nil, errors.New("pipeline: nil Config") }
    if opts.Admin == nil { return nil, errors.New("pipeline: nil Admin") }
    spec, err := opts.Config.Spec()
    if err != nil { return nil, fmt.Errorf("pipeline: %w", err) }
    if opts.Metrics == nil { opts.Metrics = obsmetrics.New() }
    if opts.Console == nil { opts.Console = io.Discard }
    if opts.Now == nil { opts.Now = time.Now }
    return &Reporter{opts: opts, spec: spec, log: logutil.OrNop(opts.Logger), echo: newEcho(opts.Console)}, nil
}

// stepFunc performs one step, storing what it collected into d.
type stepFunc func(ctx context.Context, d *report.Data) cluster.StepResult

// Run executes the pipeline, writes the report file and echoes it to the
// console. A report write failure is fatal and forces ExitFailure, as is a
// cancelled ctx: steps not yet started are skipped as interrupted.
func (r *Reporter) Run(ctx context.Context) *Result {
    cfg := r.opts.Config
    res := &Result{StartedAt: r.opts.Now()}
    data := report.Data{
        GeneratedAt:    res.StartedAt,
        Spec:           r.spec,
        Steps:          make(map[string]cluster.StepResult, len(cluster.Steps)),
        WitnessPath:    cfg.WitnessPath,
        LogDestination: cfg.LogDestination,
        LogWindow:      cfg.LogWindow,
    }

    steps := []struct {
        name string
        fn   stepFunc
    }{
        {cluster.StepValidate, r.validate},
        {cluster.StepCreate, r.createCluster},
        {cluster.StepQuorum, r.configureQuorum},
        {cluster.StepGroups, r.queryGroupStatus},
        {cluster.StepExportLog, r.exportLogs},
        {cluster.StepEvents, r.queryRecentEvents},
    }

    r.log.Info("cluster ops run started", zap.String("cluster", r.spec.Name()), zap.Strings("nodes", r.spec.Nodes()))
    halted := ""
    interrupted := false
    for _, s := range steps {
        if halted == "" && !interrupted && ctx.Err() != nil {
            interrupted = true
            r.log.Warn("run interrupted", zap.String("next_step", s.name), zap.Error(ctx.Err()))
        }
        var out cluster.StepResult
        switch {
        case halted != "":
            out = cluster.StepResult{Step: s.name, Status: cluster.StepSkipped, Note: fmt.Sprintf("pipeline halted after %s failure", halted)}
            r.echo.step(out)
        case interrupted:
            out = cluster.StepResult{Step: s.name, Status: cluster.StepSkipped, Note: "interrupted"}
            r.echo.step(out)
        case r.opts.ValidateOnly && s.name != cluster.StepValidate:
            out = cluster.StepResult{Step: s.name, Status: cluster.StepSkipped, Note: "validation-only run"}
            r.echo.step(out)
        default:
            out = r.runStep(ctx, s.name, s.fn, &data)
        }
        data.Steps[s.name] = out
        res.Steps = append(res.Steps, out)
        if out.Status == cluster.StepFatal { halted = s.name }
    }

    res.ExitCode = ExitOK
    if halted != "" || interrupted { res.ExitCode = ExitFailure }

    res.Report = report.Render(data)
    if err := r.write(res.Report); err != nil {
        res.WriteErr = err
        res.ExitCode = ExitFailure
    }
    res.FinishedAt = r.opts.Now()
    r.opts.Metrics.Finish(res.ExitCode, res.FinishedAt)
    r.log.Info("cluster ops run finished", zap.Int("exit_code", res.ExitCode), zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)))
    return res
}

// runStep wraps a step with tracing, logging, metrics, the console echo and
// the optional per-step timeout.
func (r *Reporter) runStep(ctx context.Context, name string, fn stepFunc, d *report.Data) cluster.StepResult {
    ctx, span := tracing.StartSpan(ctx, "clusterops."+name)
    defer span.End()
    if t := r.opts.Config.StepTimeout; t > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, t)
        defer cancel()
    }
    r.echo.start(name)
    r.log.Debug("step started", zap.String("step", name))
    began := time.Now()
    out := fn(ctx, d)
    out.Step = name
    out.Duration = time.Since(began)

    span.SetStatus(string(out.Status), out.Err)
    r.opts.Metrics.ObserveStep(name, string(out.Status), out.Duration)
    fields := []zap.Field{zap.String("step", name), zap.String("status", string(out.Status)), zap.Duration("duration", out.Duration)}
    switch out.Status {
    case cluster.StepFatal:
        r.log.Error("step failed", append(fields, zap.Error(out.Err))...)
    case cluster.StepRecoverable:
        r.log.Warn("step failed, continuing", append(fields, zap.Error(out.Err))...)
    default:
        r.log.Info("step finished", fields...)
    }
    r.echo.step(out)
    return out
}

func ok() cluster.StepResult { return cluster.StepResult{Status: cluster.StepOK} }

func fatal(err error) cluster.StepResult {
    return cluster.StepResult{Status: cluster.StepFatal, Err: err}
}

func recoverable(err error) cluster.StepResult {
    return cluster.StepResult{Status: cluster.StepRecoverable, Err: err}
}

func (r *Reporter) validate(ctx context.Context, d *report.Data) cluster.StepResult {
    entries, err := r.opts.Admin.Validate(ctx, r.spec.Nodes())
    if err != nil { return fatal(err) }
    if entries == nil { entries = []cluster.ValidationEntry{} }
    d.Validation = entries

    errs, warns := cluster.Classify(entries)
    m := r.opts.Metrics.ValidationEntries
    m.WithLabelValues(string(cluster.StatusFailed)).Set(float64(len(errs)))
    m.WithLabelValues(string(cluster.StatusWarning)).Set(float64(len(warns)))
    m.WithLabelValues(string(cluster.StatusPassed)).Set(float64(len(entries) - len(errs) - len(warns)))
    for _, w := range warns {
        r.log.Warn("validation warning", zap.String("name", w.Name), zap.String("message", w.Message))
    }
    if len(errs) > 0 {
        return fatal(fmt.Errorf("%w: %d failed entries", cluster.ErrValidationFailed, len(errs)))
    }
    return ok()
}

func (r *Reporter) createCluster(ctx context.Context, d *report.Data) cluster.StepResult {
    h, err := r.opts.Admin.CreateCluster(ctx, r.spec, r.opts.Config.SkipStorage)
    if err != nil { return fatal(fmt.Errorf("%w: %w", cluster.ErrCreateFailed, err)) }
    if h.Name == "" { h.Name = r.spec.Name() }
    d.Handle = h
    return ok()
}

func (r *Reporter) configureQuorum(ctx context.Context, d *report.Data) cluster.StepResult {
    if r.opts.Config.WitnessPath == "" {
        return cluster.StepResult{Status: cluster.StepSkipped, Note: "no witness path configured"}
    }
    if err := r.opts.Admin.ConfigureQuorum(ctx, d.Handle, r.opts.Config.WitnessPath); err != nil {
        return recoverable(err)
    }
    return ok()
}

func (r *Reporter) queryGroupStatus(ctx context.Context, d *report.Data) cluster.StepResult {
    groups, err := r.opts.Admin.GroupStatus(ctx, d.Handle)
    if err != nil { return recoverable(err) }
    d.Groups = groups
    return ok()
}

func (r *Reporter) exportLogs(ctx context.Context, d *report.Data) cluster.StepResult {
    cfg := r.opts.Config
    if err := r.opts.Admin.ExportLogs(ctx, d.Handle, cfg.LogDestination, cfg.LogWindow); err != nil {
        return recoverable(err)
    }
    return ok()
}

func (r *Reporter) queryRecentEvents(ctx context.Context, d *report.Data) cluster.StepResult {
    cfg := r.opts.Config
    events, err := r.opts.Admin.RecentEvents(ctx, cfg.EventChannel, cfg.EventCount)
    if err != nil { return recoverable(err) }
    d.Events = events
    for _, ev := range events {
        r.opts.Metrics.EventsCollected.WithLabelValues(string(ev.Severity)).Inc()
    }
    return ok()
}

func (r *Reporter) write(rep *report.Report) error {
    path := r.opts.Config.ReportPath
    if err := rep.WriteFile(path); err != nil {
        r.log.Error("report write failed", zap.String("path", path), zap.Error(err))
        r.echo.writeFailed(path, err)
        r.echo.body(rep)
        return err
    }
    r.log.Info("report written", zap.String("path", path))
    r.echo.report(rep, path)
    return nil
}
