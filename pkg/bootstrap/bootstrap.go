package bootstrap

import (
    "context"
    "errors"
    "io"
    "time"

    "go.uber.org/zap"

    "github.com/amirimatin/go-clusterops/pkg/admin"
    "github.com/amirimatin/go-clusterops/pkg/admin/powershell"
    "github.com/amirimatin/go-clusterops/pkg/cluster"
    "github.com/amirimatin/go-clusterops/pkg/config"
    "github.com/amirimatin/go-clusterops/pkg/history"
    "github.com/amirimatin/go-clusterops/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-clusterops/pkg/observability/metrics"
    "github.com/amirimatin/go-clusterops/pkg/observability/tracing"
    "github.com/amirimatin/go-clusterops/pkg/pipeline"
)

// Options carries what the caller may swap out; zero values select the
// defaults (local PowerShell, wall clock, discarded console).
type Options struct {
    Console io.Writer
    // NewAdmin builds the admin boundary. Nil selects DefaultAdmin.
    NewAdmin func(cfg *config.Config, log *zap.Logger) admin.Admin
    Now      func() time.Time
    // Logger overrides the logger built from cfg.LogLevel/LogFormat.
    Logger       *zap.Logger
    ValidateOnly bool
}

// DefaultAdmin drives the FailoverClusters PowerShell module, or only prints
// the scripts when cfg.DryRun is set.
func DefaultAdmin(cfg *config.Config, log *zap.Logger, console io.Writer) admin.Admin {
    if cfg.DryRun {
        return powershell.New(powershell.DryRunRunner{Out: console}, log)
    }
    return powershell.New(powershell.ExecRunner{Shell: cfg.Shell}, log)
}

// Run assembles the reporter from cfg, runs it once, then persists metrics
// and history when configured. The returned error covers assembly only;
// pipeline failures are reported through Result.ExitCode.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*pipeline.Result, error) {
    if cfg == nil { return nil, errors.New("bootstrap: nil config") }
    if opts.Console == nil { opts.Console = io.Discard }

    logger := opts.Logger
    if logger == nil {
        l, err := logutil.New(logutil.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
        if err != nil { return nil, err }
        logger = l
        defer func() { _ = logger.Sync() }()
    }

    shutdown, err := tracing.Setup(cfg.Trace)
    if err != nil {
        logger.Warn("tracing setup failed", zap.Error(err))
    } else {
        defer func() { _ = shutdown(context.Background()) }()
    }

    var adm admin.Admin
    if opts.NewAdmin != nil {
        adm = opts.NewAdmin(cfg, logger)
    } else {
        adm = DefaultAdmin(cfg, logger, opts.Console)
    }

    rec := obsmetrics.New()
    rep, err := pipeline.New(pipeline.Options{
        Config:       cfg,
        Admin:        adm,
        Logger:       logger,
        Metrics:      rec,
        Console:      opts.Console,
        Now:          opts.Now,
        ValidateOnly: opts.ValidateOnly,
    })
    if err != nil { return nil, err }
    res := rep.Run(ctx)

    if cfg.MetricsFile != "" {
        if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
            logger.Warn("metrics textfile write failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
        }
    }
    if cfg.HistoryPath != "" {
        recordHistory(logger, cfg, res)
    }
    return res, nil
}

// recordHistory is best effort: a broken ledger never changes the exit code.
func recordHistory(logger *zap.Logger, cfg *config.Config, res *pipeline.Result) {
    st, err := history.Open(cfg.HistoryPath)
    if err != nil {
        logger.Warn("history unavailable", zap.Error(err))
        return
    }
    defer st.Close()
    saved, err := st.Record(ToRun(cfg, res))
    if err != nil {
        logger.Warn("history record failed", zap.Error(err))
        return
    }
    logger.Info("run recorded", zap.String("run_id", saved.ID))
}

// ToRun converts a pipeline result into a history record.
func ToRun(cfg *config.Config, res *pipeline.Result) history.Run {
    run := history.Run{
        Cluster:    cfg.ClusterName,
        Nodes:      append([]string(nil), cfg.Nodes...),
        StartedAt:  res.StartedAt,
        FinishedAt: res.FinishedAt,
        ExitCode:   res.ExitCode,
        ReportPath: cfg.ReportPath,
    }
    for _, s := range res.Steps {
        sr := history.StepRecord{Step: s.Step, Status: string(s.Status), Duration: s.Duration}
        switch {
        case s.Err != nil:
            sr.Error = s.Err.Error()
        case s.Status == cluster.StepSkipped:
            sr.Error = s.Note
        }
        run.Steps = append(run.Steps, sr)
    }
    return run
}
