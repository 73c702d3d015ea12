package cli

import (
    "context"
    "errors"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "text/tabwriter"
    "time"

    "github.com/MakeNowJust/heredoc"
    "github.com/spf13/cobra"
    "github.com/spf13/pflag"
    "github.com/spf13/viper"
    "go.uber.org/zap"

    "github.com/amirimatin/go-clusterops/pkg/admin"
    "github.com/amirimatin/go-clusterops/pkg/bootstrap"
    "github.com/amirimatin/go-clusterops/pkg/config"
    "github.com/amirimatin/go-clusterops/pkg/history"
    "github.com/amirimatin/go-clusterops/pkg/pipeline"
)

// ExitError carries a process exit code out of a command. Err may be nil
// when the report already explains the failure.
type ExitError struct {
    Code int
    Err  error
}

func (e *ExitError) Error() string {
    if e.Err == nil { return fmt.Sprintf("exit status %d", e.Code) }
    return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Deps are the swappable collaborators of the commands. A nil NewAdmin
// selects the local PowerShell module (or the dry-run printer).
type Deps struct {
    NewAdmin func(cfg *config.Config, log *zap.Logger) admin.Admin
    Now      func() time.Time
}

func DefaultDeps() Deps { return Deps{Now: time.Now} }

// AddAll attaches the clusterops subcommands (run/validate/history) to root.
func AddAll(root *cobra.Command) {
    AddAllWith(root, DefaultDeps())
}

// AddAllWith is AddAll with explicit dependencies.
func AddAllWith(root *cobra.Command, deps Deps) {
    root.AddCommand(NewRunCmd(deps))
    root.AddCommand(NewValidateCmd(deps))
    root.AddCommand(NewHistoryCmd())
}

// NewRunCmd returns the "run" command: the full validate/create/report pipeline.
func NewRunCmd(deps Deps) *cobra.Command {
    v := viper.New()
    var configFile string
    cmd := &cobra.Command{
        Use:   "run",
        Short: "Validate nodes, create the cluster and write the operations report",
        Long: heredoc.Doc(`
            Run the full cluster operations pipeline against the local failover
            clustering management interface:

              validate -> create cluster -> configure quorum -> group status
                       -> export cluster logs -> recent events -> report

            Validation failures and cluster creation failures stop the run and exit
            with status 1. Quorum, status, log export and event query failures are
            recorded in the report and do not change the exit status.
        `),
        Example: heredoc.Doc(`
            clusterops run --cluster-name Prod --static-ip 10.0.0.10 \
              --nodes Node1,Node2 --witness-path '\\fs01\witness'

            clusterops run --config clusterops.yaml --report C:\Reports\cluster.txt
        `),
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            return execute(cmd, v, configFile, deps, false)
        },
    }
    cmd.Flags().StringVar(&configFile, "config", "", "YAML configuration file (optional)")
    addRunFlags(cmd.Flags())
    _ = v.BindPFlags(cmd.Flags())
    return cmd
}

// NewValidateCmd returns the "validate" command which stops after validation.
func NewValidateCmd(deps Deps) *cobra.Command {
    v := viper.New()
    var configFile string
    cmd := &cobra.Command{
        Use:   "validate",
        Short: "Run cluster validation only and write the report",
        Long: heredoc.Doc(`
            Run the cluster validation suite against the candidate nodes and write
            the report. No cluster is created. Exits with status 1 when any
            validation entry failed.
        `),
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            return execute(cmd, v, configFile, deps, true)
        },
    }
    cmd.Flags().StringVar(&configFile, "config", "", "YAML configuration file (optional)")
    addRunFlags(cmd.Flags())
    _ = v.BindPFlags(cmd.Flags())
    return cmd
}

// NewHistoryCmd returns the "history" command.
func NewHistoryCmd() *cobra.Command {
    var (
        path  string
        limit int
    )
    cmd := &cobra.Command{
        Use:   "history",
        Short: "List recorded runs",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            if path == "" { return errors.New("missing --history") }
            if _, err := os.Stat(path); err != nil { return fmt.Errorf("history: %w", err) }
            st, err := history.Open(path)
            if err != nil { return err }
            defer st.Close()
            runs, err := st.List(limit)
            if err != nil { return err }
            tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
            fmt.Fprintln(tw, "RUN ID\tCLUSTER\tSTARTED\tDURATION\tEXIT\tREPORT")
            for _, r := range runs {
                fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", r.ID, r.Cluster, r.StartedAt.UTC().Format(time.RFC3339),
                    r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), r.ExitCode, r.ReportPath)
            }
            return tw.Flush()
        },
    }
    cmd.Flags().StringVar(&path, "history", "", "history database path (required)")
    cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 = all)")
    return cmd
}

func addRunFlags(fs *pflag.FlagSet) {
    d := config.Default()
    fs.String(config.KeyClusterName, d.ClusterName, "cluster name (required)")
    fs.String(config.KeyStaticIP, d.StaticIP, "static cluster IP address (required)")
    fs.StringSlice(config.KeyNodes, nil, "comma-separated candidate node names")
    fs.String(config.KeyNodesFile, "", "file with node names, one per line or comma-separated")
    fs.String(config.KeyWitnessPath, d.WitnessPath, "file share witness path for quorum (empty skips quorum)")
    fs.String(config.KeyLogDest, d.LogDestination, "destination directory for exported cluster logs")
    fs.Duration(config.KeyLogWindow, d.LogWindow, "time window of cluster logs to export")
    fs.String(config.KeyReportPath, d.ReportPath, "report file path")
    fs.String(config.KeyEventChannel, d.EventChannel, "operational event log channel")
    fs.Int(config.KeyEventCount, d.EventCount, "number of recent events to fetch")
    fs.Bool(config.KeySkipStorage, d.SkipStorage, "create the cluster without adding eligible storage")
    fs.String(config.KeyShell, d.Shell, "PowerShell executable")
    fs.Duration(config.KeyStepTimeout, d.StepTimeout, "per-step timeout (0 = none)")
    fs.String(config.KeyHistoryPath, "", "record the run in this history database (optional)")
    fs.String(config.KeyMetricsFile, "", "write Prometheus textfile metrics here (optional)")
    fs.Bool(config.KeyTrace, false, "enable OpenTelemetry stdout tracing (dev)")
    fs.Bool(config.KeyDryRun, false, "print the PowerShell scripts instead of running them")
    fs.String(config.KeyLogLevel, d.LogLevel, "log level: debug|info|warn|error")
    fs.String(config.KeyLogFormat, d.LogFormat, "log format: console|json")
}

func execute(cmd *cobra.Command, v *viper.Viper, configFile string, deps Deps, validateOnly bool) error {
    cfg, err := config.Load(v, configFile)
    if err != nil { return &ExitError{Code: pipeline.ExitFailure, Err: err} }

    ctx, cancel := signalContext(cmd.Context())
    defer cancel()

    res, err := bootstrap.Run(ctx, cfg, bootstrap.Options{
        Console:      cmd.OutOrStdout(),
        NewAdmin:     deps.NewAdmin,
        Now:          deps.Now,
        ValidateOnly: validateOnly,
    })
    if err != nil { return &ExitError{Code: pipeline.ExitFailure, Err: err} }
    if res.WriteErr != nil { return &ExitError{Code: res.ExitCode, Err: res.WriteErr} }
    if res.ExitCode != pipeline.ExitOK { return &ExitError{Code: res.ExitCode} }
    return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
    if parent == nil { parent = context.Background() }
    return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
