package logutil

import (
    "fmt"
    "os"
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// Options selects level and encoding. Empty fields fall back to the
// CLUSTEROPS_LOG_LEVEL / CLUSTEROPS_LOG_FORMAT environment, then to info/console.
type Options struct {
    Level  string // debug|info|warn|error
    Format string // console|json
    // OutputPaths defaults to stderr so stdout stays reserved for the report.
    OutputPaths []string
}

func (o Options) withEnv() Options {
    if o.Level == "" { o.Level = os.Getenv("CLUSTEROPS_LOG_LEVEL") }
    if o.Format == "" { o.Format = os.Getenv("CLUSTEROPS_LOG_FORMAT") }
    if o.Level == "" { o.Level = "info" }
    if o.Format == "" { o.Format = "console" }
    if len(o.OutputPaths) == 0 { o.OutputPaths = []string{"stderr"} }
    return o
}

// New builds a zap logger from Options.
func New(opts Options) (*zap.Logger, error) {
    opts = opts.withEnv()
    var level zapcore.Level
    if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
        return nil, fmt.Errorf("logutil: invalid level %q", opts.Level)
    }

    var cfg zap.Config
    switch strings.ToLower(opts.Format) {
    case "json":
        cfg = zap.NewProductionConfig()
        cfg.EncoderConfig.TimeKey = "ts"
        cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    case "console":
        cfg = zap.NewDevelopmentConfig()
        cfg.Development = false
        cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
    default:
        return nil, fmt.Errorf("logutil: invalid format %q", opts.Format)
    }
    cfg.Level = zap.NewAtomicLevelAt(level)
    cfg.EncoderConfig.StacktraceKey = ""
    cfg.DisableStacktrace = true
    cfg.Sampling = nil
    cfg.OutputPaths = opts.OutputPaths
    cfg.ErrorOutputPaths = []string{"stderr"}
    return cfg.Build()
}

// Nop returns a logger that discards everything; handy for tests and
// library callers that do not care.
func Nop() *zap.Logger { return zap.NewNop() }

// OrNop guards against nil loggers passed through options structs.
func OrNop(l *zap.Logger) *zap.Logger {
    if l == nil { return zap.NewNop() }
    return l
}
