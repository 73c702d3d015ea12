package config

import (
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "github.com/spf13/viper"

    "github.com/amirimatin/go-clusterops/pkg/cluster"
    "github.com/amirimatin/go-clusterops/pkg/nodelist"
)

// EnvPrefix is prepended to every environment override, e.g.
// CLUSTEROPS_CLUSTER_NAME.
const EnvPrefix = "CLUSTEROPS"

const DefaultEventChannel = "Microsoft-Windows-FailoverClustering/Operational"

// Keys shared by flags, environment and the YAML config file.
const (
    KeyClusterName  = "cluster-name"
    KeyStaticIP     = "static-ip"
    KeyNodes        = "nodes"
    KeyNodesFile    = "nodes-file"
    KeyWitnessPath  = "witness-path"
    KeyLogDest      = "log-destination"
    KeyLogWindow    = "log-window"
    KeyReportPath   = "report"
    KeyEventChannel = "event-channel"
    KeyEventCount   = "event-count"
    KeySkipStorage  = "skip-storage"
    KeyShell        = "shell"
    KeyStepTimeout  = "step-timeout"
    KeyHistoryPath  = "history"
    KeyMetricsFile  = "metrics-file"
    KeyTrace        = "trace"
    KeyDryRun       = "dry-run"
    KeyLogLevel     = "log-level"
    KeyLogFormat    = "log-format"
)

// Config is the complete, explicit input of one reporter run.
type Config struct {
    ClusterName    string        `mapstructure:"cluster-name"`
    StaticIP       string        `mapstructure:"static-ip"`
    Nodes          []string      `mapstructure:"nodes"`
    NodesFile      string        `mapstructure:"nodes-file"`
    WitnessPath    string        `mapstructure:"witness-path"`
    LogDestination string        `mapstructure:"log-destination"`
    LogWindow      time.Duration `mapstructure:"log-window"`
    ReportPath     string        `mapstructure:"report"`
    EventChannel   string        `mapstructure:"event-channel"`
    EventCount     int           `mapstructure:"event-count"`
    SkipStorage    bool          `mapstructure:"skip-storage"`
    Shell          string        `mapstructure:"shell"`
    StepTimeout    time.Duration `mapstructure:"step-timeout"`
    HistoryPath    string        `mapstructure:"history"`
    MetricsFile    string        `mapstructure:"metrics-file"`
    Trace          bool          `mapstructure:"trace"`
    DryRun         bool          `mapstructure:"dry-run"`
    LogLevel       string        `mapstructure:"log-level"`
    LogFormat      string        `mapstructure:"log-format"`
}

// Default returns a Config with default values.
func Default() *Config {
    return &Config{
        LogDestination: "ClusterLogs",
        LogWindow:      15 * time.Minute,
        ReportPath:     "cluster-report.txt",
        EventChannel:   DefaultEventChannel,
        EventCount:     50,
        SkipStorage:    true,
        Shell:          "powershell.exe",
        LogLevel:       "info",
        LogFormat:      "console",
    }
}

// SetDefaults registers every key on v so environment overrides are picked
// up by Unmarshal even when no flag or file mentions them.
func SetDefaults(v *viper.Viper) {
    d := Default()
    v.SetDefault(KeyClusterName, d.ClusterName)
    v.SetDefault(KeyStaticIP, d.StaticIP)
    v.SetDefault(KeyNodes, []string{})
    v.SetDefault(KeyNodesFile, "")
    v.SetDefault(KeyWitnessPath, d.WitnessPath)
    v.SetDefault(KeyLogDest, d.LogDestination)
    v.SetDefault(KeyLogWindow, d.LogWindow)
    v.SetDefault(KeyReportPath, d.ReportPath)
    v.SetDefault(KeyEventChannel, d.EventChannel)
    v.SetDefault(KeyEventCount, d.EventCount)
    v.SetDefault(KeySkipStorage, d.SkipStorage)
    v.SetDefault(KeyShell, d.Shell)
    v.SetDefault(KeyStepTimeout, d.StepTimeout)
    v.SetDefault(KeyHistoryPath, "")
    v.SetDefault(KeyMetricsFile, "")
    v.SetDefault(KeyTrace, false)
    v.SetDefault(KeyDryRun, false)
    v.SetDefault(KeyLogLevel, d.LogLevel)
    v.SetDefault(KeyLogFormat, d.LogFormat)
}

// Load resolves configuration from, in increasing precedence: defaults, the
// YAML file at configFile (optional), a .env file in the working directory,
// CLUSTEROPS_* environment variables and flags already bound to v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
    if err := loadDotEnv(); err != nil {
        return nil, fmt.Errorf("config: .env: %w", err)
    }
    SetDefaults(v)
    if configFile != "" {
        v.SetConfigFile(configFile)
        v.SetConfigType("yaml")
        if err := v.ReadInConfig(); err != nil {
            return nil, fmt.Errorf("config: read %s: %w", configFile, err)
        }
    }
    v.SetEnvPrefix(EnvPrefix)
    v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
    v.AutomaticEnv()

    cfg := Default()
    if err := v.Unmarshal(cfg); err != nil {
        return nil, fmt.Errorf("config: unmarshal: %w", err)
    }
    if err := cfg.resolveNodes(); err != nil {
        return nil, err
    }
    if err := cfg.Validate(); err != nil {
        return nil, fmt.Errorf("config: %w", err)
    }
    return cfg, nil
}

func loadDotEnv() error {
    if _, err := os.Stat(".env"); err == nil {
        return godotenv.Load(".env")
    }
    return nil
}

// resolveNodes normalises the node list and merges in the nodes file.
func (c *Config) resolveNodes() error {
    var fromFile []string
    if c.NodesFile != "" {
        var err error
        fromFile, err = nodelist.Load(c.NodesFile)
        if err != nil { return fmt.Errorf("config: %w", err) }
    }
    c.Nodes = nodelist.Merge(c.Nodes, fromFile)
    return nil
}

// Validate checks the configuration. Node uniqueness and address syntax are
// checked by building the cluster spec.
func (c *Config) Validate() error {
    if _, err := c.Spec(); err != nil {
        return err
    }
    var errs []error
    if strings.TrimSpace(c.ReportPath) == "" {
        errs = append(errs, errors.New("report path is required"))
    }
    if strings.TrimSpace(c.LogDestination) == "" {
        errs = append(errs, errors.New("log destination is required"))
    }
    if c.LogWindow <= 0 {
        errs = append(errs, fmt.Errorf("log window must be positive, got %s", c.LogWindow))
    }
    if c.EventCount <= 0 {
        errs = append(errs, fmt.Errorf("event count must be positive, got %d", c.EventCount))
    }
    if strings.TrimSpace(c.EventChannel) == "" {
        errs = append(errs, errors.New("event channel is required"))
    }
    if c.StepTimeout < 0 {
        errs = append(errs, fmt.Errorf("step timeout must not be negative, got %s", c.StepTimeout))
    }
    return errors.Join(errs...)
}

// Spec builds the immutable cluster spec described by the configuration.
func (c *Config) Spec() (cluster.Spec, error) {
    return cluster.NewSpec(c.ClusterName, c.StaticIP, c.Nodes)
}
