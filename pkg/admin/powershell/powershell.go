// Package powershell implements admin.Admin on top of the FailoverClusters
// PowerShell module.
//
// Test-Cluster only reports through its warning stream and report file, so
// validation rows are derived from those. A row whose status is missing or
// unrecognised is treated as Failed: an unreadable verdict must not let
// cluster creation proceed.
package powershell

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "strings"
    "time"
    "unicode/utf8"

    "go.uber.org/zap"
    "golang.org/x/text/encoding/charmap"

    "github.com/amirimatin/go-clusterops/pkg/admin"
    "github.com/amirimatin/go-clusterops/pkg/cluster"
    "github.com/amirimatin/go-clusterops/pkg/internal/logutil"
)

const DefaultShell = "powershell.exe"

// legacyCodepage decodes output from hosts where the prelude could not switch
// the console to UTF-8.
var legacyCodepage = charmap.CodePage850

// Event log levels as reported by Get-WinEvent.
const (
    levelCritical = 1
    levelError    = 2
    levelWarning  = 3
)

// Client is a thin adapter from admin.Admin to PowerShell scripts.
type Client struct {
    runner Runner
    log    *zap.Logger
}

var _ admin.Admin = (*Client)(nil)

// New returns a Client using runner to execute scripts. A nil logger is allowed.
func New(runner Runner, log *zap.Logger) *Client {
    return &Client{runner: runner, log: logutil.OrNop(log)}
}

type entryJSON struct {
    Name    string `json:"name"`
    Status  string `json:"status"`
    Message string `json:"message"`
}

type groupJSON struct {
    Name      string `json:"name"`
    State     string `json:"state"`
    OwnerNode string `json:"ownerNode"`
}

type eventJSON struct {
    Time    string `json:"time"`
    ID      int    `json:"id"`
    Level   int    `json:"level"`
    Message string `json:"message"`
}

type handleJSON struct {
    Name string `json:"name"`
}

func (c *Client) Validate(ctx context.Context, nodes []string) ([]cluster.ValidationEntry, error) {
    var rows []entryJSON
    if err := c.call(ctx, "Test-Cluster", validateScript(nodes), &rows); err != nil { return nil, err }
    out := make([]cluster.ValidationEntry, 0, len(rows))
    for _, r := range rows {
        out = append(out, cluster.ValidationEntry{Name: r.Name, Status: normalizeStatus(r.Status), Message: r.Message})
    }
    return out, nil
}

func (c *Client) CreateCluster(ctx context.Context, spec cluster.Spec, skipStorage bool) (cluster.Handle, error) {
    var rows []handleJSON
    script := createScript(spec.Name(), spec.StaticIP(), spec.Nodes(), skipStorage)
    if err := c.call(ctx, "New-Cluster", script, &rows); err != nil { return cluster.Handle{}, err }
    h := cluster.Handle{Name: spec.Name()}
    if len(rows) > 0 && rows[0].Name != "" { h.Name = rows[0].Name }
    return h, nil
}

func (c *Client) ConfigureQuorum(ctx context.Context, h cluster.Handle, witnessPath string) error {
    return c.call(ctx, "Set-ClusterQuorum", quorumScript(h.Name, witnessPath), nil)
}

func (c *Client) GroupStatus(ctx context.Context, h cluster.Handle) ([]cluster.GroupStatus, error) {
    var rows []groupJSON
    if err := c.call(ctx, "Get-ClusterGroup", groupStatusScript(h.Name), &rows); err != nil { return nil, err }
    out := make([]cluster.GroupStatus, 0, len(rows))
    for _, r := range rows {
        out = append(out, cluster.GroupStatus{Name: r.Name, State: r.State, OwnerNode: r.OwnerNode})
    }
    return out, nil
}

func (c *Client) ExportLogs(ctx context.Context, h cluster.Handle, destination string, window time.Duration) error {
    return c.call(ctx, "Get-ClusterLog", exportLogsScript(h.Name, destination, window), nil)
}

func (c *Client) RecentEvents(ctx context.Context, channel string, maxCount int) ([]cluster.LogEvent, error) {
    var rows []eventJSON
    if err := c.call(ctx, "Get-WinEvent", eventsScript(channel, maxCount), &rows); err != nil { return nil, err }
    out := make([]cluster.LogEvent, 0, len(rows))
    for _, r := range rows {
        ev := cluster.LogEvent{ID: r.ID, Severity: severityOf(r.Level), Message: strings.TrimSpace(r.Message)}
        if r.Time != "" {
            ts, err := time.Parse(time.RFC3339Nano, r.Time)
            if err != nil { return nil, fmt.Errorf("admin: Get-WinEvent: bad timestamp %q: %w", r.Time, err) }
            ev.Time = ts
        }
        out = append(out, ev)
    }
    return out, nil
}

// call runs one script and, when into is non-nil, decodes its JSON output.
func (c *Client) call(ctx context.Context, op, script string, into any) error {
    c.log.Debug("invoking cluster admin", zap.String("op", op))
    out, err := c.runner.Run(ctx, op, script)
    if err != nil { return err }
    if into == nil { return nil }
    out, err = toUTF8(out)
    if err != nil { return fmt.Errorf("admin: %s: decode output: %w", op, err) }
    if len(out) == 0 { return nil }
    if err := json.Unmarshal(out, into); err != nil {
        return fmt.Errorf("admin: %s: decode output: %w", op, err)
    }
    return nil
}

// toUTF8 strips a BOM and, when the output is not valid UTF-8, reads it as
// the legacy OEM codepage.
func toUTF8(out []byte) ([]byte, error) {
    out = bytes.TrimSpace(bytes.TrimPrefix(out, []byte("\xef\xbb\xbf")))
    if utf8.Valid(out) { return out, nil }
    return legacyCodepage.NewDecoder().Bytes(out)
}

// normalizeStatus maps the validator's wording onto ValidationStatus.
// "NotApplicable" rows stay neutral; anything else unknown fails.
func normalizeStatus(s string) cluster.ValidationStatus {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "passed", "success", "ok":
        return cluster.StatusPassed
    case "warning", "warn":
        return cluster.StatusWarning
    case "notapplicable", "not applicable", "skipped":
        return cluster.ValidationStatus(strings.TrimSpace(s))
    }
    return cluster.StatusFailed
}

func severityOf(level int) cluster.Severity {
    switch level {
    case levelCritical, levelError:
        return cluster.SeverityError
    case levelWarning:
        return cluster.SeverityWarning
    }
    return cluster.SeverityInfo
}
