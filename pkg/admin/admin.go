// Package admin defines the boundary to the platform's failover-clustering
// management interface. Every method maps to exactly one external call; no
// method retries.
package admin

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/amirimatin/go-clusterops/pkg/cluster"
)

// Admin is the set of external cluster-management operations the reporter
// depends on.
type Admin interface {
    Validate(ctx context.Context, nodes []string) ([]cluster.ValidationEntry, error)
    CreateCluster(ctx context.Context, spec cluster.Spec, skipStorage bool) (cluster.Handle, error)
    ConfigureQuorum(ctx context.Context, h cluster.Handle, witnessPath string) error
    GroupStatus(ctx context.Context, h cluster.Handle) ([]cluster.GroupStatus, error)
    ExportLogs(ctx context.Context, h cluster.Handle, destination string, window time.Duration) error
    RecentEvents(ctx context.Context, channel string, maxCount int) ([]cluster.LogEvent, error)
}

// CommandError describes a failed external call. Output holds whatever the
// management shell printed on its error stream.
type CommandError struct {
    Op     string
    Output string
    Err    error
}

func (e *CommandError) Error() string {
    out := strings.TrimSpace(e.Output)
    if out == "" {
        return fmt.Sprintf("admin: %s: %v", e.Op, e.Err)
    }
    return fmt.Sprintf("admin: %s: %v: %s", e.Op, e.Err, out)
}

func (e *CommandError) Unwrap() error { return e.Err }
