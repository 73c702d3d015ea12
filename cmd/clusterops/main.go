package main

import (
    "errors"
    "fmt"
    "os"

    "github.com/MakeNowJust/heredoc"
    "github.com/spf13/cobra"

    clustercli "github.com/amirimatin/go-clusterops/pkg/cli"
)

func main() {
    if err := newRoot().Execute(); err != nil {
        var ee *clustercli.ExitError
        if errors.As(err, &ee) {
            if ee.Err != nil { fmt.Fprintln(os.Stderr, "error:", ee.Err) }
            os.Exit(ee.Code)
        }
        fmt.Fprintln(os.Stderr, "error:", err)
        os.Exit(1)
    }
}

func newRoot() *cobra.Command {
    root := &cobra.Command{
        Use:   "clusterops",
        Short: "Failover cluster provisioning and operations report",
        Long: heredoc.Doc(`
            clusterops drives the platform failover clustering tools to validate
            candidate nodes, create a cluster, configure quorum and collect recent
            errors and warnings into a plain text report.
        `),
        SilenceUsage:  true,
        SilenceErrors: true,
    }
    clustercli.AddAll(root)
    return root
}
