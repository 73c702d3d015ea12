package powershell

import (
    "bytes"
    "context"
    "fmt"
    "io"
    "os/exec"
    "strings"

    "github.com/amirimatin/go-clusterops/pkg/admin"
)

// Runner executes a PowerShell script and returns its standard output.
// A non-nil error must carry the shell's error stream when available.
type Runner interface {
    Run(ctx context.Context, op, script string) ([]byte, error)
}

// ExecRunner runs scripts through a local PowerShell executable
// (powershell.exe on Windows Server, pwsh elsewhere).
type ExecRunner struct {
    Shell string
}

// Run invokes the shell once. The child process is killed if ctx ends.
func (r ExecRunner) Run(ctx context.Context, op, script string) ([]byte, error) {
    shell := r.Shell
    if shell == "" { shell = DefaultShell }
    cmd := exec.CommandContext(ctx, shell, "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script)
    var stdout, stderr bytes.Buffer
    cmd.Stdout = &stdout
    cmd.Stderr = &stderr
    if err := cmd.Run(); err != nil {
        if ctx.Err() != nil { err = ctx.Err() }
        return nil, &admin.CommandError{Op: op, Output: stderr.String(), Err: err}
    }
    return stdout.Bytes(), nil
}

// DryRunRunner prints each script instead of executing it and reports an
// empty result, so every call "succeeds" without touching the cluster.
type DryRunRunner struct {
    Out io.Writer
}

func (r DryRunRunner) Run(_ context.Context, op, script string) ([]byte, error) {
    if r.Out != nil {
        fmt.Fprintf(r.Out, "# dry-run: %s\n%s\n", op, strings.TrimRight(script, "\n"))
    }
    return []byte("[]"), nil
}
