// Package nodelist turns user input (flags, files) into an ordered list of
// candidate cluster nodes.
package nodelist

import (
    "bufio"
    "fmt"
    "os"
    "strings"
)

// Parse converts a comma-separated list into node names, dropping blanks.
func Parse(csv string) []string {
    if csv == "" {
        return nil
    }
    parts := strings.Split(csv, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" {
            out = append(out, p)
        }
    }
    return out
}

// Load reads node names from a file, one per line or comma-separated.
// Lines starting with '#' are ignored. Order is preserved.
func Load(path string) ([]string, error) {
    f, err := os.Open(path)
    if err != nil { return nil, fmt.Errorf("nodelist: %w", err) }
    defer f.Close()
    var nodes []string
    s := bufio.NewScanner(f)
    for s.Scan() {
        line := strings.TrimSpace(s.Text())
        if line == "" || strings.HasPrefix(line, "#") { continue }
        nodes = append(nodes, Parse(line)...)
    }
    if err := s.Err(); err != nil { return nil, fmt.Errorf("nodelist: read %s: %w", path, err) }
    return nodes, nil
}

// Merge concatenates lists in order, splitting comma-separated entries.
// Duplicates are kept; rejecting them is up to the caller.
func Merge(lists ...[]string) []string {
    var out []string
    for _, l := range lists {
        for _, n := range l { out = append(out, Parse(n)...) }
    }
    return out
}
