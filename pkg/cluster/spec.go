package cluster

import (
    "fmt"
    "net"
    "strings"
)

// Spec describes the cluster to be created. It is immutable once built:
// accessors hand out copies.
type Spec struct {
    name     string
    staticIP string
    nodes    []string
}

// NewSpec validates its inputs and returns a Spec. Node names must be
// non-empty and unique (compared case-insensitively, as host names are).
func NewSpec(name, staticIP string, nodes []string) (Spec, error) {
    name = strings.TrimSpace(name)
    if name == "" {
        return Spec{}, ErrEmptyName
    }
    if net.ParseIP(strings.TrimSpace(staticIP)) == nil {
        return Spec{}, fmt.Errorf("%w: %q", ErrInvalidIP, staticIP)
    }
    if len(nodes) == 0 {
        return Spec{}, ErrNoNodes
    }
    seen := make(map[string]struct{}, len(nodes))
    cleaned := make([]string, 0, len(nodes))
    for _, n := range nodes {
        n = strings.TrimSpace(n)
        if n == "" {
            return Spec{}, fmt.Errorf("%w: blank entry", ErrNoNodes)
        }
        key := strings.ToLower(n)
        if _, dup := seen[key]; dup {
            return Spec{}, fmt.Errorf("%w: %s", ErrDuplicateNode, n)
        }
        seen[key] = struct{}{}
        cleaned = append(cleaned, n)
    }
    return Spec{name: name, staticIP: strings.TrimSpace(staticIP), nodes: cleaned}, nil
}

func (s Spec) Name() string     { return s.name }
func (s Spec) StaticIP() string { return s.staticIP }

// Nodes returns a copy of the ordered node list.
func (s Spec) Nodes() []string { return append([]string(nil), s.nodes...) }

// Handle identifies a cluster returned by the creation service.
type Handle struct {
    Name string
}
