package cluster

import "errors"

var (
    ErrNoNodes          = errors.New("cluster: empty node list")
    ErrDuplicateNode    = errors.New("cluster: duplicate node")
    ErrEmptyName        = errors.New("cluster: empty cluster name")
    ErrInvalidIP        = errors.New("cluster: invalid static address")
    ErrValidationFailed = errors.New("cluster: validation reported failures")
    ErrCreateFailed     = errors.New("cluster: creation failed")
)
