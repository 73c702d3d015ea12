// Package history keeps a local ledger of reporter runs in a bolt database.
package history

import (
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/boltdb/bolt"
    "github.com/google/uuid"
)

var bucketRuns = []byte("runs")

var ErrClosed = errors.New("history: store closed")

// StepRecord is the persisted outcome of one pipeline step.
type StepRecord struct {
    Step     string        `json:"step"`
    Status   string        `json:"status"`
    Error    string        `json:"error,omitempty"`
    Duration time.Duration `json:"duration"`
}

// Run is one recorded invocation.
type Run struct {
    ID         string       `json:"id"`
    Cluster    string       `json:"cluster"`
    Nodes      []string     `json:"nodes"`
    StartedAt  time.Time    `json:"startedAt"`
    FinishedAt time.Time    `json:"finishedAt"`
    ExitCode   int          `json:"exitCode"`
    ReportPath string       `json:"reportPath"`
    Steps      []StepRecord `json:"steps"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string { return uuid.NewString() }

// Store is a bolt-backed run ledger. Runs are keyed by a big-endian sequence
// number so cursor order is insertion order.
type Store struct {
    db *bolt.DB
}

// Open opens (or creates) the ledger at path.
func Open(path string) (*Store, error) {
    db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
    if err != nil { return nil, fmt.Errorf("history: open %s: %w", path, err) }
    err = db.Update(func(tx *bolt.Tx) error {
        _, err := tx.CreateBucketIfNotExists(bucketRuns)
        return err
    })
    if err != nil {
        db.Close()
        return nil, fmt.Errorf("history: init: %w", err)
    }
    return &Store{db: db}, nil
}

// Record appends a run, assigning an ID when empty.
func (s *Store) Record(run Run) (Run, error) {
    if s == nil || s.db == nil { return run, ErrClosed }
    if run.ID == "" { run.ID = NewRunID() }
    err := s.db.Update(func(tx *bolt.Tx) error {
        b := tx.Bucket(bucketRuns)
        seq, err := b.NextSequence()
        if err != nil { return err }
        val, err := json.Marshal(run)
        if err != nil { return err }
        return b.Put(seqKey(seq), val)
    })
    if err != nil { return run, fmt.Errorf("history: record: %w", err) }
    return run, nil
}

// List returns up to limit runs, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]Run, error) {
    if s == nil || s.db == nil { return nil, ErrClosed }
    var out []Run
    err := s.db.View(func(tx *bolt.Tx) error {
        c := tx.Bucket(bucketRuns).Cursor()
        for k, v := c.Last(); k != nil; k, v = c.Prev() {
            if limit > 0 && len(out) >= limit { break }
            var r Run
            if err := json.Unmarshal(v, &r); err != nil { return fmt.Errorf("decode run %d: %w", binary.BigEndian.Uint64(k), err) }
            out = append(out, r)
        }
        return nil
    })
    if err != nil { return nil, fmt.Errorf("history: list: %w", err) }
    return out, nil
}

func (s *Store) Close() error {
    if s == nil || s.db == nil { return nil }
    err := s.db.Close()
    s.db = nil
    return err
}

func seqKey(n uint64) []byte {
    b := make([]byte, 8)
    binary.BigEndian.PutUint64(b, n)
    return b
}
