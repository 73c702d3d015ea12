package history

import (
    "path/filepath"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestRecordAndListNewestFirst(t *testing.T) {
    path := filepath.Join(t.TempDir(), "history.db")
    s, err := Open(path)
    require.NoError(t, err)

    base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
    for i := 0; i < 3; i++ {
        _, err := s.Record(Run{Cluster: "Prod", StartedAt: base.Add(time.Duration(i) * time.Minute), ExitCode: i % 2,
            Steps: []StepRecord{{Step: "validate", Status: "ok", Duration: time.Second}}})
        require.NoError(t, err)
    }

    runs, err := s.List(2)
    require.NoError(t, err)
    require.Len(t, runs, 2)
    assert.Equal(t, base.Add(2*time.Minute), runs[0].StartedAt)
    assert.Equal(t, base.Add(time.Minute), runs[1].StartedAt)
    _, err = uuid.Parse(runs[0].ID)
    assert.NoError(t, err)
    assert.Equal(t, "validate", runs[0].Steps[0].Step)

    require.NoError(t, s.Close())

    // persisted across reopen
    s2, err := Open(path)
    require.NoError(t, err)
    defer s2.Close()
    all, err := s2.List(0)
    require.NoError(t, err)
    assert.Len(t, all, 3)
}

func TestRecordKeepsGivenID(t *testing.T) {
    s, err := Open(filepath.Join(t.TempDir(), "h.db"))
    require.NoError(t, err)
    defer s.Close()
    r, err := s.Record(Run{ID: "fixed", Cluster: "Prod"})
    require.NoError(t, err)
    assert.Equal(t, "fixed", r.ID)
}

func TestClosedStore(t *testing.T) {
    s, err := Open(filepath.Join(t.TempDir(), "h.db"))
    require.NoError(t, err)
    require.NoError(t, s.Close())
    _, err = s.Record(Run{})
    assert.ErrorIs(t, err, ErrClosed)
    _, err = s.List(0)
    assert.ErrorIs(t, err, ErrClosed)
}
