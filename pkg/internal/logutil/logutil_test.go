package logutil

import (
    "encoding/json"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewJSONWritesStructuredLines(t *testing.T) {
    out := filepath.Join(t.TempDir(), "log.json")
    l, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{out}})
    require.NoError(t, err)
    l.Info("step finished")
    l.Debug("hidden")
    _ = l.Sync()

    data, err := os.ReadFile(out)
    require.NoError(t, err)
    var line map[string]any
    require.NoError(t, json.Unmarshal(data, &line))
    assert.Equal(t, "step finished", line["msg"])
    assert.Equal(t, "info", line["level"])
}

func TestNewRejectsBadInput(t *testing.T) {
    _, err := New(Options{Level: "loud"})
    assert.Error(t, err)
    _, err = New(Options{Format: "xml"})
    assert.Error(t, err)
}

func TestEnvFallback(t *testing.T) {
    t.Setenv("CLUSTEROPS_LOG_LEVEL", "warn")
    t.Setenv("CLUSTEROPS_LOG_FORMAT", "json")
    o := Options{}.withEnv()
    assert.Equal(t, "warn", o.Level)
    assert.Equal(t, "json", o.Format)
    assert.Equal(t, []string{"stderr"}, o.OutputPaths)
}

func TestOrNop(t *testing.T) {
    assert.NotNil(t, OrNop(nil))
}
