package powershell

import (
    "context"
    "errors"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/amirimatin/go-clusterops/pkg/admin"
    "github.com/amirimatin/go-clusterops/pkg/cluster"
)

type call struct{ op, script string }

type fakeRunner struct {
    out   map[string]string
    err   map[string]error
    calls []call
}

func (f *fakeRunner) Run(_ context.Context, op, script string) ([]byte, error) {
    f.calls = append(f.calls, call{op, script})
    if err := f.err[op]; err != nil { return nil, err }
    return []byte(f.out[op]), nil
}

func mustSpec(t *testing.T) cluster.Spec {
    t.Helper()
    s, err := cluster.NewSpec("Prod", "10.0.0.10", []string{"Node1", "O'Brien"})
    require.NoError(t, err)
    return s
}

func TestValidateDecodesAndNormalizes(t *testing.T) {
    r := &fakeRunner{out: map[string]string{
        "Test-Cluster": "\xef\xbb\xbf" + `[{"name":"Node1","status":"Success","message":"ok"},{"name":"Network","status":"warning","message":"one NIC"},{"name":"Node2","status":"Failed","message":"down"}]` + "\r\n",
    }}
    c := New(r, nil)
    got, err := c.Validate(context.Background(), []string{"Node1", "Node2"})
    require.NoError(t, err)
    require.Len(t, got, 3)
    assert.Equal(t, cluster.StatusPassed, got[0].Status)
    assert.Equal(t, cluster.StatusWarning, got[1].Status)
    assert.Equal(t, cluster.StatusFailed, got[2].Status)
    require.Len(t, r.calls, 1)
    assert.Contains(t, r.calls[0].script, "Test-Cluster -Node 'Node1','Node2'")
}

func TestValidateEmptyOutput(t *testing.T) {
    c := New(&fakeRunner{out: map[string]string{"Test-Cluster": "  \n"}}, nil)
    got, err := c.Validate(context.Background(), []string{"Node1"})
    require.NoError(t, err)
    assert.Empty(t, got)
}

func TestValidatePropagatesCommandError(t *testing.T) {
    cmdErr := &admin.CommandError{Op: "Test-Cluster", Output: "Access is denied", Err: errors.New("exit status 1")}
    c := New(&fakeRunner{err: map[string]error{"Test-Cluster": cmdErr}}, nil)
    _, err := c.Validate(context.Background(), []string{"Node1"})
    var ce *admin.CommandError
    require.ErrorAs(t, err, &ce)
    assert.Equal(t, "Access is denied", ce.Output)
}

func TestBadJSONIsAnError(t *testing.T) {
    c := New(&fakeRunner{out: map[string]string{"Get-ClusterGroup": "WARNING: something"}}, nil)
    _, err := c.GroupStatus(context.Background(), cluster.Handle{Name: "Prod"})
    require.Error(t, err)
    assert.Contains(t, err.Error(), "decode output")
}

func TestCreateClusterQuotesArguments(t *testing.T) {
    r := &fakeRunner{out: map[string]string{"New-Cluster": `[{"name":"PROD"}]`}}
    c := New(r, nil)
    h, err := c.CreateCluster(context.Background(), mustSpec(t), true)
    require.NoError(t, err)
    assert.Equal(t, "PROD", h.Name)
    s := r.calls[0].script
    assert.Contains(t, s, "-Node 'Node1','O''Brien'")
    assert.Contains(t, s, "-StaticAddress '10.0.0.10' -NoStorage")
}

func TestCreateClusterFallsBackToSpecName(t *testing.T) {
    r := &fakeRunner{out: map[string]string{"New-Cluster": `[{"name":""}]`}}
    h, err := New(r, nil).CreateCluster(context.Background(), mustSpec(t), false)
    require.NoError(t, err)
    assert.Equal(t, "Prod", h.Name)
    assert.NotContains(t, r.calls[0].script, "-NoStorage")
}

func TestQuorumAndExportScripts(t *testing.T) {
    r := &fakeRunner{}
    c := New(r, nil)
    h := cluster.Handle{Name: "Prod"}
    require.NoError(t, c.ConfigureQuorum(context.Background(), h, `\\fs01\witness`))
    require.NoError(t, c.ExportLogs(context.Background(), h, `C:\ClusterLogs`, 90*time.Second))
    require.Len(t, r.calls, 2)
    assert.Contains(t, r.calls[0].script, `Set-ClusterQuorum -Cluster 'Prod' -FileShareWitness '\\fs01\witness'`)
    assert.Contains(t, r.calls[1].script, `Get-ClusterLog -Cluster 'Prod' -Destination 'C:\ClusterLogs' -TimeSpan 2`)
}

func TestGroupStatus(t *testing.T) {
    r := &fakeRunner{out: map[string]string{"Get-ClusterGroup": `[{"name":"Cluster Group","state":"Online","ownerNode":"Node1"}]`}}
    got, err := New(r, nil).GroupStatus(context.Background(), cluster.Handle{Name: "Prod"})
    require.NoError(t, err)
    assert.Equal(t, []cluster.GroupStatus{{Name: "Cluster Group", State: "Online", OwnerNode: "Node1"}}, got)
}

func TestRecentEventsMapsLevels(t *testing.T) {
    out := `[
      {"time":"2026-10-18T08:00:00.1234567Z","id":1069,"level":2,"message":"Resource failed. "},
      {"time":"2026-10-18T08:01:00Z","id":1135,"level":3,"message":"Node removed"},
      {"time":"2026-10-18T08:02:00Z","id":1,"level":1,"message":"Critical"},
      {"time":"2026-10-18T08:03:00Z","id":2,"level":4,"message":"Info"},
      {"time":"","id":3,"level":0,"message":"Always"}
    ]`
    r := &fakeRunner{out: map[string]string{"Get-WinEvent": out}}
    got, err := New(r, nil).RecentEvents(context.Background(), "Microsoft-Windows-FailoverClustering/Operational", 50)
    require.NoError(t, err)
    require.Len(t, got, 5)
    assert.Equal(t, cluster.SeverityError, got[0].Severity)
    assert.Equal(t, "Resource failed.", got[0].Message)
    assert.Equal(t, 2026, got[0].Time.Year())
    assert.Equal(t, cluster.SeverityWarning, got[1].Severity)
    assert.Equal(t, cluster.SeverityError, got[2].Severity)
    assert.Equal(t, cluster.SeverityInfo, got[3].Severity)
    assert.True(t, got[4].Time.IsZero())
    assert.Contains(t, r.calls[0].script, "-MaxEvents 50")
}

func TestRecentEventsBadTimestamp(t *testing.T) {
    r := &fakeRunner{out: map[string]string{"Get-WinEvent": `[{"time":"yesterday","id":1,"level":2}]`}}
    _, err := New(r, nil).RecentEvents(context.Background(), "x", 1)
    assert.Error(t, err)
}

func TestQuote(t *testing.T) {
    cases := []struct {
        in, want string
    }{
        {"plain", "'plain'"},
        {"it's", "'it''s'"},
        {"Node\u2019; Remove-Item C:\\x; \u2019", "'Node\u2019\u2019; Remove-Item C:\\x; \u2019\u2019'"},
        {"\u2018a\u201ab\u201b", "'\u2018\u2018a\u201a\u201ab\u201b\u201b'"},
    }
    for _, c := range cases {
        assert.Equal(t, c.want, quote(c.in), "input %q", c.in)
    }
    assert.Equal(t, "'a','b''c'", quoteList([]string{"a", "b'c"}))
}

func TestRecentEventsDecodesLegacyCodepage(t *testing.T) {
    r := &fakeRunner{out: map[string]string{"Get-WinEvent": "[{\"id\":7,\"level\":2,\"message\":\"Gr\x94\xe1e\"}]"}}
    got, err := New(r, nil).RecentEvents(context.Background(), "x", 1)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "Größe", got[0].Message)
}

func TestUTF8OutputKept(t *testing.T) {
    r := &fakeRunner{out: map[string]string{"Get-WinEvent": `[{"id":7,"level":3,"message":"Größe überschritten"}]`}}
    got, err := New(r, nil).RecentEvents(context.Background(), "x", 1)
    require.NoError(t, err)
    assert.Equal(t, "Größe überschritten", got[0].Message)
}

func TestValidateUnknownStatusFails(t *testing.T) {
    r := &fakeRunner{out: map[string]string{
        "Test-Cluster": `[{"name":"Report","status":"","message":""},{"name":"Storage","status":"NotApplicable","message":"no disks"},{"name":"X","status":"Weird","message":""}]`,
    }}
    got, err := New(r, nil).Validate(context.Background(), []string{"Node1"})
    require.NoError(t, err)
    require.Len(t, got, 3)
    assert.Equal(t, cluster.StatusFailed, got[0].Status)
    assert.Equal(t, cluster.ValidationStatus("NotApplicable"), got[1].Status)
    assert.Equal(t, cluster.StatusFailed, got[2].Status)
}

func TestValidateScriptReadsWarnings(t *testing.T) {
    s := validateScript([]string{"Node1"})
    assert.Contains(t, s, "-WarningVariable tcWarn")
    assert.Contains(t, s, "status = 'Failed'")
}

func TestScriptsStopOnError(t *testing.T) {
    for _, s := range []string{
        validateScript([]string{"a"}),
        createScript("c", "10.0.0.1", []string{"a"}, true),
        quorumScript("c", "w"),
        groupStatusScript("c"),
        exportLogsScript("c", "d", time.Minute),
        eventsScript("ch", 5),
    } {
        assert.True(t, strings.HasPrefix(s, "$ErrorActionPreference = 'Stop'"))
        assert.Contains(t, s, "[Console]::OutputEncoding = [System.Text.UTF8Encoding]::new($false)")
        assert.Contains(t, s, "ConvertTo-Json")
    }
}
