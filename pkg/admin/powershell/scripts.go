package powershell

import (
    "fmt"
    "math"
    "time"
)

// Every script stops on the first error and emits a JSON array (possibly
// empty) on stdout as UTF-8 without BOM; a redirected powershell.exe would
// otherwise write the console's OEM codepage. ConvertTo-Json -InputObject
// @(...) keeps single results from being unwrapped into a bare object.
const prelude = "$ErrorActionPreference = 'Stop'\n" +
    "$ProgressPreference = 'SilentlyContinue'\n" +
    "[Console]::OutputEncoding = [System.Text.UTF8Encoding]::new($false)\n" +
    "Import-Module FailoverClusters\n"

// Test-Cluster emits the validation report file, not per-test rows. The
// report itself becomes a Passed row; every warning it raised becomes a
// Warning row, or a Failed row when the warning says tests failed.
func validateScript(nodes []string) string {
    return prelude + fmt.Sprintf(`$tcWarn = @()
$report = Test-Cluster -Node %s -WarningVariable tcWarn -WarningAction SilentlyContinue
$entries = @()
foreach ($r in @($report)) {
    $entries += [pscustomobject]@{ name = "$($r.Name)"; status = 'Passed'; message = "$($r.FullName)" }
}
foreach ($w in $tcWarn) {
    $msg = "$($w.Message)"
    $st = 'Warning'
    if ($msg -match 'fail') { $st = 'Failed' }
    $entries += [pscustomobject]@{ name = 'Test-Cluster'; status = $st; message = $msg }
}
ConvertTo-Json -Compress -Depth 3 -InputObject @($entries)
`, quoteList(nodes))
}

func createScript(name, staticIP string, nodes []string, skipStorage bool) string {
    noStorage := ""
    if skipStorage { noStorage = " -NoStorage" }
    return prelude + fmt.Sprintf(`$c = New-Cluster -Name %s -Node %s -StaticAddress %s%s
ConvertTo-Json -Compress -InputObject @([pscustomobject]@{ name = "$($c.Name)" })
`, quote(name), quoteList(nodes), quote(staticIP), noStorage)
}

func quorumScript(clusterName, witness string) string {
    return prelude + fmt.Sprintf(`Set-ClusterQuorum -Cluster %s -FileShareWitness %s | Out-Null
ConvertTo-Json -Compress -InputObject @()
`, quote(clusterName), quote(witness))
}

func groupStatusScript(clusterName string) string {
    return prelude + fmt.Sprintf(`$groups = Get-ClusterGroup -Cluster %s | ForEach-Object {
    [pscustomobject]@{ name = "$($_.Name)"; state = "$($_.State)"; ownerNode = "$($_.OwnerNode)" }
}
ConvertTo-Json -Compress -Depth 3 -InputObject @($groups)
`, quote(clusterName))
}

// Get-ClusterLog takes its window in whole minutes; anything shorter rounds up.
func exportLogsScript(clusterName, destination string, window time.Duration) string {
    minutes := int(math.Ceil(window.Minutes()))
    if minutes < 1 { minutes = 1 }
    return prelude + fmt.Sprintf(`New-Item -ItemType Directory -Force -Path %s | Out-Null
Get-ClusterLog -Cluster %s -Destination %s -TimeSpan %d | Out-Null
ConvertTo-Json -Compress -InputObject @()
`, quote(destination), quote(clusterName), quote(destination), minutes)
}

// Get-WinEvent raises NoMatchingEventsFound on an empty channel; that is an
// empty result, not a failure.
func eventsScript(channel string, maxCount int) string {
    return prelude + fmt.Sprintf(`try {
    $events = Get-WinEvent -LogName %s -MaxEvents %d | ForEach-Object {
        [pscustomobject]@{ time = $_.TimeCreated.ToUniversalTime().ToString('o'); id = $_.Id; level = [int]$_.Level; message = "$($_.Message)" }
    }
} catch {
    if ($_.FullyQualifiedErrorId -like 'NoMatchingEventsFound*') { $events = @() } else { throw }
}
ConvertTo-Json -Compress -Depth 3 -InputObject @($events)
`, quote(channel), maxCount)
}
