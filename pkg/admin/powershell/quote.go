package powershell

import "strings"

// PowerShell closes a single-quoted literal on the ASCII quote and on the
// typographic quotes U+2018..U+201B. Each is escaped by doubling it.
var quoteEscaper = strings.NewReplacer(
    "'", "''",
    "\u2018", "\u2018\u2018",
    "\u2019", "\u2019\u2019",
    "\u201a", "\u201a\u201a",
    "\u201b", "\u201b\u201b",
)

// quote renders s as a single-quoted PowerShell literal.
func quote(s string) string {
    return "'" + quoteEscaper.Replace(s) + "'"
}

// quoteList renders a PowerShell array argument: 'a','b'.
func quoteList(items []string) string {
    q := make([]string, len(items))
    for i, it := range items { q[i] = quote(it) }
    return strings.Join(q, ",")
}
