package instruction

import "strconv"

// LimitedTo renders the LIMIT clause. A singular target always gets
// `LIMIT 1`, regardless of n; a plural target gets `LIMIT n+1` — the extra
// row is the has-more sentinel the transaction inspects to emit pagination
// cursors (spec §4.3/§8).
func LimitedTo(single bool, n *int) string {
	if single {
		return "LIMIT 1"
	}
	if n == nil {
		return ""
	}
	return "LIMIT " + strconv.Itoa(*n+1)
}
