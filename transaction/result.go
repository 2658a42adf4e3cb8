package transaction

import "github.com/ronincore/compiler/value"

// Result is the inflated outcome of one IR query (spec §4.5). Exactly one
// of Record/Records/Amount/Models/Children/Explain is populated for the
// result shape the originating query's kind implies:
//
//   - count                  -> Amount
//   - get/add/set/remove,
//     singular target        -> Record (nil if no row matched)
//   - get/set/remove, plural -> Records, ModelFields, MoreAfter[, Cursor]
//   - get `all`              -> Models, keyed by pluralSlug
//   - batch                  -> Children, one per inner query in order
//   - create/alter/drop/list -> Records (list) or nothing (DDL)
//   - Explain mode           -> Explain, the statements that would have run
type Result struct {
	Record  map[string]any
	Records []map[string]any
	Amount  int64

	// ModelFields names the user fields a plural get's records carry, in
	// declaration order, for a caller that wants the shape without
	// inspecting a record.
	ModelFields []string

	// MoreAfter reports whether a plural query had more rows than the page
	// size; Cursor, when MoreAfter is true, is the value to pass as the
	// next `after`.
	MoreAfter bool
	Cursor    *string

	Models   map[string]*Result
	Children []*Result

	Explain []value.Statement
}
