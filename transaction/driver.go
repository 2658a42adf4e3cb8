// Package transaction accepts a list of IR queries, compiles them to a
// flat statement list via the compiler, hands that list to a Driver, and
// re-inflates the driver's raw rows into typed Results.
package transaction

import (
	"context"

	"github.com/ronincore/compiler/value"
)

// Row is one raw row returned by the driver, keyed by column name exactly
// as the compiled SELECT's column aliases name it (system columns use
// their dotted `ronin.x` form).
type Row map[string]any

// Driver is the SQLite capability a Transaction is run against: "query(statements)
// -> rows" (spec §1). Run receives the full compiled statement batch for
// one Transaction.Run call, in order, and is expected to execute them
// inside a single database transaction so a failure partway through rolls
// back every statement already applied (spec §5 "Ordering guarantees").
type Driver interface {
	Run(ctx context.Context, statements []value.Statement) ([][]Row, error)
}
