package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ronincore/compiler/value"
)

// SQLDriver is the reference Driver backed by database/sql (grounded on
// the teacher's dialect/sql Conn/ExecQuerier wrapping of *sql.DB). It runs
// every statement of a batch inside one *sql.Tx, so a failure partway
// through rolls the whole batch back (spec §5 "Ordering guarantees").
type SQLDriver struct {
	DB *sql.DB
}

// NewSQLDriver wraps db as a Driver.
func NewSQLDriver(db *sql.DB) *SQLDriver {
	return &SQLDriver{DB: db}
}

// Run executes statements in order inside a single transaction, returning
// one Row slice per statement. A statement with Returning set is run as a
// query and its result rows collected; a statement without it is run as
// a plain exec and yields no rows. Any failure rolls the transaction back
// and is returned unwrapped — Transaction.Run is responsible for the
// DRIVER_ABORTED/trace-id wrapping (spec §5 "Cancellation & timeout").
func (d *SQLDriver) Run(ctx context.Context, statements []value.Statement) ([][]Row, error) {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction: begin: %w", err)
	}

	results := make([][]Row, len(statements))
	for i, stmt := range statements {
		if stmt.Returning {
			rows, err := runQuery(ctx, tx, stmt)
			if err != nil {
				_ = tx.Rollback()
				return nil, err
			}
			results[i] = rows
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Params...); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("transaction: exec: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction: commit: %w", err)
	}
	return results, nil
}

func runQuery(ctx context.Context, tx *sql.Tx, stmt value.Statement) ([]Row, error) {
	sqlRows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, fmt.Errorf("transaction: query: %w", err)
	}
	defer sqlRows.Close()

	columns, err := sqlRows.Columns()
	if err != nil {
		return nil, fmt.Errorf("transaction: columns: %w", err)
	}

	var out []Row
	for sqlRows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := sqlRows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("transaction: scan: %w", err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := sqlRows.Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("transaction: rows"), err)
	}
	return out, nil
}
