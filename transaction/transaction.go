// Package transaction runs a batch of compiled IR queries against a Driver
// inside one database transaction and inflates the flat rows each
// statement returns back into the nested record shapes spec §4.5
// describes, re-grouping a `batch` query's children and a `get all`
// expansion's per-model statements along the way.
package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ronincore/compiler"
	"github.com/ronincore/compiler/compiler"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// Transaction compiles and runs IR queries against a fixed catalogue.
type Transaction struct {
	catalogue *model.Catalogue
	compiler  *compiler.Compiler
	explain   bool
}

// Option configures a Transaction.
type Option func(*Transaction)

// WithExplain puts the Transaction in explain mode: Run compiles every
// query and returns the statements that would have executed without ever
// calling the driver.
func WithExplain(explain bool) Option {
	return func(t *Transaction) { t.explain = explain }
}

// New builds a Transaction over cat. compilerOpts are forwarded to
// compiler.New (inline params, inline defaults, default page size); opts
// configure the Transaction itself (currently just WithExplain).
func New(cat *model.Catalogue, compilerOpts []compiler.Option, opts ...Option) *Transaction {
	t := &Transaction{catalogue: cat, compiler: compiler.New(cat, compilerOpts...)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// node is one compiled query in the batch tree: a batch query has children
// and no statements of its own; every other kind has statements/metas and
// no children.
type node struct {
	query      *ir.Query
	statements []value.Statement
	metas      []compiler.StatementMeta
	children   []*node

	rowStart int
	rowCount int
}

func (t *Transaction) compileNode(q *ir.Query) (*node, error) {
	if q.Kind == ir.Batch {
		n := &node{query: q}
		for _, inner := range q.Statements {
			child, err := t.compileNode(inner)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
		return n, nil
	}
	stmts, metas, err := t.compiler.Compile(q)
	if err != nil {
		return nil, err
	}
	return &node{query: q, statements: stmts, metas: metas}, nil
}

// flatten appends n's own statements (depth-first) to acc, recording each
// node's [rowStart, rowStart+rowCount) slice of the flattened list.
func flatten(n *node, acc []value.Statement) []value.Statement {
	n.rowStart = len(acc)
	acc = append(acc, n.statements...)
	n.rowCount = len(n.statements)
	for _, child := range n.children {
		acc = flatten(child, acc)
	}
	return acc
}

// Run compiles each of queries and executes the combined statement list in
// a single driver call — one database transaction covering the whole batch
// (spec §5 "Ordering guarantees") — then inflates the returned rows back
// into one Result per query, in order. In explain mode the driver is never
// called; each Result instead carries the statements that would have run.
func (t *Transaction) Run(ctx context.Context, driver Driver, queries []*ir.Query) ([]*Result, error) {
	nodes := make([]*node, len(queries))
	for i, q := range queries {
		n, err := t.compileNode(q)
		if err != nil {
			return nil, fmt.Errorf("transaction: compile: %w", err)
		}
		nodes[i] = n
	}

	var flat []value.Statement
	for _, n := range nodes {
		flat = flatten(n, flat)
	}

	if t.explain {
		results := make([]*Result, len(nodes))
		for i, n := range nodes {
			results[i] = &Result{Explain: collectStatements(n)}
		}
		return results, nil
	}

	rows, err := driver.Run(ctx, flat)
	if err != nil {
		return nil, ronincore.NewDriverAbortedError(uuid.NewString(), err)
	}

	results := make([]*Result, len(nodes))
	for i, n := range nodes {
		results[i] = inflateNode(n, rows)
	}
	return results, nil
}

func collectStatements(n *node) []value.Statement {
	out := append([]value.Statement{}, n.statements...)
	for _, child := range n.children {
		out = append(out, collectStatements(child)...)
	}
	return out
}

func inflateNode(n *node, rows [][]Row) *Result {
	if len(n.children) > 0 {
		res := &Result{}
		for _, child := range n.children {
			res.Children = append(res.Children, inflateNode(child, rows))
		}
		return res
	}
	nodeRows := rows[n.rowStart : n.rowStart+n.rowCount]
	return inflateStatements(n.metas, nodeRows)
}
