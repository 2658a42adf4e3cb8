// Package compiler dispatches on IR query kind (spec §4.4) and assembles
// the fragments produced by the instruction handlers into full SQL
// statements, using the model catalogue and expression utilities beneath
// it. It is the sole entry point a Transaction drives.
package compiler

import (
	"fmt"

	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// DefaultPageSize is the `limitedTo` applied to a plural `get` query that
// doesn't specify its own. `count` queries get no LIMIT.
const DefaultPageSize = 100

// StatementMeta carries the per-statement bookkeeping a Transaction needs
// to inflate raw rows back into records: which model and columns a
// SELECT targeted, its join chain, and the ordering used for cursor
// emission. DDL and sql statements carry only their Kind; a batch carries
// the metas of its inner queries.
type StatementMeta struct {
	Kind      ir.Kind
	Model     *model.Model
	Singular  bool
	Columns   []instruction.Column
	Joins     []instruction.JoinClause
	OrderedBy []ir.OrderTerm
	PageSize  int

	// GroupKey names the pluralSlug a `get all`/`count all` expansion
	// statement belongs under, for result re-grouping.
	GroupKey string
}

// Compiler turns IR queries into statement batches against a fixed
// catalogue.
type Compiler struct {
	catalogue      *model.Catalogue
	inlineParams   bool
	inlineDefaults bool
	defaultPage    int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithInlineParams renders bound values as inline SQL literals instead of
// `?N` placeholders (spec §4.2).
func WithInlineParams(inline bool) Option {
	return func(c *Compiler) { c.inlineParams = inline }
}

// WithInlineDefaults applies a field's declared default value to `add`
// payloads that omit it, at compile time rather than relying on the
// column's own SQL default.
func WithInlineDefaults(inline bool) Option {
	return func(c *Compiler) { c.inlineDefaults = inline }
}

// WithDefaultPageSize overrides DefaultPageSize for plural queries that
// don't specify their own `limitedTo`.
func WithDefaultPageSize(n int) Option {
	return func(c *Compiler) { c.defaultPage = n }
}

// New builds a Compiler bound to cat.
func New(cat *model.Catalogue, opts ...Option) *Compiler {
	c := &Compiler{catalogue: cat, defaultPage: DefaultPageSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile renders q into one or more statements. `get all`/`count all`,
// `batch`, `create`/`drop` (DDL plus its ronin_schema row) and a renaming
// `alter.model` produce more than one.
func (c *Compiler) Compile(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	switch q.Kind {
	case ir.Get, ir.Count:
		return c.compileSelectQuery(q)
	case ir.Add:
		return c.compileAdd(q)
	case ir.Set:
		return c.compileSet(q)
	case ir.Remove:
		return c.compileRemove(q)
	case ir.List:
		return c.compileList(q)
	case ir.Create, ir.Alter, ir.Drop:
		return c.compileDDL(q)
	case ir.Batch:
		return c.compileBatch(q)
	case ir.SQL:
		return c.compileRaw(q)
	default:
		return nil, nil, fmt.Errorf("compiler: unknown query kind %q", q.Kind)
	}
}

func (c *Compiler) newBinder() *value.Binder {
	return &value.Binder{Inline: c.inlineParams}
}

// compileSub adapts Compiler into a value.SubCompiler / instruction
// sub-select compiler: it renders q as a bare SELECT, appending its
// parameters to the same binder as its caller rather than starting a
// fresh one.
func (c *Compiler) compileSub(binder *value.Binder) func(q *ir.Query) (string, error) {
	return func(q *ir.Query) (string, error) {
		m, singular, all, err := c.catalogue.Resolve(q.Target)
		if err != nil {
			return "", err
		}
		if all {
			return "", fmt.Errorf("compiler: sub-query target must not be the %q wildcard", ir.TargetAll)
		}
		sql, _, err := c.buildSelect(m, q.Instructions, singular, binder, false)
		return sql, err
	}
}
