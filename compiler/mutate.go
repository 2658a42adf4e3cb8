package compiler

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// compileAdd renders an `add` query as `INSERT INTO "table" (cols) VALUES
// (…) RETURNING …` (spec §4.4). The target must be singular.
func (c *Compiler) compileAdd(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	m, singular, all, err := c.catalogue.Resolve(q.Target)
	if err != nil {
		return nil, nil, err
	}
	if all || !singular {
		return nil, nil, ronincoreInvalidTarget("add", q.Target)
	}

	binder := c.newBinder()
	ctx := &instruction.Context{Catalogue: c.catalogue, Model: m, Binder: binder, CompileSub: c.compileSub(binder)}

	instr := q.Instructions
	if instr == nil {
		instr = &ir.Instructions{}
	}
	merged, err := instruction.Using(ctx, instr)
	if err != nil {
		return nil, nil, err
	}

	if merged.From != nil {
		return c.compileAddFromQuery(m, singular, merged, ctx, binder)
	}

	columns, placeholders, err := instruction.ToValues(ctx, merged.To, c.inlineDefaults)
	if err != nil {
		return nil, nil, err
	}

	returning, meta, err := returningClause(ctx, merged.Selecting, m, singular)
	if err != nil {
		return nil, nil, err
	}

	sql := instruction.RenderInsert(m.Table, columns, placeholders) + " RETURNING " + returning
	meta.Kind = ir.Add
	return []value.Statement{{SQL: sql, Params: binder.Params, Returning: true}}, []StatementMeta{meta}, nil
}

// compileAddFromQuery renders `add.slug.with(() => get.other(...))`: the
// sub-query is compiled as a bare SELECT sharing this add's binder, and its
// projection becomes the INSERT source instead of a literal `to` map.
// Columns names the destination field slugs in the sub-query's projection
// order (system columns first, then its Selecting list), so a source field
// can land under a renamed destination slug.
func (c *Compiler) compileAddFromQuery(m *model.Model, singular bool, merged *ir.Instructions, ctx *instruction.Context, binder *value.Binder) ([]value.Statement, []StatementMeta, error) {
	if len(merged.Columns) == 0 {
		return nil, nil, fmt.Errorf("compiler: add from a sub-query requires explicit destination columns")
	}

	srcModel, _, srcAll, err := c.catalogue.Resolve(merged.From.Target)
	if err != nil {
		return nil, nil, err
	}
	if srcAll {
		return nil, nil, ronincoreInvalidTarget("add", merged.From.Target)
	}

	// The sub-query always sources the full matching row set for the bulk
	// insert, regardless of whether its target was spelled in singular or
	// plural form — unlike a top-level `get`, "add...with" never means
	// "fetch one".
	subSQL, _, err := c.buildSelectLimited(srcModel, merged.From.Instructions, false, binder, false, false)
	if err != nil {
		return nil, nil, err
	}

	destCols := make([]string, len(merged.Columns))
	for i, slug := range merged.Columns {
		_, selector, fieldErr := c.catalogue.Field(m, slug)
		if fieldErr != nil {
			return nil, nil, fieldErr
		}
		destCols[i] = selector
	}

	returning, meta, err := returningClause(ctx, merged.Selecting, m, singular)
	if err != nil {
		return nil, nil, err
	}

	sql := "INSERT INTO " + value.QuoteIdent(m.Table) + " (" + strings.Join(destCols, ", ") + ") " +
		subSQL + " RETURNING " + returning
	meta.Kind = ir.Add
	return []value.Statement{{SQL: sql, Params: binder.Params, Returning: true}}, []StatementMeta{meta}, nil
}

// compileSet renders a `set` query as `UPDATE "table" SET … WHERE …
// RETURNING …`.
func (c *Compiler) compileSet(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	m, singular, all, err := c.catalogue.Resolve(q.Target)
	if err != nil {
		return nil, nil, err
	}
	if all {
		return nil, nil, ronincoreInvalidTarget("set", q.Target)
	}

	binder := c.newBinder()
	ctx := &instruction.Context{Catalogue: c.catalogue, Model: m, Binder: binder, CompileSub: c.compileSub(binder)}

	instr := q.Instructions
	if instr == nil {
		instr = &ir.Instructions{}
	}
	merged, err := instruction.Using(ctx, instr)
	if err != nil {
		return nil, nil, err
	}

	assignments, err := instruction.ToSet(ctx, merged.To)
	if err != nil {
		return nil, nil, err
	}

	returning, meta, err := returningClause(ctx, merged.Selecting, m, singular)
	if err != nil {
		return nil, nil, err
	}

	var b strings.Builder
	b.WriteString(instruction.RenderUpdate(m.Table, assignments))
	whereSQL, err := instruction.With(ctx, merged.With)
	if err != nil {
		return nil, nil, err
	}
	if whereSQL != "" {
		b.WriteString(" ")
		b.WriteString(whereSQL)
	}
	if singular {
		b.WriteString(" LIMIT 1")
	}
	b.WriteString(" RETURNING ")
	b.WriteString(returning)

	meta.Kind = ir.Set
	return []value.Statement{{SQL: b.String(), Params: binder.Params, Returning: true}}, []StatementMeta{meta}, nil
}

// compileRemove renders a `remove` query as `DELETE FROM "table" WHERE …
// RETURNING …`.
func (c *Compiler) compileRemove(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	m, singular, all, err := c.catalogue.Resolve(q.Target)
	if err != nil {
		return nil, nil, err
	}
	if all {
		return nil, nil, ronincoreInvalidTarget("remove", q.Target)
	}

	binder := c.newBinder()
	ctx := &instruction.Context{Catalogue: c.catalogue, Model: m, Binder: binder, CompileSub: c.compileSub(binder)}

	instr := q.Instructions
	if instr == nil {
		instr = &ir.Instructions{}
	}
	merged, err := instruction.Using(ctx, instr)
	if err != nil {
		return nil, nil, err
	}

	returning, meta, err := returningClause(ctx, merged.Selecting, m, singular)
	if err != nil {
		return nil, nil, err
	}

	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(value.QuoteIdent(m.Table))
	whereSQL, err := instruction.With(ctx, merged.With)
	if err != nil {
		return nil, nil, err
	}
	if whereSQL != "" {
		b.WriteString(" ")
		b.WriteString(whereSQL)
	}
	if singular {
		b.WriteString(" LIMIT 1")
	}
	b.WriteString(" RETURNING ")
	b.WriteString(returning)

	meta.Kind = ir.Remove
	return []value.Statement{{SQL: b.String(), Params: binder.Params, Returning: true}}, []StatementMeta{meta}, nil
}

func returningClause(ctx *instruction.Context, selecting []string, m *model.Model, singular bool) (string, StatementMeta, error) {
	columns, _, err := instruction.Selecting(ctx, selecting)
	if err != nil {
		return "", StatementMeta{}, err
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col.Selector + " AS " + value.QuoteIdent(col.Key)
	}
	return strings.Join(parts, ", "), StatementMeta{Model: m, Singular: singular, Columns: columns}, nil
}

func ronincoreInvalidTarget(op, target string) error {
	return fmt.Errorf("compiler: %s requires a singular model target, got %q", op, target)
}
