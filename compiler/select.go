package compiler

import (
	"strings"

	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// compileSelectQuery handles both `get` and `count` (spec §4.4 dispatch
// table). A wildcard target expands into one statement per catalogue
// model, honouring per-model `on` overrides; any other target compiles to
// exactly one statement.
func (c *Compiler) compileSelectQuery(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	m, singular, all, err := c.catalogue.Resolve(q.Target)
	if err != nil {
		return nil, nil, err
	}

	if all {
		var statements []value.Statement
		var metas []StatementMeta
		for _, mm := range c.catalogue.Models() {
			if mm.System.Model {
				continue
			}
			instr := q.Instructions
			if instr != nil && instr.On != nil {
				if override, ok := instr.On[mm.Slug]; ok {
					instr = override
				}
			}
			stmt, meta, err := c.compileOneSelect(q.Kind, mm, instr, false)
			if err != nil {
				return nil, nil, err
			}
			meta.GroupKey = mm.PluralSlug
			statements = append(statements, stmt)
			metas = append(metas, meta)
		}
		return statements, metas, nil
	}

	stmt, meta, err := c.compileOneSelect(q.Kind, m, q.Instructions, singular)
	if err != nil {
		return nil, nil, err
	}
	return []value.Statement{stmt}, []StatementMeta{meta}, nil
}

func (c *Compiler) compileOneSelect(kind ir.Kind, m *model.Model, instr *ir.Instructions, singular bool) (value.Statement, StatementMeta, error) {
	binder := c.newBinder()
	sql, meta, err := c.buildSelect(m, instr, singular, binder, kind == ir.Count)
	if err != nil {
		return value.Statement{}, StatementMeta{}, err
	}
	meta.Kind = kind
	meta.Model = m
	meta.Singular = singular
	return value.Statement{SQL: sql, Params: binder.Params, Returning: true}, meta, nil
}

// buildSelect renders a bare SELECT over m, used both for a top-level
// get/count statement and, via Compiler.compileSub, for an `including`
// sub-select or a condition's sub-query value. binder is shared with the
// caller so parameters from nested sub-queries land in the same vector.
func (c *Compiler) buildSelect(m *model.Model, instr *ir.Instructions, singular bool, binder *value.Binder, countOnly bool) (string, StatementMeta, error) {
	return c.buildSelectLimited(m, instr, singular, binder, countOnly, true)
}

// buildSelectLimited is buildSelect with control over whether the default
// page size is applied. A migration's temp-table row copy needs every row
// to survive the rewrite, not just one page of it, so it calls this
// directly with applyDefaultLimit = false instead of going through
// buildSelect.
func (c *Compiler) buildSelectLimited(m *model.Model, instr *ir.Instructions, singular bool, binder *value.Binder, countOnly, applyDefaultLimit bool) (string, StatementMeta, error) {
	if instr == nil {
		instr = &ir.Instructions{}
	}

	ctx := &instruction.Context{
		Catalogue:  c.catalogue,
		Model:      m,
		Binder:     binder,
		CompileSub: c.compileSub(binder),
	}

	merged, err := instruction.Using(ctx, instr)
	if err != nil {
		return "", StatementMeta{}, err
	}

	var meta StatementMeta

	joins, _, joinErr := instruction.Including(ctx, merged.Including, singular)
	if joinErr != nil {
		return "", StatementMeta{}, joinErr
	}
	meta.Joins = joins

	var selectList string
	if countOnly {
		selectList = `COUNT(*) AS "amount"`
	} else {
		columns, _, colErr := instruction.Selecting(ctx, merged.Selecting)
		if colErr != nil {
			return "", StatementMeta{}, colErr
		}
		parts := make([]string, len(columns))
		for i, col := range columns {
			parts[i] = col.Selector + " AS " + value.QuoteIdent(col.Key)
		}
		for _, j := range joins {
			for _, col := range j.Columns {
				parts = append(parts, value.QuoteIdent(j.Alias)+"."+value.QuoteIdent(col.Key)+
					" AS "+value.QuoteIdent(j.MountPath+"."+col.Key))
			}
		}
		selectList = strings.Join(parts, ", ")
		meta.Columns = columns
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList)
	b.WriteString(" FROM ")
	b.WriteString(value.QuoteIdent(m.Table))
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j.SQL)
	}

	whereFrag, err := whereFragment(ctx, merged, singular)
	if err != nil {
		return "", StatementMeta{}, err
	}
	if whereFrag != "" {
		b.WriteString(" WHERE ")
		b.WriteString(whereFrag)
	}

	orderTerms := merged.OrderedBy
	if !singular && !countOnly && len(orderTerms) == 0 {
		orderTerms = instruction.DefaultOrder()
	}
	if !countOnly {
		orderSQL, orderErr := instruction.OrderedBy(ctx, orderTerms)
		if orderErr != nil {
			return "", StatementMeta{}, orderErr
		}
		if orderSQL != "" {
			b.WriteString(" ")
			b.WriteString(orderSQL)
		}
		meta.OrderedBy = orderTerms
	}

	if !countOnly && (applyDefaultLimit || singular || merged.LimitedTo != nil) {
		pageSize := c.defaultPage
		if merged.LimitedTo != nil {
			pageSize = *merged.LimitedTo
		}
		limitN := pageSize
		limitSQL := instruction.LimitedTo(singular, &limitN)
		if limitSQL != "" {
			b.WriteString(" ")
			b.WriteString(limitSQL)
		}
		meta.PageSize = pageSize
	}

	return b.String(), meta, nil
}

// whereFragment combines the `with` condition and the `before`/`after`
// pagination comparison into a single predicate, ANDed together.
func whereFragment(ctx *instruction.Context, instr *ir.Instructions, singular bool) (string, error) {
	var parts []string

	withSQL, err := instruction.With(ctx, instr.With)
	if err != nil {
		return "", err
	}
	if withSQL != "" {
		parts = append(parts, strings.TrimPrefix(withSQL, "WHERE "))
	}

	if !singular && (instr.Before != nil || instr.After != nil) {
		limit := instr.LimitedTo
		pageSQL, err := instruction.Pagination(ctx, instr.Before, instr.After, instr.OrderedBy, limit)
		if err != nil {
			return "", err
		}
		if pageSQL != "" {
			parts = append(parts, strings.TrimPrefix(pageSQL, "WHERE "))
		}
	}

	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, ") AND (") + ")", nil
}
