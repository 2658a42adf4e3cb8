package compiler

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/value"
)

// compileList renders `list.models`/`list.migrations` (spec's supplemental
// system collections) as a bare SELECT: models are read from ronin_schema,
// migrations from the ronin_migration table.
func (c *Compiler) compileList(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	var table string
	switch q.Target {
	case "models":
		table = schemaTable
	case "migrations":
		table = "ronin_migration"
	default:
		return nil, nil, fmt.Errorf("compiler: unknown list target %q", q.Target)
	}

	instr := q.Instructions
	if instr == nil {
		instr = &ir.Instructions{}
	}
	binder := c.newBinder()

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(value.QuoteIdent(table))

	whereSQL, err := rawWhere(instr.With, binder)
	if err != nil {
		return nil, nil, err
	}
	if whereSQL != "" {
		b.WriteString(" ")
		b.WriteString(whereSQL)
	}

	if len(instr.OrderedBy) > 0 {
		terms := make([]string, len(instr.OrderedBy))
		for i, t := range instr.OrderedBy {
			dir := "ASC"
			if t.Descending {
				dir = "DESC"
			}
			terms[i] = value.QuoteIdent(t.Field) + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	limitN := c.defaultPage
	if instr.LimitedTo != nil {
		limitN = *instr.LimitedTo
	}
	if limitSQL := instruction.LimitedTo(false, &limitN); limitSQL != "" {
		b.WriteString(" ")
		b.WriteString(limitSQL)
	}

	meta := StatementMeta{Kind: ir.List, PageSize: limitN}
	return []value.Statement{{SQL: b.String(), Params: binder.Params, Returning: true}}, []StatementMeta{meta}, nil
}

// rawWhere composes a `with` condition against a system table with no
// catalogue-backed model: fields bind directly to column identifiers
// rather than going through Catalogue.Field's path resolution.
func rawWhere(cond *ir.Condition, binder *value.Binder) (string, error) {
	if cond == nil {
		return "", nil
	}
	frag, err := rawComposeConditions(cond, binder)
	if err != nil || frag == "" {
		return "", err
	}
	return "WHERE " + frag, nil
}

func rawComposeConditions(cond *ir.Condition, binder *value.Binder) (string, error) {
	if cond.IsLeaf() {
		if cond.Op != ir.OpEQ {
			return "", fmt.Errorf("compiler: list filters only support equality, got %q", cond.Op)
		}
		placeholder, err := binder.Bind(cond.Value, ir.TypeString)
		if err != nil {
			return "", err
		}
		return value.QuoteIdent(cond.Field) + " = " + placeholder, nil
	}
	children, op := cond.And, "AND"
	if children == nil {
		children, op = cond.Or, "OR"
	}
	parts := make([]string, len(children))
	for i, child := range children {
		frag, err := rawComposeConditions(child, binder)
		if err != nil {
			return "", err
		}
		parts[i] = "(" + frag + ")"
	}
	return strings.Join(parts, " "+op+" "), nil
}
