package instruction

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"

	"github.com/ronincore/compiler"
)

// nonNullableOrderingFields never coalesce to the sentinel floor because
// they're declared NOT NULL system timestamps.
var nonNullableOrderingFields = map[string]bool{
	model.FieldCreatedAt: true,
	model.FieldUpdatedAt: true,
}

// Pagination renders the `before`/`after` cursor comparison described in
// spec §4.3. limitedTo is required whenever either cursor is present;
// before and after may not both be present.
func Pagination(ctx *Context, before, after *string, orderTerms []ir.OrderTerm, limitedTo *int) (string, error) {
	if before != nil && after != nil {
		return "", ronincore.NewMutuallyExclusiveError("before", "after")
	}
	if before == nil && after == nil {
		return "", nil
	}
	if limitedTo == nil {
		instr := "after"
		cursor := after
		if before != nil {
			instr = "before"
			cursor = before
		}
		_ = cursor
		return "", ronincore.NewMissingInstructionError(instr, "limitedTo")
	}

	usingBefore := before != nil
	cursor := after
	if usingBefore {
		cursor = before
	}

	segments, err := ir.DecodeCursor(*cursor)
	if err != nil {
		return "", fmt.Errorf("instruction: invalid cursor: %w", err)
	}
	if len(orderTerms) == 0 {
		orderTerms = DefaultOrder()
	}
	if len(segments) != len(orderTerms) {
		return "", fmt.Errorf("instruction: cursor has %d segments, ordering has %d keys", len(segments), len(orderTerms))
	}

	var disjuncts []string
	for i, term := range orderTerms {
		selector, fieldType, err := resolveOrderSelector(ctx, term)
		if err != nil {
			return "", err
		}

		op := comparisonOp(term.Descending, usingBefore)
		if op == "<" && segments[i] == nil {
			// `< NULL` is undefined; this position contributes no disjunct.
			continue
		}

		var eqParts []string
		for j := 0; j < i; j++ {
			jSelector, jFieldType, err := resolveOrderSelector(ctx, orderTerms[j])
			if err != nil {
				return "", err
			}
			eqParts = append(eqParts, equalityClause(ctx, jSelector, jFieldType, segments[j]))
		}

		cmp, err := comparisonClause(ctx, selector, fieldType, op, segments[i], term.Field)
		if err != nil {
			return "", err
		}
		eqParts = append(eqParts, cmp)

		if len(eqParts) == 1 {
			disjuncts = append(disjuncts, eqParts[0])
		} else {
			disjuncts = append(disjuncts, "("+strings.Join(eqParts, " AND ")+")")
		}
	}

	if len(disjuncts) == 0 {
		return "", nil
	}
	if len(disjuncts) == 1 {
		return "WHERE " + disjuncts[0], nil
	}
	return "WHERE (" + strings.Join(disjuncts, " OR ") + ")", nil
}

func resolveOrderSelector(ctx *Context, term ir.OrderTerm) (string, ir.FieldType, error) {
	if term.Expression != "" {
		return "(" + term.Expression + ")", ir.TypeString, nil
	}
	field, selector, err := ctx.Catalogue.Field(ctx.Model, term.Field)
	if err != nil {
		return "", "", err
	}
	return selector, field.Type, nil
}

func comparisonOp(descending, usingBefore bool) string {
	// after: ascending -> '>' ; descending -> '<'
	// before reverses the per-column direction.
	gt := !descending
	if usingBefore {
		gt = !gt
	}
	if gt {
		return ">"
	}
	return "<"
}

func equalityClause(ctx *Context, selector string, fieldType ir.FieldType, raw *string) string {
	if raw == nil {
		return selector + " IS NULL"
	}
	placeholder := bindTyped(ctx, *raw, fieldType)
	return selector + " = " + placeholder
}

func comparisonClause(ctx *Context, selector string, fieldType ir.FieldType, op string, raw *string, fieldSlug string) (string, error) {
	if raw == nil {
		// op == ">" here (the `< NULL` case was filtered by the caller).
		return selector + " IS NOT NULL", nil
	}
	placeholder := bindTyped(ctx, *raw, fieldType)
	if op == "<" && !nonNullableOrderingFields[fieldSlug] {
		return fmt.Sprintf("COALESCE(%s, -1e999) < COALESCE(%s, -1e999)", selector, placeholder), nil
	}
	return selector + " " + op + " " + placeholder, nil
}

func bindTyped(ctx *Context, raw string, fieldType ir.FieldType) string {
	placeholder, _ := ctx.Binder.Bind(ir.Lit(raw), fieldType)
	return placeholder
}
