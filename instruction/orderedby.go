package instruction

import (
	"strings"

	"github.com/ronincore/compiler/ir"
)

// OrderedBy renders `ORDER BY <selector> [COLLATE NOCASE] ASC|DESC, ...`.
// COLLATE NOCASE is added for string-typed fields only. Expression terms
// are wrapped in parentheses.
func OrderedBy(ctx *Context, terms []ir.OrderTerm) (string, error) {
	if len(terms) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		var selector string
		collate := ""
		if t.Expression != "" {
			selector = "(" + t.Expression + ")"
		} else {
			field, resolved, err := ctx.Catalogue.Field(ctx.Model, t.Field)
			if err != nil {
				return "", err
			}
			selector = resolved
			if field.Type == ir.TypeString {
				collate = " COLLATE NOCASE"
			}
		}
		dir := "ASC"
		if t.Descending {
			dir = "DESC"
		}
		parts = append(parts, selector+collate+" "+dir)
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

// DefaultOrder is the implicit ordering applied to plural `get` queries
// that don't specify their own (spec §4.4: "order default by
// ronin.createdAt DESC").
func DefaultOrder() []ir.OrderTerm {
	return []ir.OrderTerm{{Field: "ronin.createdAt", Descending: true}}
}
