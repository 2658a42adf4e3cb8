package instruction

import (
	"strings"

	"github.com/ronincore/compiler/ir"
)

// ToValues renders the `to(data)` payload of an `add` query as an
// `(col, …) VALUES (…)` pair (spec §4.3). When applyDefaults is set
// (the transaction's inlineDefaults option), declared fields absent from
// data but carrying a Default are filled in before rendering.
func ToValues(ctx *Context, data map[string]ir.Value, applyDefaults bool) (columns, placeholders []string, err error) {
	merged := data
	if applyDefaults {
		merged = withDefaults(ctx, data)
	}

	for _, slug := range ctx.Model.FieldOrder {
		v, ok := merged[slug]
		if !ok {
			continue
		}
		field, selector, fieldErr := ctx.Catalogue.Field(ctx.Model, slug)
		if fieldErr != nil {
			return nil, nil, fieldErr
		}
		placeholder, bindErr := ctx.Binder.Bind(v, field.Type)
		if bindErr != nil {
			return nil, nil, bindErr
		}
		columns = append(columns, selector)
		placeholders = append(placeholders, placeholder)
	}
	return columns, placeholders, nil
}

// ToSet renders the `to(data)` payload of a `set` query as a list of
// `col = ?` assignments, in declaration order.
func ToSet(ctx *Context, data map[string]ir.Value) (assignments []string, err error) {
	for _, slug := range ctx.Model.FieldOrder {
		v, ok := data[slug]
		if !ok {
			continue
		}
		field, selector, fieldErr := ctx.Catalogue.Field(ctx.Model, slug)
		if fieldErr != nil {
			return nil, fieldErr
		}
		placeholder, bindErr := ctx.Binder.Bind(v, field.Type)
		if bindErr != nil {
			return nil, bindErr
		}
		assignments = append(assignments, selector+" = "+placeholder)
	}
	return assignments, nil
}

func withDefaults(ctx *Context, data map[string]ir.Value) map[string]ir.Value {
	merged := make(map[string]ir.Value, len(data)+len(ctx.Model.Fields))
	for k, v := range data {
		merged[k] = v
	}
	for _, slug := range ctx.Model.FieldOrder {
		if _, ok := merged[slug]; ok {
			continue
		}
		field := ctx.Model.Fields[slug]
		if field != nil && field.Default != nil {
			merged[slug] = *field.Default
		}
	}
	return merged
}

// RenderInsert assembles the `INSERT INTO "table" (cols) VALUES (…)`
// fragment from ToValues' output.
func RenderInsert(table string, columns, placeholders []string) string {
	return "INSERT INTO " + quoteIdentSimple(table) + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
}

// RenderUpdate assembles the `UPDATE "table" SET …` fragment from ToSet's
// output.
func RenderUpdate(table string, assignments []string) string {
	return "UPDATE " + quoteIdentSimple(table) + " SET " + strings.Join(assignments, ", ")
}

func quoteIdentSimple(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
