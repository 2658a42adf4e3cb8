package compiler

import (
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// buildSchemaInsert renders the INSERT that records a newly created model
// in `ronin_schema` (spec §6 Catalogue persistence).
func buildSchemaInsert(binder *value.Binder, m *model.Model) (value.Statement, error) {
	columns := []string{
		`"slug"`, `"pluralSlug"`, `"name"`, `"pluralName"`, `"idPrefix"`, `"table"`,
		`"identifiers.name"`, `"identifiers.slug"`, `"fields"`, `"indexes"`, `"presets"`,
	}
	values := []any{
		m.Slug, m.PluralSlug, m.Name, m.PluralName, m.IDPrefix, m.Table,
		m.Identifiers.Name, m.Identifiers.Slug, toDef(m).Fields, toDef(m).Indexes, toDef(m).Presets,
	}
	types := []ir.FieldType{
		ir.TypeString, ir.TypeString, ir.TypeString, ir.TypeString, ir.TypeString, ir.TypeString,
		ir.TypeString, ir.TypeString, ir.TypeJSON, ir.TypeJSON, ir.TypeJSON,
	}

	placeholders := make([]string, len(values))
	for i, v := range values {
		ph, err := binder.Bind(ir.Lit(v), types[i])
		if err != nil {
			return value.Statement{}, err
		}
		placeholders[i] = ph
	}

	sql := "INSERT INTO " + value.QuoteIdent(schemaTable) + " (" + joinCols(columns) + ") VALUES (" + joinCols(placeholders) + ")"
	return value.Statement{SQL: sql, Params: binder.Params}, nil
}

// buildSchemaUpdate renders the plain column-assignment UPDATE that records
// an `alter.model` patch against the existing row identified by slug.
func buildSchemaUpdate(binder *value.Binder, originalSlug string, m *model.Model) (string, error) {
	assignments := []string{}
	cols := []string{"slug", "pluralSlug", "name", "pluralName", "table"}
	vals := []any{m.Slug, m.PluralSlug, m.Name, m.PluralName, m.Table}
	for i, col := range cols {
		ph, err := binder.Bind(ir.Lit(vals[i]), ir.TypeString)
		if err != nil {
			return "", err
		}
		assignments = append(assignments, value.QuoteIdent(col)+" = "+ph)
	}

	whereVal, err := binder.Bind(ir.Lit(originalSlug), ir.TypeString)
	if err != nil {
		return "", err
	}

	return "UPDATE " + value.QuoteIdent(schemaTable) + " SET " + joinCols(assignments) +
		` WHERE "slug" = ` + whereVal, nil
}

func toDef(m *model.Model) ir.ModelDef {
	return m.ToDef()
}

func joinCols(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
