package compiler

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// schemaTable is the system model persisting the catalogue itself (spec
// §6 "Catalogue persistence").
const schemaTable = "ronin_schema"

func (c *Compiler) compileDDL(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	switch q.Kind {
	case ir.Create:
		return c.compileCreate(q)
	case ir.Alter:
		return c.compileAlter(q)
	case ir.Drop:
		return c.compileDrop(q)
	default:
		return nil, nil, fmt.Errorf("compiler: %q is not a DDL query kind", q.Kind)
	}
}

func (c *Compiler) compileCreate(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	if q.DDL == nil || q.DDL.Model == nil {
		return nil, nil, fmt.Errorf("compiler: create.model requires a model definition")
	}
	m := model.Normalize(*q.DDL.Model, false)

	createSQL := buildCreateTable(m)
	schemaStmt, err := buildSchemaInsert(c.newBinder(), m)
	if err != nil {
		return nil, nil, err
	}

	statements := []value.Statement{{SQL: createSQL}, schemaStmt}
	metas := []StatementMeta{{Kind: ir.Create}, {Kind: ir.Create}}
	return statements, metas, nil
}

func (c *Compiler) compileDrop(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	m, singular, all, err := c.catalogue.Resolve(q.Target)
	if err != nil {
		return nil, nil, err
	}
	if all || !singular {
		return nil, nil, fmt.Errorf("compiler: drop.model requires a singular target, got %q", q.Target)
	}

	dropSQL := "DROP TABLE " + value.QuoteIdent(m.Table)
	binder := c.newBinder()
	placeholder, err := binder.Bind(ir.Lit(m.Slug), ir.TypeString)
	if err != nil {
		return nil, nil, err
	}
	schemaSQL := "DELETE FROM " + value.QuoteIdent(schemaTable) + ` WHERE "slug" = ` + placeholder

	statements := []value.Statement{
		{SQL: dropSQL},
		{SQL: schemaSQL, Params: binder.Params},
	}
	return statements, []StatementMeta{{Kind: ir.Drop}, {Kind: ir.Drop}}, nil
}

func (c *Compiler) compileAlter(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	if q.DDL == nil {
		return nil, nil, fmt.Errorf("compiler: alter query requires a DDL payload")
	}
	m, singular, all, err := c.catalogue.Resolve(q.Target)
	if err != nil {
		return nil, nil, err
	}
	if all || !singular {
		return nil, nil, fmt.Errorf("compiler: alter.model requires a singular target, got %q", q.Target)
	}

	switch q.DDL.Target {
	case ir.DDLTargetModel:
		return c.compileAlterModel(m, q.DDL)
	case ir.DDLTargetField:
		return c.compileAlterField(m, q.DDL)
	case ir.DDLTargetIndex:
		return c.compileAlterIndex(m, q.DDL)
	default:
		return nil, nil, fmt.Errorf("compiler: unknown alter target %q", q.DDL.Target)
	}
}

// compileAlterModel handles `alter.model(slug).to(patch)` — a rename
// and/or display-name change, applied only to the ronin_schema row; the
// live table is renamed when the slug (and so the derived table) changes.
func (c *Compiler) compileAlterModel(m *model.Model, ddl *ir.DDL) ([]value.Statement, []StatementMeta, error) {
	if ddl.ModelPatch == nil {
		return nil, nil, fmt.Errorf("compiler: alter.model.to requires a patch")
	}
	patch := ddl.ModelPatch

	def := m.ToDef()
	if patch.Slug != nil {
		def.Slug = *patch.Slug
	}
	if patch.Name != nil {
		def.Name = *patch.Name
	}
	if patch.PluralName != nil {
		def.PluralName = *patch.PluralName
	}
	if patch.PluralSlug != nil {
		def.PluralSlug = *patch.PluralSlug
	}
	forAlter := patch.Slug != nil || patch.PluralSlug != nil
	renamed := model.Normalize(def, forAlter)

	var statements []value.Statement
	var metas []StatementMeta
	if renamed.Table != m.Table {
		statements = append(statements, value.Statement{
			SQL: "ALTER TABLE " + value.QuoteIdent(m.Table) + " RENAME TO " + value.QuoteIdent(renamed.Table),
		})
		metas = append(metas, StatementMeta{Kind: ir.Alter})
	}

	binder := c.newBinder()
	schemaSQL, err := buildSchemaUpdate(binder, m.Slug, renamed)
	if err != nil {
		return nil, nil, err
	}
	statements = append(statements, value.Statement{SQL: schemaSQL, Params: binder.Params})
	metas = append(metas, StatementMeta{Kind: ir.Alter})
	return statements, metas, nil
}

func (c *Compiler) compileAlterField(m *model.Model, ddl *ir.DDL) ([]value.Statement, []StatementMeta, error) {
	switch ddl.Action {
	case ir.DDLActionCreate:
		if ddl.Field == nil {
			return nil, nil, fmt.Errorf("compiler: alter.model.create.field requires a field definition")
		}
		colSQL := fieldColumnDDL(*ddl.Field, m.IDPrefix)
		sql := "ALTER TABLE " + value.QuoteIdent(m.Table) + " ADD COLUMN " + colSQL
		return []value.Statement{{SQL: sql}}, []StatementMeta{{Kind: ir.Alter}}, nil
	case ir.DDLActionDrop:
		sql := "ALTER TABLE " + value.QuoteIdent(m.Table) + " DROP COLUMN " + value.QuoteIdent(ddl.FieldSlug)
		return []value.Statement{{SQL: sql}}, []StatementMeta{{Kind: ir.Alter}}, nil
	case ir.DDLActionAlter:
		if ddl.FieldPatch == nil || ddl.FieldPatch.Slug == nil {
			return nil, nil, fmt.Errorf("compiler: alter.field.to only supports a slug rename")
		}
		sql := "ALTER TABLE " + value.QuoteIdent(m.Table) + " RENAME COLUMN " +
			value.QuoteIdent(ddl.FieldSlug) + " TO " + value.QuoteIdent(*ddl.FieldPatch.Slug)
		return []value.Statement{{SQL: sql}}, []StatementMeta{{Kind: ir.Alter}}, nil
	default:
		return nil, nil, fmt.Errorf("compiler: unknown field alter action %q", ddl.Action)
	}
}

func (c *Compiler) compileAlterIndex(m *model.Model, ddl *ir.DDL) ([]value.Statement, []StatementMeta, error) {
	switch ddl.Action {
	case ir.DDLActionCreate:
		if ddl.Index == nil {
			return nil, nil, fmt.Errorf("compiler: alter.model.create.index requires an index definition")
		}
		sql := buildCreateIndex(m, ddl.IndexSlug, *ddl.Index)
		return []value.Statement{{SQL: sql}}, []StatementMeta{{Kind: ir.Alter}}, nil
	case ir.DDLActionDrop:
		sql := "DROP INDEX " + value.QuoteIdent(ddl.IndexSlug)
		return []value.Statement{{SQL: sql}}, []StatementMeta{{Kind: ir.Alter}}, nil
	default:
		return nil, nil, fmt.Errorf("compiler: unknown index alter action %q", ddl.Action)
	}
}

// buildCreateTable renders `CREATE TABLE "table" (…)` from a normalised
// model's fields, in declaration order (system fields first).
func buildCreateTable(m *model.Model) string {
	cols := make([]string, 0, len(m.FieldOrder))
	for _, slug := range m.FieldOrder {
		cols = append(cols, fieldColumnDDL(toFieldDef(m.Fields[slug]), m.IDPrefix))
	}
	return "CREATE TABLE " + value.QuoteIdent(m.Table) + " (" + strings.Join(cols, ", ") + ")"
}

func toFieldDef(f *model.Field) ir.FieldDef {
	return ir.FieldDef{
		Slug: f.Slug, Type: f.Type, Required: f.Required, Unique: f.Unique,
		Increment: f.Increment, Default: f.Default,
		Target: f.Target, Kind: f.Kind, Actions: f.Actions,
	}
}

// fieldColumnDDL renders one column definition (spec §6: SQLite dialect
// choices for id/date defaults, JSON columns, link targets). idPrefix is
// the owning model's id prefix, baked into the id column's default
// expression.
func fieldColumnDDL(f ir.FieldDef, idPrefix string) string {
	var b strings.Builder
	b.WriteString(value.QuoteIdent(f.Slug))
	b.WriteString(" ")

	switch {
	case f.Slug == model.FieldID:
		b.WriteString(`TEXT PRIMARY KEY DEFAULT ('` + idPrefix + `_' || lower(substr(hex(randomblob(12)),1,16)))`)
		return b.String()
	case f.Type == ir.TypeDate:
		b.WriteString("DATETIME")
	case f.Type == ir.TypeBoolean:
		b.WriteString("INTEGER")
	case f.Type == ir.TypeNumber:
		b.WriteString("REAL")
	case f.Type == ir.TypeJSON:
		b.WriteString("TEXT")
	case f.Type == ir.TypeBlob:
		b.WriteString("BLOB")
	case f.Type == ir.TypeLink:
		b.WriteString("TEXT")
	default:
		b.WriteString("TEXT")
	}

	if f.Required {
		b.WriteString(" NOT NULL")
	}
	if f.Unique {
		b.WriteString(" UNIQUE")
	}
	if f.Slug == model.FieldCreatedAt || f.Slug == model.FieldUpdatedAt {
		b.WriteString(` DEFAULT (strftime('%Y-%m-%dT%H:%M:%f', 'now') || 'Z')`)
	} else if f.Default != nil && f.Default.Kind == ir.KindLiteral {
		b.WriteString(" DEFAULT " + value.InlineLiteral(mustSerialize(f.Default.Literal, f.Type), f.Type))
	}
	return b.String()
}

func mustSerialize(v any, t ir.FieldType) any {
	s, err := value.Serialize(v, t)
	if err != nil {
		return v
	}
	return s
}

func buildCreateIndex(m *model.Model, slug string, idx ir.IndexDef) string {
	cols := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		cols[i] = value.QuoteIdent(f.Slug) + " " + dir
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return "CREATE " + unique + "INDEX " + value.QuoteIdent(slug) + " ON " + value.QuoteIdent(m.Table) + " (" + strings.Join(cols, ", ") + ")"
}
