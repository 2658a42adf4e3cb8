package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/compiler"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

func accountCatalogue(t *testing.T) *model.Catalogue {
	t.Helper()
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "handle", Type: ir.TypeString, Unique: true},
			{Slug: "age", Type: ir.TypeNumber},
		},
	}})
	require.NoError(t, err)
	return cat
}

func TestCompileGetSingular(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{
		Kind:   ir.Get,
		Target: "account",
		Instructions: &ir.Instructions{
			With: ir.Leaf("handle", ir.OpEQ, ir.Lit("nate")),
		},
	})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, `SELECT`)
	assert.Contains(t, stmts[0].SQL, `FROM "accounts"`)
	assert.Contains(t, stmts[0].SQL, `WHERE "handle" = ?1`)
	assert.Contains(t, stmts[0].SQL, `LIMIT 1`)
	assert.Equal(t, []any{"nate"}, stmts[0].Params)
	assert.True(t, metas[0].Singular)
}

func TestCompileGetPluralDefaultsOrderAndPage(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{Kind: ir.Get, Target: "accounts"})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, `ORDER BY "ronin.createdAt" DESC`)
	assert.Contains(t, stmts[0].SQL, `LIMIT 101`)
	assert.Equal(t, compiler.DefaultPageSize, metas[0].PageSize)
}

func TestCompileGetAllExpandsPerModel(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{
		{Slug: "account", Fields: []ir.FieldDef{{Slug: "handle", Type: ir.TypeString}}},
		{Slug: "post", Fields: []ir.FieldDef{{Slug: "title", Type: ir.TypeString}}},
	})
	require.NoError(t, err)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{Kind: ir.Get, Target: ir.TargetAll})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	groups := []string{metas[0].GroupKey, metas[1].GroupKey}
	assert.ElementsMatch(t, []string{"accounts", "posts"}, groups)
}

func TestCompileCount(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{Kind: ir.Count, Target: "accounts"})
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, `COUNT(*) AS "amount"`)
	assert.NotContains(t, stmts[0].SQL, "ORDER BY")
}

func TestCompileAddRequiresSingularTarget(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	_, _, err := c.Compile(&ir.Query{
		Kind:   ir.Add,
		Target: "accounts",
		Instructions: &ir.Instructions{
			To: map[string]ir.Value{"handle": ir.Lit("nate")},
		},
	})
	assert.Error(t, err)
}

func TestCompileAddRendersInsertReturning(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{
		Kind:   ir.Add,
		Target: "account",
		Instructions: &ir.Instructions{
			To: map[string]ir.Value{"handle": ir.Lit("nate"), "age": ir.Lit(30)},
		},
	})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, `INSERT INTO "accounts"`)
	assert.Contains(t, stmts[0].SQL, "RETURNING")
	assert.True(t, stmts[0].Returning)
	assert.True(t, metas[0].Singular)
}

func TestCompileAddFromSubQueryRendersInsertSelect(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{
		Kind:   ir.Add,
		Target: "account",
		Instructions: &ir.Instructions{
			From: &ir.Query{
				Kind:   ir.Get,
				Target: "account",
				Instructions: &ir.Instructions{
					Selecting: []string{"handle"},
				},
			},
			Columns: []string{"handle"},
		},
	})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, `INSERT INTO "accounts"`)
	assert.Contains(t, stmts[0].SQL, `SELECT`)
	assert.Contains(t, stmts[0].SQL, `FROM "accounts"`)
	assert.NotContains(t, stmts[0].SQL, "LIMIT")
	assert.True(t, metas[0].Singular)
}

func TestCompileAddFromSubQueryRequiresColumns(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	_, _, err := c.Compile(&ir.Query{
		Kind:   ir.Add,
		Target: "account",
		Instructions: &ir.Instructions{
			From: &ir.Query{Kind: ir.Get, Target: "account"},
		},
	})
	assert.Error(t, err)
}

func TestCompileSetAppliesLimitWhenSingular(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{
		Kind:   ir.Set,
		Target: "account",
		Instructions: &ir.Instructions{
			With: ir.Leaf("handle", ir.OpEQ, ir.Lit("nate")),
			To:   map[string]ir.Value{"age": ir.Lit(31)},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, `UPDATE "accounts" SET "age" = ?1`)
	assert.Contains(t, stmts[0].SQL, `WHERE "handle" = ?2`)
	assert.Contains(t, stmts[0].SQL, "LIMIT 1")
}

func TestCompileRemove(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{
		Kind:   ir.Remove,
		Target: "accounts",
		Instructions: &ir.Instructions{
			With: ir.Leaf("age", ir.OpLessThan, ir.Lit(18)),
		},
	})
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, `DELETE FROM "accounts"`)
	assert.Contains(t, stmts[0].SQL, "RETURNING")
	assert.NotContains(t, stmts[0].SQL, "LIMIT 1")
}

func TestCompileCreateModel(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{
		Kind: ir.Create,
		DDL: &ir.DDL{Target: ir.DDLTargetModel, Model: &ir.ModelDef{
			Slug:   "comment",
			Fields: []ir.FieldDef{{Slug: "body", Type: ir.TypeString}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].SQL, `CREATE TABLE "comments"`)
	assert.Contains(t, stmts[0].SQL, "id")
	assert.Contains(t, stmts[1].SQL, `INSERT INTO "ronin_schema"`)
	assert.Equal(t, ir.Create, metas[0].Kind)
}

func TestCompileDropModel(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{Kind: ir.Drop, Target: "account"})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].SQL, `DROP TABLE "accounts"`)
	assert.Contains(t, stmts[1].SQL, `DELETE FROM "ronin_schema"`)
}

func TestCompileAlterModelRenamesTableAndSchemaRow(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	newSlug := "member"
	stmts, _, err := c.Compile(&ir.Query{
		Kind:   ir.Alter,
		Target: "account",
		DDL: &ir.DDL{
			Target:     ir.DDLTargetModel,
			Action:     ir.DDLActionAlter,
			ModelPatch: &ir.ModelPatch{Slug: &newSlug},
		},
	})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].SQL, `ALTER TABLE "accounts" RENAME TO "members"`)
	assert.Contains(t, stmts[1].SQL, `UPDATE "ronin_schema"`)
}

func TestCompileAlterFieldAddColumn(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{
		Kind:   ir.Alter,
		Target: "account",
		DDL: &ir.DDL{
			Target: ir.DDLTargetField,
			Action: ir.DDLActionCreate,
			Field:  &ir.FieldDef{Slug: "bio", Type: ir.TypeString},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, `ALTER TABLE "accounts" ADD COLUMN "bio" TEXT`)
}

func TestCompileBatchFlattensInOrder(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{
		Kind: ir.Batch,
		Statements: []*ir.Query{
			{Kind: ir.Count, Target: "accounts"},
			{Kind: ir.Get, Target: "account", Instructions: &ir.Instructions{
				With: ir.Leaf("handle", ir.OpEQ, ir.Lit("nate")),
			}},
		},
	})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, ir.Count, metas[0].Kind)
	assert.Equal(t, ir.Get, metas[1].Kind)
}

func TestCompileRawSQLParameterised(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{
		Kind: ir.SQL,
		Raw:  &ir.RawSQL{Statement: "SELECT 1 WHERE ? = ?", Params: []ir.Value{ir.Lit(1), ir.Lit(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE ? = ?", stmts[0].SQL)
	assert.Equal(t, []any{1, 1}, stmts[0].Params)
}

func TestCompileRawSQLInline(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat, compiler.WithInlineParams(true))

	stmts, _, err := c.Compile(&ir.Query{
		Kind: ir.SQL,
		Raw:  &ir.RawSQL{Statement: "SELECT * FROM accounts WHERE handle = ?", Params: []ir.Value{ir.Lit("nate")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM accounts WHERE handle = 'nate'", stmts[0].SQL)
}

func TestCompileListModels(t *testing.T) {
	cat := accountCatalogue(t)
	c := compiler.New(cat)

	stmts, _, err := c.Compile(&ir.Query{Kind: ir.List, Target: "models"})
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, `FROM "ronin_schema"`)
	assert.Contains(t, stmts[0].SQL, "LIMIT")
}

func TestCompileIncludingLeftJoin(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{
		{Slug: "account", Fields: []ir.FieldDef{{Slug: "handle", Type: ir.TypeString}}},
		{Slug: "post", Fields: []ir.FieldDef{
			{Slug: "title", Type: ir.TypeString},
			{Slug: "author", Type: ir.TypeLink, Target: "account", Kind: ir.LinkOne},
		}},
	})
	require.NoError(t, err)
	c := compiler.New(cat)

	stmts, metas, err := c.Compile(&ir.Query{
		Kind:   ir.Get,
		Target: "post",
		Instructions: &ir.Instructions{
			Including: []ir.IncludeEntry{{
				MountPath: "author",
				Query: &ir.Query{
					Kind:   ir.Get,
					Target: "account",
					Instructions: &ir.Instructions{
						With: ir.Leaf("id", ir.OpEQ, ir.ParentField("author")),
					},
				},
			}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, "LEFT JOIN")
	require.Len(t, metas[0].Joins, 1)
	assert.Equal(t, "author", metas[0].Joins[0].MountPath)
}
