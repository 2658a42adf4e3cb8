package instruction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

func TestToValuesRendersInDeclarationOrder(t *testing.T) {
	ctx, _ := ctxFor(t)
	data := map[string]ir.Value{
		"age":    ir.Lit(30),
		"handle": ir.Lit("jen"),
	}
	cols, placeholders, err := instruction.ToValues(ctx, data, false)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, `"handle"`, cols[0])
	assert.Equal(t, `"age"`, cols[1])
	assert.Equal(t, []string{"?1", "?2"}, placeholders)
}

func TestToValuesAppliesDefaults(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "handle", Type: ir.TypeString},
			{Slug: "age", Type: ir.TypeNumber, Default: func() *ir.Value { v := ir.Lit(0); return &v }()},
		},
	}})
	require.NoError(t, err)
	m, err := cat.Get("account")
	require.NoError(t, err)
	ctx := &instruction.Context{Catalogue: cat, Model: m, Binder: &value.Binder{}}

	cols, placeholders, err := instruction.ToValues(ctx, map[string]ir.Value{"handle": ir.Lit("jen")}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{`"handle"`, `"age"`}, cols)
	assert.Equal(t, []string{"?1", "?2"}, placeholders)
}

func TestToSetRendersAssignments(t *testing.T) {
	ctx, _ := ctxFor(t)
	assignments, err := instruction.ToSet(ctx, map[string]ir.Value{"handle": ir.Lit("jen")})
	require.NoError(t, err)
	assert.Equal(t, []string{`"handle" = ?1`}, assignments)
}

func TestRenderInsertAndUpdate(t *testing.T) {
	insert := instruction.RenderInsert("accounts", []string{`"handle"`}, []string{"?1"})
	assert.Equal(t, `INSERT INTO "accounts" ("handle") VALUES (?1)`, insert)

	update := instruction.RenderUpdate("accounts", []string{`"handle" = ?1`})
	assert.Equal(t, `UPDATE "accounts" SET "handle" = ?1`, update)
}
