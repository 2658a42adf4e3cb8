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

func account(t *testing.T) *model.Model {
	t.Helper()
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "handle", Type: ir.TypeString},
			{Slug: "age", Type: ir.TypeNumber},
		},
	}})
	require.NoError(t, err)
	m, err := cat.Get("account")
	require.NoError(t, err)
	return m
}

func ctxFor(t *testing.T) (*instruction.Context, *model.Catalogue) {
	t.Helper()
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "handle", Type: ir.TypeString},
			{Slug: "age", Type: ir.TypeNumber},
		},
	}})
	require.NoError(t, err)
	m, err := cat.Get("account")
	require.NoError(t, err)
	return &instruction.Context{
		Catalogue: cat,
		Model:     m,
		Binder:    &value.Binder{},
	}, cat
}

func TestPaginationRejectsBothCursors(t *testing.T) {
	ctx, _ := ctxFor(t)
	b, a := "b", "a"
	_, err := instruction.Pagination(ctx, &b, &a, nil, nil)
	assert.Error(t, err)
}

func TestPaginationRequiresLimitedTo(t *testing.T) {
	ctx, _ := ctxFor(t)
	after := ir.EncodeCursor([]any{"2024-01-01T00:00:00.000Z"})
	_, err := instruction.Pagination(ctx, nil, &after, nil, nil)
	assert.Error(t, err)
}

func TestPaginationNoCursorsIsNoop(t *testing.T) {
	ctx, _ := ctxFor(t)
	n := 10
	sql, err := instruction.Pagination(ctx, nil, nil, nil, &n)
	require.NoError(t, err)
	assert.Empty(t, sql)
}

func TestPaginationAfterDescendingDefaultOrder(t *testing.T) {
	ctx, _ := ctxFor(t)
	n := 10
	after := ir.EncodeCursor([]any{"2024-01-01T00:00:00.000Z"})
	sql, err := instruction.Pagination(ctx, nil, &after, nil, &n)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE")
	assert.Contains(t, sql, "<")
}

func TestPaginationBeforeReversesDirection(t *testing.T) {
	ctx, _ := ctxFor(t)
	n := 10
	before := ir.EncodeCursor([]any{"2024-01-01T00:00:00.000Z"})
	sql, err := instruction.Pagination(ctx, &before, nil, nil, &n)
	require.NoError(t, err)
	assert.Contains(t, sql, ">")
}

func TestPaginationMultiKeyBuildsLexicographicDisjuncts(t *testing.T) {
	ctx, _ := ctxFor(t)
	n := 10
	terms := []ir.OrderTerm{
		{Field: "handle", Descending: false},
		{Field: "age", Descending: true},
	}
	after := ir.EncodeCursor([]any{"jen", 30})
	sql, err := instruction.Pagination(ctx, nil, &after, terms, &n)
	require.NoError(t, err)
	assert.Contains(t, sql, "OR")
	assert.Contains(t, sql, "\"handle\" = ")
	assert.Contains(t, sql, "COALESCE(\"age\", -1e999) <")
}

func TestPaginationSkipsLessThanNullDisjunct(t *testing.T) {
	ctx, _ := ctxFor(t)
	n := 10
	terms := []ir.OrderTerm{{Field: "handle", Descending: true}}
	after := ir.EncodeCursor([]any{nil})
	sql, err := instruction.Pagination(ctx, nil, &after, terms, &n)
	require.NoError(t, err)
	assert.Empty(t, sql)
}
