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

func blogCatalogue(t *testing.T) (*model.Catalogue, *model.Model) {
	t.Helper()
	cat, err := model.New([]ir.ModelDef{
		{Slug: "author", Fields: []ir.FieldDef{{Slug: "name", Type: ir.TypeString, Required: true}}},
		{Slug: "post", Fields: []ir.FieldDef{
			{Slug: "title", Type: ir.TypeString},
			{Slug: "author", Type: ir.TypeLink, Target: "author", Kind: ir.LinkOne},
		}},
	})
	require.NoError(t, err)
	m, err := cat.Get("post")
	require.NoError(t, err)
	return cat, m
}

func TestIncludingLeftJoinWhenWithPresent(t *testing.T) {
	cat, post := blogCatalogue(t)
	ctx := &instruction.Context{
		Catalogue: cat, Model: post, Binder: &value.Binder{},
		CompileSub: func(q *ir.Query) (string, error) { return "SELECT 1", nil },
	}
	entries := []ir.IncludeEntry{{
		MountPath: "author",
		Query: &ir.Query{
			Kind:   ir.Get,
			Target: "author",
			Instructions: &ir.Instructions{
				With: ir.Leaf("id", ir.OpEQ, ir.ParentField("author")),
			},
		},
	}}
	clauses, guard, err := instruction.Including(ctx, entries, true)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].SQL, "LEFT JOIN")
	assert.Contains(t, clauses[0].SQL, "including_author")
	assert.False(t, guard)
}

func TestIncludingCrossJoinWhenNoWith(t *testing.T) {
	cat, post := blogCatalogue(t)
	ctx := &instruction.Context{
		Catalogue: cat, Model: post, Binder: &value.Binder{},
		CompileSub: func(q *ir.Query) (string, error) { return "SELECT 1", nil },
	}
	entries := []ir.IncludeEntry{{
		MountPath: "authors",
		Query:     &ir.Query{Kind: ir.Get, Target: "authors"},
	}}
	clauses, _, err := instruction.Including(ctx, entries, false)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].SQL, "CROSS JOIN")
}

func TestIncludingSubSelectWhenLimitedOrOrdered(t *testing.T) {
	cat, post := blogCatalogue(t)
	called := false
	ctx := &instruction.Context{
		Catalogue: cat, Model: post, Binder: &value.Binder{},
		CompileSub: func(q *ir.Query) (string, error) { called = true; return "SELECT 1 LIMIT 2", nil },
	}
	n := 1
	entries := []ir.IncludeEntry{{
		MountPath: "authors",
		Query: &ir.Query{
			Kind:   ir.Get,
			Target: "authors",
			Instructions: &ir.Instructions{
				LimitedTo: &n,
			},
		},
	}}
	clauses, _, err := instruction.Including(ctx, entries, false)
	require.NoError(t, err)
	require.True(t, called)
	assert.Contains(t, clauses[0].SQL, "(SELECT 1 LIMIT 2) AS")
}
