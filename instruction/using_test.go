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

func TestUsingSplicesNamedPreset(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{
		{
			Slug: "author",
			Fields: []ir.FieldDef{
				{Slug: "name", Type: ir.TypeString, Required: true},
			},
			Presets: map[string]ir.PresetDef{
				"recent": {Instructions: &ir.Instructions{
					OrderedBy: []ir.OrderTerm{{Field: "ronin.createdAt", Descending: true}},
					Selecting: []string{"name"},
				}},
			},
		},
	})
	require.NoError(t, err)
	m, err := cat.Get("author")
	require.NoError(t, err)

	ctx := &instruction.Context{Catalogue: cat, Model: m, Binder: &value.Binder{}}
	merged, err := instruction.Using(ctx, &ir.Instructions{
		Using: []ir.PresetRef{{Name: "recent"}},
	})
	require.NoError(t, err)
	assert.Len(t, merged.OrderedBy, 1)
	assert.Equal(t, "ronin.createdAt", merged.OrderedBy[0].Field)
	assert.Contains(t, merged.Selecting, "name")
	assert.Empty(t, merged.Using)
}

func TestUsingMissingPresetErrors(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{Slug: "author", Fields: []ir.FieldDef{{Slug: "name", Type: ir.TypeString}}}})
	require.NoError(t, err)
	m, err := cat.Get("author")
	require.NoError(t, err)
	ctx := &instruction.Context{Catalogue: cat, Model: m, Binder: &value.Binder{}}

	_, err = instruction.Using(ctx, &ir.Instructions{Using: []ir.PresetRef{{Name: "missing"}}})
	assert.Error(t, err)
}

func TestUsingLinksExpandsToEveryLinkField(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{
		{Slug: "author", Fields: []ir.FieldDef{{Slug: "name", Type: ir.TypeString}}},
		{
			Slug: "post",
			Fields: []ir.FieldDef{
				{Slug: "title", Type: ir.TypeString},
				{Slug: "author", Type: ir.TypeLink, Target: "author", Kind: ir.LinkOne},
			},
		},
	})
	require.NoError(t, err)
	m, err := cat.Get("post")
	require.NoError(t, err)
	ctx := &instruction.Context{Catalogue: cat, Model: m, Binder: &value.Binder{}}

	merged, err := instruction.Using(ctx, &ir.Instructions{Using: []ir.PresetRef{{Name: "links"}}})
	require.NoError(t, err)
	require.Len(t, merged.Including, 1)
	assert.Equal(t, "author", merged.Including[0].MountPath)
}

func TestUsingValueHoleSubstitution(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{
		{
			Slug: "author",
			Fields: []ir.FieldDef{
				{Slug: "name", Type: ir.TypeString, Required: true},
			},
			Presets: map[string]ir.PresetDef{
				"named": {Instructions: &ir.Instructions{
					With: ir.Leaf("name", ir.OpEQ, ir.ValueHole()),
				}},
			},
		},
	})
	require.NoError(t, err)
	m, err := cat.Get("author")
	require.NoError(t, err)
	ctx := &instruction.Context{Catalogue: cat, Model: m, Binder: &value.Binder{}}

	merged, err := instruction.Using(ctx, &ir.Instructions{
		Using: []ir.PresetRef{{Name: "named", Arg: ir.Lit("Ada")}},
	})
	require.NoError(t, err)
	require.NotNil(t, merged.With)
	assert.Equal(t, ir.Lit("Ada"), merged.With.Value)
}
