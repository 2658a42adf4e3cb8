package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

func TestNormaliseDerivesDefaults(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{Slug: "account"}})
	require.NoError(t, err)

	m, err := cat.Get("account")
	require.NoError(t, err)

	assert.Equal(t, "accounts", m.PluralSlug)
	assert.Equal(t, "accounts", m.Table)
	assert.Equal(t, "acc", m.IDPrefix)
	assert.Equal(t, "Account", m.Name)
	assert.Equal(t, "Accounts", m.PluralName)
}

func TestNormalisePluralizationRules(t *testing.T) {
	cases := map[string]string{
		"company": "companies",
		"box":     "boxs",
		"match":   "matches",
		"dish":    "dishes",
		"account": "accounts",
		// Irregular in English but not in the suffix rule used here: the
		// literal consonant+y/s-ch-sh-ex/else-s table has no exception
		// table, so these come out regular rather than as inflect would
		// render them (people, children, indices, leaves).
		"person": "persons",
		"child":  "childs",
		"index":  "indexes",
		"leaf":   "leafs",
	}
	for slug, want := range cases {
		cat, err := model.New([]ir.ModelDef{{Slug: slug}})
		require.NoError(t, err)
		m, err := cat.Get(slug)
		require.NoError(t, err)
		assert.Equal(t, want, m.PluralSlug, slug)
	}
}

func TestSystemFieldsInstalledWhenUserFieldsPresent(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "handle", Type: ir.TypeString},
		},
	}})
	require.NoError(t, err)
	m, err := cat.Get("account")
	require.NoError(t, err)

	for _, slug := range model.SystemFieldOrder {
		_, ok := m.Fields[slug]
		assert.True(t, ok, "expected system field %s", slug)
	}
	assert.LessOrEqual(t, 3, len(model.SystemFieldOrder))

	// System fields come first in declaration order.
	assert.Equal(t, model.FieldID, m.FieldOrder[0])
}

func TestResolveBySingularOrPlural(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{Slug: "account"}})
	require.NoError(t, err)

	m, singular, all, err := cat.Resolve("account")
	require.NoError(t, err)
	assert.True(t, singular)
	assert.False(t, all)
	assert.Equal(t, "account", m.Slug)

	m, singular, all, err = cat.Resolve("accounts")
	require.NoError(t, err)
	assert.False(t, singular)
	assert.False(t, all)
	assert.Equal(t, "account", m.Slug)

	_, _, all, err = cat.Resolve(ir.TargetAll)
	require.NoError(t, err)
	assert.True(t, all)

	_, _, _, err = cat.Resolve("nonexistent")
	assert.Error(t, err)
}

func TestFieldSelectorResolution(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "meta", Type: ir.TypeJSON},
		},
	}})
	require.NoError(t, err)
	m, err := cat.Get("account")
	require.NoError(t, err)

	_, selector, err := cat.Field(m, "meta")
	require.NoError(t, err)
	assert.Equal(t, `"meta"`, selector)

	_, selector, err = cat.Field(m, "meta.nested")
	require.NoError(t, err)
	assert.Equal(t, `json_extract("meta", '$.nested')`, selector)

	_, _, err = cat.Field(m, "missing")
	assert.Error(t, err)
}

func TestManyLinkInducesAssociativeModel(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{
		{Slug: "account"},
		{Slug: "team", Fields: []ir.FieldDef{
			{Slug: "members", Type: ir.TypeLink, Target: "account", Kind: ir.LinkMany},
		}},
	})
	require.NoError(t, err)

	assoc, err := cat.Get("team_members")
	require.NoError(t, err)
	assert.True(t, assoc.System.Model)
	assert.Equal(t, "members", assoc.System.AssociationSlug)
}

func TestIdentifiersResolution(t *testing.T) {
	cat, err := model.New([]ir.ModelDef{{
		Slug: "account",
		Fields: []ir.FieldDef{
			{Slug: "name", Type: ir.TypeString, Required: true},
			{Slug: "handle", Type: ir.TypeString, Required: true, Unique: true},
		},
	}})
	require.NoError(t, err)
	m, err := cat.Get("account")
	require.NoError(t, err)
	assert.Equal(t, "name", m.Identifiers.Name)
	assert.Equal(t, "handle", m.Identifiers.Slug)
}
