package migrate_test

import (
	"testing"

	atlasmigrate "ariga.io/atlas/sql/migrate"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/migrate"
	"github.com/ronincore/compiler/model"
)

func TestStoreWriteLoadRoundTrip(t *testing.T) {
	dir, err := atlasmigrate.NewLocalDir(t.TempDir())
	require.NoError(t, err)
	store := migrate.NewStore(dir)

	accountDef := ir.ModelDef{Slug: "account", Fields: []ir.FieldDef{
		{Slug: "handle", Type: ir.TypeString, Unique: true},
	}}
	cat, err := model.New([]ir.ModelDef{accountDef})
	require.NoError(t, err)

	seq := migrate.Sequence{
		Index: 1,
		Queries: []*ir.Query{
			{Kind: ir.Create, DDL: &ir.DDL{Target: ir.DDLTargetModel, Model: &accountDef}},
		},
	}
	require.NoError(t, store.Write(seq, cat))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, 1, loaded[0].Index)
	require.Len(t, loaded[0].Queries, 1)
	require.Equal(t, ir.Create, loaded[0].Queries[0].Kind)
	require.Equal(t, "account", loaded[0].Queries[0].DDL.Model.Slug)
}

func TestStoreLoadOrdersByIndex(t *testing.T) {
	dir, err := atlasmigrate.NewLocalDir(t.TempDir())
	require.NoError(t, err)
	store := migrate.NewStore(dir)

	cat, err := model.New(nil)
	require.NoError(t, err)

	for _, idx := range []int{3, 1, 2} {
		q := []*ir.Query{{Kind: ir.SQL, Raw: &ir.RawSQL{Statement: "SELECT 1"}}}
		require.NoError(t, store.Write(migrate.Sequence{Index: idx, Queries: q}, cat))
	}

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.Equal(t, []int{1, 2, 3}, []int{loaded[0].Index, loaded[1].Index, loaded[2].Index})
}
