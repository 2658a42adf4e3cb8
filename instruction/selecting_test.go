package instruction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/instruction"
)

func TestSelectingDefaultsToAllUserFields(t *testing.T) {
	ctx, _ := ctxFor(t)
	cols, includeIDOnly, err := instruction.Selecting(ctx, nil)
	require.NoError(t, err)
	assert.False(t, includeIDOnly)
	keys := keysOf(cols)
	assert.Equal(t, []string{"id", "ronin.createdAt", "ronin.createdBy", "ronin.updatedAt", "ronin.updatedBy", "handle", "age"}, keys)
}

func TestSelectingExplicitListAddsIDInternally(t *testing.T) {
	ctx, _ := ctxFor(t)
	cols, includeIDOnly, err := instruction.Selecting(ctx, []string{"handle"})
	require.NoError(t, err)
	assert.True(t, includeIDOnly)
	keys := keysOf(cols)
	assert.Contains(t, keys, "id")
	assert.Contains(t, keys, "handle")
	assert.NotContains(t, keys, "age")
}

func TestSelectingWildcardWithExclusion(t *testing.T) {
	ctx, _ := ctxFor(t)
	cols, _, err := instruction.Selecting(ctx, []string{"**", "!age"})
	require.NoError(t, err)
	keys := keysOf(cols)
	assert.Contains(t, keys, "handle")
	assert.NotContains(t, keys, "age")
}

func keysOf(cols []instruction.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Key
	}
	return out
}
