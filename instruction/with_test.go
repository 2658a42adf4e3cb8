package instruction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
)

func TestWithNilConditionIsEmpty(t *testing.T) {
	ctx, _ := ctxFor(t)
	sql, err := instruction.With(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, sql)
}

func TestWithRendersWhereClause(t *testing.T) {
	ctx, _ := ctxFor(t)
	sql, err := instruction.With(ctx, ir.Leaf("handle", ir.OpEQ, ir.Lit("jen")))
	require.NoError(t, err)
	assert.Equal(t, `WHERE "handle" = ?1`, sql)
}
