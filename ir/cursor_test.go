package ir_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronincore/compiler/ir"
)

func TestEncodeCursorRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cursor := ir.EncodeCursor([]any{"elaine", nil, ts})

	segments, err := ir.DecodeCursor(cursor)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, "elaine", *segments[0])
	assert.Nil(t, segments[1])
	assert.Equal(t, "1704164645000", *segments[2])
}

func TestDecodeCursorEmpty(t *testing.T) {
	segments, err := ir.DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, segments)
}

func TestEncodeCursorURLEscapesCommas(t *testing.T) {
	cursor := ir.EncodeCursor([]any{"a,b"})
	assert.NotContains(t, cursor, ",b") // the literal comma must be escaped away
	segments, err := ir.DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "a,b", *segments[0])
}
