package ronincore_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ronincore/compiler"
)

func TestMissingInstructionError(t *testing.T) {
	err := ronincore.NewMissingInstructionError("before", "limitedTo")
	assert.Contains(t, err.Error(), "limitedTo")
	assert.True(t, ronincore.IsMissingInstruction(err))
	assert.True(t, errors.Is(err, ronincore.ErrMissingInstruction))

	wrapped := fmt.Errorf("wrap: %w", err)
	assert.True(t, ronincore.IsMissingInstruction(wrapped))
	assert.False(t, ronincore.IsMissingInstruction(nil))
	assert.False(t, ronincore.IsMissingInstruction(errors.New("other")))
}

func TestMutuallyExclusiveError(t *testing.T) {
	err := ronincore.NewMutuallyExclusiveError("before", "after")
	assert.Contains(t, err.Error(), "before")
	assert.Contains(t, err.Error(), "after")
	assert.True(t, ronincore.IsMutuallyExclusive(err))
	assert.True(t, errors.Is(err, ronincore.ErrMutuallyExclusive))
}

func TestFieldNotFoundError(t *testing.T) {
	err := ronincore.NewFieldNotFoundError("account", "handle")
	assert.Equal(t, `ronincore: field "handle" not found on model "account"`, err.Error())
	assert.True(t, ronincore.IsFieldNotFound(err))
	assert.False(t, ronincore.IsFieldNotFound(nil))
}

func TestModelNotFoundError(t *testing.T) {
	err := ronincore.NewModelNotFoundError("account")
	assert.Equal(t, `ronincore: model "account" not found`, err.Error())
	assert.True(t, ronincore.IsModelNotFound(err))
}

func TestPresetNotFoundError(t *testing.T) {
	err := ronincore.NewPresetNotFoundError("account", "withPosts")
	assert.True(t, ronincore.IsPresetNotFound(err))
	assert.Contains(t, err.Error(), "withPosts")
}

func TestInvalidFieldValueError(t *testing.T) {
	underlying := errors.New("not json-serialisable")
	err := ronincore.NewInvalidFieldValueError("meta", map[string]any{"a": make(chan int)}, underlying)
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, ronincore.IsInvalidFieldValue(err))
}

func TestCycleDetectedError(t *testing.T) {
	err := ronincore.NewCycleDetectedError("a", "b", "a")
	assert.True(t, ronincore.IsCycleDetected(err))
	assert.Contains(t, err.Error(), "a")
}

func TestDriverAbortedError(t *testing.T) {
	underlying := errors.New("context canceled")
	err := ronincore.NewDriverAbortedError("trace-1", underlying)
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, errors.Is(err, ronincore.ErrDriverAborted))
	assert.True(t, ronincore.IsDriverAborted(err))
	assert.Contains(t, err.Error(), "trace-1")
}
