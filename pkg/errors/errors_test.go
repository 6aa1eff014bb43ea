package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrNotFound, "folder not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "folder not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, 500, appErr.Status)

	known := Clone(ErrRiskControlled, "")
	assert.Same(t, known, FromError(fmt.Errorf("outer: %w", known)))
}

func TestHasCodeFollowsChain(t *testing.T) {
	inner := Clone(ErrRiskControlled, "blocked (412)")
	outer := Wrap(inner, ErrRemoteUnavailable.Code, ErrRemoteUnavailable.Status, "fallback failed")
	assert.True(t, HasCode(outer, ErrRiskControlled.Code))
	assert.True(t, HasCode(outer, ErrRemoteUnavailable.Code))
	assert.False(t, HasCode(outer, ErrLoginRequired.Code))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrInternal.Code))
}
