package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWrapStoreErrorMapping(t *testing.T) {
	assert.Nil(t, WrapStoreError(nil))

	assert.ErrorIs(t, WrapStoreError(gorm.ErrRecordNotFound), ErrorRecordNotFound)
	assert.ErrorIs(t, WrapStoreError(ErrorRecordNotFound), ErrorRecordNotFound)

	// taxonomy errors pass through untouched
	verr := NewValidationError("bad input")
	assert.Equal(t, error(verr), WrapStoreError(verr))
	serr := NewInvalidStateError("wrong state")
	assert.Equal(t, error(serr), WrapStoreError(serr))

	// anything else becomes a StoreError that still unwraps
	raw := errors.New("connection reset")
	wrapped := WrapStoreError(raw)
	var sterr *StoreError
	require.ErrorAs(t, wrapped, &sterr)
	assert.ErrorIs(t, wrapped, raw)

	// double wrapping is a no-op
	assert.Equal(t, wrapped, WrapStoreError(wrapped))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "progreso 120 outside [0,100]", NewRangeError("progreso %d outside [0,100]", 120).Error())
	assert.Contains(t, NewConcurrencyError("lost update on %d", 5).Error(), "lost update on 5")
}
