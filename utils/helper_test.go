package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueSlice(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, UniqueSlice([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, UniqueSlice([]int{}))
	assert.Equal(t, []string{"a"}, UniqueSlice([]string{"a", "a"}))
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, NilIfEmpty(""))
	v := NilIfEmpty("x")
	if assert.NotNil(t, v) {
		assert.Equal(t, "x", *v)
	}
}

func TestAreIntSlicesEqual(t *testing.T) {
	assert.True(t, AreIntSlicesEqual([]int{1, 2}, []int{2, 1}))
	assert.False(t, AreIntSlicesEqual([]int{1, 2}, []int{1, 2, 2}))
	assert.True(t, AreIntSlicesEqual(nil, []int{}))
}
