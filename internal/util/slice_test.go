package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStrictlyIncreasing(t *testing.T) {
	assert.True(t, IsStrictlyIncreasing([]float64{}))
	assert.True(t, IsStrictlyIncreasing([]float64{1}))
	assert.True(t, IsStrictlyIncreasing([]float64{1, 2, 10}))
	assert.False(t, IsStrictlyIncreasing([]float64{1, 1}))
	assert.False(t, IsStrictlyIncreasing([]float64{2, 1}))
	assert.False(t, IsStrictlyIncreasing([]float64{1, 5, 5, 6}))
}
