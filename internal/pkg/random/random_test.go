package random

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededIsDeterministic(t *testing.T) {
	a, err := Bytes32(Seeded(7))
	require.NoError(t, err)
	b, err := Bytes32(Seeded(7))
	require.NoError(t, err)
	c, err := Bytes32(Seeded(8))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestUintWidth(t *testing.T) {
	v, err := Uint(Seeded(1), 12)
	require.NoError(t, err)
	assert.LessOrEqual(t, v.BitLen(), 96)

	_, err = Uint(Seeded(1), 33)
	assert.Error(t, err)
}

func TestBelow(t *testing.T) {
	r := Seeded(3)
	for i := 0; i < 1000; i++ {
		v, err := Below(r, 1<<40)
		require.NoError(t, err)
		assert.Less(t, v, uint64(1<<40))
	}

	_, err := Below(r, 0)
	assert.Error(t, err)
}

func TestShortReader(t *testing.T) {
	_, err := Bytes32(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}
