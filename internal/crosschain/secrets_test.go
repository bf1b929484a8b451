package crosschain

import (
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretSetSingle(t *testing.T) {
	set, err := NewSecretSet(1, random.Seeded(3))
	require.NoError(t, err)
	assert.False(t, set.MultipleFills())

	secret, err := set.Secret(0)
	require.NoError(t, err)
	assert.Equal(t, ForSingleFill(secret), set.HashLock())
	assert.Equal(t, HashSecret(secret), set.SecretHashes()[0])

	proof, err := set.Proof(0)
	require.NoError(t, err)
	assert.Nil(t, proof)
}

func TestNewSecretSetMultiple(t *testing.T) {
	set, err := NewSecretSet(4, random.Seeded(3))
	require.NoError(t, err)
	assert.True(t, set.MultipleFills())
	assert.Equal(t, 4, set.Len())
	assert.Equal(t, uint16(4), set.HashLock().PartsCount())

	leaves := MerkleLeaves(set.Secrets())
	root := MerkleRoot(leaves)
	for i := range set.Len() {
		proof, err := set.Proof(i)
		require.NoError(t, err)
		assert.True(t, VerifyMerkleProof(leaves[i], proof, root))
	}

	again, err := NewSecretSet(4, random.Seeded(3))
	require.NoError(t, err)
	assert.Equal(t, set.HashLock(), again.HashLock(), "same seed, same secrets")

	restored, err := SecretSetFrom(set.Secrets())
	require.NoError(t, err)
	assert.Equal(t, set.HashLock(), restored.HashLock())
}

func TestNewSecretSetCounts(t *testing.T) {
	_, err := NewSecretSet(0, random.Seeded(1))
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = NewSecretSet(2, random.Seeded(1))
	assert.True(t, apperrors.Is(err, apperrors.ErrUsage))

	_, err = SecretSetFrom(nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestSecretOutOfRange(t *testing.T) {
	set, err := NewSecretSet(3, random.Seeded(9))
	require.NoError(t, err)
	_, err = set.Secret(3)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	_, err = set.Secret(-1)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
