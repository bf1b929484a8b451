package crosschain

import (
	"bytes"
	"encoding/json"
	"slices"
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecrets(n int) []common.Hash {
	out := make([]common.Hash, n)
	for i := range out {
		out[i] = crypto.Keccak256Hash([]byte{byte(i), 0x5e})
	}
	return out
}

func TestHashLockSingleFill(t *testing.T) {
	secret := common.HexToHash("0x531e62ea3aa2bfd3c2e9c9d4a6a5a4d1f6b3e2c1d0e9f8a7b6c5d4e3f2a1b0c9")
	lock := ForSingleFill(secret)
	assert.Equal(t, crypto.Keccak256Hash(secret.Bytes()), lock.Value())
	assert.Equal(t, lock.Value().Hex(), lock.String())
}

func TestHashLockMultipleFills(t *testing.T) {
	for _, n := range []int{3, 4, 5, 7, 16} {
		secrets := testSecrets(n)
		lock, err := ForMultipleFills(secrets)
		require.NoError(t, err)
		assert.Equal(t, uint16(n), lock.PartsCount())

		leaves := MerkleLeaves(secrets)
		root := MerkleRoot(leaves)
		assert.True(t, lock.Matches(root))
		assert.Equal(t, root[2:], lock.Value().Bytes()[2:])

		for i, leaf := range leaves {
			proof, err := MerkleProof(leaves, i)
			require.NoError(t, err)
			assert.True(t, VerifyMerkleProof(leaf, proof, root), "n=%d idx=%d", n, i)
		}
	}
}

func TestHashLockRejectsTooFewSecrets(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		_, err := ForMultipleFills(testSecrets(n))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrUsage))
	}
}

func TestMerkleLeaves(t *testing.T) {
	secrets := testSecrets(3)
	leaves := MerkleLeaves(secrets)

	buf := append([]byte{0, 0, 0, 2}, secrets[2].Bytes()...)
	assert.Equal(t, crypto.Keccak256Hash(buf), leaves[2])
}

func TestMerkleRootOfThree(t *testing.T) {
	leaves := MerkleLeaves(testSecrets(3))
	sorted := slices.Clone(leaves)
	slices.SortFunc(sorted, func(a, b common.Hash) int { return bytes.Compare(a[:], b[:]) })

	// Lowest two leaves pair first, the highest joins at the root.
	want := hashPair(hashPair(sorted[0], sorted[1]), sorted[2])
	assert.Equal(t, want, MerkleRoot(leaves))
}

func TestMerkleProofRejectsTamperedLeaf(t *testing.T) {
	leaves := MerkleLeaves(testSecrets(4))
	root := MerkleRoot(leaves)
	proof, err := MerkleProof(leaves, 1)
	require.NoError(t, err)
	assert.False(t, VerifyMerkleProof(leaves[2], proof, root))

	_, err = MerkleProof(leaves, 4)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestHashLockJSON(t *testing.T) {
	lock := ForSingleFill(common.HexToHash("0x01"))
	raw, err := json.Marshal(lock)
	require.NoError(t, err)
	assert.Equal(t, `"`+lock.String()+`"`, string(raw))

	var back HashLock
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, lock, back)
}
